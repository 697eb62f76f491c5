package comm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dweggg/libreScope/internal/models"
)

// LineKind classifies one incoming line.
type LineKind int

const (
	// LineDiscard marks a malformed or out-of-format line, dropped silently.
	LineDiscard LineKind = iota
	// LineHeartbeat marks the literal "OK" keep-alive.
	LineHeartbeat
	// LineSignal marks a valid key:value telemetry update.
	LineSignal
)

// Codec frames and parses the wire line protocol.
//
// Outgoing: "KEY:VALUE\r\n" with the value formatted to exactly two decimal
// places. Incoming values must match that same fixed-point shape; the
// pattern is the link's only framing safety net against partial reads, so it
// must not be generalized to arbitrary float formats.
type Codec struct {
	valuePattern *regexp.Regexp
	now          func() time.Time
}

// NewCodec creates a Codec using wall-clock receipt timestamps.
func NewCodec() *Codec {
	return &Codec{
		valuePattern: regexp.MustCompile(`^-?\d+\.\d\d$`),
		now:          time.Now,
	}
}

// Encode serializes an outgoing key/value write into the wire format.
func (c *Codec) Encode(key string, value float64) []byte {
	return []byte(fmt.Sprintf("%s:%.2f\r\n", key, value))
}

// SplitLines decodes an incoming chunk as UTF-8, replacing invalid byte
// sequences, and splits it into lines.
func (c *Codec) SplitLines(data []byte) []string {
	text := strings.ToValidUTF8(string(data), "�")
	return strings.Split(text, "\n")
}

// DecodeLine classifies one line. For LineSignal the returned event carries
// the parsed key, value, and a receipt timestamp captured at the moment of
// successful parse. For every other kind the event is zero.
func (c *Codec) DecodeLine(line string) (models.SignalEvent, LineKind) {
	line = strings.TrimSpace(line)

	if line == "OK" {
		return models.SignalEvent{}, LineHeartbeat
	}
	if line == "" || !strings.Contains(line, ":") {
		return models.SignalEvent{}, LineDiscard
	}

	key, rawValue, _ := strings.Cut(line, ":")
	if !c.valuePattern.MatchString(rawValue) {
		return models.SignalEvent{}, LineDiscard
	}

	value, err := strconv.ParseFloat(rawValue, 64)
	if err != nil {
		// Unreachable given the pattern, but a parse failure is still a
		// silent discard, never an error.
		return models.SignalEvent{}, LineDiscard
	}

	event := models.SignalEvent{
		Key:       key,
		Value:     value,
		Timestamp: float64(c.now().UnixNano()) / 1e9,
	}
	return event, LineSignal
}
