package models

// DataPoint is one recorded sample of a signal. Elapsed is measured in
// seconds from the owning store's creation instant, never negative.
type DataPoint struct {
	Value   float64 `json:"value"`
	Elapsed float64 `json:"t"`
}
