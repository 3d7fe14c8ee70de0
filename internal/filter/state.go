package filter

import "time"

// All is the permissive value for the single-select dimensions.
const All = "all"

// DefaultRadiusMiles is the initial radius for the distance filter.
const DefaultRadiusMiles = 50.0

// Coordinate is a plain lat/lng pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeocodedPoint is a resolved search query: where it points, what to call it,
// and which query produced it. Query backs the latest-response-wins guard.
type GeocodedPoint struct {
	Coordinate
	PlaceName string `json:"placeName"`
	Query     string `json:"query"`
}

// FilterState holds the current value of every filter dimension. One instance
// per session; mutate it only through the Store so every change re-filters.
type FilterState struct {
	TypeFilter string

	// LegacyStateFilter is the old single-select state dropdown, kept separate
	// from SelectedStates for backward compatibility.
	LegacyStateFilter string

	SearchTerm string

	SelectedStates   map[string]struct{}
	SelectedServices map[string]struct{}

	DateFrom *time.Time
	DateTo   *time.Time

	DistanceEnabled     bool
	UserLocation        *Coordinate
	DistanceRadiusMiles float64

	Geocoded *GeocodedPoint

	OpenNowFilter    bool
	ComingSoonFilter bool
}

// NewFilterState returns the all-permissive defaults: no dimension restricts
// anything.
func NewFilterState() *FilterState {
	return &FilterState{
		TypeFilter:          All,
		LegacyStateFilter:   All,
		SelectedStates:      make(map[string]struct{}),
		SelectedServices:    make(map[string]struct{}),
		DistanceRadiusMiles: DefaultRadiusMiles,
	}
}
