package filter

import (
	"errors"
	"strings"
	"time"

	"github.com/ZakWinnick/RivianSpotter-sub000/internal/hours"
	"github.com/ZakWinnick/RivianSpotter-sub000/internal/locations"
	"github.com/ZakWinnick/RivianSpotter-sub000/internal/metrics"
)

// ErrDataUnavailable means the engine ran before any records were loaded.
var ErrDataUnavailable = errors.New("filter: no location data loaded")

// geocodeRadiusMiles is the fixed proximity radius around a geocoded search
// result. Not configurable.
const geocodeRadiusMiles = 100.0

// HoursEvaluator answers "open right now" for a record. Only a definite
// StatusOpen passes the open-now filter.
type HoursEvaluator interface {
	Status(rec locations.LocationRecord) hours.OpenStatus
}

// OpeningEvaluator answers whether a record opens within the coming-soon
// window.
type OpeningEvaluator interface {
	ComingSoon(rec locations.LocationRecord) bool
}

// Engine combines every active filter dimension into one predicate. Apply is
// pure with respect to its inputs; the two evaluators are its only external
// reads.
type Engine struct {
	Hours   HoursEvaluator
	Opening OpeningEvaluator
}

// Apply returns the records passing every active predicate, preserving input
// order. A nil record set is a load-ordering bug, reported as
// ErrDataUnavailable rather than silently returning nothing.
func (e *Engine) Apply(records []locations.LocationRecord, st *FilterState) ([]locations.LocationRecord, error) {
	if records == nil {
		return nil, ErrDataUnavailable
	}
	metrics.FilterRunsTotal.Inc()

	search := fold(strings.TrimSpace(st.SearchTerm))

	out := make([]locations.LocationRecord, 0, len(records))
	for _, rec := range records {
		if e.matches(rec, st, search) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// matches evaluates the predicate conjunction. Cheap checks run first; the
// haversine calls come last.
func (e *Engine) matches(rec locations.LocationRecord, st *FilterState, search string) bool {
	if st.TypeFilter != All && rec.Type != st.TypeFilter {
		return false
	}

	if st.LegacyStateFilter != All && rec.State != st.LegacyStateFilter {
		return false
	}

	if search != "" && !matchesSearch(rec, search) {
		return false
	}

	if len(st.SelectedStates) > 0 {
		if _, ok := st.SelectedStates[rec.State]; !ok {
			return false
		}
	}

	if len(st.SelectedServices) > 0 && !intersectsServices(rec.Services, st.SelectedServices) {
		return false
	}

	if !matchesDateRange(rec, st.DateFrom, st.DateTo) {
		return false
	}

	if st.OpenNowFilter {
		// Unknown hours exclude the record; only a definite open passes.
		if e.Hours == nil || e.Hours.Status(rec) != hours.StatusOpen {
			return false
		}
	}

	if st.ComingSoonFilter {
		if e.Opening == nil || !e.Opening.ComingSoon(rec) {
			return false
		}
	}

	if st.DistanceEnabled {
		if st.UserLocation == nil {
			return false
		}
		if HaversineMiles(st.UserLocation.Lat, st.UserLocation.Lng, rec.Lat, rec.Lng) > st.DistanceRadiusMiles {
			return false
		}
	}

	if st.Geocoded != nil {
		if HaversineMiles(st.Geocoded.Lat, st.Geocoded.Lng, rec.Lat, rec.Lng) > geocodeRadiusMiles {
			return false
		}
	}

	return true
}

func matchesSearch(rec locations.LocationRecord, search string) bool {
	return strings.Contains(fold(rec.Name), search) ||
		strings.Contains(fold(rec.City), search) ||
		strings.Contains(fold(rec.State), search) ||
		strings.Contains(fold(rec.Address), search)
}

func intersectsServices(services []string, selected map[string]struct{}) bool {
	for _, s := range services {
		if _, ok := selected[s]; ok {
			return true
		}
	}
	return false
}

// matchesDateRange applies the inclusive opening-date bounds. A record with no
// opening date is excluded whenever either bound is active: absent data is
// non-matching, not a wildcard.
func matchesDateRange(rec locations.LocationRecord, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if rec.OpeningDate == "" {
		return false
	}
	opening, err := time.Parse("2006-01-02", rec.OpeningDate)
	if err != nil {
		return false
	}
	if from != nil && opening.Before(*from) {
		return false
	}
	if to != nil && opening.After(*to) {
		return false
	}
	return true
}

// ShouldRecenter tells map consumers to re-center around the filtered set:
// only when a single-value state filter is active and something passed.
func ShouldRecenter(st *FilterState, filtered []locations.LocationRecord) bool {
	return st.LegacyStateFilter != All && len(filtered) > 0
}
