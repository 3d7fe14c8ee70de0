package filter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ZakWinnick/RivianSpotter-sub000/internal/locations"
)

// filterResponse is the shape both the list renderer and the map updater
// consume.
type filterResponse struct {
	Count         int                        `json:"count"`
	Recenter      bool                       `json:"recenter"`
	SearchingNear string                     `json:"searchingNear,omitempty"`
	Locations     []locations.LocationRecord `json:"locations"`
}

// FilterWith runs the engine over the current working set with a
// caller-supplied state, resolving an address-like search term first. Backs
// the stateless HTTP filter endpoint; the session Store state is untouched.
func (s *Store) FilterWith(ctx context.Context, st *FilterState) ([]locations.LocationRecord, error) {
	s.mu.Lock()
	records := s.records
	resolver := s.resolver
	s.mu.Unlock()

	if resolver != nil && st.Geocoded == nil {
		term := strings.TrimSpace(st.SearchTerm)
		if resolver.LooksLikeAddress(term) {
			if place := resolver.Resolve(ctx, term); place != nil {
				st.Geocoded = &GeocodedPoint{
					Coordinate: Coordinate{Lat: place.Lat, Lng: place.Lng},
					PlaceName:  place.PlaceName,
					Query:      term,
				}
			}
		}
	}

	return s.engine.Apply(records, st)
}

// FilterHandler maps query parameters onto a fresh FilterState and returns
// the filtered sequence.
func FilterHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := stateFromQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		filtered, err := s.FilterWith(r.Context(), st)
		if err != nil {
			if errors.Is(err, ErrDataUnavailable) {
				http.Error(w, "Location data not loaded yet", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "Filtering failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		resp := filterResponse{
			Count:     len(filtered),
			Recenter:  ShouldRecenter(st, filtered),
			Locations: filtered,
		}
		if st.Geocoded != nil {
			resp.SearchingNear = st.Geocoded.PlaceName
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func stateFromQuery(r *http.Request) (*FilterState, error) {
	q := r.URL.Query()
	st := NewFilterState()

	if v := q.Get("type"); v != "" {
		st.TypeFilter = v
	}
	if v := q.Get("state"); v != "" {
		st.LegacyStateFilter = v
	}
	st.SearchTerm = q.Get("search")

	for _, code := range splitList(q.Get("states")) {
		st.SelectedStates[code] = struct{}{}
	}
	for _, svc := range splitList(q.Get("services")) {
		st.SelectedServices[svc] = struct{}{}
	}

	if v := q.Get("date_from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, errors.New("date_from must be YYYY-MM-DD")
		}
		st.DateFrom = &from
	}
	if v := q.Get("date_to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, errors.New("date_to must be YYYY-MM-DD")
		}
		st.DateTo = &to
	}
	if st.DateFrom != nil && st.DateTo != nil && st.DateFrom.After(*st.DateTo) {
		return nil, ErrInvalidDateRange
	}

	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr != "" || lngStr != "" {
		lat, err1 := strconv.ParseFloat(latStr, 64)
		lng, err2 := strconv.ParseFloat(lngStr, 64)
		if err1 != nil || err2 != nil {
			return nil, errors.New("lat and lng must both be numbers")
		}
		radius := DefaultRadiusMiles
		if v := q.Get("radius"); v != "" {
			radius, err1 = strconv.ParseFloat(v, 64)
			if err1 != nil || radius <= 0 {
				return nil, ErrInvalidRadius
			}
		}
		st.UserLocation = &Coordinate{Lat: lat, Lng: lng}
		st.DistanceRadiusMiles = radius
		st.DistanceEnabled = true
	}

	if q.Get("open_now") == "true" {
		st.OpenNowFilter = true
	}
	if q.Get("coming_soon") == "true" {
		st.ComingSoonFilter = true
	}

	return st, nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
