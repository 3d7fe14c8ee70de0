package filter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ZakWinnick/RivianSpotter-sub000/internal/locations"
	"github.com/google/uuid"
)

var (
	// ErrInvalidRadius rejects non-positive distance radii.
	ErrInvalidRadius = errors.New("filter: radius must be positive")

	// ErrInvalidDateRange rejects a from-bound after the to-bound.
	ErrInvalidDateRange = errors.New("filter: date_from is after date_to")

	// Geolocation collaborators surface these; the store passes them through
	// without touching any other filter field.
	ErrGeolocationDenied      = errors.New("filter: geolocation permission denied")
	ErrGeolocationTimeout     = errors.New("filter: geolocation timed out")
	ErrGeolocationUnavailable = errors.New("filter: no geolocation provider configured")
)

// GeolocationProvider is the single-shot "where is the user" collaborator.
type GeolocationProvider interface {
	CurrentPosition(ctx context.Context) (Coordinate, error)
}

// ResolvedPlace is what a geocode resolver hands back for an address-like
// query.
type ResolvedPlace struct {
	Lat       float64
	Lng       float64
	PlaceName string
}

// GeocodeResolver turns address-like search text into a coordinate. Resolve
// returns nil when the query cannot be resolved; that is not an error.
type GeocodeResolver interface {
	LooksLikeAddress(query string) bool
	Resolve(ctx context.Context, query string) *ResolvedPlace
}

// Consumer receives the filtered sequence after every state change.
type Consumer func(filtered []locations.LocationRecord)

// Store owns the session FilterState and the record working set. Every
// mutator validates its input, updates the state, runs the engine, and
// publishes the result to subscribers. Free-text search is the only debounced
// path; everything else filters synchronously.
type Store struct {
	mu      sync.Mutex
	records []locations.LocationRecord
	state   *FilterState
	engine  *Engine

	resolver GeocodeResolver     // optional
	geo      GeolocationProvider // optional
	debounce time.Duration

	// searchGen implements latest-request-wins: a geocode response only
	// applies if no newer search has been issued since it started.
	searchGen   uint64
	searchTimer *time.Timer

	subscribers map[uuid.UUID]Consumer
}

func NewStore(engine *Engine, records []locations.LocationRecord, resolver GeocodeResolver, geo GeolocationProvider, debounce time.Duration) *Store {
	return &Store{
		records:     records,
		state:       NewFilterState(),
		engine:      engine,
		resolver:    resolver,
		geo:         geo,
		debounce:    debounce,
		subscribers: make(map[uuid.UUID]Consumer),
	}
}

// Subscribe registers a consumer and returns a handle for Unsubscribe.
func (s *Store) Subscribe(fn Consumer) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.subscribers[id] = fn
	return id
}

func (s *Store) Unsubscribe(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, id)
}

// Results runs the engine over the current state without mutating anything.
func (s *Store) Results() ([]locations.LocationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Apply(s.records, s.state)
}

// Snapshot returns a copy of the current filter state for inspection.
func (s *Store) Snapshot() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := *s.state
	return st
}

// SetRecords replaces the working set, e.g. after an admin reload.
func (s *Store) SetRecords(records []locations.LocationRecord) ([]locations.LocationRecord, error) {
	s.mu.Lock()
	s.records = records
	filtered, err := s.applyLocked()
	s.mu.Unlock()
	s.publish(filtered, err)
	return filtered, err
}

func (s *Store) SetTypeFilter(v string) ([]locations.LocationRecord, error) {
	if v == "" {
		v = All
	}
	return s.mutate(func(st *FilterState) {
		st.TypeFilter = v
	})
}

func (s *Store) SetLegacyStateFilter(v string) ([]locations.LocationRecord, error) {
	if v == "" {
		v = All
	}
	return s.mutate(func(st *FilterState) {
		st.LegacyStateFilter = v
	})
}

func (s *Store) ToggleStateSelection(code string) ([]locations.LocationRecord, error) {
	return s.mutate(func(st *FilterState) {
		if _, ok := st.SelectedStates[code]; ok {
			delete(st.SelectedStates, code)
		} else {
			st.SelectedStates[code] = struct{}{}
		}
	})
}

func (s *Store) ToggleServiceSelection(service string) ([]locations.LocationRecord, error) {
	return s.mutate(func(st *FilterState) {
		if _, ok := st.SelectedServices[service]; ok {
			delete(st.SelectedServices, service)
		} else {
			st.SelectedServices[service] = struct{}{}
		}
	})
}

func (s *Store) SetDateRange(from, to *time.Time) ([]locations.LocationRecord, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, ErrInvalidDateRange
	}
	return s.mutate(func(st *FilterState) {
		st.DateFrom = from
		st.DateTo = to
	})
}

func (s *Store) SetOpenNowFilter(on bool) ([]locations.LocationRecord, error) {
	return s.mutate(func(st *FilterState) {
		st.OpenNowFilter = on
	})
}

func (s *Store) SetComingSoonFilter(on bool) ([]locations.LocationRecord, error) {
	return s.mutate(func(st *FilterState) {
		st.ComingSoonFilter = on
	})
}

// SetDistanceRadius adjusts the radius of an already-enabled distance filter.
func (s *Store) SetDistanceRadius(radiusMiles float64) ([]locations.LocationRecord, error) {
	if radiusMiles <= 0 {
		return nil, ErrInvalidRadius
	}
	return s.mutate(func(st *FilterState) {
		st.DistanceRadiusMiles = radiusMiles
	})
}

// EnableDistanceFilter obtains the user's position first, then turns the
// filter on. On denial or timeout no filter field changes and the reason is
// returned to the caller.
func (s *Store) EnableDistanceFilter(ctx context.Context, radiusMiles float64) ([]locations.LocationRecord, error) {
	if radiusMiles <= 0 {
		return nil, ErrInvalidRadius
	}
	if s.geo == nil {
		return nil, ErrGeolocationUnavailable
	}

	// Position request runs outside the lock; it may take a while.
	pos, err := s.geo.CurrentPosition(ctx)
	if err != nil {
		return nil, err
	}

	return s.mutate(func(st *FilterState) {
		st.UserLocation = &pos
		st.DistanceRadiusMiles = radiusMiles
		st.DistanceEnabled = true
	})
}

func (s *Store) DisableDistanceFilter() ([]locations.LocationRecord, error) {
	return s.mutate(func(st *FilterState) {
		st.DistanceEnabled = false
		st.UserLocation = nil
	})
}

// SetSearchTerm records the term and schedules one resolve+filter cycle after
// the debounce window; intermediate keystrokes never reach the geocoder. The
// result arrives through subscribers. With a non-positive debounce the cycle
// runs synchronously before returning.
func (s *Store) SetSearchTerm(term string) {
	s.mu.Lock()
	s.state.SearchTerm = term
	s.searchGen++
	gen := s.searchGen
	if s.searchTimer != nil {
		s.searchTimer.Stop()
		s.searchTimer = nil
	}
	runNow := s.debounce <= 0
	if !runNow {
		s.searchTimer = time.AfterFunc(s.debounce, func() {
			s.completeSearch(gen)
		})
	}
	s.mu.Unlock()

	if runNow {
		s.completeSearch(gen)
	}
}

// completeSearch runs after the debounce quiet period. It geocodes
// address-like terms and applies the result only if this search is still the
// newest one.
func (s *Store) completeSearch(gen uint64) {
	s.mu.Lock()
	if gen != s.searchGen {
		s.mu.Unlock()
		return
	}
	term := strings.TrimSpace(s.state.SearchTerm)
	resolver := s.resolver

	if resolver == nil || !resolver.LooksLikeAddress(term) {
		// Term is too short to be address-like: the geocode proximity filter
		// turns off with it.
		s.state.Geocoded = nil
		filtered, err := s.applyLocked()
		s.mu.Unlock()
		s.publish(filtered, err)
		return
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	place := resolver.Resolve(ctx, term)

	s.mu.Lock()
	if gen != s.searchGen {
		// A newer search superseded this resolve; drop the response.
		s.mu.Unlock()
		return
	}
	if place != nil {
		s.state.Geocoded = &GeocodedPoint{
			Coordinate: Coordinate{Lat: place.Lat, Lng: place.Lng},
			PlaceName:  place.PlaceName,
			Query:      term,
		}
	} else {
		s.state.Geocoded = nil
	}
	filtered, err := s.applyLocked()
	s.mu.Unlock()
	s.publish(filtered, err)
}

// ClearAll resets every dimension to its permissive default in one step with
// exactly one engine pass at the end.
func (s *Store) ClearAll() ([]locations.LocationRecord, error) {
	s.mu.Lock()
	s.state = NewFilterState()
	s.searchGen++ // invalidate any in-flight search or geocode response
	if s.searchTimer != nil {
		s.searchTimer.Stop()
		s.searchTimer = nil
	}
	filtered, err := s.applyLocked()
	s.mu.Unlock()
	s.publish(filtered, err)
	return filtered, err
}

func (s *Store) mutate(apply func(st *FilterState)) ([]locations.LocationRecord, error) {
	s.mu.Lock()
	apply(s.state)
	filtered, err := s.applyLocked()
	s.mu.Unlock()
	s.publish(filtered, err)
	return filtered, err
}

func (s *Store) applyLocked() ([]locations.LocationRecord, error) {
	return s.engine.Apply(s.records, s.state)
}

func (s *Store) publish(filtered []locations.LocationRecord, err error) {
	if err != nil {
		return
	}
	s.mu.Lock()
	subs := make([]Consumer, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(filtered)
	}
}
