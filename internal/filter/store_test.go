package filter_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ZakWinnick/RivianSpotter-sub000/internal/filter"
	"github.com/ZakWinnick/RivianSpotter-sub000/internal/locations"
)

// fakeResolver resolves every address-like query to a fixed place and counts
// upstream calls.
type fakeResolver struct {
	mu    sync.Mutex
	place *filter.ResolvedPlace
	calls int
}

func (f *fakeResolver) LooksLikeAddress(query string) bool {
	if len(query) < 3 {
		return false
	}
	for _, r := range query {
		if r >= '0' && r <= '9' {
			return true
		}
		if r == ',' {
			return true
		}
	}
	return false
}

func (f *fakeResolver) Resolve(ctx context.Context, query string) *filter.ResolvedPlace {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.place
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeGeo is a single-shot geolocation provider.
type fakeGeo struct {
	pos filter.Coordinate
	err error
}

func (f fakeGeo) CurrentPosition(ctx context.Context) (filter.Coordinate, error) {
	return f.pos, f.err
}

// countingConsumer records every published sequence.
type countingConsumer struct {
	mu        sync.Mutex
	published [][]locations.LocationRecord
}

func (c *countingConsumer) consume(filtered []locations.LocationRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, filtered)
}

func (c *countingConsumer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.published)
}

func newTestStore(resolver filter.GeocodeResolver, geo filter.GeolocationProvider, debounce time.Duration) *filter.Store {
	return filter.NewStore(&filter.Engine{}, threeRecords(), resolver, geo, debounce)
}

// TestMutatorsPublish verifies every synchronous mutator runs the engine and
// notifies subscribers once.
func TestMutatorsPublish(t *testing.T) {
	store := newTestStore(nil, nil, 0)
	consumer := &countingConsumer{}
	store.Subscribe(consumer.consume)

	got, err := store.SetTypeFilter(locations.TypeOutpost)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, "austin")

	if _, err := store.ToggleStateSelection("TX"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SetOpenNowFilter(false); err != nil {
		t.Fatal(err)
	}

	if consumer.count() != 3 {
		t.Errorf("expected 3 publishes, got %d", consumer.count())
	}
}

// TestToggleStateSelection verifies toggling on and off restores the original
// result set.
func TestToggleStateSelection(t *testing.T) {
	store := newTestStore(nil, nil, 0)

	got, err := store.ToggleStateSelection("CA")
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, "venice", "laguna")

	got, err = store.ToggleStateSelection("CA")
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, "venice", "austin", "laguna")
}

// TestClearAllSingleEnginePass verifies ClearAll resets everything atomically
// with exactly one publish.
func TestClearAllSingleEnginePass(t *testing.T) {
	store := newTestStore(nil, nil, 0)

	store.SetTypeFilter(locations.TypeSpace)
	store.ToggleStateSelection("CA")
	store.ToggleServiceSelection("Parts")

	consumer := &countingConsumer{}
	store.Subscribe(consumer.consume)

	got, err := store.ClearAll()
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, "venice", "austin", "laguna")

	if consumer.count() != 1 {
		t.Errorf("expected exactly one publish from ClearAll, got %d", consumer.count())
	}

	st := store.Snapshot()
	if st.TypeFilter != filter.All || st.LegacyStateFilter != filter.All {
		t.Error("single-select dimensions not reset")
	}
	if len(st.SelectedStates) != 0 || len(st.SelectedServices) != 0 {
		t.Error("multi-select dimensions not reset")
	}
	if st.DistanceEnabled || st.Geocoded != nil || st.SearchTerm != "" {
		t.Error("distance/geocode/search state not reset")
	}
}

// TestSetDateRangeValidation verifies an inverted range is rejected without
// touching state.
func TestSetDateRangeValidation(t *testing.T) {
	store := newTestStore(nil, nil, 0)

	from := date(t, "2024-12-31")
	to := date(t, "2024-01-01")
	if _, err := store.SetDateRange(from, to); !errors.Is(err, filter.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}

	st := store.Snapshot()
	if st.DateFrom != nil || st.DateTo != nil {
		t.Error("rejected range must not be stored")
	}
}

// TestEnableDistanceFilter verifies the position is obtained first and the
// radius applied.
func TestEnableDistanceFilter(t *testing.T) {
	geo := fakeGeo{pos: filter.Coordinate{Lat: 34.05, Lng: -118.24}}
	store := newTestStore(nil, geo, 0)

	got, err := store.EnableDistanceFilter(context.Background(), 30)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, "venice") // Laguna Beach is ~44 miles out, Austin far away

	st := store.Snapshot()
	if !st.DistanceEnabled || st.UserLocation == nil || st.DistanceRadiusMiles != 30 {
		t.Error("distance state not applied")
	}
}

// TestEnableDistanceFilterDenied verifies denial surfaces the reason and
// leaves every filter field untouched.
func TestEnableDistanceFilterDenied(t *testing.T) {
	geo := fakeGeo{err: filter.ErrGeolocationDenied}
	store := newTestStore(nil, geo, 0)
	store.SetTypeFilter(locations.TypeSpace)

	_, err := store.EnableDistanceFilter(context.Background(), 50)
	if !errors.Is(err, filter.ErrGeolocationDenied) {
		t.Errorf("expected ErrGeolocationDenied, got %v", err)
	}

	st := store.Snapshot()
	if st.DistanceEnabled || st.UserLocation != nil {
		t.Error("denied geolocation must not enable the filter")
	}
	if st.TypeFilter != locations.TypeSpace {
		t.Error("unrelated filter state was altered")
	}
}

// TestEnableDistanceFilterInvalidRadius verifies radius validation happens
// before any geolocation request.
func TestEnableDistanceFilterInvalidRadius(t *testing.T) {
	store := newTestStore(nil, fakeGeo{}, 0)
	if _, err := store.EnableDistanceFilter(context.Background(), 0); !errors.Is(err, filter.ErrInvalidRadius) {
		t.Errorf("expected ErrInvalidRadius, got %v", err)
	}
	if _, err := store.EnableDistanceFilter(context.Background(), -5); !errors.Is(err, filter.ErrInvalidRadius) {
		t.Errorf("expected ErrInvalidRadius, got %v", err)
	}
}

// TestSearchTermGeocodes verifies an address-like term sets the geocode
// proximity point and a short term clears it.
func TestSearchTermGeocodes(t *testing.T) {
	resolver := &fakeResolver{place: &filter.ResolvedPlace{Lat: 34.05, Lng: -118.24, PlaceName: "Los Angeles"}}
	store := newTestStore(resolver, nil, 0) // zero debounce runs synchronously

	store.SetSearchTerm("90210")

	st := store.Snapshot()
	if st.Geocoded == nil {
		t.Fatal("expected geocoded point after address-like search")
	}
	if st.Geocoded.PlaceName != "Los Angeles" || st.Geocoded.Query != "90210" {
		t.Errorf("unexpected geocoded point: %+v", st.Geocoded)
	}

	// Term becomes too short to be address-like: geocode point clears.
	store.SetSearchTerm("ca")
	if st := store.Snapshot(); st.Geocoded != nil {
		t.Error("expected geocoded point cleared for non-address term")
	}
}

// TestSearchDebounceCoalesces verifies rapid keystrokes produce one resolve
// for the final term only.
func TestSearchDebounceCoalesces(t *testing.T) {
	resolver := &fakeResolver{place: &filter.ResolvedPlace{Lat: 34.05, Lng: -118.24, PlaceName: "Los Angeles"}}
	store := newTestStore(resolver, nil, 20*time.Millisecond)

	store.SetSearchTerm("9")
	store.SetSearchTerm("90")
	store.SetSearchTerm("902")
	store.SetSearchTerm("90210")

	deadline := time.Now().Add(2 * time.Second)
	for store.Snapshot().Geocoded == nil {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for debounced geocode")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if calls := resolver.callCount(); calls != 1 {
		t.Errorf("expected 1 resolve call after coalescing, got %d", calls)
	}
	if st := store.Snapshot(); st.Geocoded.Query != "90210" {
		t.Errorf("expected the final term to win, got %q", st.Geocoded.Query)
	}
}

// TestStaleSearchSuperseded verifies that clearing filters invalidates an
// in-flight debounced search.
func TestStaleSearchSuperseded(t *testing.T) {
	resolver := &fakeResolver{place: &filter.ResolvedPlace{Lat: 34.05, Lng: -118.24, PlaceName: "Los Angeles"}}
	store := newTestStore(resolver, nil, 30*time.Millisecond)

	store.SetSearchTerm("90210")
	store.ClearAll() // supersedes the pending search

	time.Sleep(100 * time.Millisecond)
	if calls := resolver.callCount(); calls != 0 {
		t.Errorf("expected superseded search to never resolve, got %d calls", calls)
	}
	if st := store.Snapshot(); st.Geocoded != nil {
		t.Error("expected no geocoded point after ClearAll")
	}
}

// TestSetRecordsPublishes verifies a working-set reload republishes through
// the current filters.
func TestSetRecordsPublishes(t *testing.T) {
	store := newTestStore(nil, nil, 0)
	store.ToggleStateSelection("CA")

	consumer := &countingConsumer{}
	store.Subscribe(consumer.consume)

	records := threeRecords()[:2] // drop laguna
	got, err := store.SetRecords(records)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, "venice")

	if consumer.count() != 1 {
		t.Errorf("expected 1 publish, got %d", consumer.count())
	}
}

// TestResultsBeforeLoad verifies the store surfaces missing data instead of
// an empty sequence.
func TestResultsBeforeLoad(t *testing.T) {
	store := filter.NewStore(&filter.Engine{}, nil, nil, nil, 0)
	if _, err := store.Results(); !errors.Is(err, filter.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}

// TestUnsubscribe verifies removed consumers stop receiving publishes.
func TestUnsubscribe(t *testing.T) {
	store := newTestStore(nil, nil, 0)
	consumer := &countingConsumer{}
	id := store.Subscribe(consumer.consume)

	store.SetTypeFilter(locations.TypeSpace)
	store.Unsubscribe(id)
	store.SetTypeFilter(filter.All)

	if consumer.count() != 1 {
		t.Errorf("expected 1 publish before unsubscribe, got %d", consumer.count())
	}
}
