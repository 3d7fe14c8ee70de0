package geocode

import (
	"context"
	"log"
	"strings"
	"sync"
	"unicode"

	"github.com/ZakWinnick/RivianSpotter-sub000/internal/metrics"
)

// ForwardGeocoder is the upstream service boundary; *Client satisfies it.
type ForwardGeocoder interface {
	Forward(ctx context.Context, query string) (*Result, error)
}

// Resolver fronts the geocoding service with an in-memory cache keyed by the
// exact query string. The cache never evicts: a session sees a handful of
// distinct queries, and an identical query must return the identical cached
// result.
type Resolver struct {
	client ForwardGeocoder

	mu    sync.Mutex
	cache map[string]*Result
}

func NewResolver(client ForwardGeocoder) *Resolver {
	return &Resolver{
		client: client,
		cache:  make(map[string]*Result),
	}
}

// LooksLikeAddress is the cheap heuristic that keeps plain-name searches away
// from the geocoder: at least 3 characters and a digit or a comma.
func LooksLikeAddress(query string) bool {
	query = strings.TrimSpace(query)
	if len(query) < 3 {
		return false
	}
	hasDigit := strings.IndexFunc(query, unicode.IsDigit) >= 0
	return hasDigit || strings.Contains(query, ",")
}

// LooksLikeAddress on the resolver mirrors the package function so the
// resolver satisfies the filter store's collaborator interface.
func (r *Resolver) LooksLikeAddress(query string) bool {
	return LooksLikeAddress(query)
}

// Resolve answers from the cache first, then the upstream service. Failures
// and no-match results both come back as nil — never an error; the caller
// treats nil as "could not resolve".
func (r *Resolver) Resolve(ctx context.Context, query string) *Result {
	r.mu.Lock()
	if cached, ok := r.cache[query]; ok {
		r.mu.Unlock()
		metrics.GeocodeCacheHitsTotal.Inc()
		return cached
	}
	r.mu.Unlock()

	metrics.GeocodeCacheMissesTotal.Inc()

	if r.client == nil {
		return nil
	}

	result, err := r.client.Forward(ctx, query)
	if err != nil {
		metrics.GeocodeFailuresTotal.Inc()
		log.Printf("geocode: could not resolve %q: %v", query, err)
		return nil
	}
	if result == nil {
		metrics.GeocodeFailuresTotal.Inc()
		return nil
	}

	r.mu.Lock()
	r.cache[query] = result
	r.mu.Unlock()
	return result
}
