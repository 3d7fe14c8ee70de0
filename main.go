package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ZakWinnick/RivianSpotter-sub000/internal/config"
	"github.com/ZakWinnick/RivianSpotter-sub000/internal/db"
	"github.com/ZakWinnick/RivianSpotter-sub000/internal/filter"
	"github.com/ZakWinnick/RivianSpotter-sub000/internal/geocode"
	"github.com/ZakWinnick/RivianSpotter-sub000/internal/hours"
	"github.com/ZakWinnick/RivianSpotter-sub000/internal/locations"
	"github.com/ZakWinnick/RivianSpotter-sub000/internal/metrics"
	"github.com/ZakWinnick/RivianSpotter-sub000/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

// resolverAdapter bridges the geocode package's Result to the filter store's
// collaborator interface.
type resolverAdapter struct {
	resolver *geocode.Resolver
}

func (a resolverAdapter) LooksLikeAddress(query string) bool {
	return a.resolver.LooksLikeAddress(query)
}

func (a resolverAdapter) Resolve(ctx context.Context, query string) *filter.ResolvedPlace {
	res := a.resolver.Resolve(ctx, query)
	if res == nil {
		return nil
	}
	return &filter.ResolvedPlace{Lat: res.Lat, Lng: res.Lng, PlaceName: res.PlaceName}
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	db.Connect()
	locations.Init(cfg)

	evaluator := hours.NewEvaluator(cfg.ComingSoonWindowDays)
	engine := &filter.Engine{Hours: evaluator, Opening: evaluator}

	var upstream geocode.ForwardGeocoder
	if client := geocode.NewClient(geocode.ClientConfig{
		Token:             cfg.Mapbox.Token,
		Endpoint:          cfg.Mapbox.Endpoint,
		Countries:         cfg.Mapbox.Countries,
		Types:             cfg.Mapbox.Types,
		RequestsPerSecond: cfg.Mapbox.RequestsPerSecond,
	}); client != nil {
		upstream = client
	} else {
		log.Println("MAPBOX_TOKEN not set; address search will not geocode")
	}
	resolver := geocode.NewResolver(upstream)

	store := filter.NewStore(
		engine,
		locations.WorkingSet(),
		resolverAdapter{resolver},
		nil, // geolocation arrives from clients via lat/lng query params
		time.Duration(cfg.SearchDebounceMs)*time.Millisecond,
	)
	locations.OnReload = func(records []locations.LocationRecord) {
		store.SetRecords(records)
	}

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Get("/", RootHandler)
	r.Mount("/locations", locations.SetupRoutes(cfg.AdminTokenHash, filter.FilterHandler(store)))
	r.Handle("/metrics", metrics.Handler())

	log.Printf("Server listening on port :%s...", cfg.Port)

	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
