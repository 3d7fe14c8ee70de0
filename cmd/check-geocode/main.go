package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/ZakWinnick/RivianSpotter-sub000/internal/config"
	"github.com/ZakWinnick/RivianSpotter-sub000/internal/geocode"
	"github.com/joho/godotenv"
)

// One-shot probe for the geocoding setup: prints what a search query would
// resolve to, or whether it even looks address-like.
func main() {
	godotenv.Load(".env.local")
	flag.Parse()

	query := flag.Arg(0)
	if query == "" {
		log.Fatal("usage: check-geocode <query>")
	}

	if !geocode.LooksLikeAddress(query) {
		fmt.Printf("%q does not look like an address; the app would not geocode it\n", query)
		return
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	client := geocode.NewClient(geocode.ClientConfig{
		Token:             cfg.Mapbox.Token,
		Endpoint:          cfg.Mapbox.Endpoint,
		Countries:         cfg.Mapbox.Countries,
		Types:             cfg.Mapbox.Types,
		RequestsPerSecond: cfg.Mapbox.RequestsPerSecond,
	})
	if client == nil {
		log.Fatal("MAPBOX_TOKEN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := client.Forward(ctx, query)
	if err != nil {
		log.Fatalf("Geocode error: %v", err)
	}
	if result == nil {
		fmt.Println("No match")
		return
	}

	fmt.Printf("%s\n  lat=%.5f lng=%.5f\n", result.PlaceName, result.Lat, result.Lng)
}
