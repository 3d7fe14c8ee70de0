package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZakWinnick/RivianSpotter-sub000/internal/geocode"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*geocode.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := geocode.NewClient(geocode.ClientConfig{
		Token:    "test-token",
		Endpoint: srv.URL,
	})
	if client == nil {
		t.Fatal("expected a client with a token set")
	}
	return client, srv
}

// TestForwardRequestShape verifies the credential and the result-type and
// country restrictions go out with every request.
func TestForwardRequestShape(t *testing.T) {
	var gotQuery map[string][]string
	var gotPath string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotPath = r.URL.Path
		w.Write([]byte(`{"features": []}`))
	})

	if _, err := client.Forward(context.Background(), "Laguna Beach, CA"); err != nil {
		t.Fatal(err)
	}

	if got := gotQuery["access_token"]; len(got) != 1 || got[0] != "test-token" {
		t.Errorf("access_token not sent: %v", gotQuery)
	}
	if got := gotQuery["limit"]; len(got) != 1 || got[0] != "1" {
		t.Errorf("expected limit=1, got %v", gotQuery["limit"])
	}
	if got := gotQuery["country"]; len(got) != 1 || got[0] != "us,ca" {
		t.Errorf("expected country=us,ca, got %v", gotQuery["country"])
	}
	if got := gotQuery["types"]; len(got) != 1 || got[0] != "postcode,place,address,locality" {
		t.Errorf("expected result-type restriction, got %v", gotQuery["types"])
	}
	if gotPath != "/Laguna Beach, CA.json" {
		t.Errorf("unexpected path: %q", gotPath)
	}
}

// TestForwardBestMatch verifies the single best match is decoded with
// [lng, lat] center ordering.
func TestForwardBestMatch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features": [
			{"place_name": "Beverly Hills, California 90210", "center": [-118.40, 34.10]}
		]}`))
	})

	got, err := client.Forward(context.Background(), "90210")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.Lat != 34.10 || got.Lng != -118.40 {
		t.Errorf("center decoded wrong: lat=%v lng=%v", got.Lat, got.Lng)
	}
	if got.PlaceName != "Beverly Hills, California 90210" {
		t.Errorf("unexpected place name: %q", got.PlaceName)
	}
}

// TestForwardNoMatch verifies an empty feature list is (nil, nil).
func TestForwardNoMatch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features": []}`))
	})

	got, err := client.Forward(context.Background(), "zzzz")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil for no match, got %+v", got)
	}
}

// TestForwardHTTPError verifies non-2xx responses surface as errors for the
// resolver to absorb.
func TestForwardHTTPError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	if _, err := client.Forward(context.Background(), "90210"); err == nil {
		t.Error("expected an error for HTTP 401")
	}
}

// TestNewClientWithoutToken verifies graceful degradation when no credential
// is configured.
func TestNewClientWithoutToken(t *testing.T) {
	if client := geocode.NewClient(geocode.ClientConfig{}); client != nil {
		t.Error("expected nil client without a token")
	}
}
