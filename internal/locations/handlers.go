package locations

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListLocations returns the full validated working set.
func ListLocations(w http.ResponseWriter, r *http.Request) {
	records := WorkingSet()
	if records == nil {
		records = []LocationRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// GetLocation returns a single location by id.
func GetLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "location_id")

	for _, rec := range WorkingSet() {
		if rec.ID == id {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(rec)
			return
		}
	}

	http.Error(w, "Location not found", http.StatusNotFound)
}
