package locations

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ZakWinnick/RivianSpotter-sub000/internal/db"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admin handlers accept untyped JSON and push it through the validator before
// anything touches the database or the working set.

// CreateLocation creates a single location (admin only).
func CreateLocation(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, ok := raw["id"]; !ok {
		raw["id"] = uuid.NewString()
	}

	records, err := defaultValidator.Validate([]any{raw})
	if err != nil || len(records) == 0 {
		http.Error(w, "Location failed validation: name and in-range lat/lng are required", http.StatusBadRequest)
		return
	}
	rec := records[0]

	var existing LocationRecord
	if err := db.DB.First(&existing, "id = ?", rec.ID).Error; err == nil {
		http.Error(w, "Location already exists", http.StatusConflict)
		return
	}

	if err := db.DB.Create(&rec).Error; err != nil {
		http.Error(w, "Failed to create location: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := ReloadFromDB(); err != nil {
		http.Error(w, "Failed to reload locations: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rec)
}

// UpdateLocation merges partial updates onto an existing location (admin only).
func UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "location_id")

	var existing LocationRecord
	if err := db.DB.First(&existing, "id = ?", id).Error; err != nil {
		http.Error(w, "Location not found", http.StatusNotFound)
		return
	}

	var updates map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	merged := existing.asRaw()
	for k, v := range updates {
		if k == "id" {
			continue // the id is the row identity, not updatable
		}
		merged[k] = v
	}

	records, err := defaultValidator.Validate([]any{merged})
	if err != nil || len(records) == 0 {
		http.Error(w, "Updated location failed validation", http.StatusBadRequest)
		return
	}
	rec := records[0]
	rec.CreatedAt = existing.CreatedAt

	if err := db.DB.Save(&rec).Error; err != nil {
		http.Error(w, "Failed to update location: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := ReloadFromDB(); err != nil {
		http.Error(w, "Failed to reload locations: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// DeleteLocation removes a location (admin only).
func DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "location_id")

	result := db.DB.Delete(&LocationRecord{}, "id = ?", id)
	if result.Error != nil {
		http.Error(w, "Failed to delete location: "+result.Error.Error(), http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Location not found", http.StatusNotFound)
		return
	}

	if err := ReloadFromDB(); err != nil {
		http.Error(w, "Failed to reload locations: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkReplaceLocations swaps the entire data set in one transaction (admin
// only). The body may be a bare array or {"locations": [...]}.
func BulkReplaceLocations(w http.ResponseWriter, r *http.Request) {
	var doc any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if obj, ok := doc.(map[string]any); ok {
		doc = obj["locations"]
	}

	records, err := defaultValidator.Validate(doc)
	if err != nil {
		if errors.Is(err, ErrInvalidFormat) {
			http.Error(w, "Body must be a list of locations", http.StatusBadRequest)
			return
		}
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&LocationRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		http.Error(w, "Failed to replace locations: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := ReloadFromDB(); err != nil {
		http.Error(w, "Failed to reload locations: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"count": len(records)})
}
