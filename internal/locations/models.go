package locations

import (
	"time"

	"github.com/lib/pq"
)

// Location type values as they appear in the data set.
const (
	TypeSpace         = "Space"
	TypeDemoCenter    = "Demo Center"
	TypeOutpost       = "Outpost"
	TypeServiceCenter = "Service Center"
)

// LocationRecord is one physical location. Records are immutable once they
// leave the validator; the filter engine only ever reads them.
type LocationRecord struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Type        string         `json:"type"`
	State       string         `json:"state"` // 2-letter region code
	Lat         float64        `json:"lat"`
	Lng         float64        `json:"lng"`
	Address     string         `json:"address"`
	City        string         `json:"city"`
	Hours       string         `json:"hours"`
	Phone       string         `json:"phone,omitempty"`
	Services    pq.StringArray `gorm:"type:text[]" json:"services"`
	IsOpen      bool           `gorm:"default:true" json:"isOpen"`
	OpeningDate string         `json:"openingDate,omitempty"` // YYYY-MM-DD or empty
	RivianURL   string         `json:"rivianUrl,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (LocationRecord) TableName() string {
	return "spotter.locations"
}

// HasValidCoordinates reports whether lat/lng are inside the geographic range.
func (l LocationRecord) HasValidCoordinates() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// asRaw converts a record back to the untyped shape the validator accepts.
// Used when persisted rows re-enter the working set: everything goes through
// the validator, no matter where it came from.
func (l LocationRecord) asRaw() map[string]any {
	raw := map[string]any{
		"id":      l.ID,
		"name":    l.Name,
		"type":    l.Type,
		"state":   l.State,
		"lat":     l.Lat,
		"lng":     l.Lng,
		"address": l.Address,
		"city":    l.City,
		"hours":   l.Hours,
		"isOpen":  l.IsOpen,
	}
	if l.Phone != "" {
		raw["phone"] = l.Phone
	}
	if l.OpeningDate != "" {
		raw["openingDate"] = l.OpeningDate
	}
	if l.RivianURL != "" {
		raw["rivianUrl"] = l.RivianURL
	}
	services := make([]any, len(l.Services))
	for i, s := range l.Services {
		services[i] = s
	}
	raw["services"] = services
	return raw
}
