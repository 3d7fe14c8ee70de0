package locations

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ZakWinnick/RivianSpotter-sub000/internal/metrics"
)

// ErrInvalidFormat means the top-level input was not a list of entries at all.
// Per-record problems never surface as errors; bad entries are dropped.
var ErrInvalidFormat = errors.New("locations: data is not a list")

var openingDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validator is the single chokepoint between untyped location data and the
// typed working set. Nothing downstream re-inspects raw input.
type Validator struct {
	// ApprovedURLHost is the only host (or parent domain) a rivianUrl may
	// point at. Anything else is dropped from the record, not rejected.
	ApprovedURLHost string

	// now is swappable for deterministic synthesized ids in tests.
	now func() time.Time
}

func NewValidator(approvedURLHost string) *Validator {
	return &Validator{
		ApprovedURLHost: approvedURLHost,
		now:             time.Now,
	}
}

// Validate sanitizes and validates a raw sequence of untyped location entries.
// Entries that are not objects, lack a name, or carry missing/out-of-range
// coordinates are dropped and logged. The input is never mutated.
func (v *Validator) Validate(raw any) ([]LocationRecord, error) {
	entries, err := toEntrySlice(raw)
	if err != nil {
		return nil, err
	}

	loadedAt := v.now().Unix()
	records := make([]LocationRecord, 0, len(entries))

	for i, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			dropEntry(i, "not an object")
			continue
		}

		name := sanitizeString(stringField(obj, "name"))
		if name == "" {
			dropEntry(i, "missing name")
			continue
		}

		lat, latOK := numberField(obj, "lat")
		lng, lngOK := numberField(obj, "lng")
		if !latOK || !lngOK {
			dropEntry(i, "missing coordinates")
			continue
		}

		rec := LocationRecord{
			Name:    name,
			Type:    sanitizeString(stringField(obj, "type")),
			State:   sanitizeString(stringField(obj, "state")),
			Lat:     lat,
			Lng:     lng,
			Address: sanitizeString(stringField(obj, "address")),
			City:    sanitizeString(stringField(obj, "city")),
			Hours:   sanitizeString(stringField(obj, "hours")),
			Phone:   sanitizeString(stringField(obj, "phone")),
			IsOpen:  true,
		}

		if !rec.HasValidCoordinates() {
			dropEntry(i, fmt.Sprintf("coordinates out of range (%v, %v)", lat, lng))
			continue
		}

		if open, ok := obj["isOpen"].(bool); ok {
			rec.IsOpen = open
		}

		rec.ID = idField(obj)
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("loc_%d_%d", i, loadedAt)
		}

		if date := stringField(obj, "openingDate"); date != "" {
			if openingDatePattern.MatchString(date) {
				rec.OpeningDate = date
			} else {
				log.Printf("locations: entry %d: ignoring malformed openingDate %q", i, date)
			}
		}

		rec.RivianURL = v.approvedURL(stringField(obj, "rivianUrl"))
		rec.Services = sanitizeServices(obj["services"])

		records = append(records, rec)
	}

	return records, nil
}

func toEntrySlice(raw any) ([]any, error) {
	switch data := raw.(type) {
	case []any:
		return data, nil
	case []map[string]any:
		entries := make([]any, len(data))
		for i, m := range data {
			entries[i] = m
		}
		return entries, nil
	default:
		return nil, ErrInvalidFormat
	}
}

func dropEntry(i int, reason string) {
	metrics.RecordsDroppedTotal.Inc()
	log.Printf("locations: dropping entry %d: %s", i, reason)
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func numberField(obj map[string]any, key string) (float64, bool) {
	switch n := obj[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// idField accepts string or integer ids; a caller-supplied id is kept as-is.
func idField(obj map[string]any) string {
	switch id := obj["id"].(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return fmt.Sprintf("%.0f", id)
	case int:
		return fmt.Sprintf("%d", id)
	default:
		return ""
	}
}

// approvedURL keeps a rivianUrl only when it parses and its host belongs to
// the approved domain. Everything else becomes absent.
func (v *Validator) approvedURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	approved := strings.ToLower(v.ApprovedURLHost)
	if host == approved || strings.HasSuffix(host, "."+approved) {
		return raw
	}
	return ""
}

func sanitizeServices(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	services := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = sanitizeString(s); s != "" {
			services = append(services, s)
		}
	}
	return services
}
