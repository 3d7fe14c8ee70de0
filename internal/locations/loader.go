package locations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Loader pulls the raw location sequence from the static data source: a JSON
// file on disk or an HTTP endpoint. It runs once per session unless a reload
// is explicitly requested.
type Loader struct {
	Source     string
	Validator  *Validator
	httpClient *http.Client
}

func NewLoader(source string, v *Validator) *Loader {
	return &Loader{
		Source:    source,
		Validator: v,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Load fetches, decodes, and validates the location data. The file may be a
// bare JSON array or an object with a "locations" key.
func (l *Loader) Load(ctx context.Context) ([]LocationRecord, error) {
	data, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("locations: decoding %s: %w", l.Source, err)
	}

	if obj, ok := doc.(map[string]any); ok {
		doc = obj["locations"]
	}

	return l.Validator.Validate(doc)
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	if strings.HasPrefix(l.Source, "http://") || strings.HasPrefix(l.Source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.Source, nil)
		if err != nil {
			return nil, fmt.Errorf("locations: building request: %w", err)
		}
		resp, err := l.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("locations: fetching %s: %w", l.Source, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("locations: fetching %s: HTTP %d", l.Source, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}

	data, err := os.ReadFile(l.Source)
	if err != nil {
		return nil, fmt.Errorf("locations: reading %s: %w", l.Source, err)
	}
	return data, nil
}
