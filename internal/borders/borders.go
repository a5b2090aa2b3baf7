// Package borders loads country-border source geometry. The engine consumes
// plain lon/lat rings; the GeoJSON decode and transport live here so the
// rendering core never touches the wire format.
package borders

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	geojson "github.com/paulmach/go.geojson"
)

// Ring is an ordered sequence of [lon, lat] pairs in degrees. The last point
// is implicitly connected back to the first.
type Ring [][2]float64

// ParseRings decodes a GeoJSON FeatureCollection and extracts every polygon
// ring (outer rings and holes alike; each is drawn independently).
func ParseRings(data []byte) ([]Ring, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decoding border geometry: %w", err)
	}

	var rings []Ring
	appendPoly := func(poly [][][]float64) {
		for _, raw := range poly {
			if len(raw) < 3 {
				continue
			}
			ring := make(Ring, 0, len(raw))
			for _, pt := range raw {
				if len(pt) < 2 {
					continue
				}
				ring = append(ring, [2]float64{pt[0], pt[1]})
			}
			if len(ring) >= 3 {
				rings = append(rings, ring)
			}
		}
	}

	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		if f.Geometry.IsPolygon() {
			appendPoly(f.Geometry.Polygon)
		} else if f.Geometry.IsMultiPolygon() {
			for _, poly := range f.Geometry.MultiPolygon {
				appendPoly(poly)
			}
		}
	}

	if len(rings) == 0 {
		return nil, fmt.Errorf("border geometry contains no polygon rings")
	}
	return rings, nil
}

// LoadFile reads and parses border geometry from a local GeoJSON file.
func LoadFile(path string) ([]Ring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading border file: %w", err)
	}
	return ParseRings(data)
}

// Fetch downloads and parses border geometry from a URL.
func Fetch(ctx context.Context, url string) ([]Ring, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching border geometry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return ParseRings(data)
}
