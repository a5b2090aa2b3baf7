package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/joakar/starlink-tracker/internal/catalog"
	"github.com/joakar/starlink-tracker/internal/propagation"
	"github.com/joakar/starlink-tracker/internal/tle"
)

// Offline ingestion report: feed it a TLE file and it prints what the
// catalog gate keeps, bucket by bucket.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: diag <tle-file>")
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Println("ERROR reading TLE file:", err)
		os.Exit(1)
	}

	entries, err := tle.Parse(bytes.NewReader(data), logger)
	if err != nil {
		fmt.Println("ERROR parsing TLE:", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d TLE entries\n", len(entries))

	src := propagation.SGP4Source{}
	records := make([]catalog.Record, 0, len(entries))
	badElements := 0
	for _, e := range entries {
		h, err := src.NewElements(e.Name, e.Line1, e.Line2)
		if err != nil {
			badElements++
			h = nil
		}
		records = append(records, catalog.Record{
			Handle:         h,
			Name:           e.Name,
			InclinationDeg: e.InclinationDeg,
			Eccentricity:   e.Eccentricity,
			Decayed:        e.Decayed,
			DecayDate:      e.DecayDate,
		})
	}
	fmt.Printf("Unparseable element sets: %d\n", badElements)

	start := time.Now()
	cat := catalog.Ingest(records, func(handles []propagation.Handle) []bool {
		return propagation.CheckStability(context.Background(), src, handles, time.Now(), runtime.NumCPU(), logger)
	})
	fmt.Printf("Ingestion took %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("Kept %d of %d records\n\n", cat.ValidObjects(), cat.TotalRecords())

	for _, g := range cat.Groups() {
		fmt.Printf("  %-9s %5d objects  color #%02x%02x%02x\n", g.Label, g.Count, g.Color.R, g.Color.G, g.Color.B)
	}
}
