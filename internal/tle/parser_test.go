package tle

import (
	"log/slog"
	"math"
	"os"
	"strings"
	"testing"
	"time"
)

const (
	starlinkLine1 = "1 44713U 19074A   24100.50000000  .00001000  00000-0  10000-4 0  9995"
	starlinkLine2 = "2 44713  53.0000 200.0000 0001500  90.0000 270.0000 15.06000000    05"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestParseSingleEntry(t *testing.T) {
	input := "STARLINK-1007\n" + starlinkLine1 + "\n" + starlinkLine2 + "\n"
	entries, err := Parse(strings.NewReader(input), testLogger())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	e := entries[0]
	if e.NORADID != 44713 {
		t.Errorf("NORADID = %d, want 44713", e.NORADID)
	}
	if e.Name != "STARLINK-1007" {
		t.Errorf("Name = %q", e.Name)
	}
	if math.Abs(e.InclinationDeg-53.0) > 1e-9 {
		t.Errorf("InclinationDeg = %v, want 53.0", e.InclinationDeg)
	}
	if math.Abs(e.Eccentricity-0.00015) > 1e-12 {
		t.Errorf("Eccentricity = %v, want 0.00015", e.Eccentricity)
	}
	if e.Decayed {
		t.Error("Decayed = true for an active satellite")
	}

	// Epoch 24100.5 is 2024 day 100 at noon.
	wantEpoch := time.Date(2024, 4, 9, 12, 0, 0, 0, time.UTC)
	if !e.Epoch.Equal(wantEpoch) {
		t.Errorf("Epoch = %v, want %v", e.Epoch, wantEpoch)
	}
}

func TestParseDecayedMarker(t *testing.T) {
	input := "STARLINK-1234 [-]\n" + starlinkLine1 + "\n" + starlinkLine2 + "\n"
	entries, err := Parse(strings.NewReader(input), testLogger())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if !entries[0].Decayed {
		t.Error("Decayed = false for a [-] marked entry")
	}
	if entries[0].Name != "STARLINK-1234" {
		t.Errorf("Name = %q, want marker stripped", entries[0].Name)
	}
}

func TestParseSkipsMalformed(t *testing.T) {
	input := strings.Join([]string{
		"GARBAGE",
		"not a TLE line",
		"also not",
		"STARLINK-1007",
		starlinkLine1,
		starlinkLine2,
	}, "\n")
	entries, err := Parse(strings.NewReader(input), testLogger())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "STARLINK-1007" {
		t.Errorf("resync failed: got %d entries", len(entries))
	}
}

func TestParseMultipleEntries(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 3; i++ {
		b.WriteString("SAT\n" + starlinkLine1 + "\n" + starlinkLine2 + "\n")
	}
	entries, err := Parse(strings.NewReader(b.String()), testLogger())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("got %d entries, want 3", len(entries))
	}
}

func TestParseEmpty(t *testing.T) {
	entries, err := Parse(strings.NewReader(""), testLogger())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries from empty input", len(entries))
	}
}

func TestParseEpochCentury(t *testing.T) {
	old, err := parseEpoch("98001.00000000")
	if err != nil {
		t.Fatal(err)
	}
	if old.Year() != 1998 {
		t.Errorf("epoch year %d, want 1998", old.Year())
	}
	recent, err := parseEpoch("05001.00000000")
	if err != nil {
		t.Fatal(err)
	}
	if recent.Year() != 2005 {
		t.Errorf("epoch year %d, want 2005", recent.Year())
	}
}
