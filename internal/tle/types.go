package tle

import "time"

// Entry represents a single satellite's two-line element set, with the
// orbit fields the ingestion gate needs already extracted from line 2.
type Entry struct {
	NORADID        int
	Name           string
	Epoch          time.Time
	Line1          string
	Line2          string
	InclinationDeg float64
	Eccentricity   float64
	Decayed        bool
	// DecayDate is not derivable from TLE lines; Parse leaves it empty. It
	// carries the decay epoch for records enriched from an external catalog
	// source, and the ingestion gate excludes any record that has one.
	DecayDate string
}

// EpochRange represents the minimum and maximum epoch times in a dataset.
type EpochRange struct {
	Min time.Time
	Max time.Time
}

// Dataset represents a complete set of TLE data from a source.
type Dataset struct {
	Source     string
	FetchedAt  time.Time
	EpochRange EpochRange
	Satellites []Entry
}
