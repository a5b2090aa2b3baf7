package tle

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// decayedMarker is the CelesTrak suffix for objects no longer on orbit.
const decayedMarker = "[-]"

// Parse reads 3-line NORAD TLE format from r and returns parsed entries.
// Malformed entries are skipped with a warning log.
func Parse(r io.Reader, logger *slog.Logger) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading TLE data: %w", err)
	}

	var entries []Entry
	for i := 0; i+2 < len(lines); {
		name := lines[i]
		line1 := lines[i+1]
		line2 := lines[i+2]

		// Validate line prefixes.
		if !strings.HasPrefix(line1, "1 ") || !strings.HasPrefix(line2, "2 ") {
			// Try to find the next valid triplet.
			logger.Warn("skipping malformed TLE entry", "line_index", i, "name", name)
			i++
			continue
		}

		// Extract NORAD ID from line1 cols 3-7 (0-indexed: 2..7).
		noradStr := strings.TrimSpace(line1[2:7])
		noradID, err := strconv.Atoi(noradStr)
		if err != nil {
			logger.Warn("skipping TLE entry with invalid NORAD ID", "norad_str", noradStr, "name", name)
			i += 3
			continue
		}

		// Extract epoch from line1 cols 19-32 (0-indexed: 18..32).
		if len(line1) < 32 {
			logger.Warn("skipping TLE entry with short line1", "name", name)
			i += 3
			continue
		}
		epochStr := strings.TrimSpace(line1[18:32])
		epoch, err := parseEpoch(epochStr)
		if err != nil {
			logger.Warn("skipping TLE entry with invalid epoch", "epoch_str", epochStr, "name", name, "error", err)
			i += 3
			continue
		}

		// Inclination is line2 cols 9-16, eccentricity cols 27-33 with an
		// implied leading "0.".
		if len(line2) < 33 {
			logger.Warn("skipping TLE entry with short line2", "name", name)
			i += 3
			continue
		}
		incl, err := strconv.ParseFloat(strings.TrimSpace(line2[8:16]), 64)
		if err != nil {
			logger.Warn("skipping TLE entry with invalid inclination", "name", name, "error", err)
			i += 3
			continue
		}
		ecc, err := strconv.ParseFloat("0."+strings.TrimSpace(line2[26:33]), 64)
		if err != nil {
			logger.Warn("skipping TLE entry with invalid eccentricity", "name", name, "error", err)
			i += 3
			continue
		}

		cleanName := strings.TrimSpace(name)
		decayed := strings.HasSuffix(cleanName, decayedMarker)
		if decayed {
			cleanName = strings.TrimSpace(strings.TrimSuffix(cleanName, decayedMarker))
		}

		entries = append(entries, Entry{
			NORADID:        noradID,
			Name:           cleanName,
			Epoch:          epoch,
			Line1:          line1,
			Line2:          line2,
			InclinationDeg: incl,
			Eccentricity:   ecc,
			Decayed:        decayed,
		})
		i += 3
	}

	return entries, nil
}

// parseEpoch converts a TLE epoch string in YYDDD.DDDDDDDD format to time.Time.
// Year 00-56 → 2000s, 57-99 → 1900s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	yearStr := s[:2]
	dayStr := s[2:]

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", yearStr, err)
	}

	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(dayStr, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", dayStr, err)
	}

	// Start of the year, then add fractional days. dayOfYear is 1-based.
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	t = t.Add(time.Duration((dayOfYear - 1) * float64(24*time.Hour)))

	return t, nil
}
