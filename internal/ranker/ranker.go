// Package ranker orders measured IP addresses by throughput and latency.
package ranker

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
)

// Header names of the required CSV columns.
const (
	ColumnIP      = "IP"
	ColumnLatency = "Latency"
	ColumnSpeed   = "Speed"
)

// MeasuredIP is a single measurement row.
type MeasuredIP struct {
	Address string
	Latency float64 // ms
	Speed   float64
}

// Rank reads the CSV file at path and returns its addresses ordered by speed
// (descending) then latency (ascending). Read failures are logged and yield
// an empty result.
func Rank(log logr.Logger, path string) []string {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		log.Error(err, "failed to read CSV", "path", path)
		return []string{}
	}
	defer f.Close()

	ips, err := RankReader(f)
	if err != nil {
		log.Error(err, "failed to read CSV", "path", path)
		return []string{}
	}
	log.V(1).Info("ranked IPs", "path", path, "count", len(ips))
	return ips
}

// RankReader parses CSV measurements from r and returns the ranked addresses.
// Header names must match exactly. Rows with an empty IP, a non-numeric or
// NaN Latency or Speed, or a missing column are skipped.
func RankReader(r io.Reader) ([]string, error) {
	measured, err := parse(r)
	if err != nil {
		return nil, err
	}
	Sort(measured)

	ips := make([]string, 0, len(measured))
	for _, m := range measured {
		ips = append(ips, m.Address)
	}
	return ips, nil
}

// Sort orders measurements by speed descending, then latency ascending.
// Ties keep their input order.
func Sort(measured []MeasuredIP) {
	slices.SortStableFunc(measured, func(a, b MeasuredIP) int {
		switch {
		case a.Speed > b.Speed:
			return -1
		case a.Speed < b.Speed:
			return 1
		case a.Latency < b.Latency:
			return -1
		case a.Latency > b.Latency:
			return 1
		}
		return 0
	})
}

func parse(r io.Reader) ([]MeasuredIP, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		columns[name] = i
	}

	var measured []MeasuredIP
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		m, ok := parseRow(row, columns)
		if !ok {
			continue
		}
		measured = append(measured, m)
	}
	return measured, nil
}

func parseRow(row []string, columns map[string]int) (MeasuredIP, bool) {
	field := func(name string) (string, bool) {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return "", false
		}
		return row[idx], true
	}

	ip, ok := field(ColumnIP)
	if !ok || ip == "" {
		return MeasuredIP{}, false
	}
	rawLatency, ok := field(ColumnLatency)
	if !ok {
		return MeasuredIP{}, false
	}
	rawSpeed, ok := field(ColumnSpeed)
	if !ok {
		return MeasuredIP{}, false
	}
	latency, ok := parseMeasurement(rawLatency)
	if !ok {
		return MeasuredIP{}, false
	}
	speed, ok := parseMeasurement(rawSpeed)
	if !ok {
		return MeasuredIP{}, false
	}
	return MeasuredIP{Address: ip, Latency: latency, Speed: speed}, true
}

// parseMeasurement parses a numeric cell. NaN is rejected since it has no
// place in the ordering.
func parseMeasurement(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
