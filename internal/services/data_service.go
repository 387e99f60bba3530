package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gmlcli/internal/liquidity"
)

// Date layouts accepted in series files, most specific first
var dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// DataService loads dated series from CSV files under a data directory.
// Files are named <series>.csv with a date,value layout; grouped inputs
// (monetary aggregates, central banks, asset classes) use a
// <prefix>_<key>.csv naming scheme.
type DataService struct {
	dataDir string
	logger  *slog.Logger
}

// NewDataService creates a new data service
func NewDataService(dataDir string, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{dataDir: dataDir, logger: logger}
}

// LoadSeries reads a single series file by name. Observations come back
// date-sorted; unparseable values are kept as NaN so downstream NaN
// handling decides their fate.
func (s *DataService) LoadSeries(ctx context.Context, name string) (liquidity.Series, error) {
	path := filepath.Join(s.dataDir, name+".csv")
	series, err := s.loadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "series loaded",
		slog.String("series", name),
		slog.Int("observations", len(series)))
	return series, nil
}

// LoadGroup reads every <prefix>_<key>.csv file and returns the series
// keyed by the <key> part. Returns ErrNoSeriesMatched when no file fits.
func (s *DataService) LoadGroup(ctx context.Context, prefix string) (map[string]liquidity.Series, error) {
	pattern := filepath.Join(s.dataDir, prefix+"_*.csv")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s series: %w", prefix, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSeriesMatched, pattern)
	}
	sort.Strings(files)

	group := make(map[string]liquidity.Series, len(files))
	for _, path := range files {
		stem := strings.TrimSuffix(filepath.Base(path), ".csv")
		key := strings.TrimPrefix(stem, prefix+"_")

		series, err := s.loadFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		group[key] = series
	}

	s.logger.InfoContext(ctx, "series group loaded",
		slog.String("prefix", prefix),
		slog.Int("series", len(group)))
	return group, nil
}

// ListSeries returns the names of all loadable series files
func (s *DataService) ListSeries(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".csv"))
	}
	sort.Strings(names)
	return names, nil
}

func (s *DataService) loadFile(ctx context.Context, path string) (liquidity.Series, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSeriesNotFound, filepath.Base(path))
		}
		return nil, fmt.Errorf("open series file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}

	var series liquidity.Series
	for i, row := range records {
		if len(row) < 2 {
			continue
		}
		date, ok := parseDate(strings.TrimSpace(row[0]))
		if !ok {
			// Header rows and section labels fall through here
			if i == 0 {
				continue
			}
			s.logger.WarnContext(ctx, "skipping unparseable row",
				slog.String("file", filepath.Base(path)),
				slog.Int("row", i+1),
				slog.String("date", row[0]))
			continue
		}

		series = append(series, liquidity.Observation{
			Date:  date,
			Value: parseValue(strings.TrimSpace(row[1])),
		})
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoObservations, filepath.Base(path))
	}

	series.SortByDate()
	return series, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseValue maps empty and placeholder cells to NaN instead of failing
// the whole file
func parseValue(s string) float64 {
	switch s {
	case "", "NA", "N/A", "nan", "NaN":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
