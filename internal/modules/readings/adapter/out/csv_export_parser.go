package out

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"cgmlens/internal/modules/readings/domain"
	readingsout "cgmlens/internal/modules/readings/port/out"
)

// CSVExportParser reads device CSV exports. Column names are matched
// case-insensitively; timestamp and a glucose column are required, session
// and device columns are optional. Non-numeric glucose cells (the "Low" /
// "High" clip markers some exports emit) become missing samples.
type CSVExportParser struct{}

func NewCSVExportParser() readingsout.ExportParser {
	return &CSVExportParser{}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func (p *CSVExportParser) Parse(_ context.Context, path string) ([]domain.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read export %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("export %s has no data rows", path)
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", path, err)
	}

	samples := make([]domain.Sample, 0, len(rows)-1)
	for lineNo, row := range rows[1:] {
		at, err := parseTimestamp(row[columns.timestamp])
		if err != nil {
			return nil, fmt.Errorf("export %s row %d: %w", path, lineNo+2, err)
		}
		sample := domain.Sample{At: at, MgdL: parseGlucose(row[columns.glucose])}
		if columns.session >= 0 && columns.session < len(row) {
			sample.SessionID = strings.TrimSpace(row[columns.session])
		}
		if columns.device >= 0 && columns.device < len(row) {
			sample.DeviceID = strings.TrimSpace(row[columns.device])
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

type columnMap struct {
	timestamp int
	glucose   int
	session   int
	device    int
}

func mapColumns(header []string) (columnMap, error) {
	columns := columnMap{timestamp: -1, glucose: -1, session: -1, device: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "timestamp", "time", "datetime":
			columns.timestamp = i
		case "mgdl", "mg/dl", "glucose", "glucose_mgdl", "value":
			columns.glucose = i
		case "session_id", "session":
			columns.session = i
		case "device_id", "device", "source_device_id":
			columns.device = i
		}
	}
	if columns.timestamp < 0 {
		return columnMap{}, fmt.Errorf("no timestamp column in header %v", header)
	}
	if columns.glucose < 0 {
		return columnMap{}, fmt.Errorf("no glucose column in header %v", header)
	}
	return columns, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if at, err := time.Parse(layout, raw); err == nil {
			return at, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

func parseGlucose(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
