package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Source is one scrape target: the identity of a product plus the page
// its price history is published on.
type Source struct {
	GroupSet    string
	ProductType string
	PeriodLabel string
	ProductName string
	URL         string
}

var sourcesHeader = []string{"set", "type", "period", "name", "url"}

// ReadSources loads the scrape input CSV.
func ReadSources(path string) ([]Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read sources %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sources %s: file is empty", path)
	}

	header := rows[0]
	if len(header) != len(sourcesHeader) {
		return nil, fmt.Errorf("sources %s: header has %d columns, want %d", path, len(header), len(sourcesHeader))
	}
	for i, want := range sourcesHeader {
		if strings.TrimSpace(header[i]) != want {
			return nil, fmt.Errorf("sources %s: header column %d is %q, want %q", path, i+1, header[i], want)
		}
	}

	sources := make([]Source, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(sourcesHeader) {
			return nil, fmt.Errorf("sources %s row %d: has %d columns, want %d", path, i+2, len(row), len(sourcesHeader))
		}
		sources = append(sources, Source{
			GroupSet:    strings.TrimSpace(row[0]),
			ProductType: strings.TrimSpace(row[1]),
			PeriodLabel: strings.TrimSpace(row[2]),
			ProductName: strings.TrimSpace(row[3]),
			URL:         strings.TrimSpace(row[4]),
		})
	}
	return sources, nil
}
