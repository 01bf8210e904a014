// Package dataset reads and writes observation records as CSV, the
// hand-off format between the scrape pipeline and the analysis layer.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"card-price-index/internal/model"
)

// Header is the fixed column order of a record CSV.
var Header = []string{
	"set", "type", "period", "name",
	"period_start_date", "period_end_date",
	"price", "volume", "timestamp",
}

// ReadRecords loads a record CSV, validating the header before parsing
// rows. Row-level parsing failures abort the read: malformed data reaching
// this layer is a precondition violation, not an operating condition.
func ReadRecords(path string) ([]model.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	if err := validateHeader(rows[0]); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}

	records := make([]model.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("dataset %s row %d: %w", path, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteRecords writes records in the fixed column order, creating parent
// directories as needed.
func WriteRecords(path string, records []model.Record) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.GroupSet,
			r.ProductType,
			r.PeriodLabel,
			r.ProductName,
			r.PeriodStart.Format(model.DateLayout),
			r.PeriodEnd.Format(model.DateLayout),
			r.Price.String(),
			strconv.FormatInt(r.Volume, 10),
			r.CollectedAt.Format(model.TimestampLayout),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Error()
}

// MergeUnique folds incoming records into existing ones, keyed by
// signature plus period end date. On a key collision the record with the
// newer collection timestamp wins, so re-scrapes refresh rather than
// duplicate. The merged result is in canonical order.
func MergeUnique(existing, incoming []model.Record) []model.Record {
	type key struct {
		sig model.Signature
		end time.Time
	}

	byKey := make(map[key]model.Record, len(existing)+len(incoming))
	order := make([]key, 0, len(existing)+len(incoming))
	for _, r := range append(append([]model.Record{}, existing...), incoming...) {
		k := key{sig: r.Signature(), end: r.PeriodEnd}
		if prev, ok := byKey[k]; ok {
			if r.CollectedAt.Before(prev.CollectedAt) {
				continue
			}
		} else {
			order = append(order, k)
		}
		byKey[k] = r
	}

	merged := make([]model.Record, 0, len(order))
	for _, k := range order {
		merged = append(merged, byKey[k])
	}
	model.SortCanonical(merged)
	return merged
}

func validateHeader(header []string) error {
	if len(header) != len(Header) {
		return fmt.Errorf("header has %d columns, want %d", len(header), len(Header))
	}
	for i, want := range Header {
		if strings.TrimSpace(header[i]) != want {
			return fmt.Errorf("header column %d is %q, want %q", i+1, header[i], want)
		}
	}
	return nil
}

func parseRow(row []string) (model.Record, error) {
	if len(row) != len(Header) {
		return model.Record{}, fmt.Errorf("row has %d columns, want %d", len(row), len(Header))
	}

	start, err := time.Parse(model.DateLayout, row[4])
	if err != nil {
		return model.Record{}, fmt.Errorf("parse period_start_date: %w", err)
	}
	end, err := time.Parse(model.DateLayout, row[5])
	if err != nil {
		return model.Record{}, fmt.Errorf("parse period_end_date: %w", err)
	}

	price, err := decimal.NewFromString(row[6])
	if err != nil {
		return model.Record{}, fmt.Errorf("parse price: %w", err)
	}
	if price.IsNegative() {
		return model.Record{}, fmt.Errorf("price %s is negative", price)
	}

	var volume int64
	if v := strings.TrimSpace(row[7]); v != "" {
		volume, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return model.Record{}, fmt.Errorf("parse volume: %w", err)
		}
		if volume < 0 {
			return model.Record{}, fmt.Errorf("volume %d is negative", volume)
		}
	}

	var collected time.Time
	if ts := strings.TrimSpace(row[8]); ts != "" {
		collected, err = time.Parse(model.TimestampLayout, ts)
		if err != nil {
			return model.Record{}, fmt.Errorf("parse timestamp: %w", err)
		}
	}

	return model.Record{
		GroupSet:    row[0],
		ProductType: row[1],
		PeriodLabel: row[2],
		ProductName: row[3],
		PeriodStart: start,
		PeriodEnd:   end,
		Price:       price,
		Volume:      volume,
		CollectedAt: collected,
	}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
