package dataset

import (
	"encoding/csv"
	"fmt"
	"os"

	"card-price-index/internal/aggregate"
	"card-price-index/internal/model"
)

// WriteTimeSeries writes an aggregated series CSV. The name column is
// included only when the series carries one.
func WriteTimeSeries(path string, points []aggregate.TimeSeriesPoint) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create time series: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	named := len(points) > 0 && points[0].Name != ""
	header := []string{"period_end_date", "aggregate_price", "aggregate_value"}
	if named {
		header = append([]string{"name"}, header...)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, p := range points {
		row := []string{
			p.PeriodEnd.Format(model.DateLayout),
			p.AggregatePrice.String(),
			p.AggregateValue.String(),
		}
		if named {
			row = append([]string{p.Name}, row...)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Error()
}
