package markdown

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"card-price-index/internal/dataset"
	"card-price-index/internal/model"
)

var dateRangePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})\s+to\s+(\d{1,2})/(\d{1,2})`)

// ParseDateRange parses "M/D to M/D" into calendar dates, resolving both
// against year. When the end month precedes the start month the range
// wraps into the following year.
func ParseDateRange(dateRange string, year int) (time.Time, time.Time, error) {
	match := dateRangePattern.FindStringSubmatch(strings.TrimSpace(dateRange))
	if match == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("unrecognized date range %q", dateRange)
	}

	startMonth, _ := strconv.Atoi(match[1])
	startDay, _ := strconv.Atoi(match[2])
	endMonth, _ := strconv.Atoi(match[3])
	endDay, _ := strconv.Atoi(match[4])

	endYear := year
	if endMonth < startMonth {
		endYear = year + 1
	}

	start := time.Date(year, time.Month(startMonth), startDay, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, time.Month(endMonth), endDay, 0, 0, 0, 0, time.UTC)
	return start, end, nil
}

// ParseCurrency converts a currency string like "$1,451.66" to a decimal.
// Unparseable values come back as zero, matching the tolerant treatment of
// scraped cells upstream of validation.
func ParseCurrency(value string) decimal.Decimal {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(value))
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ParseVolume converts a volume cell to a count. Plain integers pass
// through; currency-formatted cells are truncated to their integer part;
// anything else is zero.
func ParseVolume(value string) int64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	if v, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		if v < 0 {
			return 0
		}
		return v
	}
	d := ParseCurrency(trimmed)
	return d.IntPart()
}

// ConvertRows turns raw table rows into observation records for a source,
// stamping each with collectedAt. Rows whose date range cannot be parsed
// are skipped; price and volume cells degrade to zero rather than failing
// the page.
func ConvertRows(source dataset.Source, rows []Row, collectedAt time.Time) []model.Record {
	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		start, end, err := ParseDateRange(row.DateRange, collectedAt.Year())
		if err != nil {
			continue
		}
		records = append(records, model.Record{
			GroupSet:    source.GroupSet,
			ProductType: source.ProductType,
			PeriodLabel: source.PeriodLabel,
			ProductName: source.ProductName,
			PeriodStart: start,
			PeriodEnd:   end,
			Price:       ParseCurrency(row.Price),
			Volume:      ParseVolume(row.Volume),
			CollectedAt: collectedAt,
		})
	}
	return records
}
