package markdown

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"card-price-index/internal/dataset"
	"card-price-index/internal/model"
)

func TestParseDateRange(t *testing.T) {
	start, end, err := ParseDateRange("4/20 to 4/22", 2025)
	if err != nil {
		t.Fatal(err)
	}
	if start.Format(model.DateLayout) != "2025-04-20" || end.Format(model.DateLayout) != "2025-04-22" {
		t.Fatalf("unexpected dates: %s, %s", start, end)
	}
}

func TestParseDateRangeYearRollover(t *testing.T) {
	start, end, err := ParseDateRange("12/30 to 1/2", 2024)
	if err != nil {
		t.Fatal(err)
	}
	if start.Year() != 2024 || end.Year() != 2025 {
		t.Fatalf("expected rollover into 2025, got %s, %s", start, end)
	}
}

func TestParseDateRangeMalformed(t *testing.T) {
	for _, input := range []string{"", "April 20", "4-20 to 4-22", "to 4/22"} {
		if _, _, err := ParseDateRange(input, 2025); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestParseCurrency(t *testing.T) {
	cases := map[string]string{
		"$1,451.66": "1451.66",
		"$0.00":     "0",
		"12.50":     "12.5",
		"":          "0",
		"n/a":       "0",
		"-$5.00":    "0",
	}
	for input, want := range cases {
		if got := ParseCurrency(input); !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("ParseCurrency(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestParseVolume(t *testing.T) {
	cases := map[string]int64{
		"12":     12,
		"$34.99": 34,
		"":       0,
		"n/a":    0,
		"-3":     0,
	}
	for input, want := range cases {
		if got := ParseVolume(input); got != want {
			t.Fatalf("ParseVolume(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestConvertRowsSkipsBadDateRanges(t *testing.T) {
	source := dataset.Source{
		GroupSet:    "SV01",
		ProductType: "Card",
		PeriodLabel: "3M",
		ProductName: "Charizard ex",
	}
	collected := time.Date(2025, 4, 30, 12, 0, 0, 0, time.UTC)

	rows := []Row{
		{DateRange: "4/20 to 4/22", Price: "$1,451.66", Volume: "12"},
		{DateRange: "garbage", Price: "$1.00", Volume: "1"},
	}
	records := ConvertRows(source, rows, collected)
	if len(records) != 1 {
		t.Fatalf("expected bad row skipped, got %d records", len(records))
	}

	r := records[0]
	if r.GroupSet != "SV01" || r.ProductName != "Charizard ex" {
		t.Fatalf("source identity not carried: %+v", r)
	}
	if !r.Price.Equal(decimal.RequireFromString("1451.66")) || r.Volume != 12 {
		t.Fatalf("cells not converted: %+v", r)
	}
	if !r.CollectedAt.Equal(collected) {
		t.Fatalf("collection timestamp not stamped: %s", r.CollectedAt)
	}
}
