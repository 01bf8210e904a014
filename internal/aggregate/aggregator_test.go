package aggregate

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"card-price-index/internal/filter"
	"card-price-index/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func record(set, typ, name, end, price string, volume int64) model.Record {
	endDate := day(end)
	return model.Record{
		GroupSet:    set,
		ProductType: typ,
		PeriodLabel: "3M",
		ProductName: name,
		PeriodStart: endDate.AddDate(0, 0, -2),
		PeriodEnd:   endDate,
		Price:       decimal.RequireFromString(price),
		Volume:      volume,
		CollectedAt: endDate,
	}
}

func newTestAggregator() *Aggregator {
	return New(zerolog.Nop())
}

func TestApplyFiltersBySetAndType(t *testing.T) {
	records := []model.Record{
		record("SV01", "Card", "Card A", "2025-01-03", "100.00", 5),
		record("SWSH09", "Card", "Card B", "2025-01-03", "200.00", 10),
		record("SV01", "Booster Box", "Box A", "2025-01-03", "300.00", 2),
	}

	filtered := newTestAggregator().ApplyFilters(records, filter.Spec{Sets: "SV*", Types: "Card", Period: "3M"})
	if len(filtered) != 1 {
		t.Fatalf("expected 1 record, got %d", len(filtered))
	}
	if filtered[0].ProductName != "Card A" {
		t.Fatalf("unexpected record kept: %+v", filtered[0])
	}
}

func TestApplyFiltersInvalidPeriodDefaults(t *testing.T) {
	records := []model.Record{
		record("SV01", "Card", "Card A", "2025-01-03", "100.00", 5),
	}

	filtered := newTestAggregator().ApplyFilters(records, filter.Spec{Sets: "*", Types: "*", Period: "6M"})
	if len(filtered) != 1 {
		t.Fatalf("expected default period to keep the 3M record, got %d records", len(filtered))
	}
}

func TestApplyFiltersIdempotent(t *testing.T) {
	records := []model.Record{
		record("SV01", "Card", "Card A", "2025-01-03", "100.00", 5),
		record("SV02", "Card", "Card B", "2025-01-03", "200.00", 10),
		record("SWSH09", "Card", "Card C", "2025-01-03", "300.00", 2),
	}

	spec := filter.Spec{Sets: "SV*", Types: "*", Period: "3M"}
	aggregator := newTestAggregator()
	once := aggregator.ApplyFilters(records, spec)
	twice := aggregator.ApplyFilters(once, spec)
	if len(once) != len(twice) {
		t.Fatalf("filtering is not idempotent: %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("record %d changed on refilter", i)
		}
	}
}

func TestCreateSubsetEmptyExpansion(t *testing.T) {
	records := []model.Record{
		record("SV01", "Card", "Card A", "2025-01-03", "100.00", 5),
	}

	subset := newTestAggregator().CreateSubset(records, filter.Spec{Sets: "XYZ", Types: "*", Period: "3M"}, false)
	if len(subset) != 0 {
		t.Fatalf("expected empty subset for unmatched sets, got %d", len(subset))
	}
}

func TestCreateCompleteSubsetDropsPartialDates(t *testing.T) {
	records := []model.Record{
		record("SV01", "Card", "Card A", "2025-01-03", "100.00", 5),
		record("SV02", "Card", "Card B", "2025-01-03", "200.00", 10),
		record("SV01", "Card", "Card A", "2025-01-05", "105.00", 6),
	}

	complete := newTestAggregator().CreateCompleteSubset(records, filter.Spec{Sets: "*", Types: "*", Period: "3M"})
	if len(complete) != 2 {
		t.Fatalf("expected only the fully-covered date, got %d records", len(complete))
	}
	for _, r := range complete {
		if !r.PeriodEnd.Equal(day("2025-01-03")) {
			t.Fatalf("partial date leaked into complete subset: %s", r.PeriodEnd.Format(model.DateLayout))
		}
	}
}

func TestAggregateTimeSeriesSums(t *testing.T) {
	records := []model.Record{
		record("SV01", "Card", "Card A", "2025-01-03", "100.50", 5),
		record("SV02", "Card", "Card B", "2025-01-03", "200.00", 10),
		record("SV03", "Card", "Card C", "2025-01-03", "150.75", 3),
	}

	points := newTestAggregator().AggregateTimeSeries(records, "test_index")
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}

	p := points[0]
	if p.Name != "test_index" {
		t.Fatalf("expected label attached, got %q", p.Name)
	}
	if !p.AggregatePrice.Equal(decimal.RequireFromString("451.25")) {
		t.Fatalf("expected aggregate price 451.25, got %s", p.AggregatePrice)
	}
	if !p.AggregateValue.Equal(decimal.RequireFromString("3160.75")) {
		t.Fatalf("expected aggregate value 3160.75, got %s", p.AggregateValue)
	}
}

func TestAggregateTimeSeriesSortedAscending(t *testing.T) {
	records := []model.Record{
		record("SV01", "Card", "Card A", "2025-01-05", "105.00", 6),
		record("SV01", "Card", "Card A", "2025-01-03", "100.00", 5),
		record("SV01", "Card", "Card A", "2025-01-07", "110.00", 7),
	}

	points := newTestAggregator().AggregateTimeSeries(records, "")
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if !points[i-1].PeriodEnd.Before(points[i].PeriodEnd) {
			t.Fatal("points not sorted ascending by date")
		}
	}
}

func TestAggregateTimeSeriesEmptyInput(t *testing.T) {
	points := newTestAggregator().AggregateTimeSeries(nil, "empty")
	if points == nil {
		t.Fatal("expected an empty, non-nil series")
	}
	if len(points) != 0 {
		t.Fatalf("expected zero points, got %d", len(points))
	}
}
