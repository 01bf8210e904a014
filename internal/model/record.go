package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one signature's observed price and sales volume for a single
// reporting period. PeriodEnd is the alignment axis: within one working
// dataset a signature has at most one record per PeriodEnd.
type Record struct {
	GroupSet    string
	ProductType string
	PeriodLabel string
	ProductName string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Price       decimal.Decimal
	Volume      int64
	CollectedAt time.Time
}

// Signature identifies one independent time series: the composite of
// group set, product type, period label, and product name.
type Signature struct {
	GroupSet    string
	ProductType string
	PeriodLabel string
	ProductName string
}

// Signature returns the record's series identity.
func (r Record) Signature() Signature {
	return Signature{
		GroupSet:    r.GroupSet,
		ProductType: r.ProductType,
		PeriodLabel: r.PeriodLabel,
		ProductName: r.ProductName,
	}
}

// ID renders the signature as "set_name_type", the display form used in
// coverage reports and missing-signature lists.
func (s Signature) ID() string {
	return s.GroupSet + "_" + s.ProductName + "_" + s.ProductType
}

// Value is the record's market value for the period: price × volume.
func (r Record) Value() decimal.Decimal {
	return r.Price.Mul(decimal.NewFromInt(r.Volume))
}

// Signatures collects the distinct signatures present in records.
func Signatures(records []Record) map[Signature]struct{} {
	set := make(map[Signature]struct{}, len(records))
	for _, r := range records {
		set[r.Signature()] = struct{}{}
	}
	return set
}

// Dates collects the distinct period end dates in records, ascending.
func Dates(records []Record) []time.Time {
	seen := make(map[time.Time]struct{}, len(records))
	for _, r := range records {
		seen[r.PeriodEnd] = struct{}{}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// SortCanonical orders records by (period end, group set, product name),
// the canonical order of aligned output.
func SortCanonical(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.PeriodEnd.Equal(b.PeriodEnd) {
			return a.PeriodEnd.Before(b.PeriodEnd)
		}
		if a.GroupSet != b.GroupSet {
			return a.GroupSet < b.GroupSet
		}
		return a.ProductName < b.ProductName
	})
}

// DateLayout is the calendar-date wire format used across CSV and JSON.
const DateLayout = "2006-01-02"

// TimestampLayout is the bookkeeping timestamp wire format.
const TimestampLayout = "2006-01-02 15:04:05"
