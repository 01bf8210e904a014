package markdown

import (
	"testing"

	"github.com/rs/zerolog"
)

const priceHistoryPage = `# Charizard ex

Some product copy before the table.

| Date | Holofoil | Volume |
| --- | --- | --- |
| 4/20 to 4/22 | $1,451.66 | 12 |
| 4/23 to 4/25 | $1,398.00 | 8 |
| 4/26 to 4/28 | $1,410.25 | $0.00 |

Unrelated trailing text.
`

func newTestParser() *Parser {
	return NewParser(zerolog.Nop())
}

func TestParsePriceHistoryTable(t *testing.T) {
	rows := newTestParser().ParsePriceHistory(priceHistoryPage)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].DateRange != "4/20 to 4/22" {
		t.Fatalf("unexpected date range: %q", rows[0].DateRange)
	}
	if rows[0].Price != "$1,451.66" {
		t.Fatalf("unexpected price cell: %q", rows[0].Price)
	}
	if rows[2].Volume != "$0.00" {
		t.Fatalf("unexpected volume cell: %q", rows[2].Volume)
	}
}

func TestParsePriceHistoryIgnoresOtherTables(t *testing.T) {
	page := `
| Rarity | Count |
| --- | --- |
| Rare | 10 |
`
	if rows := newTestParser().ParsePriceHistory(page); rows != nil {
		t.Fatalf("non-price table must not match, got %v", rows)
	}
}

func TestParsePriceHistorySkipsTableWithoutRows(t *testing.T) {
	page := `
| Date | Price |
| --- | --- |
`
	if rows := newTestParser().ParsePriceHistory(page); rows != nil {
		t.Fatalf("header-only table must not match, got %v", rows)
	}
}

func TestParsePriceHistoryEmptyContent(t *testing.T) {
	if rows := newTestParser().ParsePriceHistory("   \n\t  "); rows != nil {
		t.Fatalf("expected nil for blank content, got %v", rows)
	}
}

func TestParsePriceHistoryPlainPriceHeader(t *testing.T) {
	page := `
| Date | Price |
| --- | --- |
| 1/2 to 1/4 | $10.00 |
`
	rows := newTestParser().ParsePriceHistory(page)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Volume != "" {
		t.Fatalf("missing volume column must stay empty, got %q", rows[0].Volume)
	}
}
