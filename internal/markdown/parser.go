// Package markdown extracts price-history rows from scraped pages that a
// reader proxy has rendered to markdown. The price table is located by
// header sniffing and read off the goldmark AST.
package markdown

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Row is one raw price-history table row before conversion into an
// observation record.
type Row struct {
	DateRange string // e.g. "4/20 to 4/22"
	Price     string // e.g. "$1,451.66"
	Volume    string // e.g. "12", may be empty or currency-formatted
}

// Parser locates and reads price-history tables.
type Parser struct {
	md     goldmark.Markdown
	logger zerolog.Logger
}

// NewParser constructs a Parser with table support enabled.
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{
		md:     goldmark.New(goldmark.WithExtensions(extension.Table)),
		logger: logger.With().Str("component", "markdown_parser").Logger(),
	}
}

// ParsePriceHistory returns the data rows of the first price-history table
// in the page, or nil when none is present. A table qualifies when its
// header mentions a date column and a price column (case-insensitive) and
// it has at least one data row.
func (p *Parser) ParsePriceHistory(content string) []Row {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	source := []byte(content)
	doc := p.md.Parser().Parse(text.NewReader(source))

	var rows []Row
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != east.KindTable {
			return ast.WalkContinue, nil
		}
		if table := p.readTable(n, source); len(table) > 0 {
			rows = table
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})

	p.logger.Debug().Int("rows", len(rows)).Msg("price history parsed")
	return rows
}

func (p *Parser) readTable(table ast.Node, source []byte) []Row {
	var header []string
	var rows []Row

	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		cells := cellTexts(child, source)
		switch child.Kind() {
		case east.KindTableHeader:
			header = cells
		case east.KindTableRow:
			if len(cells) == 0 {
				continue
			}
			row := Row{DateRange: cells[0]}
			if len(cells) > 1 {
				row.Price = cells[1]
			}
			if len(cells) > 2 {
				row.Volume = cells[2]
			}
			rows = append(rows, row)
		}
	}

	if !isPriceHistoryHeader(header) || len(rows) == 0 {
		return nil
	}
	return rows
}

func cellTexts(row ast.Node, source []byte) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if cell.Kind() != east.KindTableCell {
			continue
		}
		cells = append(cells, strings.TrimSpace(string(cell.Text(source))))
	}
	return cells
}

func isPriceHistoryHeader(header []string) bool {
	var hasDate, hasPrice bool
	for _, cell := range header {
		lower := strings.ToLower(cell)
		if strings.Contains(lower, "date") {
			hasDate = true
		}
		if strings.Contains(lower, "holofoil") || strings.Contains(lower, "price") {
			hasPrice = true
		}
	}
	return hasDate && hasPrice
}
