package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// Summary prints high-level dataset context: record and signature counts,
// date range, and the sets and types actually present.
func (a *App) Summary(ctx context.Context) error {
	analyzer, closeLoader, err := a.newAnalyzer(ctx)
	if err != nil {
		return err
	}
	defer closeLoader()

	summary, err := analyzer.DatasetSummary(ctx)
	if err != nil {
		return err
	}
	if summary.TotalRecords == 0 {
		fmt.Fprintln(os.Stdout, "dataset is empty")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Records\t%d\n", summary.TotalRecords)
	fmt.Fprintf(writer, "Signatures\t%d\n", summary.UniqueSignatures)
	fmt.Fprintf(writer, "Date range\t%s to %s\n", summary.DateRange[0], summary.DateRange[1])
	fmt.Fprintf(writer, "Sets\t%s\n", strings.Join(summary.AvailableSets, ", "))
	fmt.Fprintf(writer, "Types\t%s\n", strings.Join(summary.AvailableTypes, ", "))
	writer.Flush()
	return nil
}
