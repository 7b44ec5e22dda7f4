package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arung-agamani/yuuka/internal/id"
	"github.com/arung-agamani/yuuka/internal/journal"
	"github.com/arung-agamani/yuuka/internal/model"
	"github.com/arung-agamani/yuuka/internal/reports"
)

const dateLayout = "2006-01-02"

func joinNames(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// printTransaction writes a transaction with its derived view and entries.
func printTransaction(w io.Writer, txn *model.Transaction) {
	v := journal.Derive(*txn)
	fmt.Fprintf(w, "%s  %s  %s\n", id.FormatTxnRef(txn.ID), txn.CreatedAt.Format(time.RFC3339), v.Action)
	fmt.Fprintf(w, "  %s -> %s  %s\n", v.Source, v.Destination, money(v.Amount))
	if txn.Description != "" {
		fmt.Fprintf(w, "  %s\n", txn.Description)
	}
	tw := newTable(w)
	for _, e := range txn.Entries {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", e.EntryType, e.AccountName, e.AccountType, money(e.Amount))
	}
	_ = tw.Flush()
}

func printViews(w io.Writer, views []journal.View) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "REF\tDATE\tACTION\tAMOUNT\tFROM\tTO\tDESCRIPTION")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			id.FormatTxnRef(v.ID), v.CreatedAt.Format(dateLayout), v.Action, money(v.Amount),
			v.Source, v.Destination, v.Description)
	}
	return tw.Flush()
}

func printLines(w io.Writer, title string, items []reports.LineItem, total decimal.Decimal) {
	tw := newTable(w)
	fmt.Fprintf(tw, "%s\t\n", title)
	for _, it := range items {
		fmt.Fprintf(tw, "  %s\t%s\n", it.Name, money(it.Amount))
	}
	fmt.Fprintf(tw, "  Total\t%s\n", money(total))
	_ = tw.Flush()
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q, want YYYY-MM-DD", model.ErrInvalidInput, s)
	}
	return t, nil
}
