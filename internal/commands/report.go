package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arung-agamani/yuuka/internal/reports"
)

func newReportCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Balances and financial statements",
	}
	cmd.AddCommand(
		newReportBalancesCommand(opts),
		newReportTrialCommand(opts),
		newReportIncomeCommand(opts),
		newReportSheetCommand(opts),
		newReportLedgerCommand(opts),
		newReportSpendingCommand(opts),
	)
	return cmd
}

// reportRun opens the app and resolves the owner before calling fn.
func reportRun(opts *globalOptions, fn func(cmd *cobra.Command, a *app, owner string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := opts.openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		owner, err := a.requireOwner()
		if err != nil {
			return err
		}
		return fn(cmd, a, owner)
	}
}

func periodFlags(cmd *cobra.Command, start, end *string) {
	cmd.Flags().StringVar(start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(end, "end", "", "last day, YYYY-MM-DD")
}

func parsePeriod(start, end string) (reports.Period, error) {
	var p reports.Period
	var err error
	if p.Start, err = parseDate(start); err != nil {
		return p, err
	}
	if p.End, err = parseDate(end); err != nil {
		return p, err
	}
	return p, nil
}

func newReportBalancesCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Signed balance of every account",
		Args:  cobra.NoArgs,
		RunE: reportRun(opts, func(cmd *cobra.Command, a *app, owner string) error {
			balances, err := a.reports.Balances(cmd.Context(), owner)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ACCOUNT\tTYPE\tBALANCE")
			for _, b := range balances {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Name, b.Type, money(b.Balance))
			}
			return tw.Flush()
		}),
	}
}

func newReportTrialCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trial",
		Short: "Trial balance",
		Args:  cobra.NoArgs,
		RunE: reportRun(opts, func(cmd *cobra.Command, a *app, owner string) error {
			tb, err := a.reports.TrialBalance(cmd.Context(), owner)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ACCOUNT\tTYPE\tDEBIT\tCREDIT")
			for _, l := range tb.Accounts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Name, l.Type, money(l.Debit), money(l.Credit))
			}
			fmt.Fprintf(tw, "TOTAL\t\t%s\t%s\n", money(tb.TotalDebits), money(tb.TotalCredits))
			if err := tw.Flush(); err != nil {
				return err
			}
			if !tb.IsBalanced {
				fmt.Fprintf(cmd.OutOrStdout(), "NOT BALANCED: difference %s\n", money(tb.Difference))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Balanced.")
			return nil
		}),
	}
}

func newReportIncomeCommand(opts *globalOptions) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Income statement",
		Args:  cobra.NoArgs,
		RunE: reportRun(opts, func(cmd *cobra.Command, a *app, owner string) error {
			period, err := parsePeriod(start, end)
			if err != nil {
				return err
			}
			is, err := a.reports.IncomeStatement(cmd.Context(), owner, period)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printLines(out, "Revenue", is.Revenue, is.TotalRevenue)
			printLines(out, "Expenses", is.Expenses, is.TotalExpenses)
			fmt.Fprintf(out, "Net income  %s\n", money(is.NetIncome))
			return nil
		}),
	}
	periodFlags(cmd, &start, &end)
	return cmd
}

func newReportSheetCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sheet",
		Short: "Balance sheet",
		Args:  cobra.NoArgs,
		RunE: reportRun(opts, func(cmd *cobra.Command, a *app, owner string) error {
			bs, err := a.reports.BalanceSheet(cmd.Context(), owner)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printLines(out, "Assets", bs.Assets, bs.TotalAssets)
			printLines(out, "Liabilities", bs.Liabilities, bs.TotalLiabilities)
			printLines(out, "Equity", append(bs.Equity, reports.LineItem{Name: "Retained earnings", Amount: bs.RetainedEarnings}), bs.TotalEquity)
			if !bs.IsBalanced {
				fmt.Fprintln(out, "NOT BALANCED")
			}
			return nil
		}),
	}
}

func newReportLedgerCommand(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "ledger <account>",
		Short: "Entry history of one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportRun(opts, func(cmd *cobra.Command, a *app, owner string) error {
				l, err := a.reports.AccountLedger(cmd.Context(), owner, args[0], limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s)  balance %s\n", l.Account, l.Type, money(l.Balance))
				tw := newTable(out)
				for _, ln := range l.Lines {
					fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%s\t%s\n",
						ln.TransactionID, ln.Date.Format(dateLayout), ln.EntryType, money(ln.Amount), money(ln.Balance), ln.Description)
				}
				return tw.Flush()
			})(cmd, args)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries, 0 for all")
	return cmd
}

func newReportSpendingCommand(opts *globalOptions) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "spending",
		Short: "Expense totals by category, largest first",
		Args:  cobra.NoArgs,
		RunE: reportRun(opts, func(cmd *cobra.Command, a *app, owner string) error {
			period, err := parsePeriod(start, end)
			if err != nil {
				return err
			}
			items, err := a.reports.SpendingByCategory(cmd.Context(), owner, period)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\n", it.Name, money(it.Amount))
			}
			return tw.Flush()
		}),
	}
	periodFlags(cmd, &start, &end)
	return cmd
}
