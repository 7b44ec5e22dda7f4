package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/arung-agamani/yuuka/internal/id"
	"github.com/arung-agamani/yuuka/internal/journal"
	"github.com/arung-agamani/yuuka/internal/model"
)

func newPostCommand(opts *globalOptions) *cobra.Command {
	var from, to, description string
	var confidence float64

	cmd := &cobra.Command{
		Use:   "post <incoming|outgoing|transfer> <amount>",
		Short: "Record a transaction",
		Example: `  yuuka post incoming 5000000 --to bca --desc "gaji"
  yuuka post outgoing 25000 --from gopay --to food
  yuuka post transfer 100000 --from bca --to gopay`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := model.ParseAction(args[0])
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q", model.ErrInvalidAmount, args[1])
			}

			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			owner, err := a.requireOwner()
			if err != nil {
				return err
			}

			txn, err := a.journal.Post(cmd.Context(), model.Intent{
				Action:      action,
				Amount:      amount,
				Source:      from,
				Destination: to,
				Description: description,
				Confidence:  confidence,
			}, owner, model.ExternalRef{Channel: "cli", Message: id.NewCorrelationID()})
			if err != nil {
				return err
			}
			printTransaction(cmd.OutOrStdout(), txn)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source account (credited)")
	cmd.Flags().StringVar(&to, "to", "", "destination account (debited)")
	cmd.Flags().StringVar(&description, "desc", "", "description")
	cmd.Flags().Float64Var(&confidence, "confidence", 1, "confidence of the entry, 0 to 1")
	return cmd
}

func newEditCommand(opts *globalOptions) *cobra.Command {
	var amount, from, to, description string

	cmd := &cobra.Command{
		Use:   "edit <ref>",
		Short: "Change the amount, accounts or description of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txnID, err := id.ParseTxnRef(args[0])
			if err != nil {
				return err
			}

			var p journal.UpdateParams
			flags := cmd.Flags()
			if flags.Changed("amount") {
				amt, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("%w: %q", model.ErrInvalidAmount, amount)
				}
				p.Amount = &amt
			}
			if flags.Changed("from") {
				p.Source = &from
			}
			if flags.Changed("to") {
				p.Destination = &to
			}
			if flags.Changed("desc") {
				p.Description = &description
			}

			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			owner, err := a.requireOwner()
			if err != nil {
				return err
			}

			txn, err := a.journal.Update(cmd.Context(), txnID, owner, p)
			if err != nil {
				return err
			}
			if txn == nil {
				return fmt.Errorf("transaction %s not found", id.FormatTxnRef(txnID))
			}
			printTransaction(cmd.OutOrStdout(), txn)
			return nil
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().StringVar(&from, "from", "", "new source account")
	cmd.Flags().StringVar(&to, "to", "", "new destination account")
	cmd.Flags().StringVar(&description, "desc", "", "new description")
	return cmd
}

func newDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ref>",
		Short: "Delete a transaction and its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txnID, err := id.ParseTxnRef(args[0])
			if err != nil {
				return err
			}
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			owner, err := a.requireOwner()
			if err != nil {
				return err
			}
			deleted, err := a.journal.Delete(cmd.Context(), txnID, owner)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("transaction %s not found", id.FormatTxnRef(txnID))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id.FormatTxnRef(txnID))
			return nil
		},
	}
}

func newShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ref>",
		Short: "Show a transaction with its journal entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txnID, err := id.ParseTxnRef(args[0])
			if err != nil {
				return err
			}
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			owner, err := a.requireOwner()
			if err != nil {
				return err
			}
			txn, err := a.journal.Get(cmd.Context(), txnID, owner)
			if err != nil {
				return err
			}
			if txn == nil {
				return fmt.Errorf("transaction %s not found", id.FormatTxnRef(txnID))
			}
			printTransaction(cmd.OutOrStdout(), txn)
			return nil
		},
	}
}

func newListCommand(opts *globalOptions) *cobra.Command {
	var limit, offset int
	var action string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lo := journal.ListOptions{Limit: limit, Offset: offset}
			if action != "" {
				var err error
				if lo.Action, err = model.ParseAction(action); err != nil {
					return err
				}
			}
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			owner, err := a.requireOwner()
			if err != nil {
				return err
			}
			views, err := a.journal.List(cmd.Context(), owner, lo)
			if err != nil {
				return err
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transactions.")
				return nil
			}
			return printViews(cmd.OutOrStdout(), views)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum rows (1-100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().StringVar(&action, "action", "", "only incoming, outgoing or transfer")
	return cmd
}

func newSummaryCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Totals per action and net flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			owner, err := a.requireOwner()
			if err != nil {
				return err
			}
			sum, err := a.journal.Summary(cmd.Context(), owner)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ACTION\tCOUNT\tTOTAL")
			fmt.Fprintf(tw, "incoming\t%d\t%s\n", sum.Incoming.Count, money(sum.Incoming.Total))
			fmt.Fprintf(tw, "outgoing\t%d\t%s\n", sum.Outgoing.Count, money(sum.Outgoing.Total))
			fmt.Fprintf(tw, "transfer\t%d\t%s\n", sum.Transfer.Count, money(sum.Transfer.Total))
			fmt.Fprintf(tw, "net\t\t%s\n", money(sum.Net))
			return tw.Flush()
		},
	}
}

func newAuditCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check every stored journal entry against the ledger invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			owner, err := a.requireOwner()
			if err != nil {
				return err
			}
			errs, err := a.journal.Audit(cmd.Context(), owner)
			if err != nil {
				return err
			}
			if len(errs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Ledger OK.")
				return nil
			}
			for _, e := range errs {
				fmt.Fprintln(cmd.OutOrStdout(), e.Error())
			}
			return fmt.Errorf("%d ledger violations", len(errs))
		},
	}
}
