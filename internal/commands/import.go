package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arung-agamani/yuuka/internal/importer"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	var format, bankAccount string
	var keep bool

	cmd := &cobra.Command{
		Use:   "import [file.csv...]",
		Short: "Post bank CSV rows, skipping rows already imported",
		Long: `Import posts every row of the given bank CSV exports. Without arguments it
imports the CSV files in the configured inbox directory and moves each one to
inbox/processed once all of its rows are posted. The layout of each file is
detected from its header row unless --format is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "" {
				if _, err := importer.ParserFor(format); err != nil {
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
			if bankAccount == "" {
				bankAccount = a.cfg.Import.BankAccount
			}

			im := importer.New(a.journal, bankAccount, a.log)
			var results []importer.FileResult
			if len(args) == 0 {
				results, err = im.ImportInbox(cmd.Context(), owner, importer.Inbox{Dir: a.cfg.Import.InboxDir}, format, keep)
			} else {
				for _, p := range args {
					fr, ferr := im.ImportFile(cmd.Context(), owner, p, format)
					if ferr != nil {
						err = fmt.Errorf("importing %s: %w", filepath.Base(p), ferr)
						break
					}
					results = append(results, fr)
				}
			}

			for _, fr := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d posted, %d already imported\n",
					filepath.Base(fr.Path), len(fr.Posted), fr.Duplicates)
			}
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "bank export format (default: detected from the header row)")
	cmd.Flags().StringVar(&bankAccount, "account", "", "account the bank rows post against (default: import.bank_account)")
	cmd.Flags().BoolVar(&keep, "keep", false, "leave inbox files in place")
	return cmd
}
