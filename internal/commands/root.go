package commands

import (
	"github.com/spf13/cobra"

	"github.com/arung-agamani/yuuka/internal/buildinfo"
	"github.com/arung-agamani/yuuka/internal/config"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	envPath    string
	owner      string
	debug      bool
	logFormat  string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "yuuka",
		Short:   "Double-entry ledger for personal finances",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", config.DefaultPath, "config file")
	pf.StringVar(&opts.envPath, "env", "", ".env file (default: ./.env when present)")
	pf.StringVar(&opts.owner, "owner", "", "ledger owner (default: owner.default from config)")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	pf.StringVar(&opts.logFormat, "log-format", "console", "log format: console or json")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newAccountsCommand(opts),
		newPostCommand(opts),
		newEditCommand(opts),
		newDeleteCommand(opts),
		newShowCommand(opts),
		newListCommand(opts),
		newSummaryCommand(opts),
		newAuditCommand(opts),
		newReportCommand(opts),
		newImportCommand(opts),
		newServeCommand(opts),
	)

	return rootCmd
}
