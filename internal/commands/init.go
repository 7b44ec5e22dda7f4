package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arung-agamani/yuuka/internal/accounts"
	"github.com/arung-agamani/yuuka/internal/config"
	"github.com/arung-agamani/yuuka/internal/store"
)

func newInitCommand(opts *globalOptions) *cobra.Command {
	var withChart bool
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new yuuka ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, opts.owner, withChart, force)
		},
	}

	cmd.Flags().BoolVar(&withChart, "chart", false, "seed the default chart of accounts for --owner")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing yuuka.yaml")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir, owner string, withChart, force bool) error {
	if withChart && owner == "" {
		return errors.New("--chart needs --owner")
	}

	cfg := config.Default()
	cfg.Owner.Default = owner

	// Create directory structure.
	for _, d := range []string{filepath.Dir(cfg.Database.Path), cfg.Import.InboxDir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfgPath := filepath.Join(dir, config.DefaultPath)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	db, err := store.Open(filepath.Join(dir, cfg.Database.Path), store.Options{BusyTimeout: cfg.Database.BusyTimeout})
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer db.Close()

	if owner != "" {
		dirSvc := accounts.NewDirectory(db, accounts.WithSystemGroups(systemGroups(cfg.SystemAccounts)))
		if _, err := dirSvc.EnsureSystemGroups(ctx, owner); err != nil {
			return fmt.Errorf("creating system accounts: %w", err)
		}
		if withChart {
			res, err := dirSvc.ApplyChart(ctx, accounts.DefaultChart(), owner)
			if err != nil {
				return fmt.Errorf("seeding chart of accounts: %w", err)
			}
			fmt.Fprintf(out, "Seeded %d account groups and %d aliases for %s\n", res.GroupsCreated, res.AliasesAdded, owner)
		}
	}

	fmt.Fprintf(out, "Initialized yuuka ledger at %s\n", dir)
	return nil
}
