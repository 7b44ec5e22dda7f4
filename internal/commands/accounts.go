package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arung-agamani/yuuka/internal/accounts"
	"github.com/arung-agamani/yuuka/internal/model"
)

func newAccountsCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"acct"},
		Short:   "Manage account groups and aliases",
	}
	cmd.AddCommand(
		newAccountsCreateCommand(opts),
		newAccountsListCommand(opts),
		newAccountsAliasCommand(opts),
		newAccountsResolveCommand(opts),
		newAccountsInferCommand(opts),
		newAccountsPendingCommand(opts),
		newAccountsAssignCommand(opts),
		newAccountsApplyCommand(opts),
		newAccountsExportCommand(opts),
	)
	return cmd
}

func newAccountsCreateCommand(opts *globalOptions) *cobra.Command {
	var typ, description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an account group (type inferred from the name when omitted)",
		Args:  cobra.ExactArgs(1),
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

			t := a.accounts.InferType(args[0])
			if typ != "" {
				if t, err = model.ParseAccountType(typ); err != nil {
					return err
				}
			}
			g, err := a.accounts.CreateGroup(cmd.Context(), accounts.CreateGroupParams{
				Name:        args[0],
				Owner:       owner,
				Type:        t,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s) id=%d\n", g.Name, g.Type, g.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "account type: asset, liability, equity, revenue or expense")
	cmd.Flags().StringVar(&description, "description", "", "description")
	return cmd
}

func newAccountsListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List account groups with their aliases",
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

			groups, err := a.accounts.ListGroups(cmd.Context(), owner)
			if err != nil {
				return err
			}
			aliases, err := a.accounts.ListAliases(cmd.Context(), owner)
			if err != nil {
				return err
			}
			byGroup := make(map[int64][]string)
			for _, al := range aliases {
				byGroup[al.GroupID] = append(byGroup[al.GroupID], al.Alias)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tALIASES")
			for _, g := range groups {
				name := g.Name
				if g.IsSystem {
					name += " *"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", g.ID, name, g.Type, joinNames(byGroup[g.ID]))
			}
			return tw.Flush()
		},
	}
}

func newAccountsAliasCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Add or remove aliases",
	}

	add := &cobra.Command{
		Use:   "add <alias> <group>",
		Short: "Map an alias to a group (by ID or existing alias)",
		Args:  cobra.ExactArgs(2),
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
			g, err := a.lookupGroup(cmd, args[1], owner)
			if err != nil {
				return err
			}
			al, err := a.accounts.AddAlias(cmd.Context(), args[0], g.ID, owner)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", al.Alias, g.Name)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <alias>",
		Short: "Remove an alias",
		Args:  cobra.ExactArgs(1),
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
			removed, err := a.accounts.RemoveAlias(cmd.Context(), args[0], owner)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("alias %q not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed alias %s\n", model.NormalizeName(args[0]))
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func newAccountsResolveCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <name>",
		Short: "Show the group a name resolves to",
		Args:  cobra.ExactArgs(1),
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
			g, err := a.accounts.Resolve(cmd.Context(), args[0], owner)
			if err != nil {
				return err
			}
			if g == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: unresolved (would be typed %s)\n",
					model.NormalizeName(args[0]), a.accounts.InferType(args[0]))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s) id=%d\n", model.NormalizeName(args[0]), g.Name, g.Type, g.ID)
			return nil
		},
	}
}

func newAccountsInferCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "infer <name>",
		Short: "Guess the account type of a name from keywords",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintln(cmd.OutOrStdout(), a.accounts.InferType(args[0]))
			return nil
		},
	}
}

func newAccountsPendingCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List journal account names not assigned to any group",
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
			names, err := a.accounts.UnresolvedNames(cmd.Context(), owner)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending names.")
				return nil
			}
			for _, n := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t(%s)\n", n, a.accounts.InferType(n))
			}
			return nil
		},
	}
}

func newAccountsAssignCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <name> <group>",
		Short: "Assign a pending name to a group",
		Args:  cobra.ExactArgs(2),
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
			g, err := a.lookupGroup(cmd, args[1], owner)
			if err != nil {
				return err
			}
			n, err := a.accounts.AssignName(cmd.Context(), args[0], g.ID, owner)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s to %s (%d entries updated)\n", model.NormalizeName(args[0]), g.Name, n)
			return nil
		},
	}
}

func newAccountsApplyCommand(opts *globalOptions) *cobra.Command {
	var useDefault bool

	cmd := &cobra.Command{
		Use:   "apply [chart.yaml]",
		Short: "Create groups and aliases from a chart of accounts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if useDefault == (len(args) == 1) {
				return fmt.Errorf("pass a chart file or --default, not both")
			}
			chart := accounts.DefaultChart()
			if len(args) == 1 {
				var err error
				if chart, err = accounts.LoadChart(args[0]); err != nil {
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
			res, err := a.accounts.ApplyChart(cmd.Context(), chart, owner)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Groups created: %d, already present: %d, aliases added: %d\n",
				res.GroupsCreated, res.GroupsExisted, res.AliasesAdded)
			return nil
		},
	}
	cmd.Flags().BoolVar(&useDefault, "default", false, "apply the built-in chart")
	return cmd
}

func newAccountsExportCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the owner's groups and aliases as a chart of accounts",
		Args:  cobra.MaximumNArgs(1),
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
			chart, err := a.accounts.ExportChart(cmd.Context(), owner)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return accounts.WriteChart(cmd.OutOrStdout(), chart)
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[0], err)
			}
			defer f.Close()
			if err := accounts.WriteChart(f, chart); err != nil {
				return err
			}
			return f.Close()
		},
	}
}
