package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arung-agamani/yuuka/internal/accounts"
	"github.com/arung-agamani/yuuka/internal/config"
	"github.com/arung-agamani/yuuka/internal/journal"
	"github.com/arung-agamani/yuuka/internal/logger"
	"github.com/arung-agamani/yuuka/internal/model"
	"github.com/arung-agamani/yuuka/internal/reports"
	"github.com/arung-agamani/yuuka/internal/store"
)

// app is the wired engine set one command runs against.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	db       *store.DB
	accounts *accounts.Directory
	journal  *journal.Service
	reports  *reports.Service
	owner    string
}

// openApp loads configuration, opens the database and wires the engines.
func (o *globalOptions) openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadWithEnv(o.configPath, o.envPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Options{
		Debug:  o.debug || cfg.Debug,
		Format: o.logFormat,
		Out:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.Database.Path, store.Options{BusyTimeout: cfg.Database.BusyTimeout})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("db", db.Path()).Msg("opened database")

	dirOpts := []accounts.Option{accounts.WithLogger(log)}
	if len(cfg.SystemAccounts) > 0 {
		dirOpts = append(dirOpts, accounts.WithSystemGroups(systemGroups(cfg.SystemAccounts)))
	}
	if kws := cfg.Inference.Keywords(); len(kws) > 0 {
		dirOpts = append(dirOpts, accounts.WithInferrer(accounts.NewInferrerFromKeywords(kws)))
	}
	dir := accounts.NewDirectory(db, dirOpts...)

	owner := o.owner
	if owner == "" {
		owner = cfg.Owner.Default
	}

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		accounts: dir,
		journal:  journal.NewService(db, dir, journal.WithLogger(log)),
		reports:  reports.NewService(db, reports.WithLogger(log)),
		owner:    owner,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// requireOwner returns the owner or an error telling the user how to set one.
func (a *app) requireOwner() (string, error) {
	if a.owner == "" {
		return "", errors.New("no owner: pass --owner or set owner.default in the config")
	}
	return a.owner, nil
}

// lookupGroup finds a group by numeric ID or by any of its aliases.
func (a *app) lookupGroup(cmd *cobra.Command, ref, owner string) (*model.AccountGroup, error) {
	ctx := cmd.Context()
	var (
		g   *model.AccountGroup
		err error
	)
	if n, perr := strconv.ParseInt(strings.TrimSpace(ref), 10, 64); perr == nil {
		g, err = a.accounts.GroupByID(ctx, n, owner)
	} else {
		g, err = a.accounts.Resolve(ctx, ref, owner)
	}
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("%w: %q", model.ErrGroupNotFound, ref)
	}
	return g, nil
}

func systemGroups(sas []config.SystemAccount) []accounts.SystemGroup {
	out := make([]accounts.SystemGroup, 0, len(sas))
	for _, sa := range sas {
		out = append(out, accounts.SystemGroup{
			Name:        sa.Name,
			Type:        model.AccountType(strings.ToLower(strings.TrimSpace(sa.Type))),
			Description: sa.Description,
		})
	}
	return out
}
