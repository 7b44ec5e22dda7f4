package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arung-agamani/yuuka/internal/model"
	"github.com/arung-agamani/yuuka/internal/store"
)

// Directory owns account groups and the alias-to-group mapping. It is the
// single source of truth for name resolution and account typing.
type Directory struct {
	db     *store.DB
	log    zerolog.Logger
	system []SystemGroup
	infer  *Inferrer
	now    func() time.Time
}

// Option configures a Directory.
type Option func(*Directory)

// WithLogger sets the logger used for write paths.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Directory) { d.log = l }
}

// WithSystemGroups replaces the default Income/Expense/Cash system groups.
func WithSystemGroups(groups []SystemGroup) Option {
	return func(d *Directory) {
		if len(groups) > 0 {
			d.system = groups
		}
	}
}

// WithInferrer replaces the keyword classifier used by InferType.
func WithInferrer(inf *Inferrer) Option {
	return func(d *Directory) {
		if inf != nil {
			d.infer = inf
		}
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) { d.now = now }
}

// NewDirectory creates a Directory backed by db.
func NewDirectory(db *store.DB, opts ...Option) *Directory {
	d := &Directory{
		db:     db,
		log:    zerolog.Nop(),
		system: DefaultSystemGroups(),
		infer:  DefaultInferrer(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CreateGroupParams holds the inputs for CreateGroup.
type CreateGroupParams struct {
	Name        string
	Owner       string
	Type        model.AccountType
	Description string
	IsSystem    bool
}

// CreateGroup creates a canonical account and, in the same transaction, an
// alias of its lower-cased name.
func (d *Directory) CreateGroup(ctx context.Context, p CreateGroupParams) (*model.AccountGroup, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, fmt.Errorf("%w: account group name", model.ErrEmptyName)
	}
	if p.Owner == "" {
		return nil, model.ErrMissingOwner
	}
	if !p.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidAccountType, p.Type)
	}

	var group *model.AccountGroup
	err := d.db.WithTx(ctx, func(tx *sql.Tx) error {
		g, err := d.createGroupTx(ctx, tx, p)
		if err != nil {
			return err
		}
		if _, err := d.bindAliasTx(ctx, tx, model.NormalizeName(g.Name), g.ID, p.Owner); err != nil {
			return err
		}
		group = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.log.Info().
		Str("owner", p.Owner).
		Str("group", group.Name).
		Str("type", string(group.Type)).
		Int64("group_id", group.ID).
		Msg("created account group")
	return group, nil
}

// Resolve looks up an alias (case-insensitive, trimmed) and returns its group,
// or nil when the name does not resolve.
func (d *Directory) Resolve(ctx context.Context, name, owner string) (*model.AccountGroup, error) {
	return d.ResolveTx(ctx, d.db.SQL(), name, owner)
}

// ResolveTx is Resolve against an open transaction.
func (d *Directory) ResolveTx(ctx context.Context, q store.Querier, name, owner string) (*model.AccountGroup, error) {
	alias := model.NormalizeName(name)
	if alias == "" || owner == "" {
		return nil, nil
	}
	row := q.QueryRowContext(ctx, `
		SELECT g.id, g.name, g.account_type, g.owner, g.description, g.is_system, g.created_at
		FROM account_aliases a
		JOIN account_groups g ON g.id = a.group_id
		WHERE a.alias = ? AND a.owner = ? AND g.owner = ?`,
		alias, owner, owner)
	g, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Classify(fmt.Errorf("resolving %q: %w", alias, err))
	}
	return g, nil
}

// AddAlias maps alias to groupID for owner. Re-adding an alias that already
// points at the same group returns the existing alias.
func (d *Directory) AddAlias(ctx context.Context, alias string, groupID int64, owner string) (*model.AccountAlias, error) {
	alias = model.NormalizeName(alias)
	if alias == "" {
		return nil, fmt.Errorf("%w: alias", model.ErrEmptyName)
	}
	if owner == "" {
		return nil, model.ErrMissingOwner
	}

	var out *model.AccountAlias
	err := d.db.WithTx(ctx, func(tx *sql.Tx) error {
		a, err := d.bindAliasTx(ctx, tx, alias, groupID, owner)
		out = a
		return err
	})
	if err != nil {
		return nil, err
	}
	d.log.Info().Str("owner", owner).Str("alias", alias).Int64("group_id", groupID).Msg("added alias")
	return out, nil
}

// RemoveAlias deletes an alias. It reports whether a row was removed.
func (d *Directory) RemoveAlias(ctx context.Context, alias, owner string) (bool, error) {
	alias = model.NormalizeName(alias)
	if alias == "" || owner == "" {
		return false, nil
	}
	var removed bool
	err := d.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM account_aliases WHERE alias = ? AND owner = ?`, alias, owner)
		if err != nil {
			return fmt.Errorf("deleting alias: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting alias: %w", err)
		}
		removed = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	if removed {
		d.log.Info().Str("owner", owner).Str("alias", alias).Msg("removed alias")
	}
	return removed, nil
}

// InferType guesses an account type from keywords in name.
func (d *Directory) InferType(name string) model.AccountType {
	return d.infer.Infer(name)
}

// EnsureSystemGroups creates any missing system groups for owner and returns
// all of them keyed by normalized name.
func (d *Directory) EnsureSystemGroups(ctx context.Context, owner string) (map[string]*model.AccountGroup, error) {
	if owner == "" {
		return nil, model.ErrMissingOwner
	}
	var out map[string]*model.AccountGroup
	err := d.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = d.EnsureSystemGroupsTx(ctx, tx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureSystemGroupsTx is EnsureSystemGroups against an open write
// transaction. When a user alias already claims a system group's name, the
// group is still created but the alias is left alone.
func (d *Directory) EnsureSystemGroupsTx(ctx context.Context, q store.Querier, owner string) (map[string]*model.AccountGroup, error) {
	out := make(map[string]*model.AccountGroup, len(d.system))
	for _, sg := range d.system {
		g, err := groupByName(ctx, q, sg.Name, owner)
		if err != nil {
			return nil, err
		}
		if g == nil {
			g, err = d.createGroupTx(ctx, q, CreateGroupParams{
				Name:        sg.Name,
				Owner:       owner,
				Type:        sg.Type,
				Description: sg.Description,
				IsSystem:    true,
			})
			if err != nil {
				return nil, err
			}
			_, err = d.bindAliasTx(ctx, q, model.NormalizeName(sg.Name), g.ID, owner)
			if errors.Is(err, model.ErrAliasConflict) {
				d.log.Warn().Str("owner", owner).Str("group", sg.Name).Msg("system group name already aliased elsewhere")
			} else if err != nil {
				return nil, err
			}
			d.log.Debug().Str("owner", owner).Str("group", sg.Name).Msg("created system group")
		}
		out[model.NormalizeName(sg.Name)] = g
	}
	return out, nil
}

// GroupByID returns the owner's group with the given id, or nil.
func (d *Directory) GroupByID(ctx context.Context, id int64, owner string) (*model.AccountGroup, error) {
	return groupByID(ctx, d.db.SQL(), id, owner)
}

// GroupByName returns the owner's group whose name matches case-insensitively,
// or nil. Aliases are not consulted.
func (d *Directory) GroupByName(ctx context.Context, name, owner string) (*model.AccountGroup, error) {
	return groupByName(ctx, d.db.SQL(), name, owner)
}

// ListGroups returns the owner's groups ordered by type, then name.
func (d *Directory) ListGroups(ctx context.Context, owner string) ([]model.AccountGroup, error) {
	rows, err := d.db.SQL().QueryContext(ctx, `
		SELECT id, name, account_type, owner, description, is_system, created_at
		FROM account_groups
		WHERE owner = ?
		ORDER BY CASE account_type
			WHEN 'asset' THEN 0 WHEN 'liability' THEN 1 WHEN 'equity' THEN 2
			WHEN 'revenue' THEN 3 ELSE 4 END, name_key`, owner)
	if err != nil {
		return nil, store.Classify(fmt.Errorf("listing groups: %w", err))
	}
	defer rows.Close()

	var groups []model.AccountGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		groups = append(groups, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Classify(fmt.Errorf("listing groups: %w", err))
	}
	return groups, nil
}

// ListAliases returns every alias the owner has defined, ordered by alias.
func (d *Directory) ListAliases(ctx context.Context, owner string) ([]model.AccountAlias, error) {
	return queryAliases(ctx, d.db.SQL(), `
		SELECT id, alias, group_id, owner, created_at
		FROM account_aliases WHERE owner = ? ORDER BY alias`, owner)
}

// AliasesForGroup returns the aliases mapped to one group.
func (d *Directory) AliasesForGroup(ctx context.Context, groupID int64, owner string) ([]model.AccountAlias, error) {
	return queryAliases(ctx, d.db.SQL(), `
		SELECT id, alias, group_id, owner, created_at
		FROM account_aliases WHERE group_id = ? AND owner = ? ORDER BY alias`, groupID, owner)
}

// UnresolvedNames lists journal account names that resolve to no group and
// are waiting to be assigned one.
func (d *Directory) UnresolvedNames(ctx context.Context, owner string) ([]string, error) {
	rows, err := d.db.SQL().QueryContext(ctx, `
		SELECT DISTINCT je.account_name
		FROM journal_entries je
		JOIN transactions t ON t.id = je.transaction_id
		WHERE t.owner = ?
		  AND je.account_ref IS NULL
		  AND NOT EXISTS (
			SELECT 1 FROM account_aliases a
			WHERE a.owner = t.owner AND a.alias = je.account_name
		  )
		ORDER BY je.account_name`, owner)
	if err != nil {
		return nil, store.Classify(fmt.Errorf("listing unresolved names: %w", err))
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning name: %w", err)
		}
		names = append(names, n)
	}
	return names, store.Classify(rows.Err())
}

// AssignName aliases a pending name to a group and repoints the owner's
// unresolved journal entries carrying that name. It returns the number of
// entries updated.
func (d *Directory) AssignName(ctx context.Context, name string, groupID int64, owner string) (int64, error) {
	alias := model.NormalizeName(name)
	if alias == "" {
		return 0, fmt.Errorf("%w: name", model.ErrEmptyName)
	}
	if owner == "" {
		return 0, model.ErrMissingOwner
	}

	var updated int64
	err := d.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := d.bindAliasTx(ctx, tx, alias, groupID, owner); err != nil {
			return err
		}
		g, err := groupByID(ctx, tx, groupID, owner)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE journal_entries
			SET account_ref = ?, account_name = ?, account_type = ?
			WHERE account_ref IS NULL
			  AND account_name = ?
			  AND transaction_id IN (SELECT id FROM transactions WHERE owner = ?)`,
			g.ID, g.Name, string(g.Type), alias, owner)
		if err != nil {
			return fmt.Errorf("repointing entries: %w", err)
		}
		updated, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	d.log.Info().Str("owner", owner).Str("alias", alias).Int64("group_id", groupID).Int64("entries", updated).Msg("assigned name")
	return updated, nil
}

func (d *Directory) createGroupTx(ctx context.Context, q store.Querier, p CreateGroupParams) (*model.AccountGroup, error) {
	existing, err := groupByName(ctx, q, p.Name, p.Owner)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %q", model.ErrDuplicateGroup, p.Name)
	}

	created := d.now().UTC().Truncate(time.Second)
	res, err := q.ExecContext(ctx, `
		INSERT INTO account_groups (name, name_key, account_type, owner, description, is_system, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, model.NormalizeName(p.Name), string(p.Type), p.Owner, nullString(p.Description), p.IsSystem, store.FormatTime(created))
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %q", model.ErrDuplicateGroup, p.Name)
		}
		return nil, fmt.Errorf("inserting group: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("inserting group: %w", err)
	}
	return &model.AccountGroup{
		ID:          id,
		Name:        p.Name,
		Type:        p.Type,
		Owner:       p.Owner,
		Description: p.Description,
		IsSystem:    p.IsSystem,
		CreatedAt:   created,
	}, nil
}

func (d *Directory) bindAliasTx(ctx context.Context, q store.Querier, alias string, groupID int64, owner string) (*model.AccountAlias, error) {
	g, err := groupByID(ctx, q, groupID, owner)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("%w: id %d", model.ErrGroupNotFound, groupID)
	}

	existing, err := queryAliases(ctx, q, `
		SELECT id, alias, group_id, owner, created_at
		FROM account_aliases WHERE alias = ? AND owner = ?`, alias, owner)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		if existing[0].GroupID == groupID {
			return &existing[0], nil
		}
		return nil, fmt.Errorf("%w: %q", model.ErrAliasConflict, alias)
	}

	created := d.now().UTC().Truncate(time.Second)
	res, err := q.ExecContext(ctx, `
		INSERT INTO account_aliases (alias, group_id, owner, created_at)
		VALUES (?, ?, ?, ?)`, alias, groupID, owner, store.FormatTime(created))
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %q", model.ErrAliasConflict, alias)
		}
		return nil, fmt.Errorf("inserting alias: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("inserting alias: %w", err)
	}
	return &model.AccountAlias{ID: id, Alias: alias, GroupID: groupID, Owner: owner, CreatedAt: created}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(r rowScanner) (*model.AccountGroup, error) {
	var (
		g       model.AccountGroup
		typ     string
		desc    sql.NullString
		created string
	)
	if err := r.Scan(&g.ID, &g.Name, &typ, &g.Owner, &desc, &g.IsSystem, &created); err != nil {
		return nil, err
	}
	g.Type = model.AccountType(typ)
	g.Description = desc.String
	t, err := store.ParseTime(created)
	if err != nil {
		return nil, err
	}
	g.CreatedAt = t
	return &g, nil
}

func groupByID(ctx context.Context, q store.Querier, id int64, owner string) (*model.AccountGroup, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, account_type, owner, description, is_system, created_at
		FROM account_groups WHERE id = ? AND owner = ?`, id, owner)
	g, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Classify(fmt.Errorf("loading group %d: %w", id, err))
	}
	return g, nil
}

func groupByName(ctx context.Context, q store.Querier, name, owner string) (*model.AccountGroup, error) {
	key := model.NormalizeName(name)
	if key == "" {
		return nil, nil
	}
	row := q.QueryRowContext(ctx, `
		SELECT id, name, account_type, owner, description, is_system, created_at
		FROM account_groups WHERE name_key = ? AND owner = ?`, key, owner)
	g, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Classify(fmt.Errorf("loading group %q: %w", name, err))
	}
	return g, nil
}

func queryAliases(ctx context.Context, q store.Querier, query string, args ...any) ([]model.AccountAlias, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.Classify(fmt.Errorf("querying aliases: %w", err))
	}
	defer rows.Close()

	var out []model.AccountAlias
	for rows.Next() {
		var (
			a       model.AccountAlias
			created string
		)
		if err := rows.Scan(&a.ID, &a.Alias, &a.GroupID, &a.Owner, &created); err != nil {
			return nil, fmt.Errorf("scanning alias: %w", err)
		}
		if a.CreatedAt, err = store.ParseTime(created); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Classify(fmt.Errorf("querying aliases: %w", err))
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
