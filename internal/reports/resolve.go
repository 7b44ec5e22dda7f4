package reports

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arung-agamani/yuuka/internal/model"
	"github.com/arung-agamani/yuuka/internal/store"
)

// resolver types journal entries using one snapshot of the owner's groups and
// aliases.
type resolver struct {
	groups  map[int64]model.AccountGroup
	aliases map[string]int64
}

func (s *Service) loadResolver(ctx context.Context, owner string) (*resolver, error) {
	r := &resolver{groups: make(map[int64]model.AccountGroup), aliases: make(map[string]int64)}

	rows, err := s.db.SQL().QueryContext(ctx,
		`SELECT id, name, account_type FROM account_groups WHERE owner = ?`, owner)
	if err != nil {
		return nil, store.Classify(fmt.Errorf("loading groups: %w", err))
	}
	for rows.Next() {
		var (
			g   model.AccountGroup
			typ string
		)
		if err := rows.Scan(&g.ID, &g.Name, &typ); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		g.Type = model.AccountType(typ)
		g.Owner = owner
		r.groups[g.ID] = g
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, store.Classify(fmt.Errorf("loading groups: %w", err))
	}

	rows, err = s.db.SQL().QueryContext(ctx,
		`SELECT alias, group_id FROM account_aliases WHERE owner = ?`, owner)
	if err != nil {
		return nil, store.Classify(fmt.Errorf("loading aliases: %w", err))
	}
	defer rows.Close()
	for rows.Next() {
		var (
			alias string
			gid   int64
		)
		if err := rows.Scan(&alias, &gid); err != nil {
			return nil, fmt.Errorf("scanning alias: %w", err)
		}
		r.aliases[alias] = gid
	}
	if err := rows.Err(); err != nil {
		return nil, store.Classify(fmt.Errorf("loading aliases: %w", err))
	}
	return r, nil
}

// lookup resolves a free-form name to a group.
func (r *resolver) lookup(name string) (model.AccountGroup, bool) {
	gid, ok := r.aliases[model.NormalizeName(name)]
	if !ok {
		return model.AccountGroup{}, false
	}
	g, ok := r.groups[gid]
	return g, ok
}

// canonical returns the display name and type an entry is reported under:
// the referenced group, else the group its name resolves to, else the name
// with the type recorded at posting time, else an asset.
func (r *resolver) canonical(e model.JournalEntry) (string, model.AccountType) {
	if e.AccountRef != 0 {
		if g, ok := r.groups[e.AccountRef]; ok {
			return g.Name, g.Type
		}
	}
	if g, ok := r.lookup(e.AccountName); ok {
		return g.Name, g.Type
	}
	if e.AccountType.Valid() {
		return e.AccountName, e.AccountType
	}
	return e.AccountName, model.AccountTypeAsset
}

// postedEntry is a journal entry with the transaction fields reports need.
type postedEntry struct {
	model.JournalEntry
	CreatedAt   time.Time
	Description string
}

func (s *Service) loadEntries(ctx context.Context, owner string, period Period) ([]postedEntry, error) {
	query := `
		SELECT je.id, je.transaction_id, je.account_ref, je.account_name, je.account_type,
		       je.entry_type, je.amount, t.created_at, t.description
		FROM journal_entries je
		JOIN transactions t ON t.id = je.transaction_id
		WHERE t.owner = ?`
	args := []any{owner}
	if !period.Start.IsZero() {
		query += ` AND substr(t.created_at, 1, 10) >= ?`
		args = append(args, store.FormatDate(period.Start))
	}
	if !period.End.IsZero() {
		query += ` AND substr(t.created_at, 1, 10) <= ?`
		args = append(args, store.FormatDate(period.End))
	}
	query += ` ORDER BY t.created_at, t.id, je.id`

	rows, err := s.db.SQL().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.Classify(fmt.Errorf("loading entries: %w", err))
	}
	defer rows.Close()

	var out []postedEntry
	for rows.Next() {
		var (
			e                      postedEntry
			ref                    sql.NullInt64
			typ, kind, amt, create string
			desc                   sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.TransactionID, &ref, &e.AccountName, &typ, &kind, &amt, &create, &desc); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.AccountRef = ref.Int64
		e.AccountType = model.AccountType(typ)
		e.EntryType = model.EntryType(kind)
		e.Description = desc.String
		if e.Amount, err = decimal.NewFromString(amt); err != nil {
			return nil, fmt.Errorf("parsing amount of entry %d: %w", e.ID, err)
		}
		if e.CreatedAt, err = store.ParseTime(create); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Classify(fmt.Errorf("loading entries: %w", err))
	}
	return out, nil
}

type bucket struct {
	name   string
	typ    model.AccountType
	debit  decimal.Decimal
	credit decimal.Decimal
}

// buckets aggregates the owner's entries per canonical account, sorted by
// name.
func (s *Service) buckets(ctx context.Context, owner string, period Period) ([]*bucket, error) {
	r, err := s.loadResolver(ctx, owner)
	if err != nil {
		return nil, err
	}
	entries, err := s.loadEntries(ctx, owner, period)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*bucket)
	for _, e := range entries {
		name, typ := r.canonical(e.JournalEntry)
		b, ok := byName[name]
		if !ok {
			b = &bucket{name: name, typ: typ, debit: decimal.Zero, credit: decimal.Zero}
			byName[name] = b
		}
		switch e.EntryType {
		case model.EntryTypeDebit:
			b.debit = b.debit.Add(e.Amount)
		case model.EntryTypeCredit:
			b.credit = b.credit.Add(e.Amount)
		}
	}

	out := make([]*bucket, 0, len(byName))
	for _, b := range byName {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, nil
}
