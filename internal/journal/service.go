// Package journal turns transaction intents into balanced pairs of journal
// entries and keeps them consistent across edits and deletes.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arung-agamani/yuuka/internal/accounts"
	"github.com/arung-agamani/yuuka/internal/model"
	"github.com/arung-agamani/yuuka/internal/store"
)

// Directory is the part of the account directory the posting engine needs.
type Directory interface {
	EnsureSystemGroupsTx(ctx context.Context, q store.Querier, owner string) (map[string]*model.AccountGroup, error)
	ResolveTx(ctx context.Context, q store.Querier, name, owner string) (*model.AccountGroup, error)
	InferType(name string) model.AccountType
}

// Service manages transactions and their journal entries.
type Service struct {
	db       *store.DB
	accounts Directory
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for write paths.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides the transaction timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a journal Service.
func NewService(db *store.DB, accts Directory, opts ...Option) *Service {
	s := &Service{
		db:       db,
		accounts: accts,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// side is one resolved half of a posting.
type side struct {
	ref  int64
	name string
	typ  model.AccountType
}

// Post records an intent as a transaction with one debit and one credit entry
// sharing the same amount. The destination is always debited and the source
// credited; an incoming intent without a source credits the system income
// account and an outgoing intent without a destination debits the system
// expense account.
func (s *Service) Post(ctx context.Context, in model.Intent, owner string, ref model.ExternalRef) (*model.Transaction, error) {
	return s.PostAt(ctx, in, owner, ref, s.now())
}

// PostAt is Post with an explicit creation time, used by imports that carry
// the bank's booking date.
func (s *Service) PostAt(ctx context.Context, in model.Intent, owner string, ref model.ExternalRef, at time.Time) (*model.Transaction, error) {
	if owner == "" {
		return nil, model.ErrMissingOwner
	}
	if err := ValidateIntent(in); err != nil {
		return nil, err
	}

	src := model.NormalizeName(in.Source)
	dst := model.NormalizeName(in.Destination)
	var defaultSrc, defaultDst bool
	if in.Action == model.ActionIncoming && src == "" {
		src, defaultSrc = accounts.DefaultIncomeName, true
	}
	if in.Action == model.ActionOutgoing && dst == "" {
		dst, defaultDst = accounts.DefaultExpenseName, true
	}

	created := at.UTC().Truncate(time.Second)
	txn := &model.Transaction{
		Description: strings.TrimSpace(in.Description),
		RawText:     in.RawText,
		Confidence:  in.Confidence,
		Owner:       owner,
		Ref:         ref,
		Action:      in.Action,
		CreatedAt:   created,
		Confirmed:   true,
	}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		system, err := s.accounts.EnsureSystemGroupsTx(ctx, tx, owner)
		if err != nil {
			return err
		}
		debit, err := s.postingSide(ctx, tx, in.Action, model.EntryTypeDebit, dst, owner, system, defaultDst)
		if err != nil {
			return err
		}
		credit, err := s.postingSide(ctx, tx, in.Action, model.EntryTypeCredit, src, owner, system, defaultSrc)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO transactions
			(description, raw_text, confidence, owner, guild_ref, channel_ref, message_ref, action, created_at, confirmed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			nullString(txn.Description), txn.RawText, txn.Confidence, owner,
			nullString(ref.Guild), ref.Channel, ref.Message, string(in.Action), store.FormatTime(created), txn.Confirmed)
		if err != nil {
			return fmt.Errorf("inserting transaction: %w", err)
		}
		if txn.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("inserting transaction: %w", err)
		}

		de, err := insertEntry(ctx, tx, txn.ID, debit, model.EntryTypeDebit, in.Amount)
		if err != nil {
			return err
		}
		ce, err := insertEntry(ctx, tx, txn.ID, credit, model.EntryTypeCredit, in.Amount)
		if err != nil {
			return err
		}
		txn.Entries = []model.JournalEntry{de, ce}
		return nil
	})
	if err != nil {
		if !errors.Is(err, model.ErrInvalidInput) {
			s.log.Error().Err(err).Str("owner", owner).Msg("posting transaction failed")
		}
		return nil, err
	}

	d, _ := txn.Debit()
	c, _ := txn.Credit()
	s.log.Info().
		Int64("txn_id", txn.ID).
		Str("owner", owner).
		Str("action", string(in.Action)).
		Str("debit", d.AccountName).
		Str("credit", c.AccountName).
		Str("amount", in.Amount.String()).
		Msg("posted transaction")
	return txn, nil
}

// UpdateParams holds the fields Update may change. Nil fields keep their
// current value.
type UpdateParams struct {
	Amount      *decimal.Decimal
	Source      *string
	Destination *string
	Description *string
}

// Update amends a transaction in place. The destination keeps the debit role
// and the source keeps the credit role; new names are re-resolved. It returns
// nil when the transaction does not exist or belongs to another owner.
func (s *Service) Update(ctx context.Context, txnID int64, owner string, p UpdateParams) (*model.Transaction, error) {
	if p.Amount != nil {
		if err := ValidateAmount(*p.Amount); err != nil {
			return nil, err
		}
	}
	var src, dst string
	if p.Source != nil {
		if src = model.NormalizeName(*p.Source); src == "" {
			return nil, fmt.Errorf("%w: source cannot be empty", model.ErrMissingAccount)
		}
	}
	if p.Destination != nil {
		if dst = model.NormalizeName(*p.Destination); dst == "" {
			return nil, fmt.Errorf("%w: destination cannot be empty", model.ErrMissingAccount)
		}
	}

	var found bool
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		txn, err := loadTransaction(ctx, tx, txnID, owner)
		if err != nil || txn == nil {
			return err
		}
		found = true

		debit, okD := txn.Debit()
		credit, okC := txn.Credit()
		if !okD || !okC {
			return fmt.Errorf("transaction %d has no debit/credit pair", txnID)
		}
		// New names are typed by the action the transaction was posted with.
		action := txn.Action
		if !action.Valid() {
			action = Derive(*txn).Action
		}

		amount := debit.Amount
		if p.Amount != nil {
			amount = *p.Amount
		}
		debitSide := side{ref: debit.AccountRef, name: debit.AccountName, typ: debit.AccountType}
		if p.Destination != nil {
			if debitSide, err = s.resolveSide(ctx, tx, action, model.EntryTypeDebit, dst, owner); err != nil {
				return err
			}
		}
		creditSide := side{ref: credit.AccountRef, name: credit.AccountName, typ: credit.AccountType}
		if p.Source != nil {
			if creditSide, err = s.resolveSide(ctx, tx, action, model.EntryTypeCredit, src, owner); err != nil {
				return err
			}
		}

		if err := updateEntry(ctx, tx, debit.ID, debitSide, amount); err != nil {
			return err
		}
		if err := updateEntry(ctx, tx, credit.ID, creditSide, amount); err != nil {
			return err
		}
		if p.Description != nil {
			desc := strings.TrimSpace(*p.Description)
			if _, err := tx.ExecContext(ctx, `UPDATE transactions SET description = ? WHERE id = ?`,
				nullString(desc), txnID); err != nil {
				return fmt.Errorf("updating description: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		s.log.Warn().Int64("txn_id", txnID).Str("owner", owner).Msg("update: transaction not found")
		return nil, nil
	}

	s.log.Info().Int64("txn_id", txnID).Str("owner", owner).Msg("updated transaction")
	return s.Get(ctx, txnID, owner)
}

// Delete removes a transaction and both of its entries. It reports false when
// the transaction does not exist or belongs to another owner.
func (s *Service) Delete(ctx context.Context, txnID int64, owner string) (bool, error) {
	var deleted bool
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM transactions WHERE id = ? AND owner = ?`, txnID, owner).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("loading transaction: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM journal_entries WHERE transaction_id = ?`, txnID); err != nil {
			return fmt.Errorf("deleting entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, txnID); err != nil {
			return fmt.Errorf("deleting transaction: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !deleted {
		s.log.Warn().Int64("txn_id", txnID).Str("owner", owner).Msg("delete: transaction not found")
		return false, nil
	}
	s.log.Info().Int64("txn_id", txnID).Str("owner", owner).Msg("deleted transaction")
	return true, nil
}

// Get returns a transaction with its entries, or nil when it does not exist
// or belongs to another owner.
func (s *Service) Get(ctx context.Context, txnID int64, owner string) (*model.Transaction, error) {
	return loadTransaction(ctx, s.db.SQL(), txnID, owner)
}

// FindByMessageRef returns the owner's most recent transaction carrying the
// given message reference, or nil.
func (s *Service) FindByMessageRef(ctx context.Context, owner, messageRef string) (*model.Transaction, error) {
	if messageRef == "" {
		return nil, nil
	}
	txns, err := loadTransactions(ctx, s.db.SQL(), `t.owner = ? AND t.message_ref = ?`, owner, messageRef)
	if err != nil || len(txns) == 0 {
		return nil, err
	}
	return &txns[0], nil
}

// ListOptions filters and paginates List.
type ListOptions struct {
	Limit  int // clamped to 1..100; 0 means 10
	Offset int
	Action model.Action // empty means all
}

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// List returns the owner's transactions as derived views, newest first.
func (s *Service) List(ctx context.Context, owner string, opts ListOptions) ([]View, error) {
	views, err := s.views(ctx, owner, opts.Action)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := max(opts.Offset, 0)
	if offset >= len(views) {
		return nil, nil
	}
	end := min(offset+limit, len(views))
	return views[offset:end], nil
}

// Count returns how many of the owner's transactions derive to action, or all
// of them when action is empty.
func (s *Service) Count(ctx context.Context, owner string, action model.Action) (int, error) {
	views, err := s.views(ctx, owner, action)
	if err != nil {
		return 0, err
	}
	return len(views), nil
}

// ActionTotal is the count and sum of one action's transactions.
type ActionTotal struct {
	Count int
	Total decimal.Decimal
}

// Summary aggregates the owner's transactions by derived action.
type Summary struct {
	Incoming ActionTotal
	Outgoing ActionTotal
	Transfer ActionTotal
	Net      decimal.Decimal // incoming - outgoing
}

// Summary totals the owner's transactions per action.
func (s *Service) Summary(ctx context.Context, owner string) (Summary, error) {
	views, err := s.views(ctx, owner, "")
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		Incoming: ActionTotal{Total: decimal.Zero},
		Outgoing: ActionTotal{Total: decimal.Zero},
		Transfer: ActionTotal{Total: decimal.Zero},
	}
	for _, v := range views {
		var t *ActionTotal
		switch v.Action {
		case model.ActionIncoming:
			t = &sum.Incoming
		case model.ActionOutgoing:
			t = &sum.Outgoing
		default:
			t = &sum.Transfer
		}
		t.Count++
		t.Total = t.Total.Add(v.Amount)
	}
	sum.Net = sum.Incoming.Total.Sub(sum.Outgoing.Total)
	return sum, nil
}

// Audit re-checks every stored entry of the owner against the ledger
// invariants. An empty result means the ledger is sound.
func (s *Service) Audit(ctx context.Context, owner string) ([]ValidationError, error) {
	txns, err := loadTransactions(ctx, s.db.SQL(), `t.owner = ?`, owner)
	if err != nil {
		return nil, err
	}
	var entries []model.JournalEntry
	for _, t := range txns {
		if len(t.Entries) == 0 {
			entries = append(entries, model.JournalEntry{TransactionID: t.ID, Amount: decimal.Zero})
			continue
		}
		entries = append(entries, t.Entries...)
	}
	errs := ValidateEntries(entries)
	if len(errs) > 0 {
		s.log.Warn().Str("owner", owner).Int("violations", len(errs)).Msg("ledger audit found violations")
	}
	return errs, nil
}

func (s *Service) views(ctx context.Context, owner string, action model.Action) ([]View, error) {
	txns, err := loadTransactions(ctx, s.db.SQL(), `t.owner = ?`, owner)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(txns))
	for _, t := range txns {
		v := Derive(t)
		if action != "" && v.Action != action {
			continue
		}
		views = append(views, v)
	}
	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		}
		return views[i].ID > views[j].ID
	})
	return views, nil
}

// postingSide resolves one side of a new posting. A defaulted side takes the
// system group of that name directly instead of going through the aliases.
func (s *Service) postingSide(ctx context.Context, q store.Querier, action model.Action, role model.EntryType,
	name, owner string, system map[string]*model.AccountGroup, defaulted bool) (side, error) {
	if g := system[name]; defaulted && g != nil {
		return side{ref: g.ID, name: g.Name, typ: g.Type}, nil
	}
	return s.resolveSide(ctx, q, action, role, name, owner)
}

func (s *Service) resolveSide(ctx context.Context, q store.Querier, action model.Action, role model.EntryType, name, owner string) (side, error) {
	g, err := s.accounts.ResolveTx(ctx, q, name, owner)
	if err != nil {
		return side{}, err
	}
	if g != nil {
		return side{ref: g.ID, name: g.Name, typ: g.Type}, nil
	}
	return side{name: name, typ: provisionalType(action, role, s.accounts.InferType(name))}, nil
}

func insertEntry(ctx context.Context, q store.Querier, txnID int64, sd side, typ model.EntryType, amount decimal.Decimal) (model.JournalEntry, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO journal_entries (transaction_id, account_ref, account_name, account_type, entry_type, amount)
		VALUES (?, ?, ?, ?, ?, ?)`,
		txnID, nullInt(sd.ref), sd.name, string(sd.typ), string(typ), amount.String())
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("inserting %s entry: %w", typ, err)
	}
	entryID, err := res.LastInsertId()
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("inserting %s entry: %w", typ, err)
	}
	return model.JournalEntry{
		ID:            entryID,
		TransactionID: txnID,
		AccountRef:    sd.ref,
		AccountName:   sd.name,
		AccountType:   sd.typ,
		EntryType:     typ,
		Amount:        amount,
	}, nil
}

func updateEntry(ctx context.Context, q store.Querier, entryID int64, sd side, amount decimal.Decimal) error {
	_, err := q.ExecContext(ctx, `
		UPDATE journal_entries
		SET account_ref = ?, account_name = ?, account_type = ?, amount = ?
		WHERE id = ?`,
		nullInt(sd.ref), sd.name, string(sd.typ), amount.String(), entryID)
	if err != nil {
		return fmt.Errorf("updating entry %d: %w", entryID, err)
	}
	return nil
}

func loadTransaction(ctx context.Context, q store.Querier, txnID int64, owner string) (*model.Transaction, error) {
	txns, err := loadTransactions(ctx, q, `t.id = ? AND t.owner = ?`, txnID, owner)
	if err != nil || len(txns) == 0 {
		return nil, err
	}
	return &txns[0], nil
}

// loadTransactions returns matching transactions with their entries, newest
// first. where filters the transactions table aliased as t.
func loadTransactions(ctx context.Context, q store.Querier, where string, args ...any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT t.id, t.description, t.raw_text, t.confidence, t.owner,
		       t.guild_ref, t.channel_ref, t.message_ref, t.action, t.created_at, t.confirmed,
		       je.id, je.account_ref, je.account_name, je.account_type, je.entry_type, je.amount
		FROM transactions t
		LEFT JOIN journal_entries je ON je.transaction_id = t.id
		WHERE `+where+`
		ORDER BY t.created_at DESC, t.id DESC, je.id`, args...)
	if err != nil {
		return nil, store.Classify(fmt.Errorf("loading transactions: %w", err))
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var (
			t                              model.Transaction
			desc, guild                    sql.NullString
			action, created                string
			entryID, accountRef            sql.NullInt64
			accountName, accountType, kind sql.NullString
			amount                         sql.NullString
		)
		if err := rows.Scan(&t.ID, &desc, &t.RawText, &t.Confidence, &t.Owner,
			&guild, &t.Ref.Channel, &t.Ref.Message, &action, &created, &t.Confirmed,
			&entryID, &accountRef, &accountName, &accountType, &kind, &amount); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		if n := len(txns); n == 0 || txns[n-1].ID != t.ID {
			t.Description = desc.String
			t.Ref.Guild = guild.String
			t.Action = model.Action(action)
			if t.CreatedAt, err = store.ParseTime(created); err != nil {
				return nil, err
			}
			txns = append(txns, t)
		}
		if !entryID.Valid {
			continue
		}
		amt, err := decimal.NewFromString(amount.String)
		if err != nil {
			return nil, fmt.Errorf("parsing amount of entry %d: %w", entryID.Int64, err)
		}
		cur := &txns[len(txns)-1]
		cur.Entries = append(cur.Entries, model.JournalEntry{
			ID:            entryID.Int64,
			TransactionID: cur.ID,
			AccountRef:    accountRef.Int64,
			AccountName:   accountName.String,
			AccountType:   model.AccountType(accountType.String),
			EntryType:     model.EntryType(kind.String),
			Amount:        amt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, store.Classify(fmt.Errorf("loading transactions: %w", err))
	}
	return txns, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}
