package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/arung-agamani/yuuka/internal/id"
	"github.com/arung-agamani/yuuka/internal/model"
)

// refPrefix marks message references created by imports.
const refPrefix = "import"

// Journal is the part of the posting engine an import needs.
type Journal interface {
	PostAt(ctx context.Context, in model.Intent, owner string, ref model.ExternalRef, at time.Time) (*model.Transaction, error)
	FindByMessageRef(ctx context.Context, owner, messageRef string) (*model.Transaction, error)
}

// Row is a bank row converted to an intent, ready to post.
type Row struct {
	Bank   model.BankTransaction
	Intent model.Intent
	Ref    model.ExternalRef
}

// ToIntent converts a bank row. Money out becomes an outgoing intent from
// bankAccount with no destination and money in an incoming intent to
// bankAccount with no source, so the journal books the other side to the
// system expense or income account. Zero rows are rejected.
func ToIntent(bt model.BankTransaction, bankAccount string) (Row, error) {
	if bt.Amount.IsZero() {
		return Row{}, fmt.Errorf("%w: zero amount for %q", model.ErrInvalidAmount, bt.Description)
	}
	in := model.Intent{
		Amount:      bt.Amount.Abs(),
		Description: bt.Description,
		Confidence:  1,
		RawText:     bt.Description,
	}
	if bt.Amount.IsNegative() {
		in.Action = model.ActionOutgoing
		in.Source = bankAccount
	} else {
		in.Action = model.ActionIncoming
		in.Destination = bankAccount
	}
	ref := model.ExternalRef{
		Channel: bt.Reference,
		Message: id.ContentRef(refPrefix, bt.Reference, bt.Date.Format("2006-01-02"), bt.Description, bt.Amount.String()),
	}
	return Row{Bank: bt, Intent: in, Ref: ref}, nil
}

// Result summarizes one import run.
type Result struct {
	Posted     []int64
	Duplicates int
}

// Importer posts parsed bank rows, skipping rows already imported.
type Importer struct {
	journal     Journal
	bankAccount string
	log         zerolog.Logger
}

// New creates an Importer posting against bankAccount.
func New(j Journal, bankAccount string, log zerolog.Logger) *Importer {
	return &Importer{journal: j, bankAccount: bankAccount, log: log}
}

// Post converts and posts rows for owner. Rows whose reference already exists
// are counted as duplicates. The first failure stops the run; rows posted
// before it stay posted.
func (im *Importer) Post(ctx context.Context, owner string, txns []model.BankTransaction) (Result, error) {
	var res Result
	for i, bt := range txns {
		row, err := ToIntent(bt, im.bankAccount)
		if err != nil {
			return res, fmt.Errorf("row %d: %w", i+1, err)
		}
		existing, err := im.journal.FindByMessageRef(ctx, owner, row.Ref.Message)
		if err != nil {
			return res, fmt.Errorf("row %d: %w", i+1, err)
		}
		if existing != nil {
			res.Duplicates++
			im.log.Debug().Str("ref", bt.Reference).Int64("txn_id", existing.ID).Msg("skipping imported row")
			continue
		}
		txn, err := im.journal.PostAt(ctx, row.Intent, owner, row.Ref, bt.Date)
		if err != nil {
			return res, fmt.Errorf("row %d: %w", i+1, err)
		}
		res.Posted = append(res.Posted, txn.ID)
	}
	return res, nil
}

// PostFile parses the file at path with p and posts its rows.
func (im *Importer) PostFile(ctx context.Context, owner string, p Parser, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return im.postFrom(ctx, owner, p, f, path)
}

func (im *Importer) postFrom(ctx context.Context, owner string, p Parser, r io.Reader, path string) (Result, error) {
	txns, err := p.Parse(r)
	if err != nil {
		return Result{}, err
	}
	res, err := im.Post(ctx, owner, txns)
	if err != nil {
		return res, err
	}
	im.log.Info().
		Str("file", path).
		Str("format", p.Format()).
		Int("posted", len(res.Posted)).
		Int("duplicates", res.Duplicates).
		Msg("imported bank file")
	return res, nil
}
