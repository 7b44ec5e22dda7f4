package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arung-agamani/yuuka/internal/model"
)

// LedgerLine is one entry in an account ledger.
type LedgerLine struct {
	TransactionID int64
	Date          time.Time
	Description   string
	EntryType     model.EntryType
	Amount        decimal.Decimal
	Balance       decimal.Decimal // running balance after this entry
}

// Ledger is the entry history of one canonical account.
type Ledger struct {
	Account string
	Type    model.AccountType
	Balance decimal.Decimal
	Lines   []LedgerLine // newest first
}

// AccountLedger returns the entries of the account name resolves to, newest
// first, each with the running balance after it. limit <= 0 returns all
// entries. An unknown name yields an empty ledger.
func (s *Service) AccountLedger(ctx context.Context, owner, name string, limit int) (*Ledger, error) {
	r, err := s.loadResolver(ctx, owner)
	if err != nil {
		return nil, err
	}
	entries, err := s.loadEntries(ctx, owner, Period{})
	if err != nil {
		return nil, err
	}

	target := model.NormalizeName(name)
	ledger := &Ledger{Account: target, Type: model.AccountTypeAsset, Balance: decimal.Zero}
	if g, ok := r.lookup(name); ok {
		ledger.Account, ledger.Type = g.Name, g.Type
	}

	var lines []LedgerLine
	running := decimal.Zero
	typed := false
	for _, e := range entries {
		acct, typ := r.canonical(e.JournalEntry)
		if acct != ledger.Account && model.NormalizeName(acct) != target {
			continue
		}
		if !typed {
			ledger.Account, ledger.Type = acct, typ
			typed = true
		}
		delta := e.Amount
		if e.EntryType != ledger.Type.NormalBalance() {
			delta = delta.Neg()
		}
		running = running.Add(delta)
		lines = append(lines, LedgerLine{
			TransactionID: e.TransactionID,
			Date:          e.CreatedAt,
			Description:   e.Description,
			EntryType:     e.EntryType,
			Amount:        e.Amount,
			Balance:       running,
		})
	}
	ledger.Balance = running

	// entries are oldest first; report newest first
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}
	ledger.Lines = lines
	return ledger, nil
}
