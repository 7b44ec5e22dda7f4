package journal

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/arung-agamani/yuuka/internal/id"
	"github.com/arung-agamani/yuuka/internal/model"
)

// ValidationError describes a single invariant violation found in stored
// journal entries.
type ValidationError struct {
	Invariant     int
	TransactionID int64
	Description   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, id.FormatTxnRef(e.TransactionID), e.Description)
}

var hundred = decimal.NewFromInt(100)

// ValidateAmount rejects non-positive amounts and amounts with more than two
// decimal places.
func ValidateAmount(amt decimal.Decimal) error {
	if !amt.IsPositive() {
		return fmt.Errorf("%w: got %s", model.ErrInvalidAmount, amt)
	}
	if !hasTwoDecimals(amt) {
		return fmt.Errorf("%w: got %s", model.ErrInvalidAmount, amt)
	}
	return nil
}

// ValidateIntent checks an intent before anything is written.
func ValidateIntent(in model.Intent) error {
	if !in.Action.Valid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidAction, in.Action)
	}
	if err := ValidateAmount(in.Amount); err != nil {
		return err
	}
	if math.IsNaN(in.Confidence) || in.Confidence < 0 || in.Confidence > 1 {
		return fmt.Errorf("%w: got %v", model.ErrInvalidConfidence, in.Confidence)
	}

	src := model.NormalizeName(in.Source)
	dst := model.NormalizeName(in.Destination)
	switch in.Action {
	case model.ActionTransfer:
		if src == "" || dst == "" {
			return fmt.Errorf("%w: transfer requires source and destination", model.ErrMissingAccount)
		}
	case model.ActionIncoming:
		if dst == "" {
			return fmt.Errorf("%w: incoming requires destination", model.ErrMissingAccount)
		}
	case model.ActionOutgoing:
		if src == "" {
			return fmt.Errorf("%w: outgoing requires source", model.ErrMissingAccount)
		}
	}
	return nil
}

// ValidateEntries enforces 5 invariants on stored journal entries, grouped by
// transaction.
func ValidateEntries(entries []model.JournalEntry) []ValidationError {
	var errs []ValidationError

	groups := make(map[int64][]model.JournalEntry)
	var order []int64
	for _, e := range entries {
		if _, seen := groups[e.TransactionID]; !seen {
			order = append(order, e.TransactionID)
		}
		groups[e.TransactionID] = append(groups[e.TransactionID], e)
	}

	for _, txnID := range order {
		group := groups[txnID]

		// Invariant 1: sum(debits) == sum(credits) per transaction.
		debits, credits := decimal.Zero, decimal.Zero
		nDebit, nCredit := 0, 0
		for _, e := range group {
			switch e.EntryType {
			case model.EntryTypeDebit:
				debits = debits.Add(e.Amount)
				nDebit++
			case model.EntryTypeCredit:
				credits = credits.Add(e.Amount)
				nCredit++
			}
		}
		if !debits.Equal(credits) {
			errs = append(errs, ValidationError{
				Invariant:     1,
				TransactionID: txnID,
				Description:   fmt.Sprintf("debits (%s) != credits (%s)", debits.StringFixed(2), credits.StringFixed(2)),
			})
		}

		// Invariant 2: exactly one debit and one credit entry.
		if nDebit != 1 || nCredit != 1 {
			errs = append(errs, ValidationError{
				Invariant:     2,
				TransactionID: txnID,
				Description:   fmt.Sprintf("expected 1 debit and 1 credit entry, got %d and %d", nDebit, nCredit),
			})
		}

		for _, e := range group {
			// Invariant 3: entry type is debit or credit, account type is known.
			if !e.EntryType.Valid() || !e.AccountType.Valid() {
				errs = append(errs, ValidationError{
					Invariant:     3,
					TransactionID: txnID,
					Description:   fmt.Sprintf("entry %d has entry type %q and account type %q", e.ID, e.EntryType, e.AccountType),
				})
			}

			// Invariant 4: positive amount.
			if !e.Amount.IsPositive() {
				errs = append(errs, ValidationError{
					Invariant:     4,
					TransactionID: txnID,
					Description:   fmt.Sprintf("entry %d amount %s is not positive", e.ID, e.Amount),
				})
			}

			// Invariant 5: no more than 2 decimal places.
			if !hasTwoDecimals(e.Amount) {
				errs = append(errs, ValidationError{
					Invariant:     5,
					TransactionID: txnID,
					Description:   fmt.Sprintf("entry %d amount %s has more than 2 decimal places", e.ID, e.Amount),
				})
			}
		}
	}

	return errs
}

func hasTwoDecimals(d decimal.Decimal) bool {
	return d.Mul(hundred).Equal(d.Mul(hundred).Floor())
}
