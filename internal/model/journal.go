package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the side of a journal entry.
type EntryType string

const (
	EntryTypeDebit  EntryType = "debit"
	EntryTypeCredit EntryType = "credit"
)

// Valid reports whether e is debit or credit.
func (e EntryType) Valid() bool {
	return e == EntryTypeDebit || e == EntryTypeCredit
}

// JournalEntry is one side of a transaction.
type JournalEntry struct {
	ID            int64
	TransactionID int64
	AccountRef    int64       // account group id; 0 when the name did not resolve
	AccountName   string      // canonical display name, or the raw lower-cased name
	AccountType   AccountType // type recorded at posting time
	EntryType     EntryType
	Amount        decimal.Decimal
}

// ExternalRef carries correlation identifiers from the front end. They are
// opaque to the engine.
type ExternalRef struct {
	Guild   string
	Channel string
	Message string
}

// Transaction groups a debit and a credit journal entry.
type Transaction struct {
	ID          int64
	Description string
	RawText     string
	Confidence  float64
	Owner       string
	Ref         ExternalRef
	Action      Action // action the transaction was posted with
	CreatedAt   time.Time
	Confirmed   bool
	Entries     []JournalEntry
}

// TotalDebits sums the debit entries.
func (t Transaction) TotalDebits() decimal.Decimal {
	return t.total(EntryTypeDebit)
}

// TotalCredits sums the credit entries.
func (t Transaction) TotalCredits() decimal.Decimal {
	return t.total(EntryTypeCredit)
}

// IsBalanced reports whether debits equal credits.
func (t Transaction) IsBalanced() bool {
	return t.TotalDebits().Equal(t.TotalCredits())
}

// Amount returns the transaction amount (the debit total).
func (t Transaction) Amount() decimal.Decimal {
	return t.TotalDebits()
}

// Debit returns the first debit entry.
func (t Transaction) Debit() (JournalEntry, bool) {
	return t.first(EntryTypeDebit)
}

// Credit returns the first credit entry.
func (t Transaction) Credit() (JournalEntry, bool) {
	return t.first(EntryTypeCredit)
}

func (t Transaction) total(side EntryType) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range t.Entries {
		if e.EntryType == side {
			sum = sum.Add(e.Amount)
		}
	}
	return sum
}

func (t Transaction) first(side EntryType) (JournalEntry, bool) {
	for _, e := range t.Entries {
		if e.EntryType == side {
			return e, true
		}
	}
	return JournalEntry{}, false
}
