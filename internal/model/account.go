package model

import (
	"fmt"
	"strings"
	"time"
)

// AccountType classifies account groups in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// AccountTypes lists every account type in statement order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// NormalBalance returns the entry type that increases an account of this type.
func (t AccountType) NormalBalance() EntryType {
	if t == AccountTypeAsset || t == AccountTypeExpense {
		return EntryTypeDebit
	}
	return EntryTypeCredit
}

// ParseAccountType parses a case-insensitive account type string.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountType, s)
	}
	return t, nil
}

// AccountGroup is a canonical, owner-scoped account that aliases resolve to.
type AccountGroup struct {
	ID          int64
	Name        string // display name, case preserved
	Type        AccountType
	Owner       string
	Description string
	IsSystem    bool
	CreatedAt   time.Time
}

// AccountAlias maps a normalized name to exactly one AccountGroup per owner.
type AccountAlias struct {
	ID        int64
	Alias     string
	GroupID   int64
	Owner     string
	CreatedAt time.Time
}

// NormalizeName trims and lower-cases an account name for alias matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
