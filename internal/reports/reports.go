// Package reports computes balances and financial statements from the journal.
// Every read resolves account names through the owner's groups and aliases so
// that entries posted under different aliases land in one canonical bucket.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arung-agamani/yuuka/internal/model"
	"github.com/arung-agamani/yuuka/internal/store"
)

// Epsilon is the tolerance of the balance checks, one hundredth of a
// currency unit.
var Epsilon = decimal.New(1, -2)

// Service answers balance and report queries.
type Service struct {
	db  *store.DB
	log zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used to report integrity anomalies.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates a report Service.
func NewService(db *store.DB, opts ...Option) *Service {
	s := &Service{db: db, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Period bounds a report by transaction date, inclusive on both ends. Zero
// times leave that end open.
type Period struct {
	Start time.Time
	End   time.Time
}

// Validate rejects a period that ends before it starts.
func (p Period) Validate() error {
	if !p.Start.IsZero() && !p.End.IsZero() && store.FormatDate(p.Start) > store.FormatDate(p.End) {
		return fmt.Errorf("%w: period start %s is after end %s",
			model.ErrInvalidInput, store.FormatDate(p.Start), store.FormatDate(p.End))
	}
	return nil
}

// AccountBalance is one canonical account's totals.
type AccountBalance struct {
	Name    string
	Type    model.AccountType
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Balance decimal.Decimal // signed by the account type's normal balance
}

// LineItem is a named amount in a statement.
type LineItem struct {
	Name   string
	Amount decimal.Decimal
}

// TrialBalanceLine is one account row of a trial balance. Debit and credit
// are gross totals, not netted.
type TrialBalanceLine struct {
	Name   string
	Type   model.AccountType
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// TrialBalanceResult lists every account's gross totals. IsBalanced false is
// a data-integrity signal.
type TrialBalanceResult struct {
	Accounts     []TrialBalanceLine
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
	IsBalanced   bool
	Difference   decimal.Decimal // TotalDebits - TotalCredits
}

// IncomeStatementResult summarizes revenue and expenses over a period.
type IncomeStatementResult struct {
	Period        Period
	Revenue       []LineItem
	Expenses      []LineItem
	TotalRevenue  decimal.Decimal
	TotalExpenses decimal.Decimal
	NetIncome     decimal.Decimal
}

// BalanceSheetResult partitions balances by type. Revenue and expense
// balances are folded into equity as retained earnings.
type BalanceSheetResult struct {
	Assets           []LineItem
	Liabilities      []LineItem
	Equity           []LineItem
	RetainedEarnings decimal.Decimal
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	TotalEquity      decimal.Decimal
	IsBalanced       bool
}

// Balances returns every account the owner has entries in, sorted by name.
func (s *Service) Balances(ctx context.Context, owner string) ([]AccountBalance, error) {
	buckets, err := s.buckets(ctx, owner, Period{})
	if err != nil {
		return nil, err
	}
	out := make([]AccountBalance, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, AccountBalance{
			Name:    b.name,
			Type:    b.typ,
			Debit:   b.debit,
			Credit:  b.credit,
			Balance: signed(b.typ, b.debit, b.credit),
		})
	}
	return out, nil
}

// BalancesByAccount maps each canonical account name to its signed balance.
// Asset and expense balances are debits minus credits; liability, equity and
// revenue balances are credits minus debits.
func (s *Service) BalancesByAccount(ctx context.Context, owner string) (map[string]decimal.Decimal, error) {
	balances, err := s.Balances(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		out[b.Name] = b.Balance
	}
	return out, nil
}

// TrialBalance sums gross debits and credits per account and overall.
func (s *Service) TrialBalance(ctx context.Context, owner string) (*TrialBalanceResult, error) {
	buckets, err := s.buckets(ctx, owner, Period{})
	if err != nil {
		return nil, err
	}
	res := &TrialBalanceResult{
		Accounts:     make([]TrialBalanceLine, 0, len(buckets)),
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}
	for _, b := range buckets {
		res.Accounts = append(res.Accounts, TrialBalanceLine{Name: b.name, Type: b.typ, Debit: b.debit, Credit: b.credit})
		res.TotalDebits = res.TotalDebits.Add(b.debit)
		res.TotalCredits = res.TotalCredits.Add(b.credit)
	}
	res.Difference = res.TotalDebits.Sub(res.TotalCredits)
	res.IsBalanced = withinEpsilon(res.Difference)
	if !res.IsBalanced {
		s.log.Error().
			Str("owner", owner).
			Str("difference", res.Difference.String()).
			Msg("trial balance does not balance")
	}
	return res, nil
}

// IncomeStatement reports revenue and expenses for transactions created within
// the period. Revenue accounts contribute credits minus debits, expense
// accounts debits minus credits.
func (s *Service) IncomeStatement(ctx context.Context, owner string, period Period) (*IncomeStatementResult, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	buckets, err := s.buckets(ctx, owner, period)
	if err != nil {
		return nil, err
	}
	res := &IncomeStatementResult{
		Period:        period,
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, b := range buckets {
		switch b.typ {
		case model.AccountTypeRevenue:
			amt := b.credit.Sub(b.debit)
			res.Revenue = append(res.Revenue, LineItem{Name: b.name, Amount: amt})
			res.TotalRevenue = res.TotalRevenue.Add(amt)
		case model.AccountTypeExpense:
			amt := b.debit.Sub(b.credit)
			res.Expenses = append(res.Expenses, LineItem{Name: b.name, Amount: amt})
			res.TotalExpenses = res.TotalExpenses.Add(amt)
		}
	}
	res.NetIncome = res.TotalRevenue.Sub(res.TotalExpenses)
	return res, nil
}

// BalanceSheet partitions balances into assets, liabilities and equity, and
// checks the accounting equation.
func (s *Service) BalanceSheet(ctx context.Context, owner string) (*BalanceSheetResult, error) {
	balances, err := s.Balances(ctx, owner)
	if err != nil {
		return nil, err
	}
	res := &BalanceSheetResult{
		RetainedEarnings: decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	for _, b := range balances {
		item := LineItem{Name: b.Name, Amount: b.Balance}
		switch b.Type {
		case model.AccountTypeAsset:
			res.Assets = append(res.Assets, item)
			res.TotalAssets = res.TotalAssets.Add(b.Balance)
		case model.AccountTypeLiability:
			res.Liabilities = append(res.Liabilities, item)
			res.TotalLiabilities = res.TotalLiabilities.Add(b.Balance)
		case model.AccountTypeEquity:
			res.Equity = append(res.Equity, item)
			res.TotalEquity = res.TotalEquity.Add(b.Balance)
		case model.AccountTypeRevenue:
			res.RetainedEarnings = res.RetainedEarnings.Add(b.Balance)
		case model.AccountTypeExpense:
			res.RetainedEarnings = res.RetainedEarnings.Sub(b.Balance)
		}
	}
	res.TotalEquity = res.TotalEquity.Add(res.RetainedEarnings)
	res.IsBalanced = withinEpsilon(res.TotalAssets.Sub(res.TotalLiabilities.Add(res.TotalEquity)))
	if !res.IsBalanced {
		s.log.Error().
			Str("owner", owner).
			Str("assets", res.TotalAssets.String()).
			Str("liabilities", res.TotalLiabilities.String()).
			Str("equity", res.TotalEquity.String()).
			Msg("balance sheet does not balance")
	}
	return res, nil
}

// SpendingByCategory totals debits to expense accounts in the period, largest
// first.
func (s *Service) SpendingByCategory(ctx context.Context, owner string, period Period) ([]LineItem, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	buckets, err := s.buckets(ctx, owner, period)
	if err != nil {
		return nil, err
	}
	var out []LineItem
	for _, b := range buckets {
		if b.typ == model.AccountTypeExpense && b.debit.IsPositive() {
			out = append(out, LineItem{Name: b.name, Amount: b.debit})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// AssetBalances returns only the asset accounts.
func (s *Service) AssetBalances(ctx context.Context, owner string) ([]AccountBalance, error) {
	balances, err := s.Balances(ctx, owner)
	if err != nil {
		return nil, err
	}
	var out []AccountBalance
	for _, b := range balances {
		if b.Type == model.AccountTypeAsset {
			out = append(out, b)
		}
	}
	return out, nil
}

// TotalAssets sums the asset balances.
func (s *Service) TotalAssets(ctx context.Context, owner string) (decimal.Decimal, error) {
	assets, err := s.AssetBalances(ctx, owner)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range assets {
		total = total.Add(a.Balance)
	}
	return total, nil
}

func signed(t model.AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	if t.NormalBalance() == model.EntryTypeDebit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

func withinEpsilon(d decimal.Decimal) bool {
	return d.Abs().LessThan(Epsilon)
}
