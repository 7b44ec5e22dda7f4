package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/arung-agamani/yuuka/internal/id"
	"github.com/arung-agamani/yuuka/internal/journal"
	"github.com/arung-agamani/yuuka/internal/model"
	"github.com/arung-agamani/yuuka/internal/reports"
)

// Amounts are encoded as JSON strings by decimal.Decimal.

type groupJSON struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
}

func toGroup(g model.AccountGroup) groupJSON {
	return groupJSON{
		ID:          g.ID,
		Name:        g.Name,
		Type:        string(g.Type),
		Description: g.Description,
		IsSystem:    g.IsSystem,
		CreatedAt:   g.CreatedAt,
	}
}

type aliasJSON struct {
	ID        int64     `json:"id"`
	Alias     string    `json:"alias"`
	GroupID   int64     `json:"group_id"`
	CreatedAt time.Time `json:"created_at"`
}

func toAlias(a model.AccountAlias) aliasJSON {
	return aliasJSON{ID: a.ID, Alias: a.Alias, GroupID: a.GroupID, CreatedAt: a.CreatedAt}
}

type refJSON struct {
	Guild   string `json:"guild,omitempty"`
	Channel string `json:"channel,omitempty"`
	Message string `json:"message,omitempty"`
}

type entryJSON struct {
	ID          int64           `json:"id"`
	AccountRef  int64           `json:"account_ref,omitempty"`
	AccountName string          `json:"account_name"`
	AccountType string          `json:"account_type"`
	EntryType   string          `json:"entry_type"`
	Amount      decimal.Decimal `json:"amount"`
}

type transactionJSON struct {
	ID          int64       `json:"id"`
	Ref         string      `json:"ref"`
	Description string      `json:"description,omitempty"`
	RawText     string      `json:"raw_text,omitempty"`
	Confidence  float64     `json:"confidence"`
	External    refJSON     `json:"external_ref"`
	CreatedAt   time.Time   `json:"created_at"`
	Entries     []entryJSON `json:"entries"`
	Action      string      `json:"action"`
	Source      string      `json:"source"`
	Destination string      `json:"destination"`
}

func toTransaction(t model.Transaction) transactionJSON {
	v := journal.Derive(t)
	out := transactionJSON{
		ID:          t.ID,
		Ref:         id.FormatTxnRef(t.ID),
		Description: t.Description,
		RawText:     t.RawText,
		Confidence:  t.Confidence,
		External:    refJSON(t.Ref),
		CreatedAt:   t.CreatedAt,
		Action:      string(v.Action),
		Source:      v.Source,
		Destination: v.Destination,
		Entries:     make([]entryJSON, 0, len(t.Entries)),
	}
	for _, e := range t.Entries {
		out.Entries = append(out.Entries, entryJSON{
			ID:          e.ID,
			AccountRef:  e.AccountRef,
			AccountName: e.AccountName,
			AccountType: string(e.AccountType),
			EntryType:   string(e.EntryType),
			Amount:      e.Amount,
		})
	}
	return out
}

type viewJSON struct {
	ID          int64           `json:"id"`
	Ref         string          `json:"ref"`
	Action      string          `json:"action"`
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toViews(vs []journal.View) []viewJSON {
	out := make([]viewJSON, 0, len(vs))
	for _, v := range vs {
		out = append(out, viewJSON{
			ID:          v.ID,
			Ref:         id.FormatTxnRef(v.ID),
			Action:      string(v.Action),
			Amount:      v.Amount,
			Source:      v.Source,
			Destination: v.Destination,
			Description: v.Description,
			CreatedAt:   v.CreatedAt,
		})
	}
	return out
}

type actionTotalJSON struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type summaryJSON struct {
	Incoming actionTotalJSON `json:"incoming"`
	Outgoing actionTotalJSON `json:"outgoing"`
	Transfer actionTotalJSON `json:"transfer"`
	Net      decimal.Decimal `json:"net"`
}

func toSummary(s journal.Summary) summaryJSON {
	return summaryJSON{
		Incoming: actionTotalJSON(s.Incoming),
		Outgoing: actionTotalJSON(s.Outgoing),
		Transfer: actionTotalJSON(s.Transfer),
		Net:      s.Net,
	}
}

type balanceJSON struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Balance decimal.Decimal `json:"balance"`
}

func toBalances(bs []reports.AccountBalance) []balanceJSON {
	out := make([]balanceJSON, 0, len(bs))
	for _, b := range bs {
		out = append(out, balanceJSON{Name: b.Name, Type: string(b.Type), Debit: b.Debit, Credit: b.Credit, Balance: b.Balance})
	}
	return out
}

type lineJSON struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

func toLines(ls []reports.LineItem) []lineJSON {
	out := make([]lineJSON, 0, len(ls))
	for _, l := range ls {
		out = append(out, lineJSON(l))
	}
	return out
}

type trialLineJSON struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

type trialBalanceJSON struct {
	Accounts     []trialLineJSON `json:"accounts"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	IsBalanced   bool            `json:"is_balanced"`
	Difference   decimal.Decimal `json:"difference"`
}

func toTrialBalance(tb *reports.TrialBalanceResult) trialBalanceJSON {
	out := trialBalanceJSON{
		Accounts:     make([]trialLineJSON, 0, len(tb.Accounts)),
		TotalDebits:  tb.TotalDebits,
		TotalCredits: tb.TotalCredits,
		IsBalanced:   tb.IsBalanced,
		Difference:   tb.Difference,
	}
	for _, a := range tb.Accounts {
		out.Accounts = append(out.Accounts, trialLineJSON{Name: a.Name, Type: string(a.Type), Debit: a.Debit, Credit: a.Credit})
	}
	return out
}

type incomeStatementJSON struct {
	Start         string          `json:"start,omitempty"`
	End           string          `json:"end,omitempty"`
	Revenue       []lineJSON      `json:"revenue"`
	Expenses      []lineJSON      `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetIncome     decimal.Decimal `json:"net_income"`
}

func toIncomeStatement(is *reports.IncomeStatementResult) incomeStatementJSON {
	return incomeStatementJSON{
		Start:         formatDay(is.Period.Start),
		End:           formatDay(is.Period.End),
		Revenue:       toLines(is.Revenue),
		Expenses:      toLines(is.Expenses),
		TotalRevenue:  is.TotalRevenue,
		TotalExpenses: is.TotalExpenses,
		NetIncome:     is.NetIncome,
	}
}

type balanceSheetJSON struct {
	Assets           []lineJSON      `json:"assets"`
	Liabilities      []lineJSON      `json:"liabilities"`
	Equity           []lineJSON      `json:"equity"`
	RetainedEarnings decimal.Decimal `json:"retained_earnings"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	TotalEquity      decimal.Decimal `json:"total_equity"`
	IsBalanced       bool            `json:"is_balanced"`
}

func toBalanceSheet(bs *reports.BalanceSheetResult) balanceSheetJSON {
	return balanceSheetJSON{
		Assets:           toLines(bs.Assets),
		Liabilities:      toLines(bs.Liabilities),
		Equity:           toLines(bs.Equity),
		RetainedEarnings: bs.RetainedEarnings,
		TotalAssets:      bs.TotalAssets,
		TotalLiabilities: bs.TotalLiabilities,
		TotalEquity:      bs.TotalEquity,
		IsBalanced:       bs.IsBalanced,
	}
}

type ledgerLineJSON struct {
	TransactionID int64           `json:"transaction_id"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description,omitempty"`
	EntryType     string          `json:"entry_type"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
}

type ledgerJSON struct {
	Account string           `json:"account"`
	Type    string           `json:"type"`
	Balance decimal.Decimal  `json:"balance"`
	Lines   []ledgerLineJSON `json:"lines"`
}

func toLedger(l *reports.Ledger) ledgerJSON {
	out := ledgerJSON{
		Account: l.Account,
		Type:    string(l.Type),
		Balance: l.Balance,
		Lines:   make([]ledgerLineJSON, 0, len(l.Lines)),
	}
	for _, ln := range l.Lines {
		out.Lines = append(out.Lines, ledgerLineJSON{
			TransactionID: ln.TransactionID,
			Date:          ln.Date,
			Description:   ln.Description,
			EntryType:     string(ln.EntryType),
			Amount:        ln.Amount,
			Balance:       ln.Balance,
		})
	}
	return out
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dayLayout)
}
