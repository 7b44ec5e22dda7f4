package accounts

import "github.com/arung-agamani/yuuka/internal/model"

// SystemGroup describes a group every owner gets on first use.
type SystemGroup struct {
	Name        string
	Type        model.AccountType
	Description string
}

// Default names the posting engine falls back to when an intent omits a side.
const (
	DefaultIncomeName  = "income"
	DefaultExpenseName = "expense"
)

// DefaultSystemGroups returns the Income, Expense and Cash system groups.
func DefaultSystemGroups() []SystemGroup {
	return []SystemGroup{
		{Name: "Income", Type: model.AccountTypeRevenue, Description: "Default income account"},
		{Name: "Expense", Type: model.AccountTypeExpense, Description: "Default expense account"},
		{Name: "Cash", Type: model.AccountTypeAsset, Description: "Default cash/wallet account"},
	}
}

// DefaultChart returns a starter personal chart of accounts with common
// aliases. It is applied on top of the system groups by `init --chart` and
// `accounts apply --default`.
func DefaultChart() *Chart {
	return &Chart{Groups: []ChartGroup{
		{Name: "Bank", Type: "asset", Description: "Primary bank account", Aliases: []string{"bank account", "main bank"}},
		{Name: "Savings", Type: "asset", Description: "Savings account"},
		{Name: "GoPay", Type: "asset", Description: "GoPay e-wallet", Aliases: []string{"gopay", "go-pay"}},
		{Name: "Credit Card", Type: "liability", Description: "Credit card balance", Aliases: []string{"cc"}},
		{Name: "Opening Balance", Type: "equity", Description: "Balances brought forward"},
		{Name: "Salary", Type: "revenue", Aliases: []string{"gaji", "paycheck"}},
		{Name: "Food", Type: "expense", Aliases: []string{"lunch", "dinner", "breakfast", "makan"}},
		{Name: "Transport", Type: "expense", Aliases: []string{"commute", "ojek", "taxi"}},
		{Name: "Subscriptions", Type: "expense", Aliases: []string{"subscription"}},
		{Name: "Rent", Type: "expense"},
	}}
}
