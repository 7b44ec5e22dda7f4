package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arung-agamani/yuuka/internal/model"
)

func txnWith(debitName string, debitType model.AccountType, creditName string, creditType model.AccountType) model.Transaction {
	return model.Transaction{
		ID: 7,
		Entries: []model.JournalEntry{
			{AccountName: debitName, AccountType: debitType, EntryType: model.EntryTypeDebit, Amount: dec("25.50")},
			{AccountName: creditName, AccountType: creditType, EntryType: model.EntryTypeCredit, Amount: dec("25.50")},
		},
	}
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name string
		txn  model.Transaction
		want model.Action
	}{
		{"revenue credit", txnWith("gopay", model.AccountTypeAsset, "Income", model.AccountTypeRevenue), model.ActionIncoming},
		{"expense debit", txnWith("Food", model.AccountTypeExpense, "Cash", model.AccountTypeAsset), model.ActionOutgoing},
		{"asset to asset", txnWith("Savings", model.AccountTypeAsset, "Bank", model.AccountTypeAsset), model.ActionTransfer},
		{"paying a liability", txnWith("Credit Card", model.AccountTypeLiability, "Bank", model.AccountTypeAsset), model.ActionTransfer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Derive(tt.txn)
			assert.Equal(t, tt.want, v.Action)
			assert.Equal(t, tt.txn.Entries[0].AccountName, v.Destination)
			assert.Equal(t, tt.txn.Entries[1].AccountName, v.Source)
			assert.True(t, v.Amount.Equal(dec("25.50")))
			assert.Equal(t, int64(7), v.ID)
		})
	}
}

func TestProvisionalType(t *testing.T) {
	tests := []struct {
		action   model.Action
		role     model.EntryType
		inferred model.AccountType
		want     model.AccountType
	}{
		{model.ActionIncoming, model.EntryTypeDebit, model.AccountTypeAsset, model.AccountTypeAsset},
		{model.ActionIncoming, model.EntryTypeDebit, model.AccountTypeRevenue, model.AccountTypeAsset},
		{model.ActionIncoming, model.EntryTypeCredit, model.AccountTypeAsset, model.AccountTypeRevenue},
		{model.ActionOutgoing, model.EntryTypeDebit, model.AccountTypeAsset, model.AccountTypeExpense},
		{model.ActionOutgoing, model.EntryTypeCredit, model.AccountTypeLiability, model.AccountTypeLiability},
		{model.ActionOutgoing, model.EntryTypeCredit, model.AccountTypeExpense, model.AccountTypeAsset},
		{model.ActionTransfer, model.EntryTypeDebit, model.AccountTypeLiability, model.AccountTypeLiability},
		{model.ActionTransfer, model.EntryTypeCredit, model.AccountTypeRevenue, model.AccountTypeAsset},
	}
	for _, tt := range tests {
		got := provisionalType(tt.action, tt.role, tt.inferred)
		assert.Equal(t, tt.want, got, "%s/%s/%s", tt.action, tt.role, tt.inferred)
	}
}
