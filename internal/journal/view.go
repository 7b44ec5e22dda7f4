package journal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/arung-agamani/yuuka/internal/model"
)

// View is the single-entry reading of a transaction: what happened, from
// where, to where. It is computed from the journal entries on every read.
type View struct {
	ID          int64
	Action      model.Action
	Amount      decimal.Decimal
	Source      string // credit side
	Destination string // debit side
	Description string
	Confidence  float64
	Ref         model.ExternalRef
	CreatedAt   time.Time
}

// Derive builds the View of txn. A credit to a revenue account reads as
// incoming, a debit to an expense account as outgoing, anything else as a
// transfer.
func Derive(txn model.Transaction) View {
	v := View{
		ID:          txn.ID,
		Amount:      txn.Amount(),
		Description: txn.Description,
		Confidence:  txn.Confidence,
		Ref:         txn.Ref,
		CreatedAt:   txn.CreatedAt,
		Action:      model.ActionTransfer,
	}
	debit, hasDebit := txn.Debit()
	credit, hasCredit := txn.Credit()
	if hasDebit {
		v.Destination = debit.AccountName
	}
	if hasCredit {
		v.Source = credit.AccountName
	}

	switch {
	case hasCredit && credit.AccountType == model.AccountTypeRevenue:
		v.Action = model.ActionIncoming
	case hasDebit && debit.AccountType == model.AccountTypeExpense:
		v.Action = model.ActionOutgoing
	}
	return v
}

// provisionalType picks the type recorded for an entry whose name did not
// resolve to a group. The role each side plays is fixed by the action.
func provisionalType(action model.Action, side model.EntryType, inferred model.AccountType) model.AccountType {
	switch action {
	case model.ActionIncoming:
		if side == model.EntryTypeCredit {
			return model.AccountTypeRevenue
		}
		if inferred == model.AccountTypeAsset || inferred == model.AccountTypeExpense {
			return inferred
		}
		return model.AccountTypeAsset
	case model.ActionOutgoing:
		if side == model.EntryTypeDebit {
			return model.AccountTypeExpense
		}
		if inferred == model.AccountTypeAsset || inferred == model.AccountTypeLiability {
			return inferred
		}
		return model.AccountTypeAsset
	default:
		if inferred == model.AccountTypeAsset || inferred == model.AccountTypeLiability {
			return inferred
		}
		return model.AccountTypeAsset
	}
}
