package accounts

import (
	"strings"

	"github.com/arung-agamani/yuuka/internal/model"
)

// Rule maps a set of substring keywords to an account type.
type Rule struct {
	Type     model.AccountType
	Keywords []string
}

// Inferrer classifies free-form account names by keyword. Rules are checked
// in order and the first match wins; names matching nothing are assets.
type Inferrer struct {
	rules []Rule
}

// inferenceOrder is the precedence used when rules come from a keyword map.
var inferenceOrder = []model.AccountType{
	model.AccountTypeRevenue,
	model.AccountTypeExpense,
	model.AccountTypeAsset,
	model.AccountTypeLiability,
}

// NewInferrer creates an Inferrer from ordered rules. Keywords are
// lower-cased.
func NewInferrer(rules []Rule) *Inferrer {
	inf := &Inferrer{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = model.NormalizeName(k); k != "" {
				kws = append(kws, k)
			}
		}
		inf.rules = append(inf.rules, Rule{Type: r.Type, Keywords: kws})
	}
	return inf
}

// NewInferrerFromKeywords builds rules from per-type keyword lists, using the
// fixed precedence revenue, expense, asset, liability. Types missing from
// keywords fall back to the default list.
func NewInferrerFromKeywords(keywords map[model.AccountType][]string) *Inferrer {
	defaults := DefaultKeywords()
	rules := make([]Rule, 0, len(inferenceOrder))
	for _, t := range inferenceOrder {
		kws, ok := keywords[t]
		if !ok {
			kws = defaults[t]
		}
		rules = append(rules, Rule{Type: t, Keywords: kws})
	}
	return NewInferrer(rules)
}

// DefaultInferrer returns an Inferrer using DefaultKeywords.
func DefaultInferrer() *Inferrer {
	return NewInferrerFromKeywords(DefaultKeywords())
}

// Infer returns the account type suggested by name.
func (i *Inferrer) Infer(name string) model.AccountType {
	n := model.NormalizeName(name)
	if n == "" {
		return model.AccountTypeAsset
	}
	for _, r := range i.rules {
		for _, k := range r.Keywords {
			if strings.Contains(n, k) {
				return r.Type
			}
		}
	}
	return model.AccountTypeAsset
}

// DefaultKeywords returns the built-in keyword lists per account type.
func DefaultKeywords() map[model.AccountType][]string {
	return map[model.AccountType][]string{
		model.AccountTypeRevenue: {
			"income", "salary", "wage", "revenue", "earnings",
			"bonus", "commission", "dividend", "interest",
		},
		model.AccountTypeExpense: {
			"expense", "food", "lunch", "dinner", "breakfast",
			"transport", "commute", "rent", "utility", "subscription",
			"shopping", "entertainment", "coffee", "snack",
		},
		model.AccountTypeAsset: {
			"bank", "wallet", "cash", "account", "savings", "pocket",
			"gopay", "ovo", "dana", "shopeepay", "paypal", "venmo",
		},
		model.AccountTypeLiability: {
			"loan", "debt", "credit card", "mortgage", "payable", "owe",
		},
	}
}
