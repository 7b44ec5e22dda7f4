package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Action is what a transaction intent asks the engine to record.
type Action string

const (
	ActionIncoming Action = "incoming"
	ActionOutgoing Action = "outgoing"
	ActionTransfer Action = "transfer"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return a == ActionIncoming || a == ActionOutgoing || a == ActionTransfer
}

// ParseAction parses a case-insensitive action string.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
	return a, nil
}

// Intent is the structured output of the transaction parser. A zero Amount
// means the parser found none; empty strings mean absent fields.
type Intent struct {
	Action      Action
	Amount      decimal.Decimal
	Source      string
	Destination string
	Description string
	Confidence  float64
	RawText     string
}
