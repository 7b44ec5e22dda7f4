package model

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the kind shared by every rejected request. Callers match
// it with errors.Is; nothing has been written when it is returned.
var ErrInvalidInput = errors.New("invalid input")

var (
	ErrInvalidAccountType = fmt.Errorf("%w: invalid account type", ErrInvalidInput)
	ErrInvalidAction      = fmt.Errorf("%w: invalid action", ErrInvalidInput)
	ErrInvalidAmount      = fmt.Errorf("%w: amount must be > 0 with at most 2 decimal places", ErrInvalidInput)
	ErrInvalidConfidence  = fmt.Errorf("%w: confidence must be within [0, 1]", ErrInvalidInput)
	ErrMissingAccount     = fmt.Errorf("%w: missing account name", ErrInvalidInput)
	ErrMissingOwner       = fmt.Errorf("%w: owner is required", ErrInvalidInput)
	ErrEmptyName          = fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	ErrDuplicateGroup     = fmt.Errorf("%w: account group already exists", ErrInvalidInput)
	ErrAliasConflict      = fmt.Errorf("%w: alias is already mapped to another account", ErrInvalidInput)
	ErrGroupNotFound      = fmt.Errorf("%w: account group not found", ErrInvalidInput)
)
