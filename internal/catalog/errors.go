package catalog

import "errors"

// Sentinel errors for the monster catalog.
var (
	ErrMonsterNotFound  = errors.New("monster not found in catalog")
	ErrDuplicateMonster = errors.New("duplicate monster id")
	ErrInvalidMonster   = errors.New("invalid monster definition")
)
