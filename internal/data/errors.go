package data

import "errors"

var (
	ErrInvalidArea      = errors.New("spawn needs exactly one of at or rect")
	ErrInvalidTuple     = errors.New("wrong coordinate count")
	ErrDuplicateMap     = errors.New("duplicate map id")
	ErrMissingMonster   = errors.New("spawn has no monster")
	ErrMonstersNotFound = errors.New("monsters file not found")
)
