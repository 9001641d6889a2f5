package world

import "errors"

// Sentinel errors for the entity lifecycle.
var (
	ErrInstanceNotFound = errors.New("instance not found")
	ErrNilMonster       = errors.New("nil monster definition")
)
