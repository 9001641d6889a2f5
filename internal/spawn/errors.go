package spawn

import (
	"errors"
	"fmt"

	"github.com/udisondev/la2spawn/internal/model"
)

// Sentinel errors for spawn configuration and lookups.
var (
	ErrUnresolvedMonster   = errors.New("monster reference does not resolve")
	ErrDuplicateDefinition = errors.New("duplicate spawn definition id")
	ErrInvertedArea        = errors.New("inverted spawn area")
	ErrMissingEventGate    = errors.New("gated trigger without event gate")
	ErrUnknownTrigger      = model.ErrUnknownTrigger
	ErrInvalidQuantity     = errors.New("spawn quantity must be positive")
	ErrWrongMap            = errors.New("spawn definition belongs to another map")
	ErrDefinitionNotFound  = errors.New("spawn definition not found")
	ErrMapNotLoaded        = errors.New("map not loaded")
)

// ConfigError is a fatal configuration problem found while loading a map.
// A map with any ConfigError never activates.
type ConfigError struct {
	MapID        int32
	DefinitionID int32
	Err          error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("map %d spawn %d: %v", e.MapID, e.DefinitionID, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
