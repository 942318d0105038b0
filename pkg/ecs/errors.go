package ecs

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrEntityNotFound is returned when attempting to operate on a non-existent entity.
	ErrEntityNotFound = eris.New("entity does not exist")

	// ErrComponentNotFound is returned when a component name isn't registered in the world.
	ErrComponentNotFound = eris.New("component is not registered")

	// ErrCapacityExceeded matches every *CapacityExceededError with errors.Is.
	ErrCapacityExceeded = eris.New("capacity exceeded")
)

// CapacityKind names the fixed capacity that was exhausted.
type CapacityKind uint8

const (
	CapacityEntities       CapacityKind = iota // Live entities reached MaxEntities-1
	CapacityComponentTypes                     // Distinct component types reached MaxComponents
)

func (k CapacityKind) String() string {
	switch k {
	case CapacityEntities:
		return "entities"
	case CapacityComponentTypes:
		return "component types"
	default:
		return "unknown"
	}
}

// CapacityExceededError is returned when a world runs out of entity ids or component type ids.
// These are resource exhaustion conditions, the caller decides whether they are fatal.
type CapacityExceededError struct {
	Kind  CapacityKind
	Limit int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("%s capacity exceeded: limit is %d", e.Kind, e.Limit)
}

// Is reports whether target is ErrCapacityExceeded.
func (e *CapacityExceededError) Is(target error) bool {
	return target == ErrCapacityExceeded //nolint:errorlint // sentinel comparison
}
