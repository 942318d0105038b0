// Package ecs is an entity component system core. Entities are opaque IDs, components of each
// type live packed in a dense store, and every entity carries a bitmask of the component types
// it holds so that queries never touch the stores.
package ecs

import (
	"reflect"

	"github.com/0ctahedral/ecs/pkg/assert"
	"github.com/rotisserie/eris"
)

// RegisterComponent registers a component type. Registration is optional, AddComponent registers
// unseen types itself, but registering up front fixes the type IDs. Registering a type twice is a
// no-op. Returns a *CapacityExceededError when the world already has MaxComponents types.
func RegisterComponent[T Component](w *World) error {
	_, err := registerComponent[T](w)
	return err
}

// registerComponent registers T and logs newly registered types.
func registerComponent[T Component](w *World) (componentID, error) {
	before := w.components.count()
	cid, err := registerType[T](&w.components)
	if err != nil {
		return 0, err
	}
	if w.components.count() > before {
		w.logger.Debug().
			Int("component_id", int(cid)).
			Str("component_name", w.components.names[cid]).
			Msg("component registered")
	}
	return cid, nil
}

// AddComponent attaches a component to a live entity. If the entity already has a component of
// this type, its value is replaced in place. Returns ErrEntityNotFound if the entity isn't alive
// and a *CapacityExceededError if T is a new type and the world has no type IDs left.
func AddComponent[T Component](w *World, eid EntityID, component T) error {
	if !w.Alive(eid) {
		return eris.Wrapf(ErrEntityNotFound, "entity %d", eid)
	}

	cid, err := registerComponent[T](w)
	if err != nil {
		return err
	}

	store := storeFor[T](w, cid)
	if replaced := store.add(eid, component); replaced {
		assert.That(w.masks[eid].has(cid), "entity %d has component %d but its bit is unset", eid, cid)
		w.logger.Debug().
			Uint32("entity_id", uint32(eid)).
			Int("component_id", int(cid)).
			Str("component_name", component.Name()).
			Msg("component replaced")
		return nil
	}
	w.masks[eid].set(cid)
	return nil
}

// RemoveComponent removes a component from an entity. No-op if the entity doesn't have it.
// Returns true if a component was removed.
func RemoveComponent[T Component](w *World, eid EntityID) bool {
	cid, ok := lookupType[T](&w.components)
	if !ok {
		return false
	}
	store, ok := existingStore[T](w, cid)
	if !ok || !store.remove(eid) {
		return false
	}
	w.masks[eid].clear(cid)
	return true
}

// GetComponent returns a pointer to the entity's component, or false if it has none. The pointer
// points into the store's dense array: writes through it update the component, and it must not
// be used after any later AddComponent, RemoveComponent, or DestroyEntity call, because removals
// move other components to new slots.
func GetComponent[T Component](w *World, eid EntityID) (*T, bool) {
	cid, ok := lookupType[T](&w.components)
	if !ok {
		return nil, false
	}
	store, ok := existingStore[T](w, cid)
	if !ok {
		return nil, false
	}
	value := store.get(eid)
	return value, value != nil
}

// HasComponent checks if an entity has a specific component type.
// Returns false if either the entity doesn't exist or doesn't have the component.
func HasComponent[T Component](w *World, eid EntityID) bool {
	cid, ok := lookupType[T](&w.components)
	if !ok {
		return false
	}
	return w.maskOf(eid).has(cid)
}

// typeOf returns the dynamic Go type of a component.
func typeOf(c Component) reflect.Type {
	return reflect.TypeOf(c)
}
