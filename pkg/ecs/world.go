package ecs

import (
	"github.com/0ctahedral/ecs/pkg/assert"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// World is the ECS coordinator. It owns the type registry, one store per component type, the
// component mask of every entity ID, and the entity allocator.
//
// A World isn't safe for concurrent use. Pointers returned by GetComponent alias the world's
// storage and are invalidated by the next mutating call.
type World struct {
	options    WorldOptions
	logger     zerolog.Logger
	components componentManager // Type registry
	stores     []abstractStore  // Component ID -> store, created on first add
	masks      []componentMask  // Entity ID -> component types the entity holds
	entities   entityAllocator
}

// NewWorld creates a new World. Options left at their zero value are read from the environment
// (ECS_MAX_ENTITIES, ECS_MAX_COMPONENTS) or fall back to the defaults.
func NewWorld(opts WorldOptions) (*World, error) {
	envs, err := loadWorldOptionsEnv()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load world options env vars")
	}
	options := newDefaultWorldOptions()
	options.apply(envs.toOptions())
	options.apply(opts)
	if err := options.validate(); err != nil {
		return nil, eris.Wrap(err, "invalid world options")
	}
	return newWorld(options), nil
}

// newWorld creates a World from validated options.
func newWorld(options WorldOptions) *World {
	logger := zerolog.Nop()
	if options.Logger != nil {
		logger = *options.Logger
	}

	return &World{
		options:    options,
		logger:     logger,
		components: newComponentManager(options.MaxComponents),
		stores:     make([]abstractStore, 0, options.MaxComponents),
		masks:      make([]componentMask, options.MaxEntities),
		entities:   newEntityAllocator(options.MaxEntities),
	}
}

// CreateEntity creates an entity without any components. Returns a *CapacityExceededError once
// MaxEntities-1 entities are alive.
func (w *World) CreateEntity() (EntityID, error) {
	eid, err := w.entities.create()
	if err != nil {
		return NullEntity, err
	}
	assert.That(w.masks[eid] == 0, "recycled entity %d still has components", eid)

	w.logger.Debug().Uint32("entity_id", uint32(eid)).Msg("entity created")
	return eid, nil
}

// DestroyEntity removes all of the entity's components and recycles its ID. Destroying an entity
// that isn't alive is a no-op. Returns true if the entity was destroyed.
func (w *World) DestroyEntity(eid EntityID) bool {
	if !w.entities.isAlive(eid) {
		return false
	}

	// Every store is notified, stores that don't hold the entity ignore it.
	for _, store := range w.stores {
		store.entityDestroyed(eid)
	}
	w.masks[eid] = 0

	released := w.entities.release(eid)
	assert.That(released, "live entity %d wasn't released", eid)

	w.logger.Debug().Uint32("entity_id", uint32(eid)).Msg("entity destroyed")
	return true
}

// Alive checks if an entity exists in the world.
func (w *World) Alive(eid EntityID) bool {
	return w.entities.isAlive(eid)
}

// NumEntities returns the number of living entities.
func (w *World) NumEntities() int {
	return w.entities.count()
}

// MaxEntities returns the size of the entity ID space, including the null entity.
func (w *World) MaxEntities() int {
	return w.options.MaxEntities
}

// Query returns every live entity that holds all of the given component types, in ascending ID
// order. The components are only used for their type, their values are ignored. With no arguments
// every live entity is returned. The result is a snapshot and isn't affected by later mutations.
func (w *World) Query(components ...Component) []EntityID {
	var target componentMask
	for _, c := range components {
		cid, ok := w.components.lookup(c.Name(), typeOf(c))
		if !ok {
			// No entity can hold an unregistered type.
			return []EntityID{}
		}
		target.set(cid)
	}

	result := make([]EntityID, 0)
	w.entities.each(func(eid EntityID) {
		if w.masks[eid].contains(target) {
			result = append(result, eid)
		}
	})
	return result
}

// maskOf returns the component mask of a live entity, or 0.
func (w *World) maskOf(eid EntityID) componentMask {
	if !w.entities.isAlive(eid) {
		return 0
	}
	return w.masks[eid]
}

// storeFor returns the store of component ID cid, creating it and every missing store before it
// on first use. The slot at index cid only ever holds the store built by cid's factory, which is
// what makes the downcast valid.
func storeFor[T Component](w *World, cid componentID) *componentStore[T] {
	for int(cid) >= len(w.stores) {
		next := componentID(len(w.stores))
		w.stores = append(w.stores, w.components.factories[next](w.options.MaxEntities))
		w.logger.Debug().
			Int("component_id", int(next)).
			Str("component_name", w.components.names[next]).
			Msg("component store created")
	}

	store, ok := w.stores[cid].(*componentStore[T])
	assert.That(ok, "store %d doesn't hold component %s", cid, w.components.names[cid])
	return store
}

// existingStore returns the store of component ID cid if it has been created.
func existingStore[T Component](w *World, cid componentID) (*componentStore[T], bool) {
	if int(cid) >= len(w.stores) {
		return nil, false
	}
	store, ok := w.stores[cid].(*componentStore[T])
	assert.That(ok, "store %d doesn't hold component %s", cid, w.components.names[cid])
	return store, true
}
