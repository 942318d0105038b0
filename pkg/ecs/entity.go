package ecs

import (
	"github.com/0ctahedral/ecs/pkg/assert"
	"github.com/kelindar/bitmap"
)

// EntityID is a unique identifier for an entity. An entity has no data of its own, it is the key
// its components are stored under.
type EntityID uint32

// NullEntity is never returned for a live entity.
const NullEntity EntityID = 0

// entityAllocator owns the entity ID space [1, maxEntities). Free IDs are handed out in FIFO order,
// so a destroyed ID is only reused after every other free ID has been used once.
type entityAllocator struct {
	maxEntities int           // Size of the ID space, including the null entity
	free        []EntityID    // A queue of free IDs
	live        bitmap.Bitmap // Set of IDs currently alive
	living      int           // Number of IDs currently alive
}

// newEntityAllocator creates an allocator whose free queue holds every ID in [1, maxEntities).
func newEntityAllocator(maxEntities int) entityAllocator {
	assert.That(maxEntities >= 2, "id space must hold at least one entity")

	free := make([]EntityID, 0, maxEntities-1)
	for id := 1; id < maxEntities; id++ {
		free = append(free, EntityID(id))
	}

	var live bitmap.Bitmap
	live.Grow(uint32(maxEntities - 1))

	return entityAllocator{
		maxEntities: maxEntities,
		free:        free,
		live:        live,
		living:      0,
	}
}

// create pops the next free ID.
func (ea *entityAllocator) create() (EntityID, error) {
	if ea.living >= ea.maxEntities-1 {
		return NullEntity, &CapacityExceededError{Kind: CapacityEntities, Limit: ea.maxEntities - 1}
	}
	assert.That(len(ea.free) > 0, "free queue is empty with %d living entities", ea.living)

	// Pop from the front of the free list (FIFO).
	id := ea.free[0]
	ea.free = ea.free[1:]

	ea.live.Set(uint32(id))
	ea.living++
	return id, nil
}

// release returns a live ID to the back of the free queue. Releasing an ID that isn't alive is a
// no-op, which makes release idempotent. Returns true if the ID was released.
func (ea *entityAllocator) release(id EntityID) bool {
	if !ea.isAlive(id) {
		return false
	}

	ea.live.Remove(uint32(id))
	ea.free = append(ea.free, id)
	ea.living--
	return true
}

// isAlive checks if an entity ID is currently in use.
func (ea *entityAllocator) isAlive(id EntityID) bool {
	if id == NullEntity || int(id) >= ea.maxEntities {
		return false
	}
	return ea.live.Contains(uint32(id))
}

// count returns the number of living entities.
func (ea *entityAllocator) count() int {
	return ea.living
}

// each calls fn for every live ID in ascending order.
func (ea *entityAllocator) each(fn func(EntityID)) {
	ea.live.Range(func(id uint32) {
		fn(EntityID(id))
	})
}
