package ecs

import "github.com/0ctahedral/ecs/pkg/assert"

// storeFactory is a function that creates an empty abstractStore sized for maxEntities ids.
type storeFactory func(maxEntities int) abstractStore

// abstractStore is the type-erased view of a componentStore. The world keeps one per registered
// component type and only downcasts it where the type ID establishes the concrete type.
type abstractStore interface {
	// entityDestroyed drops the entity's component if it has one, otherwise no-op.
	entityDestroyed(eid EntityID)
	// getAbstract returns a copy of the entity's component boxed as a Component.
	getAbstract(eid EntityID) (Component, bool)
	// len returns the number of components in the store.
	len() int
}

var _ abstractStore = &componentStore[Component]{}

// componentStore keeps every component of one type packed in a dense array. Slot 0 is a sentinel
// meaning "absent", so live components occupy exactly slots [1, lastIndex). All three arrays are
// allocated once with one entry per entity ID and never grow.
type componentStore[T Component] struct {
	values     []T        // Slot -> component value
	entitySlot []uint32   // Entity ID -> slot, 0 if the entity has no component
	slotEntity []EntityID // Slot -> entity ID, NullEntity for free slots
	lastIndex  uint32     // One past the highest occupied slot
}

// newComponentStore creates a new store with room for maxEntities entity IDs.
func newComponentStore[T Component](maxEntities int) *componentStore[T] {
	return &componentStore[T]{
		values:     make([]T, maxEntities),
		entitySlot: make([]uint32, maxEntities),
		slotEntity: make([]EntityID, maxEntities),
		lastIndex:  1,
	}
}

// newStoreFactory returns a function that constructs a new store of type T.
func newStoreFactory[T Component]() storeFactory {
	return func(maxEntities int) abstractStore {
		return newComponentStore[T](maxEntities)
	}
}

// inRange reports whether eid can be indexed in this store.
func (s *componentStore[T]) inRange(eid EntityID) bool {
	return int(eid) < len(s.entitySlot)
}

// len returns the number of components in the store.
func (s *componentStore[T]) len() int {
	return int(s.lastIndex) - 1
}

// add places value in the next free slot. If the entity already has a component of this type, the
// value is overwritten in place instead and add returns true. Expects the caller to pass a live
// entity ID.
func (s *componentStore[T]) add(eid EntityID, value T) bool {
	assert.That(eid != NullEntity && s.inRange(eid), "entity %d outside store capacity %d", eid, len(s.entitySlot))

	if slot := s.entitySlot[eid]; slot != 0 {
		s.values[slot] = value
		return true
	}

	slot := s.lastIndex
	assert.That(int(slot) < len(s.values), "store is full at slot %d", slot)

	s.values[slot] = value
	s.entitySlot[eid] = slot
	s.slotEntity[slot] = eid
	s.lastIndex++
	return false
}

// remove removes the entity's component. The last component in the array is moved into the freed
// slot so the array stays packed. Returns false if the entity has no component of this type.
func (s *componentStore[T]) remove(eid EntityID) bool {
	if !s.inRange(eid) {
		return false
	}
	slot := s.entitySlot[eid]
	if slot == 0 {
		return false
	}

	s.lastIndex--
	last := s.lastIndex
	s.entitySlot[eid] = 0

	// If the component isn't the last one, move the last one into its slot.
	if slot != last {
		movedID := s.slotEntity[last]
		s.values[slot] = s.values[last]
		s.slotEntity[slot] = movedID
		s.entitySlot[movedID] = slot
	}

	// Clear the vacated slot.
	var zero T
	s.values[last] = zero
	s.slotEntity[last] = NullEntity
	return true
}

// get returns a pointer to the entity's component, or nil if it has none. The pointer aliases the
// dense array and is only valid until the next add or remove on this store, since a remove may
// move another entity's component into a different slot.
func (s *componentStore[T]) get(eid EntityID) *T {
	if !s.inRange(eid) {
		return nil
	}
	slot := s.entitySlot[eid]
	if slot == 0 {
		return nil
	}
	return &s.values[slot]
}

// getAbstract returns a copy of the entity's component. Use it only when the concrete type isn't
// known, it boxes the value.
func (s *componentStore[T]) getAbstract(eid EntityID) (Component, bool) {
	value := s.get(eid)
	if value == nil {
		return nil, false
	}
	return *value, true
}

// entityDestroyed drops the entity's component if it has one.
func (s *componentStore[T]) entityDestroyed(eid EntityID) {
	s.remove(eid)
}
