package ecs

import (
	"reflect"

	"github.com/0ctahedral/ecs/pkg/assert"
	"github.com/rotisserie/eris"
)

// Component is the interface that all components must implement.
// Components are plain data values attached to at most one entity at a time.
type Component interface { //nolint:iface // We may add more methods in the future.
	// Name returns a unique string identifier for the component type. It is the key the type
	// registry assigns ids by, so it must be stable and distinct across component types.
	Name() string
}

// componentID is the dense id of a registered component type. It doubles as the bit index in an
// entity's component mask and as the index of the type's store in the world.
type componentID = uint32

// componentManager is the type registry. Ids are handed out in registration order starting at 0
// and never reassigned for the lifetime of the world.
type componentManager struct {
	limit     int                    // Maximum number of distinct component types
	nextID    componentID            // The next available component ID
	catalog   map[string]componentID // Component name -> component ID
	types     []reflect.Type         // Component ID -> Go type
	names     []string               // Component ID -> component name
	factories []storeFactory         // Component ID -> store factory
}

// newComponentManager creates a new component manager.
func newComponentManager(limit int) componentManager {
	return componentManager{
		limit:     limit,
		nextID:    0,
		catalog:   make(map[string]componentID),
		types:     make([]reflect.Type, 0),
		names:     make([]string, 0),
		factories: make([]storeFactory, 0),
	}
}

// register registers a component type and returns its ID. If the component is already registered
// under the same Go type, no-op.
func (cm *componentManager) register(name string, typ reflect.Type, factory storeFactory) (componentID, error) {
	if name == "" {
		return 0, eris.New("component name cannot be empty")
	}

	if cid, exists := cm.catalog[name]; exists {
		if cm.types[cid] != typ {
			return 0, eris.Errorf("component name %s is already registered by %s, cannot register %s",
				name, cm.types[cid], typ)
		}
		return cid, nil
	}

	if int(cm.nextID) >= cm.limit {
		return 0, &CapacityExceededError{Kind: CapacityComponentTypes, Limit: cm.limit}
	}

	cid := cm.nextID
	cm.catalog[name] = cid
	cm.types = append(cm.types, typ)
	cm.names = append(cm.names, name)
	cm.factories = append(cm.factories, factory)
	cm.nextID++
	assert.That(int(cm.nextID) == len(cm.factories), "component id doesn't match number of components")

	return cid, nil
}

// lookup returns the ID of a component registered with the given name and Go type.
func (cm *componentManager) lookup(name string, typ reflect.Type) (componentID, bool) {
	cid, exists := cm.catalog[name]
	if !exists || cm.types[cid] != typ {
		return 0, false
	}
	return cid, true
}

// getID returns a component's ID given a name.
func (cm *componentManager) getID(name string) (componentID, error) {
	cid, exists := cm.catalog[name]
	if !exists {
		return 0, eris.Wrapf(ErrComponentNotFound, "component %s", name)
	}
	return cid, nil
}

// count returns the number of registered component types.
func (cm *componentManager) count() int {
	return int(cm.nextID)
}

// registerType registers T in the manager.
func registerType[T Component](cm *componentManager) (componentID, error) {
	var zero T
	return cm.register(zero.Name(), reflect.TypeFor[T](), newStoreFactory[T]())
}

// lookupType returns T's ID if T is registered.
func lookupType[T Component](cm *componentManager) (componentID, bool) {
	var zero T
	return cm.lookup(zero.Name(), reflect.TypeFor[T]())
}
