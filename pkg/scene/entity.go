package scene

import (
	"github.com/0ctahedral/ecs/pkg/ecs"
	"github.com/rotisserie/eris"
)

// Entity is a handle to an entity in a scene. It's a value type, copies refer to the same entity.
// The zero Entity refers to nothing.
type Entity struct {
	id    ecs.EntityID
	scene *Scene
}

// ID returns the entity's ID in its scene's world.
func (e Entity) ID() ecs.EntityID {
	return e.id
}

// Valid reports whether the entity is still alive.
func (e Entity) Valid() bool {
	return e.scene != nil && e.scene.world.Alive(e.id)
}

// Name returns the entity's tag, or an empty string if it has none.
func (e Entity) Name() string {
	tag, ok := Get[Tag](e)
	if !ok {
		return ""
	}
	return tag.Value
}

// Transform returns the entity's transform, or nil if it has none. The same aliasing rules as
// ecs.GetComponent apply.
func (e Entity) Transform() *Transform {
	t, _ := Get[Transform](e)
	return t
}

// Add attaches a component to the entity, replacing any existing component of the same type.
func Add[T ecs.Component](e Entity, component T) error {
	if e.scene == nil {
		return eris.Wrap(ecs.ErrEntityNotFound, "entity has no scene")
	}
	if err := ecs.AddComponent(e.scene.world, e.id, component); err != nil {
		return eris.Wrapf(err, "failed to add %s", component.Name())
	}
	return nil
}

// Get returns the entity's component of type T.
func Get[T ecs.Component](e Entity) (*T, bool) {
	if e.scene == nil {
		return nil, false
	}
	return ecs.GetComponent[T](e.scene.world, e.id)
}

// Remove detaches the entity's component of type T. Returns false if it had none.
func Remove[T ecs.Component](e Entity) bool {
	if e.scene == nil {
		return false
	}
	return ecs.RemoveComponent[T](e.scene.world, e.id)
}

// Has reports whether the entity has a component of type T.
func Has[T ecs.Component](e Entity) bool {
	if e.scene == nil {
		return false
	}
	return ecs.HasComponent[T](e.scene.world, e.id)
}
