// Package scene wraps an ecs.World with named entities that carry a transform.
package scene

import (
	"github.com/0ctahedral/ecs/pkg/ecs"
	"github.com/rotisserie/eris"
)

// DefaultEntityName is the tag of entities created without a name.
const DefaultEntityName = "Empty"

// Scene owns an ECS world. Entities created through it always have a Tag and a Transform.
type Scene struct {
	world *ecs.World
}

// New creates a scene backed by a new world.
func New(opts ecs.WorldOptions) (*Scene, error) {
	world, err := ecs.NewWorld(opts)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create world")
	}
	return &Scene{world: world}, nil
}

// World returns the scene's world.
func (s *Scene) World() *ecs.World {
	return s.world
}

// CreateEntity creates an entity tagged with name and an identity transform. An empty name is
// replaced with DefaultEntityName.
func (s *Scene) CreateEntity(name string) (Entity, error) {
	if name == "" {
		name = DefaultEntityName
	}

	eid, err := s.world.CreateEntity()
	if err != nil {
		return Entity{}, eris.Wrap(err, "failed to create entity")
	}
	e := Entity{id: eid, scene: s}

	if err := Add(e, Tag{Value: name}); err != nil {
		s.world.DestroyEntity(eid)
		return Entity{}, err
	}
	if err := Add(e, NewTransform()); err != nil {
		s.world.DestroyEntity(eid)
		return Entity{}, err
	}
	return e, nil
}

// DestroyEntity destroys the entity and all of its components. Returns false if it was already
// destroyed or belongs to another scene.
func (s *Scene) DestroyEntity(e Entity) bool {
	if e.scene != s {
		return false
	}
	return s.world.DestroyEntity(e.id)
}

// Entity returns a handle for an entity ID of this scene, e.g. one returned by a query.
func (s *Scene) Entity(id ecs.EntityID) Entity {
	return Entity{id: id, scene: s}
}

// Query returns handles for every entity that has all of the given component types.
func (s *Scene) Query(components ...ecs.Component) []Entity {
	ids := s.world.Query(components...)
	entities := make([]Entity, 0, len(ids))
	for _, id := range ids {
		entities = append(entities, s.Entity(id))
	}
	return entities
}
