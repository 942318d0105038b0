package main

import (
	"github.com/0ctahedral/ecs/pkg/ecs"
	"github.com/0ctahedral/ecs/pkg/scene"
	"github.com/rotisserie/eris"
)

// dummy carries no data.
type dummy struct{}

func (dummy) Name() string { return "Dummy" }

type entityReport struct {
	ID        ecs.EntityID    `json:"id"`
	Name      string          `json:"name"`
	Transform scene.Transform `json:"transform"`
}

type report struct {
	Created             []entityReport `json:"created"`
	Modified            entityReport   `json:"modified"`
	WithTransformAndTag []ecs.EntityID `json:"with_transform_and_tag"`
	WithDummy           []ecs.EntityID `json:"with_dummy"`
	Destroyed           entityReport   `json:"destroyed"`
}

func snapshot(e scene.Entity) (entityReport, error) {
	t := e.Transform()
	if t == nil {
		return entityReport{}, eris.Errorf("entity %d has no transform", e.ID())
	}
	return entityReport{ID: e.ID(), Name: e.Name(), Transform: *t}, nil
}

// runDemo creates e1 and an unnamed entity, rotates e1, gives the second entity a Dummy twice,
// queries, and finally destroys e1.
func runDemo(s *scene.Scene) (report, error) {
	var r report

	e1, err := s.CreateEntity("e1")
	if err != nil {
		return r, err
	}
	e2, err := s.CreateEntity("")
	if err != nil {
		return r, err
	}

	for _, e := range []scene.Entity{e1, e2} {
		snap, err := snapshot(e)
		if err != nil {
			return r, err
		}
		r.Created = append(r.Created, snap)
	}

	e1.Transform().Rotation = scene.Vec3{X: 2.6, Y: 5.3, Z: 0}
	if err := scene.Add(e2, dummy{}); err != nil {
		return r, err
	}
	// The second add replaces the first.
	if err := scene.Add(e2, dummy{}); err != nil {
		return r, err
	}
	if r.Modified, err = snapshot(e1); err != nil {
		return r, err
	}

	r.WithTransformAndTag = s.World().Query(scene.Transform{}, scene.Tag{})
	r.WithDummy = s.World().Query(dummy{})

	r.Destroyed = entityReport{ID: e1.ID(), Name: e1.Name()}
	s.DestroyEntity(e1)
	if e1.Transform() != nil || scene.Has[scene.Tag](e1) {
		return r, eris.Errorf("destroyed entity %d still has components", e1.ID())
	}
	return r, nil
}
