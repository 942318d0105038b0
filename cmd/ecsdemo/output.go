package main

import (
	"fmt"
	"io"

	"github.com/0ctahedral/ecs/pkg/ecs"
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

func writeJSON(w io.Writer, r report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return eris.Wrap(err, "failed to marshal report")
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return eris.Wrap(err, "failed to write report")
	}
	return nil
}

func writeText(w io.Writer, r report) error {
	p := &printer{w: w}
	for _, e := range r.Created {
		p.entity(e)
	}
	p.printf("Modifying e1...\n")
	p.entity(r.Modified)

	p.printf("Listing entities with transform and tag\n")
	p.ids(r.WithTransformAndTag)
	p.printf("Listing entities with dummy component\n")
	p.ids(r.WithDummy)

	p.printf("Deleting entity %s\n", r.Destroyed.Name)
	return p.err
}

// printer keeps the first write error so the text output reads top to bottom.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	if _, err := fmt.Fprintf(p.w, format, args...); err != nil {
		p.err = eris.Wrap(err, "failed to write report")
	}
}

func (p *printer) entity(e entityReport) {
	t := e.Transform
	p.printf("Entity %s:\n", e.Name)
	p.printf("pos.x: %v pos.y: %v pos.z: %v\n", t.Position.X, t.Position.Y, t.Position.Z)
	p.printf("rot.x: %v rot.y: %v rot.z: %v\n", t.Rotation.X, t.Rotation.Y, t.Rotation.Z)
	p.printf("scale.x: %v scale.y: %v scale.z: %v\n", t.Scale.X, t.Scale.Y, t.Scale.Z)
}

func (p *printer) ids(ids []ecs.EntityID) {
	for _, id := range ids {
		p.printf("%d\n", id)
	}
}
