// Package testutils holds the components shared by the ecs tests.
package testutils

type Health struct {
	Value int `json:"value"`
}

func (Health) Name() string { return "Health" }

type Position struct{ X, Y int }

func (Position) Name() string { return "Position" }

type Velocity struct{ X, Y int }

func (Velocity) Name() string { return "Velocity" }

type Experience struct{ Value int }

func (Experience) Name() string { return "Experience" }

type PlayerTag struct{ Tag string }

func (PlayerTag) Name() string { return "PlayerTag" }

// Dummy carries no data.
type Dummy struct{}

func (Dummy) Name() string { return "Dummy" }

// FakeHealth reuses Health's name with a different Go type.
type FakeHealth struct{ HP float64 }

func (FakeHealth) Name() string { return "Health" }
