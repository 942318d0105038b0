package scene

// Vec3 is a three element vector.
type Vec3 struct {
	X, Y, Z float32
}

// Tag names an entity. Every entity created through a Scene has one.
type Tag struct {
	Value string `json:"value"`
}

func (Tag) Name() string { return "Tag" }

// Transform places an entity in the scene.
type Transform struct {
	Position Vec3 `json:"position"`
	Rotation Vec3 `json:"rotation"`
	Scale    Vec3 `json:"scale"`
}

func (Transform) Name() string { return "Transform" }

// NewTransform returns a transform at the origin with no rotation and unit scale.
func NewTransform() Transform {
	return Transform{Scale: Vec3{X: 1, Y: 1, Z: 1}}
}

// NewTransformAt returns a unit scale transform at the given position.
func NewTransformAt(position Vec3) Transform {
	t := NewTransform()
	t.Position = position
	return t
}
