package ecs

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	. "github.com/0ctahedral/ecs/pkg/ecs/internal/testutils"
	"github.com/0ctahedral/ecs/pkg/testutils"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld(t *testing.T, opts WorldOptions) *World {
	t.Helper()
	w, err := NewWorld(opts)
	require.NoError(t, err)
	return w
}

// -------------------------------------------------------------------------------------------------
// Model-based fuzzing world operations
// -------------------------------------------------------------------------------------------------
// The model is a map from live entity to the components it holds, keyed by name. Random sequences
// of create/destroy/add/remove/get/query are applied to both the world and the model. After every
// operation the world's masks must agree with its stores and every live entity must hold exactly
// the components the model says it does.
// -------------------------------------------------------------------------------------------------

func TestWorld_ModelFuzz(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand(t)

	const (
		opsMax      = 1 << 12
		maxEntities = 64
	)

	w := newTestWorld(t, WorldOptions{MaxEntities: maxEntities})
	model := make(map[EntityID]map[string]Component)
	everLived := make(map[EntityID]struct{})

	randomEntity := func() EntityID {
		if len(model) > 0 && prng.Float64() < 0.9 {
			return testutils.RandMapKey(prng, model)
		}
		return EntityID(prng.IntN(maxEntities))
	}
	randomComponent := func() Component {
		switch prng.IntN(3) {
		case 0:
			return Health{Value: prng.IntN(100)}
		case 1:
			return Position{X: prng.IntN(100), Y: prng.IntN(100)}
		default:
			return Velocity{X: prng.IntN(10), Y: prng.IntN(10)}
		}
	}

	for range opsMax {
		switch testutils.RandWeightedOp(prng, worldOps) {
		case w_create:
			eid, err := w.CreateEntity()
			if len(model) == maxEntities-1 {
				require.ErrorIs(t, err, ErrCapacityExceeded)
				continue
			}
			require.NoError(t, err)

			// Property: a new entity starts with no components, even when its id is recycled.
			_, taken := model[eid]
			require.False(t, taken, "create returned live entity %d", eid)
			require.Zero(t, w.masks[eid], "recycled entity %d kept components", eid)
			model[eid] = make(map[string]Component)
			everLived[eid] = struct{}{}

		case w_destroy:
			eid := randomEntity()
			_, alive := model[eid]

			// Property: destroy succeeds iff the entity was alive.
			require.Equal(t, alive, w.DestroyEntity(eid), "destroy(%d)", eid)
			delete(model, eid)

		case w_add:
			eid := randomEntity()
			comp := randomComponent()
			err := addAny(w, eid, comp)

			components, alive := model[eid]
			if !alive {
				// Property: adding to a dead entity fails with ErrEntityNotFound.
				require.ErrorIs(t, err, ErrEntityNotFound)
				continue
			}
			require.NoError(t, err)
			components[comp.Name()] = comp

		case w_remove:
			eid := randomEntity()
			name := randomComponent().Name()
			_, had := model[eid][name]

			// Property: remove reports whether the entity held the component.
			require.Equal(t, had, removeByName(w, eid, name), "remove %s from %d", name, eid)
			if had {
				delete(model[eid], name)
			}

		case w_query:
			var args []Component
			var names []string
			for _, c := range []Component{Health{}, Position{}, Velocity{}} {
				if prng.IntN(2) == 0 {
					args = append(args, c)
					names = append(names, c.Name())
				}
			}

			want := make([]EntityID, 0)
			for eid, components := range model {
				if holdsAll(components, names) {
					want = append(want, eid)
				}
			}
			slices.Sort(want)

			// Property: query returns exactly the live entities holding every argument type, in
			// ascending order.
			require.Equal(t, want, w.Query(args...), "query %v", names)

		default:
			panic("unreachable")
		}

		require.Equal(t, len(model), w.NumEntities())
		checkWorld(t, w, model, everLived)
	}
}

type worldOp uint8

const (
	w_create  worldOp = 20
	w_destroy worldOp = 10
	w_add     worldOp = 35
	w_remove  worldOp = 21
	w_query   worldOp = 15
)

var worldOps = []worldOp{w_create, w_destroy, w_add, w_remove, w_query}

// An op's weight is also its identity, so two ops with the same weight can't be told apart.
func TestFuzzOps_DistinctWeights(t *testing.T) {
	t.Parallel()

	assert.True(t, distinct(storeOps), "store op weights must be distinct")
	assert.True(t, distinct(allocatorOps), "allocator op weights must be distinct")
	assert.True(t, distinct(worldOps), "world op weights must be distinct")
}

func distinct[T comparable](ops []T) bool {
	seen := make(map[T]struct{}, len(ops))
	for _, op := range ops {
		if _, ok := seen[op]; ok {
			return false
		}
		seen[op] = struct{}{}
	}
	return true
}

// checkWorld fails the test if the world's masks disagree with its stores or with the model.
func checkWorld(t *testing.T, w *World, model map[EntityID]map[string]Component, everLived map[EntityID]struct{}) {
	t.Helper()

	for eid := range everLived {
		components, alive := model[eid]
		if alive != w.Alive(eid) {
			t.Fatalf("entity %d alive mismatch: model %t world %t", eid, alive, w.Alive(eid))
		}

		for cid, store := range w.stores {
			value, inStore := store.getAbstract(eid)
			if inStore != w.masks[eid].has(componentID(cid)) {
				t.Fatalf("entity %d component %d: mask says %t, store says %t",
					eid, cid, w.masks[eid].has(componentID(cid)), inStore)
			}
			if !inStore {
				continue
			}
			want, ok := components[value.Name()]
			if !ok || want != value {
				t.Fatalf("entity %d component %s: world has %v, model has %v", eid, value.Name(), value, want)
			}
		}

		bits := 0
		w.masks[eid].each(func(componentID) { bits++ })
		if bits != len(components) {
			t.Fatalf("entity %d holds %d components, model has %d", eid, bits, len(components))
		}
	}
}

func holdsAll(components map[string]Component, names []string) bool {
	for _, name := range names {
		if _, ok := components[name]; !ok {
			return false
		}
	}
	return true
}

func addAny(w *World, eid EntityID, c Component) error {
	switch c := c.(type) {
	case Health:
		return AddComponent(w, eid, c)
	case Position:
		return AddComponent(w, eid, c)
	case Velocity:
		return AddComponent(w, eid, c)
	default:
		panic("unknown component")
	}
}

func removeByName(w *World, eid EntityID, name string) bool {
	switch name {
	case Health{}.Name():
		return RemoveComponent[Health](w, eid)
	case Position{}.Name():
		return RemoveComponent[Position](w, eid)
	case Velocity{}.Name():
		return RemoveComponent[Velocity](w, eid)
	default:
		panic("unknown component")
	}
}

// -------------------------------------------------------------------------------------------------
// Entity lifecycle
// -------------------------------------------------------------------------------------------------

func TestWorld_CreateEntity(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t, WorldOptions{MaxEntities: 4})

	ids := make([]EntityID, 0, 3)
	for range 3 {
		eid, err := w.CreateEntity()
		require.NoError(t, err)
		assert.NotEqual(t, NullEntity, eid)
		ids = append(ids, eid)
	}
	assert.Equal(t, []EntityID{1, 2, 3}, ids)
	assert.Equal(t, 3, w.NumEntities())

	_, err := w.CreateEntity()
	var capErr *CapacityExceededError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, CapacityEntities, capErr.Kind)
	assert.Equal(t, 3, w.NumEntities(), "a failed create must not change state")

	// Destroying one frees its id for the next create.
	require.True(t, w.DestroyEntity(2))
	eid, err := w.CreateEntity()
	require.NoError(t, err)
	assert.Equal(t, EntityID(2), eid)
}

func TestWorld_DestroyEntity(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t, WorldOptions{})
	e1, err := w.CreateEntity()
	require.NoError(t, err)
	e2, err := w.CreateEntity()
	require.NoError(t, err)

	require.NoError(t, AddComponent(w, e1, Health{Value: 10}))
	require.NoError(t, AddComponent(w, e1, Position{X: 1, Y: 2}))
	require.NoError(t, AddComponent(w, e2, Health{Value: 20}))

	assert.True(t, w.DestroyEntity(e1))
	assert.False(t, w.Alive(e1))
	assert.False(t, w.DestroyEntity(e1), "destroy is idempotent")
	assert.False(t, w.DestroyEntity(NullEntity))
	assert.False(t, w.DestroyEntity(EntityID(w.MaxEntities())), "out of range id")
	assert.Equal(t, 1, w.NumEntities())

	// The destroyed entity's components are gone and the other entity's are untouched.
	_, ok := GetComponent[Health](w, e1)
	assert.False(t, ok)
	_, ok = GetComponent[Position](w, e1)
	assert.False(t, ok)
	health, ok := GetComponent[Health](w, e2)
	require.True(t, ok)
	assert.Equal(t, 20, health.Value)

	assert.Equal(t, []EntityID{e2}, w.Query(Health{}))
	assert.Empty(t, w.Query(Position{}))
}

func TestWorld_RecycledEntityStartsEmpty(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t, WorldOptions{MaxEntities: 2})
	eid, err := w.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, AddComponent(w, eid, Health{Value: 1}))
	require.True(t, w.DestroyEntity(eid))

	// With a single usable id the next create must hand out the same one.
	again, err := w.CreateEntity()
	require.NoError(t, err)
	require.Equal(t, eid, again)
	assert.False(t, HasComponent[Health](w, again))
	assert.Empty(t, w.Query(Health{}))
}

// -------------------------------------------------------------------------------------------------
// Components
// -------------------------------------------------------------------------------------------------

func TestWorld_AddComponent(t *testing.T) {
	t.Parallel()

	t.Run("dead entity", func(t *testing.T) {
		t.Parallel()
		w := newTestWorld(t, WorldOptions{})

		err := AddComponent(w, 7, Health{Value: 1})
		require.ErrorIs(t, err, ErrEntityNotFound)
		assert.Equal(t, 0, w.components.count(), "a failed add must not register the type")

		err = AddComponent(w, NullEntity, Health{Value: 1})
		require.ErrorIs(t, err, ErrEntityNotFound)
	})

	t.Run("double add replaces the value", func(t *testing.T) {
		t.Parallel()
		w := newTestWorld(t, WorldOptions{})
		eid, err := w.CreateEntity()
		require.NoError(t, err)

		require.NoError(t, AddComponent(w, eid, Health{Value: 1}))
		require.NoError(t, AddComponent(w, eid, Health{Value: 2}))

		health, ok := GetComponent[Health](w, eid)
		require.True(t, ok)
		assert.Equal(t, 2, health.Value)
		assert.Equal(t, 1, w.stores[0].len(), "replace must not consume a slot")
	})

	t.Run("write through pointer", func(t *testing.T) {
		t.Parallel()
		w := newTestWorld(t, WorldOptions{})
		eid, err := w.CreateEntity()
		require.NoError(t, err)
		require.NoError(t, AddComponent(w, eid, Position{X: 1, Y: 1}))

		pos, ok := GetComponent[Position](w, eid)
		require.True(t, ok)
		pos.X = 9

		pos, ok = GetComponent[Position](w, eid)
		require.True(t, ok)
		assert.Equal(t, Position{X: 9, Y: 1}, *pos)
	})

	t.Run("component type capacity", func(t *testing.T) {
		t.Parallel()
		w := newTestWorld(t, WorldOptions{MaxComponents: 2})
		eid, err := w.CreateEntity()
		require.NoError(t, err)

		require.NoError(t, AddComponent(w, eid, Health{}))
		require.NoError(t, AddComponent(w, eid, Position{}))
		err = AddComponent(w, eid, Velocity{})
		require.ErrorIs(t, err, ErrCapacityExceeded)
		assert.False(t, HasComponent[Velocity](w, eid))
	})

	t.Run("name collision", func(t *testing.T) {
		t.Parallel()
		w := newTestWorld(t, WorldOptions{})
		eid, err := w.CreateEntity()
		require.NoError(t, err)

		require.NoError(t, AddComponent(w, eid, Health{Value: 1}))
		require.Error(t, AddComponent(w, eid, FakeHealth{HP: 1}))
		_, ok := GetComponent[FakeHealth](w, eid)
		assert.False(t, ok)
	})
}

func TestWorld_RemoveComponent(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t, WorldOptions{})
	e1, err := w.CreateEntity()
	require.NoError(t, err)
	e2, err := w.CreateEntity()
	require.NoError(t, err)

	require.NoError(t, AddComponent(w, e1, Health{Value: 1}))
	require.NoError(t, AddComponent(w, e2, Health{Value: 2}))

	// Removing e1's component moves e2's into slot 1, e2 must still read its own value.
	assert.True(t, RemoveComponent[Health](w, e1))
	assert.False(t, HasComponent[Health](w, e1))
	health, ok := GetComponent[Health](w, e2)
	require.True(t, ok)
	assert.Equal(t, 2, health.Value)

	assert.False(t, RemoveComponent[Health](w, e1), "already removed")
	assert.False(t, RemoveComponent[Velocity](w, e1), "unregistered type")
	assert.False(t, RemoveComponent[Health](w, 99), "dead entity")
	assert.Equal(t, 1, w.components.count(), "remove must not register types")
}

func TestWorld_GetComponent(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t, WorldOptions{})
	eid, err := w.CreateEntity()
	require.NoError(t, err)

	_, ok := GetComponent[Health](w, eid)
	assert.False(t, ok, "unregistered type")
	assert.False(t, HasComponent[Health](w, eid))

	require.NoError(t, RegisterComponent[Health](w))
	_, ok = GetComponent[Health](w, eid)
	assert.False(t, ok, "registered type without a store")

	require.NoError(t, AddComponent(w, eid, Health{Value: 5}))
	health, ok := GetComponent[Health](w, eid)
	require.True(t, ok)
	assert.Equal(t, 5, health.Value)
	assert.True(t, HasComponent[Health](w, eid))

	_, ok = GetComponent[Health](w, 99)
	assert.False(t, ok, "dead entity")
	assert.False(t, HasComponent[Health](w, 99))
}

func TestWorld_RegisterComponent(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t, WorldOptions{})
	require.NoError(t, RegisterComponent[Health](w))
	require.NoError(t, RegisterComponent[Position](w))
	require.NoError(t, RegisterComponent[Health](w))
	assert.Equal(t, 2, w.components.count())

	// Stores are created lazily. Adding the second type first fills the gap before it.
	eid, err := w.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, AddComponent(w, eid, Position{X: 1}))
	require.Len(t, w.stores, 2)
	_, ok := w.stores[0].(*componentStore[Health])
	assert.True(t, ok)
	_, ok = w.stores[1].(*componentStore[Position])
	assert.True(t, ok)
}

// -------------------------------------------------------------------------------------------------
// Query
// -------------------------------------------------------------------------------------------------

func TestWorld_Query(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t, WorldOptions{})
	var ids []EntityID
	for range 5 {
		eid, err := w.CreateEntity()
		require.NoError(t, err)
		ids = append(ids, eid)
	}

	require.NoError(t, AddComponent(w, ids[0], Health{}))
	require.NoError(t, AddComponent(w, ids[1], Health{}))
	require.NoError(t, AddComponent(w, ids[1], Position{}))
	require.NoError(t, AddComponent(w, ids[2], Position{}))
	require.NoError(t, AddComponent(w, ids[3], Health{}))
	require.NoError(t, AddComponent(w, ids[3], Position{}))
	require.NoError(t, AddComponent(w, ids[3], Velocity{}))

	tests := []struct {
		name  string
		query []Component
		want  []EntityID
	}{
		{name: "single type", query: []Component{Health{}}, want: []EntityID{ids[0], ids[1], ids[3]}},
		{name: "superset match", query: []Component{Health{}, Position{}}, want: []EntityID{ids[1], ids[3]}},
		{name: "argument order is irrelevant", query: []Component{Position{}, Health{}}, want: []EntityID{ids[1], ids[3]}},
		{name: "all three", query: []Component{Velocity{}, Position{}, Health{}}, want: []EntityID{ids[3]}},
		{name: "no arguments returns every live entity", query: nil, want: ids},
		{name: "unregistered type", query: []Component{Experience{}}, want: []EntityID{}},
		{name: "unregistered type with registered ones", query: []Component{Health{}, PlayerTag{}}, want: []EntityID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, w.Query(tt.query...))
		})
	}
}

func TestWorld_QuerySnapshot(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t, WorldOptions{})
	eid, err := w.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, AddComponent(w, eid, Health{}))

	result := w.Query(Health{})
	require.True(t, w.DestroyEntity(eid))
	assert.Equal(t, []EntityID{eid}, result, "mutations don't change an earlier result")
	assert.Empty(t, w.Query(Health{}))
}

// Reproduces the demo program: e2 gets Dummy twice, then e1 is destroyed.
func TestWorld_DemoScenario(t *testing.T) {
	t.Parallel()

	w := newTestWorld(t, WorldOptions{})
	e1, err := w.CreateEntity()
	require.NoError(t, err)
	e2, err := w.CreateEntity()
	require.NoError(t, err)

	for _, eid := range []EntityID{e1, e2} {
		require.NoError(t, AddComponent(w, eid, PlayerTag{Tag: "tag"}))
		require.NoError(t, AddComponent(w, eid, Position{}))
	}

	pos, ok := GetComponent[Position](w, e1)
	require.True(t, ok)
	pos.X, pos.Y = 2, 5

	require.NoError(t, AddComponent(w, e2, Dummy{}))
	require.NoError(t, AddComponent(w, e2, Dummy{}))

	assert.Equal(t, []EntityID{e1, e2}, w.Query(Position{}, PlayerTag{}))
	assert.Equal(t, []EntityID{e2}, w.Query(Dummy{}))

	require.True(t, w.DestroyEntity(e1))
	assert.False(t, HasComponent[Position](w, e1))
	assert.False(t, HasComponent[PlayerTag](w, e1))
	assert.Equal(t, []EntityID{e2}, w.Query(Position{}, PlayerTag{}))
	assert.Equal(t, []EntityID{e2}, w.Query(Dummy{}))
}

// -------------------------------------------------------------------------------------------------
// Logging
// -------------------------------------------------------------------------------------------------

func TestWorld_Logging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	w := newTestWorld(t, WorldOptions{Logger: &logger})

	eid, err := w.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, AddComponent(w, eid, Health{Value: 1}))
	require.NoError(t, AddComponent(w, eid, Health{Value: 2}))
	require.True(t, w.DestroyEntity(eid))

	type entry struct {
		Message       string `json:"message"`
		EntityID      uint32 `json:"entity_id"`
		ComponentID   *int   `json:"component_id"`
		ComponentName string `json:"component_name"`
	}
	var entries []entry
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var e entry
		require.NoError(t, json.Unmarshal(line, &e))
		entries = append(entries, e)
	}

	messages := make([]string, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, e.Message)
	}
	assert.Equal(t, []string{
		"entity created",
		"component registered",
		"component store created",
		"component replaced",
		"entity destroyed",
	}, messages)

	assert.Equal(t, uint32(eid), entries[0].EntityID)
	require.NotNil(t, entries[1].ComponentID)
	assert.Equal(t, 0, *entries[1].ComponentID)
	assert.Equal(t, "Health", entries[1].ComponentName)
	assert.Equal(t, uint32(eid), entries[3].EntityID)
}
