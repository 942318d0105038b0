package ecs

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rotisserie/eris"
)

// SearchParam contains parameters for a search query.
// We use expr lang for the where clause to filter the entities, please refer to its documentation
// for more details: https://expr-lang.org/docs/getting-started.
type SearchParam struct {
	Find  []string    // List of component names to search for
	Match SearchMatch // A match type to use for the search
	Where string      // Optional expr language string to filter the results.
}

// SearchMatch is the type of match to use for the search.
type SearchMatch string

const (
	// MatchExact matches entities that have exactly the specified components.
	MatchExact SearchMatch = "exact"
	// MatchContains matches entities that contains the specified components, but may have other
	// components as well.
	MatchContains SearchMatch = "contains"
)

// matches reports whether an entity mask satisfies the target under this match type.
func (m SearchMatch) matches(mask, target componentMask) bool {
	if m == MatchExact {
		return mask == target
	}
	return mask.contains(target)
}

// validateAndGetFilter validates the search parameters and returns an expr VM program compiled
// from the where clause.
func (s *SearchParam) validateAndGetFilter() (*vm.Program, error) {
	if len(s.Find) == 0 {
		return nil, eris.New("component list cannot be empty")
	}

	if s.Match != MatchExact && s.Match != MatchContains {
		return nil, eris.Errorf("invalid `match` value: must be either '%s' or '%s'", MatchExact, MatchContains)
	}

	// If no expression is provided, return a nil program.
	if len(s.Where) == 0 {
		return nil, nil //nolint:nilnil // a nil program means no filter
	}

	// Compile the expression and check that the return type is boolean.
	filter, err := expr.Compile(s.Where, expr.AsBool())
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse where clause")
	}
	return filter, nil
}

// Search returns a map for every live entity that matches the given search parameters, in
// ascending ID order. Each map holds the entity ID under "_id" and a copy of every component the
// entity has under the component's name.
//
// The where clause is evaluated against every matched entity. If it reads a field of a component
// that one of them doesn't have, e.g. `Position.X > 1` with Find ["Health"] and MatchContains,
// the whole search fails. Guard such clauses with `Position != nil && Position.X > 1`.
func (w *World) Search(params SearchParam) ([]map[string]any, error) {
	filter, err := params.validateAndGetFilter()
	if err != nil {
		return nil, eris.Wrap(err, "invalid search params")
	}

	var target componentMask
	for _, name := range params.Find {
		cid, err := w.components.getID(name)
		if err != nil {
			return nil, eris.Wrap(err, "failed to get components to search for")
		}
		target.set(cid)
	}

	results := make([]map[string]any, 0)
	var runErr error
	w.entities.each(func(eid EntityID) {
		if runErr != nil || !params.Match.matches(w.masks[eid], target) {
			return
		}
		entityMap := w.entityToMap(eid)

		// If there's no filter, include all entities.
		if filter == nil {
			results = append(results, entityMap)
			return
		}

		// The entity map is the environment of the program, so the where clause can refer to
		// components by name, e.g. `Health.Value > 10`.
		output, err := expr.Run(filter, entityMap)
		if err != nil {
			runErr = eris.Wrap(err, "failed to run filter expression")
			return
		}

		// expr.AsBool can't fully type check field accesses without the environment, so the
		// result type is checked here.
		isMatch, ok := output.(bool)
		if !ok {
			runErr = eris.New("invalid where clause")
			return
		}
		if isMatch {
			results = append(results, entityMap)
		}
	})
	if runErr != nil {
		return nil, runErr
	}

	return results, nil
}

// entityToMap converts an entity to a map of its components. A "_id" key is added to the map
// to store the entity ID.
func (w *World) entityToMap(eid EntityID) map[string]any {
	mask := w.masks[eid]
	data := make(map[string]any)

	// expr can't compare EntityID with integer literals, so the ID is stored as a plain uint32.
	data["_id"] = uint32(eid)

	mask.each(func(cid componentID) {
		comp, ok := w.stores[cid].getAbstract(eid)
		if !ok {
			return
		}
		data[comp.Name()] = comp
	})
	return data
}
