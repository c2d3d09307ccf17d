// Package positions resolves position names to their cycling groups.
//
// The hierarchy is a single level deep: a position without a parent is a
// group head and positions whose parent is that head are its children.
// Grandchildren are intentionally not followed.
package positions

import "github.com/jakechorley/team-roster/pkg/core/model"

// Group returns the ordered cycling group for the named position:
// the position itself followed by every position whose ParentID equals it,
// in the order they appear in the position list.
//
// A child position passed directly yields a single-element group, which
// lets callers cycle it on its own.
func Group(all []model.Position, name string) []string {
	group := []string{name}
	for _, p := range all {
		if p.ParentID == name {
			group = append(group, p.Name)
		}
	}
	return group
}

// Find returns the position with the given name, if present.
func Find(all []model.Position, name string) (model.Position, bool) {
	for _, p := range all {
		if p.Name == name {
			return p, true
		}
	}
	return model.Position{}, false
}
