package cycle

import "github.com/specialistvlad/learngrid/internal/nodeid"

// NameLookup resolves node ids to display labels. *graph.Model satisfies it.
type NameLookup interface {
	Label(id nodeid.Address) string
}

// Describe renders a cycle path for display, e.g.
// ["Aristotle (lecture.aristotle)", "Plato (lecture.plato)"].
func Describe(path []nodeid.Address, names NameLookup) []string {
	out := make([]string, len(path))
	for i, id := range path {
		out[i] = names.Label(id)
	}
	return out
}
