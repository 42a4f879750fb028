// internal/nodeid/types.go
package nodeid

// Kind distinguishes the two families of nodes that share one prerequisite graph.
type Kind string

const (
	// KindLecture identifies a learning unit.
	KindLecture Kind = "lecture"
	// KindEntity identifies a knowledge concept (philosophical entity).
	KindEntity Kind = "entity"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindLecture || k == KindEntity
}

// Address is the structured representation of a unique node identifier.
// It is comparable and safe to use as a map key.
type Address struct {
	Kind Kind
	Name string
}

// New creates an address of the given kind and name without validation.
func New(kind Kind, name string) Address {
	return Address{Kind: kind, Name: name}
}

// Lecture is shorthand for New(KindLecture, name).
func Lecture(name string) Address {
	return New(KindLecture, name)
}

// Entity is shorthand for New(KindEntity, name).
func Entity(name string) Address {
	return New(KindEntity, name)
}
