// internal/nodeid/doc.go

/*
Package nodeid provides a structured, type-safe representation for node
identifiers within the prerequisite graph, based on the canonical format
`kind.name`.

The kind is either `lecture` (a learning unit) or `entity` (a philosophical
concept), e.g., `lecture.aristotle` or `entity.eudaimonia`.

This package enforces the identifier schema and centralizes all
formatting and parsing logic, so that the rest of the engine can treat
identifiers as opaque, comparable values.
*/
package nodeid
