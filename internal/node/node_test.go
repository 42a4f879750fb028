package node

import (
	"testing"

	"github.com/google/uuid"
	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_Display(t *testing.T) {
	n := Node{ID: nodeid.Lecture("aristotle"), Label: "Aristotle"}
	assert.Equal(t, "Aristotle (lecture.aristotle)", n.Display())

	bare := Node{ID: nodeid.Entity("logos")}
	assert.Equal(t, "entity.logos", bare.Display())
}

func TestNewEdge(t *testing.T) {
	e, err := NewEdge(nodeid.Lecture("aristotle"), nodeid.Lecture("plato"), true, 4)
	require.NoError(t, err)

	_, parseErr := uuid.Parse(e.ID)
	assert.NoError(t, parseErr)
	assert.Equal(t, nodeid.Lecture("aristotle"), e.Dependent)
	assert.Equal(t, nodeid.Lecture("plato"), e.Prerequisite)
	assert.True(t, e.Required)
	assert.Equal(t, 4, e.Importance)
}

func TestEdge_Validate(t *testing.T) {
	plato := nodeid.Lecture("plato")
	aristotle := nodeid.Lecture("aristotle")

	testCases := []struct {
		name string
		edge Edge
		kind error
	}{
		{"valid", Edge{Dependent: aristotle, Prerequisite: plato, Importance: 1}, nil},
		{"importance too low", Edge{Dependent: aristotle, Prerequisite: plato, Importance: 0}, apperr.ErrValidation},
		{"importance too high", Edge{Dependent: aristotle, Prerequisite: plato, Importance: 6}, apperr.ErrValidation},
		{"missing dependent", Edge{Prerequisite: plato, Importance: 3}, apperr.ErrValidation},
		{"missing prerequisite", Edge{Dependent: aristotle, Importance: 3}, apperr.ErrValidation},
		{"self reference", Edge{Dependent: plato, Prerequisite: plato, Importance: 3}, apperr.ErrCircularDependency},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.edge.Validate()
			if tc.kind == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestCompare(t *testing.T) {
	a := Node{ID: nodeid.Lecture("a"), Category: "ancient", Order: 1}
	b := Node{ID: nodeid.Lecture("b"), Category: "ancient", Order: 2}
	c := Node{ID: nodeid.Lecture("c"), Category: "medieval", Order: 0}
	d := Node{ID: nodeid.Lecture("d"), Category: "ancient", Order: 1}

	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, 1, Compare(c, b))
	assert.Equal(t, -1, Compare(a, d))
	assert.Equal(t, 1, Compare(d, a))
	assert.Equal(t, 0, Compare(a, a))
}
