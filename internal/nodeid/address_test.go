// internal/nodeid/address_test.go
package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_String(t *testing.T) {
	testCases := []struct {
		name        string
		addr        Address
		expectedStr string
	}{
		{
			name:        "lecture",
			addr:        Lecture("plato"),
			expectedStr: "lecture.plato",
		},
		{
			name:        "entity",
			addr:        Entity("logos"),
			expectedStr: "entity.logos",
		},
		{
			name:        "zero address",
			addr:        Address{},
			expectedStr: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStr, tc.addr.String())
		})
	}
}

func TestAddress_RoundTrip(t *testing.T) {
	testIDs := []string{
		"lecture.aristotle",
		"entity.golden-mean",
		"lecture.augustine_confessions",
	}

	for _, id := range testIDs {
		t.Run(id, func(t *testing.T) {
			addr, err := Parse(id)
			require.NoError(t, err)

			roundTripID := addr.String()
			assert.Equal(t, id, roundTripID)

			roundTripAddr, err := Parse(roundTripID)
			require.NoError(t, err)
			assert.Equal(t, addr, roundTripAddr)
		})
	}
}

func TestAddress_Less(t *testing.T) {
	assert.True(t, Entity("z").Less(Lecture("a")))
	assert.False(t, Lecture("b").Less(Lecture("a")))
}
