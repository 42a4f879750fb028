package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, s := range All() {
		t.Run(s.String(), func(t *testing.T) {
			parsed, err := Parse(s.String())
			require.NoError(t, err)
			assert.Equal(t, s, parsed)
		})
	}

	parsed, err := Parse(" mastery_testing ")
	require.NoError(t, err)
	assert.Equal(t, MasteryTesting, parsed)

	_, err = Parse("COMPLETED")
	assert.Error(t, err)
	_, err = Parse("")
	assert.Error(t, err)
}

func TestState_Classification(t *testing.T) {
	testCases := []struct {
		state      State
		inProgress bool
		completed  bool
	}{
		{Locked, false, false},
		{Ready, false, false},
		{Started, true, false},
		{Watched, true, false},
		{InitialReflection, true, false},
		{MasteryTesting, true, false},
		{Mastered, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.state.String(), func(t *testing.T) {
			assert.Equal(t, tc.inProgress, tc.state.IsInProgress())
			assert.Equal(t, tc.completed, tc.state.IsCompleted())
		})
	}
}

func TestState_Invalid(t *testing.T) {
	bogus := State(42)
	assert.False(t, bogus.Valid())
	assert.Equal(t, "State(42)", bogus.String())

	_, err := bogus.MarshalText()
	assert.Error(t, err)
}

func TestState_TextRoundTrip(t *testing.T) {
	text, err := Watched.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "WATCHED", string(text))

	var s State
	require.NoError(t, s.UnmarshalText(text))
	assert.Equal(t, Watched, s)

	assert.Error(t, s.UnmarshalText([]byte("nope")))
}
