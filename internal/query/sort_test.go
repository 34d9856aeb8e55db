package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSort_MultipleKeys(t *testing.T) {
	s, err := ParseSort("status, signup desc, username ASC", accountSchema)
	require.NoError(t, err)

	assert.Equal(t, []SortKey{
		{Field: "status"},
		{Field: "signup", Descending: true},
		{Field: "username"},
	}, s.Keys)
}

func TestParseSort_UndeclaredField(t *testing.T) {
	_, err := ParseSort("nickname desc", accountSchema)
	require.ErrorIs(t, err, ErrInvalidSort)
	assert.Contains(t, err.Error(), "nickname")
}

func TestParseSort_BadDirection(t *testing.T) {
	_, err := ParseSort("username sideways", accountSchema)
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestParseSort_MalformedEntry(t *testing.T) {
	_, err := ParseSort("username desc extra", accountSchema)
	assert.ErrorIs(t, err, ErrInvalidSort)

	_, err = ParseSort("username,,status", accountSchema)
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestParseSort_Empty(t *testing.T) {
	s, err := ParseSort("  ", accountSchema)
	require.NoError(t, err)
	assert.True(t, s.IsZero())
}
