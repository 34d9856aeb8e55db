package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage_LimitOffset(t *testing.T) {
	p, err := ParsePage(url.Values{"limit": {"10"}, "offset": {"20"}})
	require.NoError(t, err)

	require.NotNil(t, p.Limit)
	require.NotNil(t, p.Offset)
	assert.Equal(t, int64(10), *p.Limit)
	assert.Equal(t, int64(20), *p.Offset)
}

func TestParsePage_StartEnd(t *testing.T) {
	p, err := ParsePage(url.Values{"start": {"20"}, "end": {"30"}})
	require.NoError(t, err)

	require.NotNil(t, p.Limit)
	require.NotNil(t, p.Offset)
	assert.Equal(t, int64(10), *p.Limit, "end is exclusive")
	assert.Equal(t, int64(20), *p.Offset)
}

func TestParsePage_StartEndWins(t *testing.T) {
	p, err := ParsePage(url.Values{
		"limit": {"100"}, "offset": {"0"},
		"start": {"5"}, "end": {"8"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), *p.Limit)
	assert.Equal(t, int64(5), *p.Offset)
}

func TestParsePage_EndOnly(t *testing.T) {
	p, err := ParsePage(url.Values{"end": {"7"}})
	require.NoError(t, err)

	require.NotNil(t, p.Limit)
	assert.Equal(t, int64(7), *p.Limit)
	assert.Nil(t, p.Offset)
}

func TestParsePage_StartOnly(t *testing.T) {
	p, err := ParsePage(url.Values{"start": {"4"}})
	require.NoError(t, err)

	assert.Nil(t, p.Limit)
	require.NotNil(t, p.Offset)
	assert.Equal(t, int64(4), *p.Offset)
}

func TestParsePage_EndBeforeStart(t *testing.T) {
	_, err := ParsePage(url.Values{"start": {"9"}, "end": {"3"}})
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestParsePage_RejectsNegativeAndNonInteger(t *testing.T) {
	for _, name := range []string{"limit", "offset", "start", "end"} {
		_, err := ParsePage(url.Values{name: {"-1"}})
		assert.ErrorIs(t, err, ErrInvalidPage, name)

		_, err = ParsePage(url.Values{name: {"ten"}})
		assert.ErrorIs(t, err, ErrInvalidPage, name)

		_, err = ParsePage(url.Values{name: {"1.5"}})
		assert.ErrorIs(t, err, ErrInvalidPage, name)
	}
}

func TestParsePage_Empty(t *testing.T) {
	p, err := ParsePage(url.Values{})
	require.NoError(t, err)
	assert.True(t, p.IsZero())
}
