package query

import (
	"net/url"
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSQL(t *testing.T, ds *goqu.SelectDataset) string {
	t.Helper()
	sql, _, err := ds.ToSQL()
	require.NoError(t, err)
	return sql
}

func TestApplyFilter_ComposesConjunctiveWhere(t *testing.T) {
	f, err := ParseFilter(`{"status": "active", "logins.gte": 3}`, accountSchema)
	require.NoError(t, err)

	sql := mustSQL(t, ApplyFilter(goqu.From("accounts"), f))
	assert.Equal(t,
		`SELECT * FROM "accounts" WHERE (("status" = 'active') AND ("logins" >= 3))`,
		sql)
}

func TestApplyFilter_AllOperators(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`{"username.ne": "ed"}`, `("username" != 'ed')`},
		{`{"logins.gt": 1}`, `("logins" > 1)`},
		{`{"logins.lt": 9}`, `("logins" < 9)`},
		{`{"logins.lte": 9}`, `("logins" <= 9)`},
		{`{"username.like": "ed%"}`, `("username" LIKE 'ed%')`},
		{`{"status.in": ["active", "disabled"]}`, `("status" IN ('active', 'disabled'))`},
	}

	for _, tc := range cases {
		f, err := ParseFilter(tc.raw, accountSchema)
		require.NoError(t, err, tc.raw)

		sql := mustSQL(t, ApplyFilter(goqu.From("accounts"), f))
		assert.Equal(t, `SELECT * FROM "accounts" WHERE `+tc.want, sql, tc.raw)
	}
}

func TestApply_OrderAndPage(t *testing.T) {
	values := url.Values{
		"order_by": {"status, signup desc"},
		"limit":    {"10"},
		"offset":   {"5"},
	}
	opts, err := ParseOptions(values, accountSchema)
	require.NoError(t, err)

	sql := mustSQL(t, Apply(goqu.From("accounts"), opts))
	assert.Equal(t,
		`SELECT * FROM "accounts" ORDER BY "status" ASC, "signup" DESC LIMIT 10 OFFSET 5`,
		sql)
}

func TestApply_ZeroLimitSelectsNothing(t *testing.T) {
	opts, err := ParseOptions(url.Values{"limit": {"0"}}, accountSchema)
	require.NoError(t, err)

	sql := mustSQL(t, Apply(goqu.From("accounts"), opts))
	assert.Equal(t, `SELECT * FROM "accounts" WHERE FALSE`, sql)
}

func TestApply_EmptySliceSelectsNothing(t *testing.T) {
	opts, err := ParseOptions(url.Values{"start": {"5"}, "end": {"5"}}, accountSchema)
	require.NoError(t, err)

	sql := mustSQL(t, Apply(goqu.From("accounts"), opts))
	assert.Equal(t, `SELECT * FROM "accounts" WHERE FALSE OFFSET 5`, sql)
}

func TestApply_ZeroLimitCombinesWithFilter(t *testing.T) {
	f, err := ParseFilter(`{"status": "active"}`, accountSchema)
	require.NoError(t, err)
	limit := int64(0)
	opts := Options{Filter: f, Page: Page{Limit: &limit}}

	sql := mustSQL(t, Apply(goqu.From("accounts"), opts))
	assert.Equal(t, `SELECT * FROM "accounts" WHERE (("status" = 'active') AND FALSE)`, sql)
}

func TestApply_LeavesDatasetUntouchedWhenZero(t *testing.T) {
	sql := mustSQL(t, Apply(goqu.From("accounts"), Options{}))
	assert.Equal(t, `SELECT * FROM "accounts"`, sql)
}

func TestParseOptions_QWinsOverWhere(t *testing.T) {
	values := url.Values{
		"q":     {`{"username": "ed"}`},
		"where": {`{"username": "al"}`},
	}
	opts, err := ParseOptions(values, accountSchema)
	require.NoError(t, err)

	require.Len(t, opts.Filter.Predicates, 1)
	assert.Equal(t, "ed", opts.Filter.Predicates[0].Value)
}

func TestParseOptions_WhereAlias(t *testing.T) {
	opts, err := ParseOptions(url.Values{"where": {`{"username": "al"}`}}, accountSchema)
	require.NoError(t, err)

	require.Len(t, opts.Filter.Predicates, 1)
	assert.Equal(t, "al", opts.Filter.Predicates[0].Value)
}

func TestParseBool(t *testing.T) {
	for _, raw := range []string{"y", "yes", "true", "on", "1"} {
		assert.True(t, ParseBool(raw), raw)
	}
	for _, raw := range []string{"", "n", "no", "false", "off", "0", "TRUE", "maybe"} {
		assert.False(t, ParseBool(raw), raw)
	}
}
