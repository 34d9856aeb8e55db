package query

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwmlabs/nwm-api/internal/record"
)

// accountSchema is the fixture schema the query tests parse against.
var accountSchema = &record.Schema{
	Name:  "account",
	Table: "accounts",
	Fields: []record.Field{
		{Name: "id", Type: record.UUID, PrimaryKey: true},
		{Name: "username", Type: record.String},
		{Name: "status", Type: record.String, Enum: []string{"non_activated", "active", "disabled"}},
		{Name: "logins", Type: record.Integer},
		{Name: "signup", Type: record.Timestamp, Generated: true},
	},
}

func TestParseFilter_BareFieldIsEquality(t *testing.T) {
	f, err := ParseFilter(`{"username": "ed"}`, accountSchema)
	require.NoError(t, err)

	require.Len(t, f.Predicates, 1)
	assert.Equal(t, Predicate{Field: "username", Op: OpEq, Value: "ed"}, f.Predicates[0])
}

func TestParseFilter_DottedOperator(t *testing.T) {
	f, err := ParseFilter(`{"logins.gte": 3, "username.like": "ed%"}`, accountSchema)
	require.NoError(t, err)

	require.Len(t, f.Predicates, 2)
	assert.Equal(t, Predicate{Field: "logins", Op: OpGte, Value: int64(3)}, f.Predicates[0])
	assert.Equal(t, Predicate{Field: "username", Op: OpLike, Value: "ed%"}, f.Predicates[1])
}

func TestParseFilter_PreservesPredicateOrder(t *testing.T) {
	f, err := ParseFilter(`{"username": "ed", "status": "active", "logins.gt": 0}`, accountSchema)
	require.NoError(t, err)

	require.Len(t, f.Predicates, 3)
	assert.Equal(t, "username", f.Predicates[0].Field)
	assert.Equal(t, "status", f.Predicates[1].Field)
	assert.Equal(t, "logins", f.Predicates[2].Field)
}

func TestParseFilter_ValuesDecodeToDeclaredTypes(t *testing.T) {
	f, err := ParseFilter(`{"id": "58e0a7d7eebc41d896690800200c9a66", "signup.lt": "2016-03-14T09:26:53.589Z"}`, accountSchema)
	require.NoError(t, err)

	require.Len(t, f.Predicates, 2)
	assert.Equal(t, uuid.MustParse("58e0a7d7eebc41d896690800200c9a66"), f.Predicates[0].Value)

	ts, ok := f.Predicates[1].Value.(time.Time)
	require.True(t, ok)
	assert.True(t, time.Date(2016, 3, 14, 9, 26, 53, 589_000_000, time.UTC).Equal(ts))
}

func TestParseFilter_UndeclaredField(t *testing.T) {
	_, err := ParseFilter(`{"nickname": "ed"}`, accountSchema)
	require.ErrorIs(t, err, ErrInvalidFilter)
	assert.Contains(t, err.Error(), "nickname")
}

func TestParseFilter_UnrecognizedOperator(t *testing.T) {
	_, err := ParseFilter(`{"logins.between": 3}`, accountSchema)
	require.ErrorIs(t, err, ErrInvalidFilter)
	assert.Contains(t, err.Error(), "between")
}

func TestParseFilter_LikeRequiresStringField(t *testing.T) {
	_, err := ParseFilter(`{"logins.like": "3%"}`, accountSchema)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestParseFilter_InOperator(t *testing.T) {
	f, err := ParseFilter(`{"status.in": ["active", "disabled"]}`, accountSchema)
	require.NoError(t, err)

	require.Len(t, f.Predicates, 1)
	assert.Equal(t, []any{"active", "disabled"}, f.Predicates[0].Value)

	_, err = ParseFilter(`{"status.in": "active"}`, accountSchema)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestParseFilter_EnumValueOutsideSet(t *testing.T) {
	_, err := ParseFilter(`{"status": "frozen"}`, accountSchema)
	require.ErrorIs(t, err, ErrInvalidFilter)
	assert.Contains(t, err.Error(), "frozen")

	_, err = ParseFilter(`{"status.in": ["active", "frozen"]}`, accountSchema)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestParseFilter_TypeMismatch(t *testing.T) {
	_, err := ParseFilter(`{"logins": "many"}`, accountSchema)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestParseFilter_MalformedJSON(t *testing.T) {
	_, err := ParseFilter(`{"username": `, accountSchema)
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = ParseFilter(`["username"]`, accountSchema)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestParseFilter_Empty(t *testing.T) {
	f, err := ParseFilter("", accountSchema)
	require.NoError(t, err)
	assert.True(t, f.IsZero())
}
