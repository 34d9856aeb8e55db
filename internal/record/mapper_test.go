package record

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noteRecord is a small fixture type exercising every field flavor the
// mapper handles.
type noteRecord struct {
	ID      uuid.UUID
	Title   string
	Body    *string
	Created time.Time
	Secret  string
	Meta    any
}

var noteSchema = &Schema{
	Name:  "note",
	Table: "notes",
	Fields: []Field{
		{Name: "id", Type: UUID, PrimaryKey: true},
		{Name: "title", Type: String},
		{Name: "body", Type: String, Nullable: true},
		{Name: "created", Type: Timestamp, Generated: true},
		{Name: "secret", Type: String, Nullable: true, Hidden: true},
		{Name: "meta", Type: Document, Nullable: true},
	},
}

func (n *noteRecord) Schema() *Schema { return noteSchema }

func (n *noteRecord) Get(field string) any {
	switch field {
	case "id":
		return n.ID
	case "title":
		return n.Title
	case "body":
		if n.Body == nil {
			return nil
		}
		return *n.Body
	case "created":
		return n.Created
	case "secret":
		if n.Secret == "" {
			return nil
		}
		return n.Secret
	case "meta":
		return n.Meta
	}
	return nil
}

func (n *noteRecord) Set(field string, value any) error {
	switch field {
	case "id":
		if value == nil {
			n.ID = uuid.Nil
			return nil
		}
		n.ID = value.(uuid.UUID)
	case "title":
		if value == nil {
			n.Title = ""
			return nil
		}
		n.Title = value.(string)
	case "body":
		if value == nil {
			n.Body = nil
			return nil
		}
		s := value.(string)
		n.Body = &s
	case "created":
		if value == nil {
			n.Created = time.Time{}
			return nil
		}
		n.Created = value.(time.Time)
	case "secret":
		if value == nil {
			n.Secret = ""
			return nil
		}
		n.Secret = value.(string)
	case "meta":
		n.Meta = value
	}
	return nil
}

func sampleNote() *noteRecord {
	body := "first draft"
	return &noteRecord{
		ID:      uuid.MustParse("58e0a7d7eebc41d896690800200c9a66"),
		Title:   "hello",
		Body:    &body,
		Created: time.Date(2016, 3, 14, 9, 26, 53, 589_000_000, time.UTC),
		Secret:  "s3cret",
		Meta:    map[string]any{"pinned": true},
	}
}

func TestToWire_DeclarationOrderAndHiddenFields(t *testing.T) {
	doc, err := ToWire(sampleNote(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "title", "body", "created", "meta"}, doc.Keys())

	id, _ := doc.Get("id")
	assert.Equal(t, "58e0a7d7eebc41d896690800200c9a66", id)

	created, _ := doc.Get("created")
	assert.Equal(t, "2016-03-14T09:26:53.589Z", created)

	_, ok := doc.Get("secret")
	assert.False(t, ok, "hidden field must never be serialized")
}

func TestToWire_ExcludedFields(t *testing.T) {
	excluded := map[string]struct{}{"meta": {}, "created": {}}

	doc, err := ToWire(sampleNote(), excluded, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "title", "body"}, doc.Keys())
}

func TestToWire_IncludedFields(t *testing.T) {
	included := map[string]struct{}{"id": {}, "title": {}, "secret": {}}

	doc, err := ToWire(sampleNote(), nil, included)
	require.NoError(t, err)

	// The include list cannot resurrect hidden fields.
	assert.Equal(t, []string{"id", "title"}, doc.Keys())
}

func TestFromWire_MergeKeepsAbsentFields(t *testing.T) {
	n := sampleNote()

	err := FromWire(map[string]any{"title": "renamed"}, n)
	require.NoError(t, err)

	assert.Equal(t, "renamed", n.Title)
	require.NotNil(t, n.Body)
	assert.Equal(t, "first draft", *n.Body)
	assert.Equal(t, map[string]any{"pinned": true}, n.Meta)
}

func TestFromWire_ExplicitNullClearsField(t *testing.T) {
	n := sampleNote()

	err := FromWire(map[string]any{"body": nil}, n)
	require.NoError(t, err)
	assert.Nil(t, n.Body)
}

func TestFromWire_DecodeFailureNamesField(t *testing.T) {
	n := sampleNote()

	err := FromWire(map[string]any{"created": "not-a-time"}, n)
	require.ErrorIs(t, err, ErrInvalidValue)
	assert.Contains(t, err.Error(), `"created"`)
}

func TestReplace_ResetsEverythingButTheKey(t *testing.T) {
	n := sampleNote()
	id := n.ID

	err := Replace(map[string]any{"title": "only this"}, n)
	require.NoError(t, err)

	assert.Equal(t, id, n.ID)
	assert.Equal(t, "only this", n.Title)
	assert.Nil(t, n.Body)
	assert.True(t, n.Created.IsZero())
	assert.Nil(t, n.Meta)
}

func TestValidateDocument_RejectsUnknownField(t *testing.T) {
	err := ValidateDocument(noteSchema, map[string]any{"titel": "typo"}, false)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestValidateDocument_RejectsGeneratedAndKeyFields(t *testing.T) {
	err := ValidateDocument(noteSchema, map[string]any{"created": "2016-03-14T09:26:53.589Z"}, false)
	assert.ErrorIs(t, err, ErrReadOnlyField)

	err = ValidateDocument(noteSchema, map[string]any{"id": "58e0a7d7eebc41d896690800200c9a66"}, false)
	assert.ErrorIs(t, err, ErrReadOnlyField)
}

func TestValidateDocument_RequireAll(t *testing.T) {
	err := ValidateDocument(noteSchema, map[string]any{"body": "no title"}, true)
	assert.ErrorIs(t, err, ErrMissingField)

	err = ValidateDocument(noteSchema, map[string]any{"title": nil}, true)
	assert.ErrorIs(t, err, ErrMissingField)

	err = ValidateDocument(noteSchema, map[string]any{"title": "present"}, true)
	assert.NoError(t, err)
}
