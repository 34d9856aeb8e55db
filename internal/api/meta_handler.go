package api

import (
	"net/http"

	"github.com/nwmlabs/nwm-api/internal/api/shared"
	"github.com/nwmlabs/nwm-api/internal/record"
)

// MetaHandler serves model introspection built from the static
// field-descriptor tables, so clients can discover field names, type tags,
// and which fields are required.
type MetaHandler struct {
	schemas []*record.Schema
}

// NewMetaHandler creates a MetaHandler for the given schemas.
func NewMetaHandler(schemas ...*record.Schema) *MetaHandler {
	return &MetaHandler{schemas: schemas}
}

// Get handles GET /meta.
func (h *MetaHandler) Get(w http.ResponseWriter, r *http.Request) {
	out := record.NewOrderedDoc()
	for _, s := range h.schemas {
		fields := record.NewOrderedDoc()
		for _, f := range s.Fields {
			fields.Set(f.Name, f.Type.String())
		}

		entry := record.NewOrderedDoc()
		entry.Set("fields", fields)
		entry.Set("required", s.RequiredFields())
		entry.Set("optional", s.OptionalFields())
		out.Set(s.Name, entry)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}
