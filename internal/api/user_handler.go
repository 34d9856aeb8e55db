// Package api contains the HTTP handlers and the error translation layer.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nwmlabs/nwm-api/internal/api/shared"
	"github.com/nwmlabs/nwm-api/internal/domain"
	"github.com/nwmlabs/nwm-api/internal/record"
	"github.com/nwmlabs/nwm-api/internal/service"
	"github.com/nwmlabs/nwm-api/internal/store"
)

// UserHandler handles the user resource endpoints. Every operation borrows
// the pipeline's transaction handle from the context; nothing here owns or
// retains it.
type UserHandler struct {
	users   store.UserStore
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a UserHandler with the given dependencies.
func NewUserHandler(users store.UserStore, svc *service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:   users,
		service: svc,
		logger:  logger.With(slog.String("component", "user_handler")),
	}
}

// scoped binds the handler's collaborators to the request's transaction.
func (h *UserHandler) scoped(r *http.Request) (store.UserStore, *service.UserService) {
	if tx := shared.TxFromContext(r.Context()); tx != nil {
		return h.users.WithTx(tx), h.service.WithTx(tx)
	}
	return h.users, h.service
}

// List handles GET /users. Filter, sort, and pagination arrive pre-parsed
// from the query-shaping stage.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, _ := h.scoped(r)
	opts := shared.QueryOptionsFromContext(r.Context())

	found, err := users.List(r.Context(), opts)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	docs := make([]*record.OrderedDoc, 0, len(found))
	for _, user := range found {
		doc, err := record.ToWire(user, nil, nil)
		if err != nil {
			shared.RespondWithError(w, r, err)
			return
		}
		docs = append(docs, doc)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, docs)
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	_, svc := h.scoped(r)

	doc, err := requireBodyObject(r)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	if err := record.ValidateDocument(domain.UserSchema, doc, true); err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	user := domain.NewUser()
	if err := record.FromWire(doc, user); err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	if err := svc.Register(r.Context(), user); err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	out, err := record.ToWire(user, nil, nil)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/users/%s", hexID(user.ID)))
	shared.RespondWithJSON(w, r, http.StatusCreated, out)
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	users, _ := h.scoped(r)

	id, err := pathID(r)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	user, err := users.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	doc, err := record.ToWire(user, nil, nil)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, doc)
}

// Replace handles PUT /users/{id}: full-replacement semantics. Fields
// absent from the body reset to their defaults; the key and server-owned
// fields survive.
func (h *UserHandler) Replace(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

// Patch handles PATCH /users/{id}: merge semantics. Fields absent from
// the body keep their current values.
func (h *UserHandler) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request, replace bool) {
	users, svc := h.scoped(r)

	id, err := pathID(r)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	doc, err := requireBodyObject(r)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	if err := record.ValidateDocument(domain.UserSchema, doc, replace); err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	user, err := users.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	// The password arrives as plaintext when present; the service hashes
	// it. Keep the stored hash aside so a body without a password does not
	// clobber it on replace.
	storedHash := user.Password

	if replace {
		err = record.Replace(doc, user)
		// Server-owned fields are not client-replaceable; restore them.
		apiKey, signup := user.APIKey, user.Signup
		if err == nil {
			user.APIKey, user.Signup = apiKey, signup
		}
	} else {
		err = record.FromWire(doc, user)
	}
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	newPassword := ""
	if _, present := doc["password"]; present {
		newPassword = user.Password
		user.Password = storedHash
	} else {
		user.Password = storedHash
	}

	if err := svc.Save(r.Context(), user, newPassword); err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	out, err := record.ToWire(user, nil, nil)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	users, _ := h.scoped(r)

	id, err := pathID(r)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	if err := users.Delete(r.Context(), id); err != nil {
		shared.RespondWithError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Activate handles POST /users/{id}/activate.
func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(svc *service.UserService, id uuid.UUID) (*domain.User, error) {
		return svc.Activate(r.Context(), id)
	})
}

// Deactivate handles POST /users/{id}/deactivate.
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(svc *service.UserService, id uuid.UUID) (*domain.User, error) {
		return svc.Deactivate(r.Context(), id)
	})
}

func (h *UserHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(*service.UserService, uuid.UUID) (*domain.User, error),
) {
	_, svc := h.scoped(r)

	id, err := pathID(r)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	user, err := op(svc, id)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	doc, err := record.ToWire(user, nil, nil)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, doc)
}

// NotImplemented answers 501 for routes that exist but are deliberately
// unbuilt, rather than letting them fall through to a generic 500.
func NotImplemented(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, shared.ErrNotImplemented)
}

// pathID parses the id path parameter. The hex pattern was already checked
// by the RequireHexID stage.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not a valid identifier", shared.ErrInvalidParam, raw)
	}
	return id, nil
}

// requireBodyObject fetches the parsed body and requires a JSON object.
func requireBodyObject(r *http.Request) (map[string]any, error) {
	body, ok := shared.BodyFromContext(r.Context())
	if !ok {
		return nil, shared.ErrEmptyBody
	}
	doc, ok := body.(map[string]any)
	if !ok {
		return nil, shared.ErrMalformedBody
	}
	return doc, nil
}

func hexID(id uuid.UUID) string {
	wire, _ := record.Encode(id, record.UUID)
	return wire.(string)
}
