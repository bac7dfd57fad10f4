package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/user-registry/internal/domain"
	"github.com/heartmarshall/user-registry/internal/service/user"
)

// maxBodyBytes caps request bodies on record endpoints.
const maxBodyBytes = 1 << 20

// userService defines the operations needed by UserHandler.
type userService interface {
	Create(ctx context.Context, rec *domain.UserRecord) error
	Update(ctx context.Context, rec *domain.UserRecord) error
	Delete(ctx context.Context, rec *domain.UserRecord) error
	FetchDetails(ctx context.Context, rec *domain.UserRecord) (bool, error)
	ResolveID(ctx context.Context, rec *domain.UserRecord) error
	ListAll(ctx context.Context) (map[string]uuid.UUID, error)
}

// UserHandler serves the user record endpoints.
type UserHandler struct {
	svc userService
	log *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc userService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: logger.With("handler", "user")}
}

type userRequest struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	OwnerEmail  string `json:"owner_email"`
	Notes       string `json:"notes"`
	IsDomain    bool   `json:"is_domain"`
	Domain      string `json:"domain"`
}

type userResponse struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	OwnerEmail  string `json:"owner_email"`
	Notes       string `json:"notes"`
	IsDomain    bool   `json:"is_domain"`
	Domain      string `json:"domain"`
	LoginName   string `json:"login_name,omitempty"`
	LoginHash   string `json:"login_hash,omitempty"`
}

type listUsersResponse struct {
	Users map[string]uuid.UUID `json:"users"`
}

// usage is served on / and /index.
const usage = `GET /users - returns all users
GET /user/{name} - return user details
GET /user/{name}?system={system_id} - return user details with the login hash for that system
POST /user - create user
PUT /user/{name} - update user
DELETE /user/{name} - delete user

sample user values (create user and update user):
{
	"name": "user_name",
	"description": "user_description",
	"owner": "owner_name",
	"owner_email": "owner@email.com",
	"notes": "user_notes",
	"is_domain": true,
	"domain": "user.domain.name"
}
`

// Index handles GET / and GET /index.
func (h *UserHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, usage) //nolint:errcheck
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListAll(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listUsersResponse{Users: users})
}

// Create handles POST /user.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	rec, err := req.input().Record()
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.svc.Create(r.Context(), &rec); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondDetails(w, r, &rec, http.StatusCreated)
}

// Get handles GET /user/{name}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.resolve(w, r)
	if !ok {
		return
	}

	h.respondDetails(w, r, rec, http.StatusOK)
}

// Update handles PUT /user/{name}. The name in the path selects the record;
// name and user_id in the body are ignored. Only non-empty fields are
// written.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	target, ok := h.resolve(w, r)
	if !ok {
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	req.UserID = ""
	rec, err := req.input().Record()
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	rec.ID = target.ID
	rec.Name = target.Name

	if err := h.svc.Update(r.Context(), &rec); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondDetails(w, r, &rec, http.StatusOK)
}

// Delete handles DELETE /user/{name}. The response body is empty.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), rec); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
}

// resolve looks up the record named in the path. It writes a 400 and
// returns false when the name is not stored.
func (h *UserHandler) resolve(w http.ResponseWriter, r *http.Request) (*domain.UserRecord, bool) {
	rec := &domain.UserRecord{Name: chi.URLParam(r, "name")}
	if err := h.svc.ResolveID(r.Context(), rec); err != nil {
		h.handleError(w, r, err)
		return nil, false
	}
	return rec, true
}

// decode checks the content type and reads a userRequest from the body.
func (h *UserHandler) decode(w http.ResponseWriter, r *http.Request) (userRequest, bool) {
	var req userRequest

	if !isJSON(r) {
		writeError(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("unsupported request mimetype: %s", r.Header.Get("Content-Type")))
		return req, false
	}

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}

// respondDetails reloads rec from the store and writes it with status.
// A system query parameter adds the login hash for that system.
func (h *UserHandler) respondDetails(w http.ResponseWriter, r *http.Request, rec *domain.UserRecord, status int) {
	found, err := h.svc.FetchDetails(r.Context(), rec)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("user: %s does not exist", rec.Name))
		return
	}

	resp := toUserResponse(rec)
	if system := r.URL.Query().Get("system"); system != "" {
		resp.LoginHash = rec.LoginHash(system)
	}
	writeJSON(w, status, resp)
}

func (h *UserHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, domain.ErrIdentity), errors.Is(err, domain.ErrNotFound):
		name := chi.URLParam(r, "name")
		writeError(w, http.StatusBadRequest, fmt.Sprintf("user: %s does not exist", name))
	case errors.Is(err, domain.ErrNoColumnsToUpdate):
		writeError(w, http.StatusBadRequest, "no columns to update")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrConnectivity):
		h.log.WarnContext(r.Context(), "store unavailable", slog.String("error", err.Error()))
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (req userRequest) input() user.RecordInput {
	return user.RecordInput{
		UserID:      req.UserID,
		Name:        req.Name,
		Description: req.Description,
		Owner:       req.Owner,
		OwnerEmail:  req.OwnerEmail,
		Notes:       req.Notes,
		IsDomain:    req.IsDomain,
		Domain:      req.Domain,
	}
}

func toUserResponse(rec *domain.UserRecord) userResponse {
	return userResponse{
		UserID:      rec.ID.String(),
		Name:        rec.Name,
		Description: rec.Description,
		Owner:       rec.Owner,
		OwnerEmail:  rec.OwnerEmail,
		Notes:       rec.Notes,
		IsDomain:    rec.IsDomain,
		Domain:      rec.Domain,
		LoginName:   rec.LoginName(),
	}
}
