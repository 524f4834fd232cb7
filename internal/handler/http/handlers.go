package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"example.com/userstore/internal/domain"
	"example.com/userstore/internal/storage"
	"example.com/userstore/internal/usecase"
	"example.com/userstore/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Service interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, rawID string) (domain.User, error)
	Create(ctx context.Context, name *string) (domain.User, error)
	Update(ctx context.Context, rawID string, name *string) (domain.User, error)
	Delete(ctx context.Context, rawID string) error
}

type Handler struct {
	mux    chi.Router
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		mux:    chi.NewRouter(),
		svc:    svc,
		logger: logger,
	}
	h.routes()
	return h
}

func (h *Handler) routes() {
	h.mux.Use(requestID)
	h.mux.Use(accessLog(h.logger))
	h.mux.Use(middleware.Recoverer)

	h.mux.Get("/healthz", h.health)
	h.mux.Get("/users", h.users)
	h.mux.Get("/users/{id}", h.user)
	h.mux.Post("/user", h.createUser)
	h.mux.Put("/users/{id}", h.updateUser)
	h.mux.Delete("/users/{id}", h.deleteUser)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]string{"ok": "true"})
}

func (h *Handler) users(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, items)
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, item)
}

type userRequest struct {
	Name *string `json:"name"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUserRequest(r)
	if err != nil {
		response.Message(w, r, http.StatusBadRequest, domain.MsgInvalidJSON)
		return
	}
	item, err := h.svc.Create(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/users/"+strconv.FormatInt(item.ID, 10))
	response.Message(w, r, http.StatusCreated, domain.MsgCreated)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUserRequest(r)
	if err != nil {
		response.Message(w, r, http.StatusBadRequest, domain.MsgInvalidJSON)
		return
	}
	item, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, item)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Message(w, r, http.StatusOK, domain.MsgDeleted)
}

var (
	errExtraData = errors.New("extra data")
	errNotObject = errors.New("body is not an object")
)

// decodeUserRequest reads the optional user body. Only application/json
// bodies are parsed; anything else, an empty body or a top-level array counts
// as a request without fields. A name that is not a string is treated as
// absent. Broken JSON, trailing data and top-level scalars are errors.
func decodeUserRequest(r *http.Request) (userRequest, error) {
	var req userRequest
	defer io.Copy(io.Discard, r.Body)
	if render.GetRequestContentType(r) != render.ContentTypeJSON {
		return req, nil
	}
	var raw json.RawMessage
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return req, nil
		}
		return req, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return req, errExtraData
	}
	raw = bytes.TrimSpace(raw)
	switch raw[0] {
	case '{':
	case '[':
		return req, nil
	default:
		return req, errNotObject
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return req, err
	}
	var name string
	if v, ok := fields["name"]; ok && json.Unmarshal(v, &name) == nil && !bytes.Equal(v, []byte("null")) {
		req.Name = &name
	}
	return req, nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.Message(w, r, http.StatusNotFound, domain.MsgUserNotFound)
	case errors.Is(err, usecase.ErrNameRequired):
		response.Message(w, r, http.StatusBadRequest, domain.MsgNameRequired)
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "err", err, "path", r.URL.Path)
		response.Message(w, r, http.StatusInternalServerError, domain.MsgInternal)
	}
}
