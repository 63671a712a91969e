package newspapers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warta-media/warta/internal/authz"
	"github.com/warta-media/warta/internal/platform/httpx"
	"github.com/warta-media/warta/internal/shared"
)

// Handler wires HTTP endpoints for newspapers.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, validator: validator.New()}
}

// MountRoutes registers newspaper routes. Reads are public, mutations
// require ADMIN or above.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Authenticate, h.gate.RequireRole(authz.RoleAdmin))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type newspaperResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Language    string    `json:"language"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type newspaperRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=120"`
	Language    string `json:"language" validate:"required,max=35"`
	Description string `json:"description" validate:"max=1000"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context(), r.URL.Query().Get("language"))
	if err != nil {
		h.logger.Error("list newspapers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	response := make([]newspaperResponse, 0, len(result))
	for i := range result {
		response = append(response, toNewspaperResponse(&result[i]))
	}
	httpx.JSON(w, http.StatusOK, response)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	paper, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toNewspaperResponse(paper))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	paper, err := h.service.Create(r.Context(), Input{
		Title:       req.Title,
		Language:    req.Language,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toNewspaperResponse(paper))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	paper, err := h.service.Update(r.Context(), id, Input{
		Title:       req.Title,
		Language:    req.Language,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toNewspaperResponse(paper))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (newspaperRequest, bool) {
	var req newspaperRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json body")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return req, false
	}
	return req, true
}

func toNewspaperResponse(paper *Newspaper) newspaperResponse {
	return newspaperResponse{
		ID:          paper.ID,
		Title:       paper.Title,
		Language:    paper.Language,
		Description: paper.Description,
		CreatedAt:   paper.CreatedAt,
		UpdatedAt:   paper.UpdatedAt,
	}
}
