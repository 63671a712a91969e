package ads

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

// Handler wires HTTP endpoints for ads.
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

// MountRoutes registers ad routes. The live listing is public so the
// frontend can fetch placements; everything else requires ADMIN or above.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/live", h.listLive)
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Authenticate, h.gate.RequireRole(authz.RoleAdmin))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Patch("/{id}/active", h.setActive)
		r.Delete("/{id}", h.delete)
	})
}

type adResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	TargetURL string    `json:"target_url"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type adRequest struct {
	Title     string    `json:"title" validate:"required,min=2,max=120"`
	ImageURL  string    `json:"image_url" validate:"required,url"`
	TargetURL string    `json:"target_url" validate:"required,url"`
	StartsAt  time.Time `json:"starts_at" validate:"required"`
	EndsAt    time.Time `json:"ends_at" validate:"required"`
}

type activeRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) listLive(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, true)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, false)
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, liveOnly bool) {
	result, err := h.service.List(r.Context(), liveOnly)
	if err != nil {
		h.logger.Error("list ads", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	response := make([]adResponse, 0, len(result))
	for i := range result {
		response = append(response, toAdResponse(&result[i]))
	}
	httpx.JSON(w, http.StatusOK, response)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	ad, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAdResponse(ad))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	ad, err := h.service.Create(r.Context(), Input{
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		TargetURL: req.TargetURL,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAdResponse(ad))
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
	ad, err := h.service.Update(r.Context(), id, Input{
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		TargetURL: req.TargetURL,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAdResponse(ad))
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	var req activeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json body")
		return
	}
	ad, err := h.service.SetActive(r.Context(), actor, id, req.Active)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAdResponse(ad))
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

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (adRequest, bool) {
	var req adRequest
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

func toAdResponse(ad *Ad) adResponse {
	return adResponse{
		ID:        ad.ID,
		Title:     ad.Title,
		ImageURL:  ad.ImageURL,
		TargetURL: ad.TargetURL,
		StartsAt:  ad.StartsAt,
		EndsAt:    ad.EndsAt,
		Active:    ad.Active,
		CreatedAt: ad.CreatedAt,
		UpdatedAt: ad.UpdatedAt,
	}
}
