package comments

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

// Handler wires HTTP endpoints for comments. Listing is public, writing
// requires authentication.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		gate:      gate,
		validator: validator.New(),
	}
}

// MountRoutes registers comment routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/article/{articleID}", h.listByArticle)
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Authenticate)
		r.Post("/article/{articleID}", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type commentResponse struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	AuthorID  int64     `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type listResponse struct {
	Comments   []commentResponse `json:"comments"`
	Pagination shared.Pagination `json:"pagination"`
}

type commentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

func (h *Handler) listByArticle(w http.ResponseWriter, r *http.Request) {
	articleID, err := strconv.ParseInt(chi.URLParam(r, "articleID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	page, perPage := shared.PageParams(r)
	result, pagination, err := h.service.ListByArticle(r.Context(), articleID, page, perPage)
	if err != nil {
		h.logger.Error("list comments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	response := listResponse{Comments: make([]commentResponse, 0, len(result)), Pagination: pagination}
	for i := range result {
		response.Comments = append(response.Comments, toCommentResponse(&result[i]))
	}
	httpx.JSON(w, http.StatusOK, response)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	articleID, err := strconv.ParseInt(chi.URLParam(r, "articleID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	comment, err := h.service.Create(r.Context(), actor, articleID, req.Body)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toCommentResponse(comment))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	comment, err := h.service.Update(r.Context(), actor, id, req.Body)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toCommentResponse(comment))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (commentRequest, bool) {
	var req commentRequest
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

func toCommentResponse(comment *Comment) commentResponse {
	return commentResponse{
		ID:        comment.ID,
		ArticleID: comment.ArticleID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}
