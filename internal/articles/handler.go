package articles

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"github.com/warta-media/warta/internal/authz"
	"github.com/warta-media/warta/internal/platform/httpx"
	"github.com/warta-media/warta/internal/shared"
)

// supportedLanguages drives Accept-Language negotiation for listings.
// The first entry is the fallback.
var supportedLanguages = []language.Tag{
	language.Indonesian,
	language.English,
	language.Malay,
	language.Arabic,
	language.Chinese,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// Handler wires HTTP endpoints for articles. Reads are public, mutations
// go through the authorization gate.
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

// MountRoutes registers article routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Authenticate)
		r.With(h.gate.RequireRole(authz.RoleReporter)).Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type articleResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Language    string    `json:"language"`
	CategoryID  int64     `json:"category_id"`
	NewspaperID int64     `json:"newspaper_id,omitempty"`
	AuthorID    int64     `json:"author_id"`
	Published   bool      `json:"published"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type listResponse struct {
	Articles   []articleResponse `json:"articles"`
	Language   string            `json:"language,omitempty"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Language: negotiateLanguage(r),
		OnlyLive: true,
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		filter.CategoryID, _ = strconv.ParseInt(raw, 10, 64)
	}
	page, perPage := shared.PageParams(r)
	result, pagination, err := h.service.List(r.Context(), filter, page, perPage)
	if err != nil {
		h.logger.Error("list articles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	response := listResponse{Articles: make([]articleResponse, 0, len(result)), Language: filter.Language, Pagination: pagination}
	for i := range result {
		response.Articles = append(response.Articles, toArticleResponse(&result[i]))
	}
	httpx.JSON(w, http.StatusOK, response)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	article, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toArticleResponse(article))
}

type articleRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Body        string `json:"body" validate:"required"`
	Language    string `json:"language" validate:"required,max=35"`
	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
	NewspaperID int64  `json:"newspaper_id" validate:"omitempty,gt=0"`
	Published   bool   `json:"published"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	article, err := h.service.Create(r.Context(), actor, req.toInput())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toArticleResponse(article))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	article, err := h.service.Update(r.Context(), actor, id, req.toInput())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toArticleResponse(article))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	id, err := pathID(r)
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

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (articleRequest, bool) {
	var req articleRequest
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

func (req articleRequest) toInput() Input {
	return Input{
		Title:       req.Title,
		Body:        req.Body,
		Language:    req.Language,
		CategoryID:  req.CategoryID,
		NewspaperID: req.NewspaperID,
		Published:   req.Published,
	}
}

// negotiateLanguage picks the listing language: an explicit ?language=
// query wins, otherwise the Accept-Language header is matched against
// the supported set. No header means no language filter.
func negotiateLanguage(r *http.Request) string {
	if raw := r.URL.Query().Get("language"); raw != "" {
		if tag, err := language.Parse(raw); err == nil {
			return tag.String()
		}
		return raw
	}
	header := r.Header.Get("Accept-Language")
	if header == "" {
		return ""
	}
	tag, _ := language.MatchStrings(languageMatcher, header)
	base, _ := tag.Base()
	return base.String()
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func toArticleResponse(article *Article) articleResponse {
	return articleResponse{
		ID:          article.ID,
		Title:       article.Title,
		Body:        article.Body,
		Language:    article.Language,
		CategoryID:  article.CategoryID,
		NewspaperID: article.NewspaperID,
		AuthorID:    article.AuthorID,
		Published:   article.Published,
		Views:       article.Views,
		CreatedAt:   article.CreatedAt,
		UpdatedAt:   article.UpdatedAt,
	}
}
