package articles

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/warta-media/warta/internal/authz"
	"github.com/warta-media/warta/internal/platform/httpx"
	"github.com/warta-media/warta/internal/shared"
)

// RepositoryPort defines data access methods for articles.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]Article, int, error)
	FindByID(ctx context.Context, id int64) (*Article, error)
	GetOwnerID(ctx context.Context, id int64) (int64, error)
	Create(ctx context.Context, params CreateParams) (*Article, error)
	Update(ctx context.Context, id int64, params UpdateParams) (*Article, error)
	Delete(ctx context.Context, id int64) error
	AddViews(ctx context.Context, id, delta int64) error
}

// Service handles article business logic.
type Service struct {
	repo  RepositoryPort
	cache *Cache
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// List returns a page of articles. Anonymous callers only ever see
// published ones; the handler sets OnlyLive accordingly.
func (s *Service) List(ctx context.Context, filter ListFilter, page, perPage int) ([]Article, shared.Pagination, error) {
	pagination := shared.NewPagination(page, perPage, 0)
	result, total, err := s.repo.List(ctx, filter, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return result, shared.NewPagination(page, perPage, total), nil
}

// Get fetches one article through the read cache and counts the view.
// Unpublished drafts are invisible here, matching the listing: a draft
// answers 404 until its author publishes it.
func (s *Service) Get(ctx context.Context, id int64) (*Article, error) {
	if cached := s.cache.Get(ctx, id); cached != nil {
		s.cache.IncrView(ctx, id)
		return cached, nil
	}
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !article.Published {
		return nil, shared.ErrNotFound
	}
	s.cache.Set(ctx, article)
	s.cache.IncrView(ctx, id)
	return article, nil
}

// Input carries article fields from create/update requests.
type Input struct {
	Title       string
	Body        string
	Language    string
	CategoryID  int64
	NewspaperID int64
	Published   bool
}

// Create stores a new article owned by the actor. The route gate already
// requires REPORTER or above.
func (s *Service) Create(ctx context.Context, actor shared.Actor, in Input) (*Article, error) {
	tag, err := normalizeLanguage(in.Language)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, CreateParams{
		Title:       strings.TrimSpace(in.Title),
		Body:        in.Body,
		Language:    tag,
		CategoryID:  in.CategoryID,
		NewspaperID: in.NewspaperID,
		AuthorID:    actor.ID,
		Published:   in.Published,
	})
}

// Update mutates an article when the actor owns it or holds an article
// manager role.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, in Input) (*Article, error) {
	ownerID, err := s.repo.GetOwnerID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutate(actor.ID, authz.Role(actor.Role), ownerID, authz.ArticleManagerRoles) {
		return nil, shared.ErrForbidden
	}
	tag, err := normalizeLanguage(in.Language)
	if err != nil {
		return nil, err
	}
	article, err := s.repo.Update(ctx, id, UpdateParams{
		Title:      strings.TrimSpace(in.Title),
		Body:       in.Body,
		Language:   tag,
		CategoryID: in.CategoryID,
		Published:  in.Published,
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, id)
	return article, nil
}

// Delete removes an article under the same ownership-or-privileged rule
// as Update.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, id int64) error {
	ownerID, err := s.repo.GetOwnerID(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanMutate(actor.ID, authz.Role(actor.Role), ownerID, authz.ArticleManagerRoles) {
		return shared.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

// FlushViews folds buffered view counters into storage. Called by the
// background worker.
func (s *Service) FlushViews(ctx context.Context) (int, error) {
	counts, err := s.cache.DrainViews(ctx)
	if err != nil {
		return 0, err
	}
	flushed := 0
	for id, delta := range counts {
		if err := s.repo.AddViews(ctx, id, delta); err != nil {
			return flushed, err
		}
		s.cache.Invalidate(ctx, id)
		flushed++
	}
	return flushed, nil
}

// normalizeLanguage canonicalises a BCP-47 tag ("id", "en-US", ...).
func normalizeLanguage(raw string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: unsupported language %q", httpx.ErrValidation, raw)
	}
	return tag.String(), nil
}
