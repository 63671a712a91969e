package comments

import (
	"context"
	"strings"

	"github.com/warta-media/warta/internal/authz"
	"github.com/warta-media/warta/internal/shared"
)

// RepositoryPort defines data access methods for comments.
type RepositoryPort interface {
	ListByArticle(ctx context.Context, articleID int64, limit, offset int) ([]Comment, int, error)
	FindByID(ctx context.Context, id int64) (*Comment, error)
	GetOwnerID(ctx context.Context, id int64) (int64, error)
	Create(ctx context.Context, articleID, authorID int64, body string) (*Comment, error)
	Update(ctx context.Context, id int64, body string) (*Comment, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles comment business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListByArticle returns a page of comments for an article.
func (s *Service) ListByArticle(ctx context.Context, articleID int64, page, perPage int) ([]Comment, shared.Pagination, error) {
	pagination := shared.NewPagination(page, perPage, 0)
	result, total, err := s.repo.ListByArticle(ctx, articleID, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return result, shared.NewPagination(page, perPage, total), nil
}

// Create stores a new comment owned by the actor. Any authenticated role
// may comment.
func (s *Service) Create(ctx context.Context, actor shared.Actor, articleID int64, body string) (*Comment, error) {
	return s.repo.Create(ctx, articleID, actor.ID, strings.TrimSpace(body))
}

// Update rewrites a comment when the actor owns it or holds a comment
// manager role.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, body string) (*Comment, error) {
	ownerID, err := s.repo.GetOwnerID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutate(actor.ID, authz.Role(actor.Role), ownerID, authz.CommentManagerRoles) {
		return nil, shared.ErrForbidden
	}
	return s.repo.Update(ctx, id, strings.TrimSpace(body))
}

// Delete removes a comment. SUPER_ADMIN may delete any comment
// unconditionally; the escalation does not extend to updates.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, id int64) error {
	ownerID, err := s.repo.GetOwnerID(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanDeleteComment(actor.ID, authz.Role(actor.Role), ownerID) {
		return shared.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
