package categories

import (
	"context"
	"strings"
	"unicode"
)

// RepositoryPort defines data access methods for categories.
type RepositoryPort interface {
	List(ctx context.Context) ([]Category, error)
	FindByID(ctx context.Context, id int64) (*Category, error)
	Create(ctx context.Context, name, slug string) (*Category, error)
	Update(ctx context.Context, id int64, name, slug string) (*Category, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles category business logic. Mutation privileges are
// enforced at the route gate (EDITOR and above).
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all categories.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

// Get fetches a single category.
func (s *Service) Get(ctx context.Context, id int64) (*Category, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores a category, deriving the slug from the name.
func (s *Service) Create(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	return s.repo.Create(ctx, name, Slugify(name))
}

// Update renames a category and refreshes its slug.
func (s *Service) Update(ctx context.Context, id int64, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	return s.repo.Update(ctx, id, name, Slugify(name))
}

// Delete removes a category.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Slugify lowercases the name and collapses non-alphanumerics to dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
