package newspapers

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/warta-media/warta/internal/platform/httpx"
)

// RepositoryPort defines data access methods for newspapers.
type RepositoryPort interface {
	List(ctx context.Context, lang string) ([]Newspaper, error)
	FindByID(ctx context.Context, id int64) (*Newspaper, error)
	Create(ctx context.Context, title, lang, description string) (*Newspaper, error)
	Update(ctx context.Context, id int64, title, lang, description string) (*Newspaper, error)
	Delete(ctx context.Context, id int64) error
}

// Input carries newspaper fields across create and update.
type Input struct {
	Title       string
	Language    string
	Description string
}

// Service handles newspaper business logic. Mutation privileges are
// enforced at the route gate (ADMIN and above).
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns newspapers, optionally filtered by canonical language tag.
func (s *Service) List(ctx context.Context, lang string) ([]Newspaper, error) {
	if lang != "" {
		tag, err := language.Parse(lang)
		if err == nil {
			lang = tag.String()
		}
	}
	return s.repo.List(ctx, lang)
}

// Get fetches a single newspaper.
func (s *Service) Get(ctx context.Context, id int64) (*Newspaper, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores a newspaper after canonicalising its language tag.
func (s *Service) Create(ctx context.Context, in Input) (*Newspaper, error) {
	tag, err := normalizeLanguage(in.Language)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, strings.TrimSpace(in.Title), tag, strings.TrimSpace(in.Description))
}

// Update rewrites a newspaper's fields.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Newspaper, error) {
	tag, err := normalizeLanguage(in.Language)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, strings.TrimSpace(in.Title), tag, strings.TrimSpace(in.Description))
}

// Delete removes a newspaper.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func normalizeLanguage(raw string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: unsupported language %q", httpx.ErrValidation, raw)
	}
	return tag.String(), nil
}
