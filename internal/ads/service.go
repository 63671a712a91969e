package ads

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/warta-media/warta/internal/platform/httpx"
	"github.com/warta-media/warta/internal/shared"
)

// RepositoryPort defines data access methods for ads.
type RepositoryPort interface {
	List(ctx context.Context, liveOnly bool) ([]Ad, error)
	FindByID(ctx context.Context, id int64) (*Ad, error)
	Create(ctx context.Context, p CreateParams) (*Ad, error)
	Update(ctx context.Context, id int64, p CreateParams) (*Ad, error)
	SetActive(ctx context.Context, id int64, active bool) (*Ad, error)
	Delete(ctx context.Context, id int64) error
	DeactivateEnded(ctx context.Context, now time.Time) (int64, error)
}

// Auditor records administrative actions. Satisfied by shared.AuditLogger.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Input carries ad fields across create and update.
type Input struct {
	Title     string
	ImageURL  string
	TargetURL string
	StartsAt  time.Time
	EndsAt    time.Time
}

// Service handles ad business logic. Mutation privileges are enforced at
// the route gate (ADMIN and above).
type Service struct {
	repo  RepositoryPort
	audit Auditor
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit Auditor) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns ads. liveOnly limits the result to ads currently serving.
func (s *Service) List(ctx context.Context, liveOnly bool) ([]Ad, error) {
	return s.repo.List(ctx, liveOnly)
}

// Get fetches a single ad.
func (s *Service) Get(ctx context.Context, id int64) (*Ad, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores a new ad. The delivery window must be non-empty.
func (s *Service) Create(ctx context.Context, in Input) (*Ad, error) {
	if err := validateWindow(in); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, CreateParams{
		Title:     strings.TrimSpace(in.Title),
		ImageURL:  in.ImageURL,
		TargetURL: in.TargetURL,
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
	})
}

// Update rewrites an ad's placement fields.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Ad, error) {
	if err := validateWindow(in); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, CreateParams{
		Title:     strings.TrimSpace(in.Title),
		ImageURL:  in.ImageURL,
		TargetURL: in.TargetURL,
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
	})
}

// SetActive flips the delivery flag and records the change in the audit
// trail.
func (s *Service) SetActive(ctx context.Context, actor shared.Actor, id int64, active bool) (*Ad, error) {
	ad, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, "ad.set_active", id, map[string]any{"active": active})
	return ad, nil
}

// Delete removes an ad.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ExpireEnded deactivates ads whose window has closed. Invoked by the
// background scheduler.
func (s *Service) ExpireEnded(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.DeactivateEnded(ctx, now)
}

func (s *Service) record(ctx context.Context, actor shared.Actor, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "ad",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
}

func validateWindow(in Input) error {
	if in.StartsAt.IsZero() || in.EndsAt.IsZero() {
		return fmt.Errorf("%w: delivery window is required", httpx.ErrValidation)
	}
	if !in.EndsAt.After(in.StartsAt) {
		return fmt.Errorf("%w: ends_at must be after starts_at", httpx.ErrValidation)
	}
	return nil
}
