package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/warta-media/warta/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAdsExpire deactivates ads whose delivery window has closed.
	TaskAdsExpire = "ads:expire"
	// TaskViewsFlush drains buffered article view counters into storage.
	TaskViewsFlush = "articles:views:flush"
)

// AdExpirer deactivates ads past their delivery window.
type AdExpirer interface {
	ExpireEnded(ctx context.Context, now time.Time) (int64, error)
}

// ViewFlusher persists buffered article view counters.
type ViewFlusher interface {
	FlushViews(ctx context.Context) (int, error)
}

// NewAdsExpireTask constructs the ad expiry task.
func NewAdsExpireTask() *asynq.Task {
	return asynq.NewTask(TaskAdsExpire, nil)
}

// NewViewsFlushTask constructs the view counter flush task.
func NewViewsFlushTask() *asynq.Task {
	return asynq.NewTask(TaskViewsFlush, nil)
}

// HandleAdsExpire returns the handler for TaskAdsExpire tasks.
func HandleAdsExpire(expirer AdExpirer, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		tracker := metrics.Track(TaskAdsExpire)
		flipped, err := expirer.ExpireEnded(ctx, time.Now().UTC())
		if err != nil {
			return tracker.End(err)
		}
		if flipped > 0 {
			logger.Info("expired ads", slog.Int64("count", flipped))
		}
		return tracker.End(nil)
	}
}

// HandleViewsFlush returns the handler for TaskViewsFlush tasks.
func HandleViewsFlush(flusher ViewFlusher, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		tracker := metrics.Track(TaskViewsFlush)
		flushed, err := flusher.FlushViews(ctx)
		if err != nil {
			return tracker.End(err)
		}
		if flushed > 0 {
			logger.Info("flushed article views", slog.Int("articles", flushed))
		}
		return tracker.End(nil)
	}
}
