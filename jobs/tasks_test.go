package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExpirer struct {
	flipped int64
	err     error
	calls   int
}

func (s *stubExpirer) ExpireEnded(context.Context, time.Time) (int64, error) {
	s.calls++
	return s.flipped, s.err
}

type stubFlusher struct {
	flushed int
	err     error
	calls   int
}

func (s *stubFlusher) FlushViews(context.Context) (int, error) {
	s.calls++
	return s.flushed, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleAdsExpire(t *testing.T) {
	expirer := &stubExpirer{flipped: 3}
	handler := HandleAdsExpire(expirer, testLogger(), nil)

	require.NoError(t, handler(context.Background(), NewAdsExpireTask()))
	assert.Equal(t, 1, expirer.calls)
}

func TestHandleAdsExpirePropagatesError(t *testing.T) {
	expirer := &stubExpirer{err: errors.New("db down")}
	handler := HandleAdsExpire(expirer, testLogger(), nil)

	assert.Error(t, handler(context.Background(), NewAdsExpireTask()))
}

func TestHandleViewsFlush(t *testing.T) {
	flusher := &stubFlusher{flushed: 5}
	handler := HandleViewsFlush(flusher, testLogger(), nil)

	require.NoError(t, handler(context.Background(), NewViewsFlushTask()))
	assert.Equal(t, 1, flusher.calls)
}
