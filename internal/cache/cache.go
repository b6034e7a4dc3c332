// Package cache holds the backend-computed resume copies. The cached copy is
// authoritative for quick reads but can go stale relative to returns recorded
// after it was written; the summary service reconciles it on every request.
package cache

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pasos-retail/api/internal/rollup"
)

type ResumeCache interface {
	// Get returns the cached resume for a store and civil date (YYYY-MM-DD),
	// a flag telling whether one was present, and any transport error.
	Get(ctx context.Context, storeID uuid.UUID, day string) (*rollup.Summary, bool, error)
	Set(ctx context.Context, storeID uuid.UUID, day string, resume *rollup.Summary, ttl time.Duration) error
}

// NoopResumeCache is used in tests and cache-less deployments.
type NoopResumeCache struct{}

func (NoopResumeCache) Get(_ context.Context, _ uuid.UUID, _ string) (*rollup.Summary, bool, error) {
	return nil, false, nil
}

func (NoopResumeCache) Set(_ context.Context, _ uuid.UUID, _ string, _ *rollup.Summary, _ time.Duration) error {
	return nil
}
