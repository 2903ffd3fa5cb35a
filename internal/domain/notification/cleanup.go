package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// retainRead is how long read notifications are kept before cleanup
const retainRead = 30 * 24 * time.Hour

// Cleanup deletes old read notifications on a timer
type Cleanup struct {
	repo Repository
}

// NewCleanup creates the cleanup job
func NewCleanup(repo Repository) *Cleanup {
	return &Cleanup{repo: repo}
}

// Start runs the cleanup loop until the context is cancelled
func (c *Cleanup) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := c.repo.DeleteReadOlderThan(ctx, time.Now().Add(-retainRead))
			if err != nil {
				log.Error().Err(err).Msg("Notification cleanup failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("deleted", n).Msg("Old notifications cleaned up")
			}
		}
	}
}
