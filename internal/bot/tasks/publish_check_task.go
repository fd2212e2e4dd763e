package tasks

import (
	"context"
	"fmt"
	"time"
)

// newPublishCheckTask creates the scheduled task that publishes every ready
// record in the staged area.
func newPublishCheckTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "publish_check")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled publish check...")
		startTime := time.Now()

		published, err := deps.Manager.PublishReady(ctx)

		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "Publish check failed", "error", err, "duration", duration)
			return fmt.Errorf("publish check failed: %w", err)
		}

		log.InfoContext(ctx, "Publish check completed", "published", published, "duration", duration)
		return nil
	}
}
