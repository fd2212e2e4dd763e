package tasks

import (
	"context"
	"fmt"
	"time"
)

// newCommentCheckTask creates the scheduled task that answers new comments
// on recently published posts.
func newCommentCheckTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "comment_check")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled comment check...")
		startTime := time.Now()

		replied, err := deps.Responder.CheckComments(ctx)

		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "Comment check failed", "error", err, "duration", duration)
			return fmt.Errorf("comment check failed: %w", err)
		}

		log.InfoContext(ctx, "Comment check completed", "replies", replied, "duration", duration)
		return nil
	}
}
