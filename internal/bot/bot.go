// Package bot implements lifecycle management and component orchestration
// for the posting pipeline: the inbound watcher, the scheduler, and a
// catch-up pass at startup.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/breadbot/internal/post"
	"github.com/edgard/breadbot/internal/responder"
	"github.com/edgard/breadbot/internal/watcher"
)

// Bot represents the main application and manages its components' lifecycle.
type Bot struct {
	logger    *slog.Logger
	manager   *post.Manager
	responder *responder.Responder
	watcher   *watcher.Watcher
	scheduler *Scheduler
}

// NewBot creates a new instance of the bot with all required dependencies.
func NewBot(
	logger *slog.Logger,
	manager *post.Manager,
	respond *responder.Responder,
	watch *watcher.Watcher,
	scheduler *Scheduler,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		manager:   manager,
		responder: respond,
		watcher:   watch,
		scheduler: scheduler,
	}
}

// Run starts all components and blocks until the context is cancelled or a
// component fails. Before the scheduler takes over, one catch-up pass
// publishes any records left ready by a previous run and answers comments
// that arrived while the process was down.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	b.catchUp(ctx)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting inbound watcher...")

		err := b.watcher.Run(gCtx)
		b.logger.Info("Inbound watcher stopped.")

		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("inbound watcher stopped unexpectedly: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}

		return nil
	})

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

// catchUp runs one publish scan and one comment pass immediately, so a
// restart doesn't have to wait for the next cron tick. Failures are logged;
// the scheduled passes will retry.
func (b *Bot) catchUp(ctx context.Context) {
	if published, err := b.manager.PublishReady(ctx); err != nil {
		b.logger.Error("Startup publish pass failed", "error", err)
	} else if published > 0 {
		b.logger.Info("Startup publish pass completed", "published", published)
	}

	if replied, err := b.responder.CheckComments(ctx); err != nil {
		b.logger.Error("Startup comment pass failed", "error", err)
	} else if replied > 0 {
		b.logger.Info("Startup comment pass completed", "replies", replied)
	}
}
