// Package main contains the entrypoint for the bakery posting pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	cli "github.com/urfave/cli/v3"

	"github.com/edgard/breadbot/internal/bot"
	"github.com/edgard/breadbot/internal/bot/tasks"
	"github.com/edgard/breadbot/internal/caption"
	"github.com/edgard/breadbot/internal/config"
	"github.com/edgard/breadbot/internal/database"
	"github.com/edgard/breadbot/internal/gemini"
	"github.com/edgard/breadbot/internal/instagram"
	"github.com/edgard/breadbot/internal/logger"
	"github.com/edgard/breadbot/internal/post"
	"github.com/edgard/breadbot/internal/responder"
	"github.com/edgard/breadbot/internal/watcher"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "breadbot",
		Usage: "Bakery social posting pipeline: watch, caption, publish, reply",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "./config.yaml",
				Usage: "Path to configuration file",
			},
		},
		Commands: []*cli.Command{
			runCmd(),
			ingestCmd(),
			publishCmd(),
			respondCmd(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// services holds the wired application components shared by all commands.
type services struct {
	cfg       *config.Config
	log       *slog.Logger
	db        *sqlx.DB
	store     database.Store
	manager   *post.Manager
	responder *responder.Responder
	watcher   *watcher.Watcher
	scheduler *bot.Scheduler
}

func (s *services) close() {
	database.CloseDB(s.db)
}

// setup loads configuration and wires every component. In test mode the
// Gemini and Instagram collaborators are swapped for in-process mocks and no
// credentials are required.
func setup(ctx context.Context, configPath string) (*services, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config %q: %w", configPath, err)
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("connecting to database %q: %w", cfg.Database.Path, err)
	}
	store := database.NewStore(db, log)

	var analyzer gemini.Client
	var platform instagram.Client
	if cfg.TestMode {
		log.Warn("Test mode enabled: using mock Gemini and Instagram collaborators")
		analyzer = gemini.NewMock(cfg.Brand, log)
		platform = instagram.NewMock(cfg.Instagram.Username, log)
	} else {
		analyzer, err = gemini.NewClient(ctx, cfg.Gemini, log)
		if err != nil {
			database.CloseDB(db)
			return nil, fmt.Errorf("initializing Gemini client: %w", err)
		}
		platform, err = instagram.NewClient(cfg.Instagram, log)
		if err != nil {
			database.CloseDB(db)
			return nil, fmt.Errorf("initializing Instagram client: %w", err)
		}
		if err := platform.Verify(ctx); err != nil {
			database.CloseDB(db)
			return nil, fmt.Errorf("verifying Instagram credentials: %w", err)
		}
	}

	synth := caption.NewSynthesizer(cfg.Brand, analyzer, log)

	storage := post.NewStorage(cfg.Storage, log)
	if err := storage.EnsureDirs(); err != nil {
		database.CloseDB(db)
		return nil, err
	}

	locks := post.NewKeyedLock()
	manager := post.NewManager(storage, analyzer, synth, platform, locks, cfg.Publisher.MaxAttempts, log)

	fallback := fmt.Sprintf(cfg.Responder.FallbackReply, cfg.Brand.Owner.Name)
	respond := responder.New(
		storage,
		platform,
		store,
		synth,
		locks,
		cfg.Responder.WindowDays,
		cfg.Responder.ProductKeywords,
		fallback,
		log,
	)

	watch := watcher.New(cfg.Watcher, cfg.Storage.InboundDir, manager, log)

	taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger:    log,
		Manager:   manager,
		Responder: respond,
		Store:     store,
		Config:    cfg,
	})
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap)
	if err != nil {
		database.CloseDB(db)
		return nil, err
	}

	return &services{
		cfg:       cfg,
		log:       log,
		db:        db,
		store:     store,
		manager:   manager,
		responder: respond,
		watcher:   watch,
		scheduler: sched,
	}, nil
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the full pipeline: watch inbound, publish and reply on schedule",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := setup(ctx, cmd.String("config"))
			if err != nil {
				return err
			}
			defer svc.close()

			app := bot.NewBot(svc.log, svc.manager, svc.responder, svc.watcher, svc.scheduler)

			runErr := app.Run(ctx)
			svc.log.Info("Run loop finished. Shutting down...")

			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				// Allow logs to flush before exiting on error.
				time.Sleep(time.Second)
				return runErr
			}
			return nil
		},
	}
}

func ingestCmd() *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Describe, caption, and stage photos without starting the daemon",
		ArgsUsage: "[photo ...]",
		Description: "With no arguments, every acceptable photo currently in the " +
			"inbound directory is ingested. Explicit paths are ingested as given.",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := setup(ctx, cmd.String("config"))
			if err != nil {
				return err
			}
			defer svc.close()

			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				entries, err := filepath.Glob(filepath.Join(svc.cfg.Storage.InboundDir, "*"))
				if err != nil {
					return err
				}
				for _, p := range entries {
					if svc.watcher.Accepts(p) {
						paths = append(paths, p)
					}
				}
			}
			if len(paths) == 0 {
				svc.log.Info("Nothing to ingest")
				return nil
			}

			var failed int
			for _, p := range paths {
				if _, err := svc.manager.Ingest(ctx, p); err != nil {
					svc.log.Error("Ingestion failed", "path", p, "error", err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d photos failed to ingest", failed, len(paths))
			}
			return nil
		},
	}
}

func publishCmd() *cli.Command {
	return &cli.Command{
		Name:  "publish",
		Usage: "Run one publish pass over the staged area",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := setup(ctx, cmd.String("config"))
			if err != nil {
				return err
			}
			defer svc.close()

			published, err := svc.manager.PublishReady(ctx)
			if err != nil {
				return err
			}
			svc.log.Info("Publish pass completed", "published", published)
			return nil
		},
	}
}

func respondCmd() *cli.Command {
	return &cli.Command{
		Name:  "respond",
		Usage: "Run one comment pass over recently published posts",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := setup(ctx, cmd.String("config"))
			if err != nil {
				return err
			}
			defer svc.close()

			replied, err := svc.responder.CheckComments(ctx)
			if err != nil {
				return err
			}
			svc.log.Info("Comment pass completed", "replies", replied)
			return nil
		},
	}
}
