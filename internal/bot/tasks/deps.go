// Package tasks implements the scheduled tasks that drive the posting
// pipeline: the publish scan, the comment pass, and database maintenance.
package tasks

import (
	"log/slog"

	"github.com/edgard/breadbot/internal/config"
	"github.com/edgard/breadbot/internal/database"
	"github.com/edgard/breadbot/internal/post"
	"github.com/edgard/breadbot/internal/responder"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger    *slog.Logger
	Manager   *post.Manager
	Responder *responder.Responder
	Store     database.Store
	Config    *config.Config
}
