package watcher_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/edgard/breadbot/internal/config"
	"github.com/edgard/breadbot/internal/post"
	"github.com/edgard/breadbot/internal/watcher"
)

type nopIngestor struct{}

func (nopIngestor) Ingest(ctx context.Context, mediaPath string) (*post.Record, error) {
	return &post.Record{}, nil
}

func newTestWatcher(t *testing.T) *watcher.Watcher {
	t.Helper()
	cfg := config.WatcherConfig{
		AllowedExtensions: []string{".jpg", ".jpeg", ".png"},
		SettleDelay:       10 * time.Millisecond,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return watcher.New(cfg, t.TempDir(), nopIngestor{}, log)
}

func TestAccepts(t *testing.T) {
	t.Parallel()

	w := newTestWatcher(t)

	testCases := []struct {
		name     string
		path     string
		expected bool
	}{
		{name: "jpg", path: "loaf.jpg", expected: true},
		{name: "jpeg", path: "loaf.jpeg", expected: true},
		{name: "png", path: "loaf.png", expected: true},
		{name: "uppercase extension", path: "LOAF.JPG", expected: true},
		{name: "full path", path: "/uploads/morning/loaf.jpg", expected: true},
		{name: "hidden file", path: ".loaf.jpg", expected: false},
		{name: "sidecar document", path: "loaf.yaml", expected: false},
		{name: "text file", path: "notes.txt", expected: false},
		{name: "no extension", path: "loaf", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := w.Accepts(tc.path); got != tc.expected {
				t.Errorf("Accepts(%q) = %v, want %v", tc.path, got, tc.expected)
			}
		})
	}
}
