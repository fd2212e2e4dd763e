package post

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edgard/breadbot/internal/config"
)

// ErrStorage is the sentinel for file-level failures: missing, unreadable,
// or unwritable media and sidecar documents.
var ErrStorage = errors.New("storage error")

// Storage is the folder-backed record store. The directories are the only
// shared mutable resource between the pipeline halves; all moves follow
// copy-then-delete so a crash mid-move never loses data. Re-running a copy
// is idempotent since it overwrites identical content.
type Storage struct {
	InboundDir   string
	StagedDir    string
	PublishedDir string

	log *slog.Logger
}

// NewStorage creates a Storage over the configured directory areas.
func NewStorage(cfg config.StorageConfig, log *slog.Logger) *Storage {
	return &Storage{
		InboundDir:   cfg.InboundDir,
		StagedDir:    cfg.StagedDir,
		PublishedDir: cfg.PublishedDir,
		log:          log.With("component", "post_storage"),
	}
}

// EnsureDirs creates the three directory areas if they don't exist.
func (s *Storage) EnsureDirs() error {
	for _, dir := range []string{s.InboundDir, s.StagedDir, s.PublishedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: failed to create directory %q: %w", ErrStorage, dir, err)
		}
	}
	return nil
}

// MediaPath returns the path of the record's media file within dir.
func (s *Storage) MediaPath(dir string, r *Record) string {
	return filepath.Join(dir, r.Media)
}

// SidecarPath returns the path of the record's sidecar document within dir.
func (s *Storage) SidecarPath(dir string, r *Record) string {
	return filepath.Join(dir, r.SidecarName())
}

// WriteRecord marshals the record and writes its sidecar document into dir.
func (s *Storage) WriteRecord(dir string, r *Record) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal record %q: %w", ErrStorage, r.Media, err)
	}

	path := s.SidecarPath(dir, r)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write record %q: %w", ErrStorage, path, err)
	}
	return nil
}

// ReadRecord loads and unmarshals a sidecar document.
func (s *Storage) ReadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read record %q: %w", ErrStorage, path, err)
	}

	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: failed to parse record %q: %w", ErrStorage, path, err)
	}
	return &r, nil
}

// ListRecords loads every sidecar document in dir, in directory-listing
// order. Unparseable documents are logged and skipped rather than failing
// the whole scan.
func (s *Storage) ListRecords(dir string) ([]*Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list directory %q: %w", ErrStorage, dir, err)
	}

	var records []*Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), SidecarExtension) {
			continue
		}
		r, err := s.ReadRecord(filepath.Join(dir, entry.Name()))
		if err != nil {
			s.log.Error("Skipping unreadable record", "path", entry.Name(), "error", err)
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// ReadMedia returns the bytes and MIME type of the record's media file in dir.
func (s *Storage) ReadMedia(dir string, r *Record) ([]byte, string, error) {
	path := s.MediaPath(dir, r)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read media %q: %w", ErrStorage, path, err)
	}
	return data, MIMEType(r.Media), nil
}

// CopyFile copies src to dst, leaving src in place.
func (s *Storage) CopyFile(src, dst string) error {
	return copyFile(src, dst)
}

// RemoveFile deletes a file.
func (s *Storage) RemoveFile(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: failed to remove %q: %w", ErrStorage, path, err)
	}
	return nil
}

// Promote moves a record's media and sidecar from staged to published. Each
// file follows copy-then-delete, so Promote is safe to re-run after a crash
// at any point: the destination existing is sufficient evidence a copy
// completed, and a source already gone only needs its cleanup half skipped.
func (s *Storage) Promote(r *Record) error {
	if err := s.promoteFile(s.MediaPath(s.StagedDir, r), s.MediaPath(s.PublishedDir, r)); err != nil {
		return err
	}
	return s.promoteFile(s.SidecarPath(s.StagedDir, r), s.SidecarPath(s.PublishedDir, r))
}

func (s *Storage) promoteFile(src, dst string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		if _, err := os.Stat(dst); err == nil {
			// A previous run already moved this file.
			return nil
		}
		return fmt.Errorf("%w: %q missing from both staged and published", ErrStorage, filepath.Base(src))
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("%w: failed to remove %q after copy: %w", ErrStorage, src, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("%w: failed to read %q: %w", ErrStorage, src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write %q: %w", ErrStorage, dst, err)
	}
	return nil
}

// MIMEType guesses the media MIME type from the file extension, defaulting
// to JPEG.
func MIMEType(name string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return "image/jpeg"
}
