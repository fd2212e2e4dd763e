package post

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/edgard/breadbot/internal/instagram"
)

// Analyzer is the vision collaborator: it turns a photo into a description.
// Satisfied by gemini.Client.
type Analyzer interface {
	DescribeImage(ctx context.Context, filename, mimeType string, data []byte) (string, error)
}

// Captioner turns a description into a branded caption. Satisfied by
// caption.Synthesizer.
type Captioner interface {
	Compose(ctx context.Context, description string) (string, error)
}

// Publisher is the slice of the platform client the lifecycle manager needs.
type Publisher interface {
	PublishPhoto(ctx context.Context, data []byte, mimeType, caption string) (*instagram.PublishResult, error)
}

// Manager owns post records and their state transitions: ingest turns an
// inbound photo into a ready record in the staged area, and the publish scan
// moves ready records to posted in the published area.
type Manager struct {
	storage   *Storage
	analyzer  Analyzer
	captioner Captioner
	publisher Publisher
	locks     *KeyedLock
	log       *slog.Logger

	// maxAttempts caps publish retries; zero retries forever. Once
	// exceeded, the record moves to the terminal error state and is
	// archived for manual recovery.
	maxAttempts int
}

// NewManager creates a lifecycle manager over the given storage and
// collaborators. The KeyedLock should be shared with the comment responder
// so record transitions are serialized process-wide.
func NewManager(
	storage *Storage,
	analyzer Analyzer,
	captioner Captioner,
	publisher Publisher,
	locks *KeyedLock,
	maxAttempts int,
	log *slog.Logger,
) *Manager {
	return &Manager{
		storage:     storage,
		analyzer:    analyzer,
		captioner:   captioner,
		publisher:   publisher,
		locks:       locks,
		log:         log.With("component", "post_manager"),
		maxAttempts: maxAttempts,
	}
}

// Ingest runs the inbound-to-ready transition for one media file: describe
// the photo, compose a caption, persist a ready record in the staged area,
// and move the media there. Any collaborator failure aborts the whole item
// with no partial record; the source file stays in inbound for manual
// inspection.
func (m *Manager) Ingest(ctx context.Context, mediaPath string) (*Record, error) {
	mediaName := filepath.Base(mediaPath)
	unlock := m.locks.Lock(mediaName)
	defer unlock()

	m.log.InfoContext(ctx, "Ingesting media", "media", mediaName)

	data, err := os.ReadFile(mediaPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read inbound media %q: %w", ErrStorage, mediaPath, err)
	}
	mimeType := MIMEType(mediaName)

	description, err := m.analyzer.DescribeImage(ctx, mediaName, mimeType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %q: %w", mediaName, err)
	}

	captionText, err := m.captioner.Compose(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("failed to compose caption for %q: %w", mediaName, err)
	}

	record := &Record{
		Media:            mediaName,
		Description:      description,
		Caption:          captionText,
		CreatedAt:        time.Now().UTC(),
		State:            StateReady,
		AnsweredComments: []string{},
	}

	// The media lands in staged before the ready sidecar does, so a ready
	// record never exists without its media. An orphan staged copy from a
	// crash in between is harmless and overwritten on re-ingest.
	if err := m.storage.CopyFile(mediaPath, m.storage.MediaPath(m.storage.StagedDir, record)); err != nil {
		return nil, err
	}
	if err := m.storage.WriteRecord(m.storage.StagedDir, record); err != nil {
		return nil, err
	}
	if err := m.storage.RemoveFile(mediaPath); err != nil {
		return nil, err
	}

	m.log.InfoContext(ctx, "Media staged and ready",
		"media", mediaName,
		"description_len", len(description),
		"caption_len", len(captionText))
	return record, nil
}

// PublishReady scans the staged area and publishes every ready record. One
// record's failure never aborts the scan. Returns the number of records
// published this pass.
func (m *Manager) PublishReady(ctx context.Context) (int, error) {
	records, err := m.storage.ListRecords(m.storage.StagedDir)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, record := range records {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}

		switch record.State {
		case StateReady:
			if m.publishOne(ctx, record) {
				published++
			}
		case StatePosted:
			// A posted record still in staged means a crash interrupted the
			// promote; finishing the copy is safe to repeat.
			m.resumePromote(ctx, record)
		default:
		}
	}
	return published, nil
}

// publishOne attempts the ready-to-posted transition for a single record.
// Reports whether the record was published.
func (m *Manager) publishOne(ctx context.Context, record *Record) bool {
	unlock := m.locks.Lock(record.Media)
	defer unlock()

	mediaPath := m.storage.MediaPath(m.storage.StagedDir, record)
	data, err := os.ReadFile(mediaPath)
	if err != nil {
		m.log.ErrorContext(ctx, "Staged media missing or unreadable, skipping record",
			"media", record.Media, "error", err)
		return false
	}

	result, err := m.publisher.PublishPhoto(ctx, data, MIMEType(record.Media), record.Caption)
	if err != nil {
		m.handlePublishFailure(ctx, record, err)
		return false
	}

	record.State = StatePosted
	record.PostID = result.PostID
	record.PostedAt = result.Timestamp
	record.AnsweredComments = []string{}

	if err := m.storage.WriteRecord(m.storage.StagedDir, record); err != nil {
		m.log.ErrorContext(ctx, "Failed to persist posted record", "media", record.Media, "error", err)
		return false
	}
	if err := m.storage.Promote(record); err != nil {
		// The staged sidecar already says posted; the next scan resumes the
		// promote instead of publishing twice.
		m.log.ErrorContext(ctx, "Failed to move record to published area", "media", record.Media, "error", err)
		return true
	}

	m.log.InfoContext(ctx, "Record published",
		"media", record.Media, "post_id", record.PostID)
	return true
}

func (m *Manager) handlePublishFailure(ctx context.Context, record *Record, pubErr error) {
	record.PublishAttempts++
	m.log.ErrorContext(ctx, "Publish failed, record stays ready for retry",
		"media", record.Media, "attempts", record.PublishAttempts, "error", pubErr)

	if m.maxAttempts > 0 && record.PublishAttempts >= m.maxAttempts {
		record.State = StateError
		m.log.ErrorContext(ctx, "Publish attempts exhausted, moving record to error state",
			"media", record.Media, "attempts", record.PublishAttempts)
		if err := m.storage.WriteRecord(m.storage.StagedDir, record); err != nil {
			m.log.ErrorContext(ctx, "Failed to persist error record", "media", record.Media, "error", err)
			return
		}
		if err := m.storage.Promote(record); err != nil {
			m.log.ErrorContext(ctx, "Failed to archive error record", "media", record.Media, "error", err)
		}
		return
	}

	if err := m.storage.WriteRecord(m.storage.StagedDir, record); err != nil {
		m.log.ErrorContext(ctx, "Failed to persist publish attempt count", "media", record.Media, "error", err)
	}
}

func (m *Manager) resumePromote(ctx context.Context, record *Record) {
	unlock := m.locks.Lock(record.Media)
	defer unlock()

	m.log.WarnContext(ctx, "Resuming interrupted move to published area", "media", record.Media)
	if err := m.storage.Promote(record); err != nil {
		m.log.ErrorContext(ctx, "Failed to resume move to published area", "media", record.Media, "error", err)
	}
}
