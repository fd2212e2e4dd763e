// Package post owns the post record, its lifecycle state machine, and the
// durable folder-based queue the pipeline moves media through: inbound
// (new photos), staged (ready records awaiting publish), and published
// (permanent archive of posted records).
package post

import (
	"path/filepath"
	"strings"
	"time"
)

// State is the lifecycle state of a post record.
type State string

// Lifecycle states. Transitions only move forward: ready becomes posted on
// a successful publish; error is terminal and recovered manually.
const (
	StateReady  State = "ready"
	StatePosted State = "posted"
	StateError  State = "error"
)

// SidecarExtension is the extension of the record document colocated with
// its media file.
const SidecarExtension = ".yaml"

// CommentEntry is one logged comment interaction on a published post.
type CommentEntry struct {
	CommentID string    `yaml:"comment_id"`
	Username  string    `yaml:"username"`
	Comment   string    `yaml:"comment"`
	Reply     string    `yaml:"reply"`
	Timestamp time.Time `yaml:"timestamp"`
}

// Record is the persisted description of one media item's pipeline state.
// It lives as a YAML sidecar named after the media file, in whichever
// directory area matches its state.
type Record struct {
	Media       string    `yaml:"media"`
	Description string    `yaml:"description"`
	Caption     string    `yaml:"caption"`
	CreatedAt   time.Time `yaml:"created_at"`
	State       State     `yaml:"state"`

	PostID          string    `yaml:"post_id,omitempty"`
	PostedAt        time.Time `yaml:"posted_at,omitempty"`
	PublishAttempts int       `yaml:"publish_attempts,omitempty"`

	AnsweredComments []string       `yaml:"answered_comments"`
	CommentLog       []CommentEntry `yaml:"comment_log,omitempty"`
	LastCommentCheck time.Time      `yaml:"last_comment_check,omitempty"`
}

// SidecarName derives the record document name from a media file name.
func SidecarName(mediaName string) string {
	base := strings.TrimSuffix(mediaName, filepath.Ext(mediaName))
	return base + SidecarExtension
}

// SidecarName returns the name of this record's sidecar document.
func (r *Record) SidecarName() string {
	return SidecarName(r.Media)
}

// HasAnswered reports whether the comment id is already in the answered set.
func (r *Record) HasAnswered(commentID string) bool {
	for _, id := range r.AnsweredComments {
		if id == commentID {
			return true
		}
	}
	return false
}

// MarkAnswered adds a comment id to the answered set. The set only grows.
func (r *Record) MarkAnswered(commentID string) {
	if !r.HasAnswered(commentID) {
		r.AnsweredComments = append(r.AnsweredComments, commentID)
	}
}

// LogComment appends an interaction entry and marks the comment answered.
func (r *Record) LogComment(entry CommentEntry) {
	r.MarkAnswered(entry.CommentID)
	r.CommentLog = append(r.CommentLog, entry)
}
