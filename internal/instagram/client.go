// Package instagram implements the social platform collaborator on the
// Instagram Graph API. It covers the three operations the pipeline needs:
// publishing a photo, fetching comments, and posting replies.
package instagram

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for the platform failure classes. Publish failures leave a
// record in ready state for the next tick; fetch and reply failures skip the
// record's remaining comments for the current tick.
var (
	ErrPublish = errors.New("publish failed")
	ErrFetch   = errors.New("comment fetch failed")
	ErrReply   = errors.New("reply post failed")
)

// PublishResult identifies a successfully published post.
type PublishResult struct {
	PostID    string
	Timestamp time.Time
}

// Comment is one comment fetched from a published post.
type Comment struct {
	ID        string
	Username  string
	Text      string
	CreatedAt time.Time
}

// Client defines the interface for platform operations used throughout the
// application. Username reports the account's own handle so the responder
// can skip the system's own comments.
type Client interface {
	// Verify checks that the credentials are usable. Called once at startup;
	// a failure here is fatal.
	Verify(ctx context.Context) error

	// Username returns the account's own handle.
	Username() string

	// PublishPhoto uploads the photo with its caption and returns the
	// platform post id and publish timestamp.
	PublishPhoto(ctx context.Context, data []byte, mimeType, caption string) (*PublishResult, error)

	// FetchComments returns the current comments on a post, in the
	// platform's order.
	FetchComments(ctx context.Context, postID string) ([]Comment, error)

	// PostReply posts a comment reply on the given post.
	PostReply(ctx context.Context, postID, text string) error
}
