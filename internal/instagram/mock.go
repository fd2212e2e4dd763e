package instagram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Mock is an in-process platform stand-in used in test mode. It hands out
// post ids for published photos, serves scripted comments, and records the
// replies it receives.
type Mock struct {
	mu        sync.Mutex
	log       *slog.Logger
	username  string
	published map[string]string // post id -> caption
	comments  map[string][]Comment
	replies   map[string][]string
}

// NewMock creates a mock platform client posting as the given username.
func NewMock(username string, log *slog.Logger) *Mock {
	return &Mock{
		log:       log.With("component", "instagram_mock"),
		username:  username,
		published: make(map[string]string),
		comments:  make(map[string][]Comment),
		replies:   make(map[string][]string),
	}
}

// Verify always succeeds for the mock.
func (m *Mock) Verify(ctx context.Context) error { return nil }

// Username returns the mock account's handle.
func (m *Mock) Username() string { return m.username }

// PublishPhoto records the publish and returns a fresh post id.
func (m *Mock) PublishPhoto(ctx context.Context, data []byte, mimeType, caption string) (*PublishResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: media bytes are empty", ErrPublish)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	postID := uuid.NewString()
	m.published[postID] = caption
	m.log.InfoContext(ctx, "Mock photo published", "post_id", postID, "caption_len", len(caption))
	return &PublishResult{PostID: postID, Timestamp: time.Now().UTC()}, nil
}

// FetchComments returns the scripted comments for the post.
func (m *Mock) FetchComments(ctx context.Context, postID string) ([]Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	comments := make([]Comment, len(m.comments[postID]))
	copy(comments, m.comments[postID])
	return comments, nil
}

// PostReply records the reply and adds it to the post's comment thread under
// the mock's own username.
func (m *Mock) PostReply(ctx context.Context, postID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.published[postID]; !ok {
		return fmt.Errorf("%w: unknown post %q", ErrReply, postID)
	}
	m.replies[postID] = append(m.replies[postID], text)
	m.comments[postID] = append(m.comments[postID], Comment{
		ID:        uuid.NewString(),
		Username:  m.username,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	m.log.InfoContext(ctx, "Mock reply posted", "post_id", postID, "reply", text)
	return nil
}

// AddComment scripts an incoming comment on a post and returns its id.
func (m *Mock) AddComment(postID, username, text string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := Comment{
		ID:        uuid.NewString(),
		Username:  username,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	m.comments[postID] = append(m.comments[postID], c)
	return c.ID
}

// Replies returns the replies recorded for a post.
func (m *Mock) Replies(postID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	replies := make([]string, len(m.replies[postID]))
	copy(replies, m.replies[postID])
	return replies
}

// PublishedCaption returns the caption recorded for a post id, if any.
func (m *Mock) PublishedCaption(postID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	caption, ok := m.published[postID]
	return caption, ok
}
