package instagram_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/edgard/breadbot/internal/instagram"
)

func newMock() *instagram.Mock {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return instagram.NewMock("breadsmith_lc", log)
}

func TestMockPublishAndFetch(t *testing.T) {
	t.Parallel()
	m := newMock()

	result, err := m.PublishPhoto(context.Background(), []byte("img"), "image/jpeg", "fresh bread!")
	if err != nil {
		t.Fatal(err)
	}
	if result.PostID == "" {
		t.Fatal("PublishPhoto returned an empty post id")
	}
	if result.Timestamp.IsZero() {
		t.Error("PublishPhoto returned a zero timestamp")
	}

	caption, ok := m.PublishedCaption(result.PostID)
	if !ok || caption != "fresh bread!" {
		t.Errorf("PublishedCaption = %q, %v", caption, ok)
	}

	comments, err := m.FetchComments(context.Background(), result.PostID)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 0 {
		t.Errorf("new post has %d comments, want 0", len(comments))
	}
}

func TestMockPublishRejectsEmptyMedia(t *testing.T) {
	t.Parallel()
	m := newMock()

	if _, err := m.PublishPhoto(context.Background(), nil, "image/jpeg", "caption"); err == nil {
		t.Fatal("PublishPhoto accepted empty media bytes")
	}
}

func TestMockReplyThreadsUnderOwnUsername(t *testing.T) {
	t.Parallel()
	m := newMock()

	result, err := m.PublishPhoto(context.Background(), []byte("img"), "image/jpeg", "caption")
	if err != nil {
		t.Fatal(err)
	}
	commentID := m.AddComment(result.PostID, "amy", "looks good")

	if err := m.PostReply(context.Background(), result.PostID, "thank you!"); err != nil {
		t.Fatal(err)
	}

	replies := m.Replies(result.PostID)
	if len(replies) != 1 || replies[0] != "thank you!" {
		t.Fatalf("Replies = %v", replies)
	}

	comments, err := m.FetchComments(context.Background(), result.PostID)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 2 {
		t.Fatalf("thread has %d comments, want customer comment plus our reply", len(comments))
	}
	if comments[0].ID != commentID || comments[0].Username != "amy" {
		t.Errorf("first comment = %+v, want amy's", comments[0])
	}
	if comments[1].Username != "breadsmith_lc" {
		t.Errorf("reply threaded under %q, want own username", comments[1].Username)
	}
}

func TestMockReplyToUnknownPostFails(t *testing.T) {
	t.Parallel()
	m := newMock()

	if err := m.PostReply(context.Background(), "nope", "hi"); err == nil {
		t.Fatal("PostReply accepted an unknown post id")
	}
}
