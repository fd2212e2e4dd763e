package post_test

import (
	"testing"
	"time"

	"github.com/edgard/breadbot/internal/post"
)

func TestAnsweredSetOnlyGrows(t *testing.T) {
	t.Parallel()

	r := &post.Record{}
	if r.HasAnswered("c1") {
		t.Error("empty record reports a comment as answered")
	}

	r.MarkAnswered("c1")
	r.MarkAnswered("c1")
	if !r.HasAnswered("c1") {
		t.Error("comment not reported answered after MarkAnswered")
	}
	if len(r.AnsweredComments) != 1 {
		t.Errorf("answered set has %d entries after duplicate mark, want 1", len(r.AnsweredComments))
	}
}

func TestLogCommentMarksAnswered(t *testing.T) {
	t.Parallel()

	r := &post.Record{}
	r.LogComment(post.CommentEntry{
		CommentID: "c7",
		Username:  "amy",
		Comment:   "so good",
		Reply:     "thank you!",
		Timestamp: time.Now().UTC(),
	})

	if !r.HasAnswered("c7") {
		t.Error("logged comment not in answered set")
	}
	if len(r.CommentLog) != 1 || r.CommentLog[0].Username != "amy" {
		t.Errorf("CommentLog = %+v, want one entry for amy", r.CommentLog)
	}
}
