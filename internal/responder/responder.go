// Package responder polls published posts for new comments and replies to
// each one in the brand voice, personalized from customer memory.
package responder

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/edgard/breadbot/internal/caption"
	"github.com/edgard/breadbot/internal/database"
	"github.com/edgard/breadbot/internal/instagram"
	"github.com/edgard/breadbot/internal/post"
)

// ReplyComposer generates one reply from a reply request. Satisfied by
// caption.Synthesizer.
type ReplyComposer interface {
	ComposeReply(ctx context.Context, req caption.ReplyRequest) (string, error)
}

// Responder runs the comment pass over the published archive.
type Responder struct {
	storage  *post.Storage
	platform instagram.Client
	store    database.Store
	composer ReplyComposer
	locks    *post.KeyedLock
	log      *slog.Logger

	window   time.Duration
	products []string
	fallback string
}

// New creates a responder. window is how long after publishing a post keeps
// being checked for comments; products is the fixed keyword list scanned
// for product mentions; fallback is the reply used when generation fails.
func New(
	storage *post.Storage,
	platform instagram.Client,
	store database.Store,
	composer ReplyComposer,
	locks *post.KeyedLock,
	windowDays int,
	products []string,
	fallback string,
	log *slog.Logger,
) *Responder {
	return &Responder{
		storage:  storage,
		platform: platform,
		store:    store,
		composer: composer,
		locks:    locks,
		log:      log.With("component", "responder"),
		window:   time.Duration(windowDays) * 24 * time.Hour,
		products: products,
		fallback: fallback,
	}
}

// CheckComments runs one comment pass: every published record posted within
// the rolling window is checked for unanswered comments, most recent post
// first. Returns the number of replies posted. A platform failure on one
// record skips that record's remaining comments until the next tick; it
// never aborts the pass.
func (r *Responder) CheckComments(ctx context.Context) (int, error) {
	records, err := r.storage.ListRecords(r.storage.PublishedDir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-r.window)
	var eligible []*post.Record
	for _, record := range records {
		if record.State != post.StatePosted || record.PostID == "" {
			continue
		}
		if record.PostedAt.Before(cutoff) {
			continue
		}
		eligible = append(eligible, record)
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].PostedAt.After(eligible[j].PostedAt)
	})

	replied := 0
	for _, record := range eligible {
		if ctx.Err() != nil {
			return replied, ctx.Err()
		}
		replied += r.processRecord(ctx, record)
	}

	r.log.InfoContext(ctx, "Comment pass finished", "records_checked", len(eligible), "replies", replied)
	return replied, nil
}

// processRecord answers the unanswered comments on one record. Returns the
// number of replies posted for it.
func (r *Responder) processRecord(ctx context.Context, record *post.Record) int {
	unlock := r.locks.Lock(record.Media)
	defer unlock()

	comments, err := r.platform.FetchComments(ctx, record.PostID)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to fetch comments, skipping record this tick",
			"media", record.Media, "post_id", record.PostID, "error", err)
		return 0
	}

	replied := 0
	for _, comment := range comments {
		if record.HasAnswered(comment.ID) {
			continue
		}
		if strings.EqualFold(comment.Username, r.platform.Username()) {
			continue
		}

		if !r.answerComment(ctx, record, comment) {
			// Platform reply failure: leave the rest of this record's
			// comments for the next tick.
			break
		}
		replied++
	}

	record.LastCommentCheck = time.Now().UTC()
	if err := r.storage.WriteRecord(r.storage.PublishedDir, record); err != nil {
		r.log.ErrorContext(ctx, "Failed to persist record after comment pass",
			"media", record.Media, "error", err)
	}
	return replied
}

// answerComment generates and posts one reply, then updates the record and
// the customer memory. Reports false only when the platform rejected the
// reply, which skips the record's remaining comments for this tick.
func (r *Responder) answerComment(ctx context.Context, record *post.Record, comment instagram.Comment) bool {
	customer, err := r.store.GetCustomer(ctx, comment.Username)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to load customer memory, replying without context",
			"username", comment.Username, "error", err)
		customer = nil
	}

	product := r.detectProduct(comment.Text)

	postContext := record.Description
	if postContext == "" {
		postContext = record.Caption
	}

	reply, err := r.composer.ComposeReply(ctx, caption.ReplyRequest{
		Username:    comment.Username,
		Comment:     comment.Text,
		PostContext: postContext,
		Product:     product,
		Customer:    customer,
	})
	if err != nil {
		// One bad generation never sinks the whole pass.
		r.log.WarnContext(ctx, "Reply generation failed, using fallback reply",
			"username", comment.Username, "error", err)
		reply = r.fallback
	}

	if err := r.platform.PostReply(ctx, record.PostID, reply); err != nil {
		r.log.ErrorContext(ctx, "Failed to post reply, skipping record's remaining comments",
			"media", record.Media, "post_id", record.PostID, "error", err)
		return false
	}

	record.LogComment(post.CommentEntry{
		CommentID: comment.ID,
		Username:  comment.Username,
		Comment:   comment.Text,
		Reply:     reply,
		Timestamp: time.Now().UTC(),
	})
	if err := r.storage.WriteRecord(r.storage.PublishedDir, record); err != nil {
		r.log.ErrorContext(ctx, "Failed to persist record after reply",
			"media", record.Media, "error", err)
	}

	if _, err := r.store.RecordInteraction(ctx, &database.Interaction{
		Username:  comment.Username,
		Comment:   comment.Text,
		Product:   product,
		Reply:     reply,
		CreatedAt: time.Now().UTC(),
	}, product); err != nil {
		r.log.ErrorContext(ctx, "Failed to update customer memory",
			"username", comment.Username, "error", err)
	}

	r.log.InfoContext(ctx, "Replied to comment",
		"media", record.Media, "username", comment.Username, "comment_id", comment.ID)
	return true
}

// detectProduct returns the first configured product keyword mentioned in
// the comment, or the empty string.
func (r *Responder) detectProduct(comment string) string {
	lower := strings.ToLower(comment)
	for _, product := range r.products {
		if strings.Contains(lower, strings.ToLower(product)) {
			return product
		}
	}
	return ""
}
