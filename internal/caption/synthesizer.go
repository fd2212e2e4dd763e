// Package caption turns image descriptions into branded captions and
// customer comments into branded replies. It owns prompt construction from
// the brand profile and the deterministic caption sections (trigger phrase
// suggestions, hashtag selection).
package caption

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/edgard/breadbot/internal/brand"
	"github.com/edgard/breadbot/internal/database"
)

// Generator is the text-generation collaborator the synthesizer depends on.
// Satisfied by gemini.Client and its mock.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// Synthesizer composes captions and replies in the brand voice. It is safe
// for concurrent use: ingests settle on their own goroutines while the
// responder composes replies from the scheduler's.
type Synthesizer struct {
	profile brand.Profile
	gen     Generator
	log     *slog.Logger
}

// NewSynthesizer creates a synthesizer for the given brand profile and
// generation collaborator.
func NewSynthesizer(profile brand.Profile, gen Generator, log *slog.Logger) *Synthesizer {
	return &Synthesizer{
		profile: profile,
		gen:     gen,
		log:     log.With("component", "caption_synthesizer"),
	}
}

// Compose generates a caption for the given image description. The generated
// body carries the brand voice, one first-person phrase, and one
// call-to-engagement phrase; 3-4 hashtags drawn without replacement from the
// brand set are appended afterwards so the final caption never depends on
// the model following hashtag instructions. A generation failure is a hard
// error: no caption means the record must not become ready.
func (s *Synthesizer) Compose(ctx context.Context, description string) (string, error) {
	system := s.captionSystemPrompt(description)
	user := fmt.Sprintf(captionUserPrompt, description)

	body, err := s.gen.Generate(ctx, system, user)
	if err != nil {
		s.log.ErrorContext(ctx, "Caption generation failed", "error", err)
		return "", fmt.Errorf("failed to generate caption: %w", err)
	}

	hashtags := s.pickHashtags()
	caption := strings.TrimSpace(body) + "\n\n" + strings.Join(hashtags, " ")
	s.log.DebugContext(ctx, "Caption composed", "hashtags", len(hashtags), "caption_len", len(caption))
	return caption, nil
}

// ReplyRequest carries everything needed to compose a reply to one comment.
type ReplyRequest struct {
	Username    string
	Comment     string
	PostContext string
	Product     string
	Customer    *database.Customer // nil for first-time commenters
}

// ComposeReply generates a personalized reply to a customer comment, folding
// in whatever memory exists for the commenter. Callers are expected to fall
// back to a fixed reply when this fails.
func (s *Synthesizer) ComposeReply(ctx context.Context, req ReplyRequest) (string, error) {
	system := s.replySystemPrompt(req)
	user := fmt.Sprintf(replyUserPrompt, req.Username, req.Comment)

	reply, err := s.gen.Generate(ctx, system, user)
	if err != nil {
		s.log.ErrorContext(ctx, "Reply generation failed", "username", req.Username, "error", err)
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// pickHashtags selects 3-4 hashtags uniformly at random without replacement
// from the brand's hashtag set.
func (s *Synthesizer) pickHashtags() []string {
	want := 3 + rand.IntN(2)
	if want > len(s.profile.Hashtags) {
		want = len(s.profile.Hashtags)
	}

	picked := make([]string, len(s.profile.Hashtags))
	copy(picked, s.profile.Hashtags)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:want]
}

func (s *Synthesizer) pickPhrase(phrases []string) string {
	if len(phrases) == 0 {
		return ""
	}
	return phrases[rand.IntN(len(phrases))]
}
