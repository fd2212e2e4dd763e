package caption

import (
	"fmt"
	"strings"
	"time"

	"github.com/edgard/breadbot/internal/database"
)

const captionUserPrompt = `Based on this description of a bakery item, create an engaging, warm Instagram caption that's between 2-4 sentences. Make it personal, written in the first person as if you're me (the bakery owner). Do not include hashtags; they are added separately.

Image description: %s`

const replyUserPrompt = `A customer (%s) commented on our bakery Instagram post: "%s". How should I personally respond?`

// captionSystemPrompt assembles the persona instruction for caption
// generation: owner persona, tone, values, key phrases, one first-person
// phrase, one connection phrase, and the suggestion phrases of every trigger
// rule matching the description.
func (s *Synthesizer) captionSystemPrompt(description string) string {
	p := s.profile

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s, the owner of Breadsmith bakery in Lake Charles who has been baking for %s years.\n\n",
		p.Owner.Name, p.Owner.Years)

	for _, rule := range p.MatchAll(description) {
		fmt.Fprintf(&sb, "Since this seems to be related to %q, consider mentioning: %s.\n",
			rule.Keyword, strings.Join(rule.Suggestions, ", "))
	}

	fmt.Fprintf(&sb, "Your tone is %s.\n", p.Tone)
	fmt.Fprintf(&sb, "The bakery values %s.\n", strings.Join(p.Values, ", "))
	fmt.Fprintf(&sb, "Use these key phrases when appropriate: %s.\n", strings.Join(p.KeyPhrases, ", "))
	fmt.Fprintf(&sb, "Use first person phrasing, as if you're the bakery owner. Consider using something like: %q\n",
		s.pickPhrase(p.FirstPersonPhrases))
	fmt.Fprintf(&sb, "End with a connection to customers, such as: %q", s.pickPhrase(p.ConnectionPhrases))

	return sb.String()
}

// replySystemPrompt assembles the persona instruction for replying to one
// comment, folding in the customer memory context when present.
func (s *Synthesizer) replySystemPrompt(req ReplyRequest) string {
	p := s.profile

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are the friendly owner (%s) of Breadsmith bakery in Lake Charles. ", p.Owner.Name)
	sb.WriteString("Respond warmly and personally to customer comments. ")
	sb.WriteString("Keep responses concise (max 100 characters), authentic, and in your voice.\n")

	if context := customerContextLine(req.Customer); context != "" {
		sb.WriteString("Important customer context: " + context + "\n")
	}

	postContext := req.PostContext
	if postContext == "" {
		postContext = "a bakery product"
	}
	fmt.Fprintf(&sb, "This comment is on a post about: %s.\n", postContext)
	if req.Product != "" {
		fmt.Fprintf(&sb, "They specifically mentioned %s.\n", req.Product)
	}

	sb.WriteString(`
Guidelines:
- If they're a regular customer, acknowledge them warmly
- If they mention a product they've liked before, reference that
- Always use first-person tone as the bakery owner
- For negative comments, respond with empathy and an offer to make it right
- Keep it personable and warm, like speaking to a friend`)
	fmt.Fprintf(&sb, "\n- Sign with your first name (%s) on longer responses", p.Owner.Name)

	return sb.String()
}

// customerContextLine summarizes what the memory store knows about a
// commenter for the prompt. Empty for first-time commenters.
func customerContextLine(c *database.Customer) string {
	if c == nil {
		return ""
	}

	var sb strings.Builder
	if c.Regular {
		fmt.Fprintf(&sb, "This is a regular customer who has commented %d times before. ", c.InteractionCount)
	}
	if products := c.Products(); len(products) > 0 {
		fmt.Fprintf(&sb, "They have previously mentioned liking: %s. ", strings.Join(products, ", "))
	}
	fmt.Fprintf(&sb, "Their usual tone appears to be %s. ", c.Tone)
	if c.LastInteraction.Valid {
		daysSince := int(time.Since(c.LastInteraction.Time).Hours() / 24)
		if daysSince < 7 {
			fmt.Fprintf(&sb, "They last commented %d days ago. ", daysSince)
		}
	}
	return strings.TrimSpace(sb.String())
}
