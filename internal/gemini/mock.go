package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/edgard/breadbot/internal/brand"
)

// Canned descriptions for test mode, keyed by trigger rule keyword. Each
// description mentions its keyword so downstream trigger matching behaves
// the same as with real analysis output.
var mockDescriptions = map[string]string{
	"sourdough": "This is a beautifully baked artisan sourdough bread. It has a golden-brown crust with flour dusting on top. The crust appears crispy and has a rustic scoring pattern. Inside, the crumb looks open and airy with nice fermentation bubbles throughout.",
	"bread":     "This is a freshly baked loaf of artisan bread with a golden-brown crust and a soft, airy interior. It likely contains flour, water, salt, and yeast.",
	"pastry":    "This is a flaky, golden-brown pastry with beautiful lamination visible in its layers. The exterior is glossy, suggesting an egg wash before baking. It appears buttery and rich.",
	"dessert":   "This appears to be a delicious dessert cake with creamy frosting, decorated with seasonal berries on top. It has a smooth, professional finish.",
	"roll":      "These are freshly baked cinnamon rolls with a swirl of cinnamon visible inside, topped with a creamy white glaze dripping down the sides. The rolls appear soft and fluffy.",
}

const mockDefaultDescription = "This appears to be a delicious bakery item freshly made with care and quality ingredients. It has a wonderful golden color and appetizing appearance that would tempt any bakery customer."

// Mock is an in-process stand-in for the Gemini collaborator, used in test
// mode. Classification runs through the same brand trigger rule table as
// live prompt construction, so mock and live behavior cannot drift apart.
type Mock struct {
	profile brand.Profile
	log     *slog.Logger
}

// NewMock creates a mock AI client driven by the brand profile's rule table.
func NewMock(profile brand.Profile, log *slog.Logger) *Mock {
	return &Mock{
		profile: profile,
		log:     log.With("component", "gemini_mock"),
	}
}

// DescribeImage returns a canned bakery description selected by the first
// trigger rule matching the filename.
func (m *Mock) DescribeImage(ctx context.Context, filename, mimeType string, data []byte) (string, error) {
	m.log.InfoContext(ctx, "Mock image description", "filename", filename)

	if rule, ok := m.profile.Match(filename); ok {
		if desc, ok := mockDescriptions[strings.ToLower(rule.Keyword)]; ok {
			return desc, nil
		}
	}
	return mockDefaultDescription, nil
}

// Generate assembles a short first-person body from the brand voice instead
// of calling the API. The prompt is scanned with the trigger table so the
// output stays on topic.
func (m *Mock) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	m.log.InfoContext(ctx, "Mock text generation", "prompt_len", len(prompt))

	owner := m.profile.Owner.Name
	if rule, ok := m.profile.Match(prompt); ok && len(rule.Suggestions) > 0 {
		return fmt.Sprintf("%s. Fresh from our ovens today, made the way we always have. -%s", rule.Suggestions[0], owner), nil
	}
	return fmt.Sprintf("Something wonderful just came out of the oven and I couldn't wait to share it with you. -%s", owner), nil
}
