// Package brand holds the bakery's brand profile: the voice, phrases, and
// trigger rules consumed by caption and reply generation. The profile is
// immutable for the lifetime of the process.
package brand

// Owner describes the bakery owner persona used for first-person generation.
type Owner struct {
	Name      string   `mapstructure:"name"      yaml:"name"`
	Years     string   `mapstructure:"years"     yaml:"years"`
	Favorites []string `mapstructure:"favorites" yaml:"favorites"`
	Story     string   `mapstructure:"story"     yaml:"story"`
}

// Profile defines the brand voice parameters for all generated content.
type Profile struct {
	Tone               string        `mapstructure:"tone"                 yaml:"tone"`
	Values             []string      `mapstructure:"values"               yaml:"values"`
	KeyPhrases         []string      `mapstructure:"key_phrases"          yaml:"key_phrases"`
	Hashtags           []string      `mapstructure:"hashtags"             yaml:"hashtags"`
	FirstPersonPhrases []string      `mapstructure:"first_person_phrases" yaml:"first_person_phrases"`
	ConnectionPhrases  []string      `mapstructure:"connection_phrases"   yaml:"connection_phrases"`
	TriggerRules       []TriggerRule `mapstructure:"trigger_rules"        yaml:"trigger_rules"`
	Owner              Owner         `mapstructure:"owner"                yaml:"owner"`
}

// DefaultProfile returns the built-in Breadsmith brand profile. Any field can
// be overridden through the brand section of the configuration file.
func DefaultProfile() Profile {
	return Profile{
		Tone:   "warm and inviting",
		Values: []string{"freshness", "craftsmanship", "community", "tradition"},
		KeyPhrases: []string{
			"freshly baked",
			"artisan bread",
			"handcrafted with love",
			"made from scratch",
			"Lake Charles' favorite bakery",
		},
		Hashtags: []string{
			"#BreadsmithLakeCharles",
			"#FreshBread",
			"#ArtisanBakery",
			"#FreshlyBaked",
			"#HandcraftedBread",
			"#LocalBakery",
		},
		FirstPersonPhrases: []string{
			"I just pulled these out of the oven",
			"I'm so proud of our team's craftsmanship",
			"I love seeing our customers enjoy this",
			"My favorite part of baking is the aroma that fills the bakery",
			"I learned this recipe from my grandmother",
			"Nothing makes me happier than sharing our baked goods with the community",
		},
		ConnectionPhrases: []string{
			"Stop by and tell us what you think!",
			"Can't wait to see you today!",
			"Have you tried this yet? It's becoming a local favorite!",
			"Which is your favorite? Let me know in the comments!",
			"Tag someone who would love this!",
			"What would you pair this with? I'd love to hear your ideas.",
		},
		TriggerRules: []TriggerRule{
			{Keyword: "sourdough", Suggestions: []string{"Tangy, crusty perfection", "The perfect chew and texture"}},
			{Keyword: "bread", Suggestions: []string{"Our signature sourdough", "Our bread begins with a 20-year-old starter"}},
			{Keyword: "pastry", Suggestions: []string{"Flaky, buttery goodness", "Melt-in-your-mouth delicious"}},
			{Keyword: "dessert", Suggestions: []string{"Perfect sweet treat", "Indulge yourself today"}},
			{Keyword: "morning", Suggestions: []string{"Perfect with your morning coffee", "Start your day right"}},
			{Keyword: "breakfast", Suggestions: []string{"The best way to begin your day", "Rise and shine with fresh baking"}},
			{Keyword: "gift", Suggestions: []string{"Share the love", "Perfect for bringing to dinner parties"}},
			{Keyword: "holiday", Suggestions: []string{"Seasonal favorite", "Limited time special", "Holiday tradition"}},
		},
		Owner: Owner{
			Name:      "Linda",
			Years:     "15",
			Favorites: []string{"sourdough bread", "cinnamon rolls", "cranberry walnut bread"},
			Story:     "I opened this Breadsmith franchise 15 years ago because I believe everyone deserves to taste real, artisan bread made with care and tradition.",
		},
	}
}
