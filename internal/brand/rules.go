package brand

import "strings"

// TriggerRule maps a keyword to suggestion phrases surfaced to the generation
// step when the keyword appears in a description. Rules are evaluated in
// order; Match returns the first rule that fires, MatchAll every rule that
// fires. The same table drives both live prompt construction and the mock
// collaborators, so test and production classification never diverge.
type TriggerRule struct {
	Keyword     string   `mapstructure:"keyword"     yaml:"keyword"`
	Suggestions []string `mapstructure:"suggestions" yaml:"suggestions"`
}

// Matches reports whether the rule's keyword appears in the text.
// Matching is case-insensitive.
func (r TriggerRule) Matches(text string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(r.Keyword))
}

// Match returns the first rule in the profile's table that matches the text,
// or false if none does.
func (p Profile) Match(text string) (TriggerRule, bool) {
	for _, rule := range p.TriggerRules {
		if rule.Matches(text) {
			return rule, true
		}
	}
	return TriggerRule{}, false
}

// MatchAll returns every rule in table order that matches the text.
func (p Profile) MatchAll(text string) []TriggerRule {
	var matched []TriggerRule
	for _, rule := range p.TriggerRules {
		if rule.Matches(text) {
			matched = append(matched, rule)
		}
	}
	return matched
}
