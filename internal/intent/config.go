package intent

import "time"

// Phrases holds the canonical short responses per kind. Matching is against the
// normalized message as a whole, not a substring.
type Phrases struct {
	Affirmative  []string `mapstructure:"affirmative"`
	Negative     []string `mapstructure:"negative"`
	Continuation []string `mapstructure:"continuation"`
	Expansion    []string `mapstructure:"expansion"`
}

// ContextRule maps a follow-up to an intent based on the prior assistant turn.
// ContextTypes are compared with the turn's context_type tag. Keywords match
// its content case-insensitively at the start of a word, so "analy" covers
// "analysis" but "find more" never matches "find out".
type ContextRule struct {
	Name         string   `mapstructure:"name"`
	Intent       Intent   `mapstructure:"intent"`
	ContextTypes []string `mapstructure:"context_types"`
	Keywords     []string `mapstructure:"keywords"`
}

// DirectRule matches a standalone message when every pattern matches.
type DirectRule struct {
	Name     string   `mapstructure:"name"`
	Intent   Intent   `mapstructure:"intent"`
	Patterns []string `mapstructure:"patterns"`
}

type Config struct {
	MaxFollowUpLength int           `mapstructure:"max_follow_up_length"`
	RecencyWindow     time.Duration `mapstructure:"recency_window"`
	MaxClockSkew      time.Duration `mapstructure:"max_clock_skew"`
	Phrases           Phrases       `mapstructure:"phrases"`
	ContextRules      []ContextRule `mapstructure:"context_rules"`
	DirectRules       []DirectRule  `mapstructure:"direct_rules"`
}

func DefaultConfig() Config {
	return Config{
		MaxFollowUpLength: 40,
		RecencyWindow:     10 * time.Minute,
		MaxClockSkew:      time.Minute,
		Phrases: Phrases{
			Affirmative: []string{
				"yes", "yeah", "yep", "yup", "ya", "sure", "ok", "okay", "k", "alright", "all right",
				"please", "yes please", "sure thing", "go ahead", "do it", "lets do it", "let's do it",
				"sounds good", "absolutely", "definitely", "of course", "why not", "please do", "y",
			},
			Negative: []string{
				"no", "nope", "nah", "no thanks", "no thank you", "not now", "maybe later",
				"not really", "never mind", "nevermind", "skip", "stop", "n",
			},
			Continuation: []string{
				"continue", "go on", "keep going", "next", "more", "and then", "what else",
				"carry on", "what's next", "whats next", "then what",
			},
			Expansion: []string{
				"tell me more", "more details", "more info", "more information", "elaborate",
				"can you elaborate", "please elaborate", "explain", "explain more", "expand",
				"details", "go deeper", "dig deeper", "why", "how so",
			},
		},
		// Content keywords are checked in rule order, so any mention of
		// opportunities settles on analysis before search or deadline cues.
		ContextRules: []ContextRule{
			{Name: "analyze", Intent: AnalyzeOpportunities, ContextTypes: []string{"opportunity_analysis"}, Keywords: []string{"analy"}},
			{Name: "opportunity", Intent: AnalyzeOpportunities, Keywords: []string{"opportunit"}},
			{Name: "search", Intent: SearchOpportunities, ContextTypes: []string{"opportunity_search"}, Keywords: []string{
				"search", "look for", "find more", "find similar", "find other", "find new", "find some", "find grants", "find funding",
			}},
			{Name: "deadline", Intent: CheckDeadlines, ContextTypes: []string{"deadline_check"}, Keywords: []string{"deadline", "due date"}},
		},
		DirectRules: []DirectRule{
			{
				Name:     "deadlines",
				Intent:   CheckDeadlines,
				Patterns: []string{`\b(deadlines?|due dates?|closing dates?|due soon|closing soon)\b`},
			},
			{
				Name:   "search",
				Intent: SearchOpportunities,
				Patterns: []string{
					`\b(find|search|look(ing)? for|show me|discover|browse|list)\b`,
					`\b(grants?|funding|funders?|opportunit(y|ies)|investors?|donors?|foundations?)\b`,
				},
			},
			{
				Name:     "analyze",
				Intent:   AnalyzeOpportunities,
				Patterns: []string{`\banaly[sz]\w*|opportunit`},
			},
		},
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxFollowUpLength <= 0 {
		c.MaxFollowUpLength = d.MaxFollowUpLength
	}
	if c.RecencyWindow <= 0 {
		c.RecencyWindow = d.RecencyWindow
	}
	if c.MaxClockSkew <= 0 {
		c.MaxClockSkew = d.MaxClockSkew
	}
	if len(c.Phrases.Affirmative)+len(c.Phrases.Negative)+len(c.Phrases.Continuation)+len(c.Phrases.Expansion) == 0 {
		c.Phrases = d.Phrases
	}
	if c.ContextRules == nil {
		c.ContextRules = d.ContextRules
	}
	if c.DirectRules == nil {
		c.DirectRules = d.DirectRules
	}
	return c
}

// WithPhrases returns a copy of c with extra phrases appended to kind.
func (c Config) WithPhrases(kind ResponseKind, phrases ...string) Config {
	p := c.Phrases
	switch kind {
	case Affirmative:
		p.Affirmative = append(append([]string(nil), p.Affirmative...), phrases...)
	case Negative:
		p.Negative = append(append([]string(nil), p.Negative...), phrases...)
	case Continuation:
		p.Continuation = append(append([]string(nil), p.Continuation...), phrases...)
	case Expansion:
		p.Expansion = append(append([]string(nil), p.Expansion...), phrases...)
	}
	c.Phrases = p
	return c
}
