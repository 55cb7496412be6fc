// Package intent decides which canned assistant handler should answer a chat
// message, using the message text and the most recent conversation turn.
package intent

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"fundingos-workers/internal/models"
)

type Intent string

const (
	AnalyzeOpportunities Intent = "analyze_opportunities"
	SearchOpportunities  Intent = "search_opportunities"
	CheckDeadlines       Intent = "check_deadlines"
	ContinuePrevious     Intent = "continue_previous"
	ExpandPrevious       Intent = "expand_previous"
	Decline              Intent = "decline"
	None                 Intent = "none"
)

// Valid reports whether i belongs to the closed intent set.
func (i Intent) Valid() bool {
	switch i {
	case AnalyzeOpportunities, SearchOpportunities, CheckDeadlines,
		ContinuePrevious, ExpandPrevious, Decline, None:
		return true
	}
	return false
}

type ResponseKind string

const (
	Affirmative  ResponseKind = "affirmative"
	Negative     ResponseKind = "negative"
	Continuation ResponseKind = "continuation"
	Expansion    ResponseKind = "expansion"
)

type Result struct {
	Intent       Intent       `json:"intent"`
	IsFollowUp   bool         `json:"isFollowUp"`
	ResponseKind ResponseKind `json:"responseKind,omitempty"`
	MatchedRule  string       `json:"matchedRule,omitempty"`
}

type compiledRule struct {
	name     string
	intent   Intent
	patterns []*regexp.Regexp
}

// Classifier is immutable after New and safe for concurrent use.
type Classifier struct {
	cfg     Config
	phrases map[string]ResponseKind
	content []compiledRule
	direct  []compiledRule
}

func New(cfg Config) (*Classifier, error) {
	cfg = cfg.withDefaults()

	c := &Classifier{
		cfg:     cfg,
		phrases: make(map[string]ResponseKind),
	}

	// Earlier kinds win when a phrase is listed twice.
	for _, group := range []struct {
		kind    ResponseKind
		phrases []string
	}{
		{Negative, cfg.Phrases.Negative},
		{Expansion, cfg.Phrases.Expansion},
		{Continuation, cfg.Phrases.Continuation},
		{Affirmative, cfg.Phrases.Affirmative},
	} {
		for _, p := range group.phrases {
			key := normalizeMessage(p)
			if key == "" {
				continue
			}
			if _, exists := c.phrases[key]; !exists {
				c.phrases[key] = group.kind
			}
		}
	}

	for _, rule := range cfg.ContextRules {
		if !rule.Intent.Valid() {
			return nil, fmt.Errorf("context rule %q: unknown intent %q", rule.Name, rule.Intent)
		}
		compiled := compiledRule{name: rule.Name, intent: rule.Intent}
		for _, kw := range rule.Keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			compiled.patterns = append(compiled.patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)))
		}
		c.content = append(c.content, compiled)
	}

	for _, rule := range cfg.DirectRules {
		if !rule.Intent.Valid() {
			return nil, fmt.Errorf("direct rule %q: unknown intent %q", rule.Name, rule.Intent)
		}
		if len(rule.Patterns) == 0 {
			return nil, fmt.Errorf("direct rule %q: no patterns", rule.Name)
		}
		compiled := compiledRule{name: rule.Name, intent: rule.Intent}
		for _, p := range rule.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("direct rule %q: %w", rule.Name, err)
			}
			compiled.patterns = append(compiled.patterns, re)
		}
		c.direct = append(c.direct, compiled)
	}

	return c, nil
}

func (c *Classifier) Config() Config {
	return c.cfg
}

// Classify never fails; unmatched messages yield None.
func (c *Classifier) Classify(message string, history []models.Turn, now time.Time) Result {
	if kind, ok := c.followUpKind(message, history, now); ok {
		return c.mapFollowUp(kind, history[len(history)-1])
	}

	text := strings.ToLower(strings.TrimSpace(message))
	if text == "" {
		return Result{Intent: None}
	}
	for _, rule := range c.direct {
		if rule.matches(text) {
			return Result{Intent: rule.intent, MatchedRule: "direct:" + rule.name}
		}
	}
	return Result{Intent: None}
}

// ResponseKindOf reports the short-response kind of message, if any, without
// looking at history.
func (c *Classifier) ResponseKindOf(message string) (ResponseKind, bool) {
	text := normalizeMessage(message)
	if text == "" || utf8.RuneCountInString(text) > c.cfg.MaxFollowUpLength {
		return "", false
	}
	kind, ok := c.phrases[text]
	return kind, ok
}

func (c *Classifier) followUpKind(message string, history []models.Turn, now time.Time) (ResponseKind, bool) {
	kind, ok := c.ResponseKindOf(message)
	if !ok || len(history) == 0 {
		return "", false
	}
	last := history[len(history)-1]
	if last.Role != models.RoleAssistant || !c.recent(last.Timestamp, now) {
		return "", false
	}
	return kind, true
}

func (c *Classifier) recent(ts, now time.Time) bool {
	if ts.IsZero() {
		return false
	}
	age := now.Sub(ts)
	if age < 0 {
		return -age <= c.cfg.MaxClockSkew
	}
	return age <= c.cfg.RecencyWindow
}

func (c *Classifier) mapFollowUp(kind ResponseKind, prior models.Turn) Result {
	res := Result{IsFollowUp: true, ResponseKind: kind}
	if kind == Negative {
		res.Intent = Decline
		res.MatchedRule = "negative"
		return res
	}

	if ct := strings.ToLower(strings.TrimSpace(prior.ContextType())); ct != "" {
		for _, rule := range c.cfg.ContextRules {
			for _, t := range rule.ContextTypes {
				if strings.EqualFold(t, ct) {
					res.Intent = rule.Intent
					res.MatchedRule = "context:" + rule.Name
					return res
				}
			}
		}
	}

	// A content rule matches when any of its keywords does.
	for _, rule := range c.content {
		for _, re := range rule.patterns {
			if re.MatchString(prior.Content) {
				res.Intent = rule.intent
				res.MatchedRule = "content:" + rule.name
				return res
			}
		}
	}

	if kind == Expansion {
		res.Intent = ExpandPrevious
	} else {
		res.Intent = ContinuePrevious
	}
	res.MatchedRule = "fallback"
	return res
}

func (r compiledRule) matches(text string) bool {
	for _, re := range r.patterns {
		if !re.MatchString(text) {
			return false
		}
	}
	return true
}

// normalizeMessage lowercases, strips surrounding punctuation and collapses
// inner whitespace and commas so "Yes, please!" equals "yes please".
func normalizeMessage(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, " \t\r\n.!?,;:…")
	s = strings.TrimLeft(s, " \t\r\n")
	s = strings.ReplaceAll(s, ",", " ")
	return strings.Join(strings.Fields(s), " ")
}
