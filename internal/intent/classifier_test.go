package intent

import (
	"strings"
	"testing"
	"time"

	"fundingos-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(DefaultConfig())
	require.NoError(t, err)
	return c
}

func assistantTurn(content, contextType string, age time.Duration) models.Turn {
	turn := models.Turn{
		Role:      models.RoleAssistant,
		Content:   content,
		Timestamp: now.Add(-age),
	}
	if contextType != "" {
		turn.Metadata = map[string]interface{}{models.MetadataContextType: contextType}
	}
	return turn
}

func TestClassify_YesAfterAnalyzePrompt(t *testing.T) {
	c := newClassifier(t)
	history := []models.Turn{
		{Role: models.RoleUser, Content: "hi", Timestamp: now.Add(-2 * time.Minute)},
		assistantTurn("Would you like me to analyze opportunities?", "opportunity_analysis", time.Minute),
	}

	res := c.Classify("yes", history, now)

	assert.Equal(t, AnalyzeOpportunities, res.Intent)
	assert.True(t, res.IsFollowUp)
	assert.Equal(t, Affirmative, res.ResponseKind)
	assert.Equal(t, "context:analyze", res.MatchedRule)
}

func TestClassify_YesWithoutHistory(t *testing.T) {
	c := newClassifier(t)

	assert.Equal(t, None, c.Classify("yes", nil, now).Intent)
	assert.Equal(t, None, c.Classify("yes", []models.Turn{}, now).Intent)
}

func TestClassify_DirectMatches(t *testing.T) {
	tests := []struct {
		message  string
		expected Intent
		rule     string
	}{
		{message: "what are the deadlines", expected: CheckDeadlines, rule: "direct:deadlines"},
		{message: "Which grants have a due date this month?", expected: CheckDeadlines, rule: "direct:deadlines"},
		{message: "find me housing grants", expected: SearchOpportunities, rule: "direct:search"},
		{message: "Can you search for funding in Colorado?", expected: SearchOpportunities, rule: "direct:search"},
		{message: "I'm looking for investors", expected: SearchOpportunities, rule: "direct:search"},
		{message: "find opportunities and analyze them", expected: SearchOpportunities, rule: "direct:search"},
		{message: "Analyze my matches", expected: AnalyzeOpportunities, rule: "direct:analyze"},
		{message: "which opportunities fit us best?", expected: AnalyzeOpportunities, rule: "direct:analyze"},
		{message: "deadline analysis please", expected: CheckDeadlines, rule: "direct:deadlines"},
		{message: "find my password", expected: None},
		{message: "hello there", expected: None},
		{message: "   ", expected: None},
	}

	c := newClassifier(t)
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			res := c.Classify(tt.message, nil, now)
			assert.Equal(t, tt.expected, res.Intent)
			assert.False(t, res.IsFollowUp)
			assert.Equal(t, tt.rule, res.MatchedRule)
		})
	}
}

func TestClassify_FollowUpContextMapping(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		content     string
		contextType string
		expected    Intent
		rule        string
	}{
		{name: "search context type", message: "sure", content: "Shall I continue?", contextType: "opportunity_search", expected: SearchOpportunities, rule: "context:search"},
		{name: "deadline context type", message: "ok", content: "Anything else?", contextType: "deadline_check", expected: CheckDeadlines, rule: "context:deadline"},
		{name: "context type beats content", message: "yes", content: "Want me to analyze these?", contextType: "deadline_check", expected: CheckDeadlines, rule: "context:deadline"},
		{name: "analyze content", message: "yeah", content: "I can analyze how well these fit.", expected: AnalyzeOpportunities, rule: "content:analyze"},
		{name: "analysis beats search", message: "yes", content: "Should I find and analyze more?", expected: AnalyzeOpportunities, rule: "content:analyze"},
		{name: "search content", message: "go ahead", content: "Should I look for similar funders?", expected: SearchOpportunities, rule: "content:search"},
		{name: "deadline content", message: "Yes, please!", content: "Want the upcoming due dates?", expected: CheckDeadlines, rule: "content:deadline"},
		{name: "generic opportunity mention", message: "sure", content: "There are 3 new opportunities.", expected: AnalyzeOpportunities, rule: "content:opportunity"},
		{name: "opportunities beat deadline cue", message: "yes", content: "Would you like me to check the deadlines for these opportunities?", expected: AnalyzeOpportunities, rule: "content:opportunity"},
		{name: "opportunities beat search cue", message: "yes", content: "I found 5 opportunities. Want me to search for more?", expected: AnalyzeOpportunities, rule: "content:opportunity"},
		{name: "find out is not a search", message: "sure", content: "Would you like to find out more about the program?", expected: ContinuePrevious, rule: "fallback"},
		{name: "find more is a search", message: "sure", content: "Should I find more funders like this one?", expected: SearchOpportunities, rule: "content:search"},
		{name: "keyword inside another word", message: "ok", content: "Your research summary is ready.", expected: ContinuePrevious, rule: "fallback"},
		{name: "unknown context type falls through to content", message: "ok", content: "Ready to search?", contextType: "small_talk", expected: SearchOpportunities, rule: "content:search"},
		{name: "affirmative fallback", message: "ok", content: "Here is a summary of your profile.", expected: ContinuePrevious, rule: "fallback"},
		{name: "continuation fallback", message: "keep going", content: "Here is the first part.", expected: ContinuePrevious, rule: "fallback"},
		{name: "expansion fallback", message: "tell me more", content: "Here is a summary.", expected: ExpandPrevious, rule: "fallback"},
		{name: "expansion with context", message: "tell me more", content: "Here is a summary.", contextType: "opportunity_analysis", expected: AnalyzeOpportunities, rule: "context:analyze"},
		{name: "negative declines", message: "no thanks", content: "Would you like me to analyze opportunities?", contextType: "opportunity_analysis", expected: Decline, rule: "negative"},
	}

	c := newClassifier(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := []models.Turn{assistantTurn(tt.content, tt.contextType, 30*time.Second)}

			res := c.Classify(tt.message, history, now)
			assert.True(t, res.IsFollowUp)
			assert.Equal(t, tt.expected, res.Intent)
			assert.Equal(t, tt.rule, res.MatchedRule)
		})
	}
}

func TestClassify_FollowUpRequiresAllConditions(t *testing.T) {
	c := newClassifier(t)
	prompt := "Would you like me to analyze opportunities?"

	tests := []struct {
		name    string
		message string
		history []models.Turn
	}{
		{name: "outside window", message: "yes", history: []models.Turn{assistantTurn(prompt, "opportunity_analysis", 11*time.Minute)}},
		{name: "zero timestamp", message: "yes", history: []models.Turn{{Role: models.RoleAssistant, Content: prompt}}},
		{name: "last turn from user", message: "yes", history: []models.Turn{
			assistantTurn(prompt, "opportunity_analysis", 2*time.Minute),
			{Role: models.RoleUser, Content: "hmm", Timestamp: now.Add(-time.Minute)},
		}},
		{name: "not a short response phrase", message: "pizza", history: []models.Turn{assistantTurn(prompt, "opportunity_analysis", time.Minute)}},
		{name: "phrase inside longer message", message: "yes but first tell me about the weather", history: []models.Turn{assistantTurn(prompt, "opportunity_analysis", time.Minute)}},
		{name: "far future timestamp", message: "yes", history: []models.Turn{assistantTurn(prompt, "opportunity_analysis", -time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.message, tt.history, now)
			assert.False(t, res.IsFollowUp)
			assert.Equal(t, None, res.Intent)
		})
	}
}

func TestClassify_WindowEdges(t *testing.T) {
	c := newClassifier(t)
	prompt := "Would you like me to analyze opportunities?"

	atEdge := c.Classify("yes", []models.Turn{assistantTurn(prompt, "", 10*time.Minute)}, now)
	assert.True(t, atEdge.IsFollowUp)

	justPast := c.Classify("yes", []models.Turn{assistantTurn(prompt, "", 10*time.Minute+time.Second)}, now)
	assert.False(t, justPast.IsFollowUp)

	slightlyAhead := c.Classify("yes", []models.Turn{assistantTurn(prompt, "", -5*time.Second)}, now)
	assert.True(t, slightlyAhead.IsFollowUp)
	assert.Equal(t, AnalyzeOpportunities, slightlyAhead.Intent)
}

func TestClassify_LengthThreshold(t *testing.T) {
	cfg := DefaultConfig().WithPhrases(Affirmative, strings.Repeat("y", 41), strings.Repeat("y", 40))
	c, err := New(cfg)
	require.NoError(t, err)

	history := []models.Turn{assistantTurn("Anything else?", "", time.Minute)}
	assert.True(t, c.Classify(strings.Repeat("y", 40), history, now).IsFollowUp)
	assert.False(t, c.Classify(strings.Repeat("y", 41), history, now).IsFollowUp)
}

func TestResponseKindOf(t *testing.T) {
	c := newClassifier(t)

	tests := []struct {
		message string
		kind    ResponseKind
		ok      bool
	}{
		{message: "Yes!", kind: Affirmative, ok: true},
		{message: "  Sure thing.  ", kind: Affirmative, ok: true},
		{message: "yes, please", kind: Affirmative, ok: true},
		{message: "Nope", kind: Negative, ok: true},
		{message: "go on...", kind: Continuation, ok: true},
		{message: "Tell me MORE?", kind: Expansion, ok: true},
		{message: "more", kind: Continuation, ok: true},
		{message: "what about housing", ok: false},
		{message: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			kind, ok := c.ResponseKindOf(tt.message)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestNew_ConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DirectRules = []DirectRule{{Name: "broken", Intent: CheckDeadlines, Patterns: []string{"("}}}
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.ContextRules = []ContextRule{{Name: "bogus", Intent: "reticulate_splines"}}
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.DirectRules = []DirectRule{{Name: "empty", Intent: None}}
	_, err = New(cfg)
	assert.Error(t, err)

	c, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, 40, c.Config().MaxFollowUpLength)
	assert.Equal(t, 10*time.Minute, c.Config().RecencyWindow)
}

func TestClassify_CustomTables(t *testing.T) {
	cfg := DefaultConfig().WithPhrases(Affirmative, "vamos")
	cfg.RecencyWindow = 30 * time.Second
	cfg.DirectRules = append([]DirectRule{{
		Name:     "budget",
		Intent:   AnalyzeOpportunities,
		Patterns: []string{`\bbudget\b`},
	}}, cfg.DirectRules...)

	c, err := New(cfg)
	require.NoError(t, err)

	history := []models.Turn{assistantTurn("Shall I search for grants?", "", 20*time.Second)}
	assert.Equal(t, SearchOpportunities, c.Classify("vamos", history, now).Intent)

	stale := []models.Turn{assistantTurn("Shall I search for grants?", "", 45*time.Second)}
	assert.False(t, c.Classify("vamos", stale, now).IsFollowUp)

	res := c.Classify("what budget deadlines apply", nil, now)
	assert.Equal(t, AnalyzeOpportunities, res.Intent)
	assert.Equal(t, "direct:budget", res.MatchedRule)
}

func TestClassify_Concurrent(t *testing.T) {
	c := newClassifier(t)
	history := []models.Turn{assistantTurn("Would you like me to analyze opportunities?", "opportunity_analysis", time.Minute)}

	done := make(chan Result, 16)
	for i := 0; i < cap(done); i++ {
		go func() { done <- c.Classify("yes", history, now) }()
	}
	for i := 0; i < cap(done); i++ {
		assert.Equal(t, AnalyzeOpportunities, (<-done).Intent)
	}
}
