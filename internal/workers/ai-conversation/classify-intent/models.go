package classifyintent

import (
	"fundingos-workers/internal/intent"
	"fundingos-workers/internal/models"
)

type Input struct {
	Message        string        `json:"message"`
	ConversationID string        `json:"conversationId,omitempty"`
	History        []models.Turn `json:"history,omitempty"`
	SentAt         string        `json:"sentAt,omitempty"` // RFC 3339; defaults to now
}

type Output struct {
	Intent       intent.Intent       `json:"intent"`
	IsFollowUp   bool                `json:"isFollowUp"`
	ResponseKind intent.ResponseKind `json:"responseKind,omitempty"`
	MatchedRule  string              `json:"matchedRule,omitempty"`
	HistorySize  int                 `json:"historySize"`
}
