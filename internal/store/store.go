// Package store holds the I/O collaborators the workers are built from:
// postgres-backed records, a redis cache in front of them and the
// elasticsearch opportunity index.
package store

import (
	"context"
	"time"

	"fundingos-workers/internal/models"
)

type RecordStore interface {
	Opportunity(ctx context.Context, id string) (*models.Opportunity, error)
	Project(ctx context.Context, id string) (*models.Project, error)
	Organization(ctx context.Context, id string) (*models.OrganizationProfile, error)
}

type ConversationStore interface {
	// RecentTurns returns up to limit turns in chronological order.
	RecentTurns(ctx context.Context, conversationID string, limit int) ([]models.Turn, error)
}

type DeadlineStore interface {
	UpcomingDeadlines(ctx context.Context, q DeadlineQuery) ([]models.Opportunity, error)
}

type OpportunitySearcher interface {
	SearchOpportunities(ctx context.Context, q SearchQuery) (*SearchResult, error)
}

type DeadlineQuery struct {
	OrganizationID string
	From           time.Time
	Until          time.Time
	Limit          int
}

type SearchQuery struct {
	Text       string
	Categories []string
	Size       int
}

type SearchResult struct {
	Opportunities []models.Opportunity
	TotalHits     int64
	Took          int64
}
