// internal/workers/funding/rank-opportunities/models.go
package rankopportunities

import (
	"fundingos-workers/internal/fitscore"
	"fundingos-workers/internal/models"
)

type Input struct {
	ProjectID      string                      `json:"projectId,omitempty"`
	Project        *models.Project             `json:"project,omitempty"`
	OrganizationID string                      `json:"organizationId,omitempty"`
	Organization   *models.OrganizationProfile `json:"organization,omitempty"`
	Query          string                      `json:"query,omitempty"`
	MaxResults     int                         `json:"maxResults,omitempty"`
}

type RankedOpportunity struct {
	Rank          int              `json:"rank"`
	OpportunityID string           `json:"opportunityId"`
	Title         string           `json:"title"`
	Sponsor       string           `json:"sponsor,omitempty"`
	Deadline      string           `json:"deadline,omitempty"`
	FitScore      *fitscore.Result `json:"fitScore"`
}

type Output struct {
	RankedOpportunities []RankedOpportunity `json:"rankedOpportunities"`
	TotalCandidates     int                 `json:"totalCandidates"`
	TotalHits           int64               `json:"totalHits"`
	ProcessingTimeMs    int64               `json:"processingTimeMs"`
}
