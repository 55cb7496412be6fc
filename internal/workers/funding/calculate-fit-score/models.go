// internal/workers/funding/calculate-fit-score/models.go
package calculatefitscore

import (
	"fundingos-workers/internal/fitscore"
	"fundingos-workers/internal/models"
)

// Input accepts inline records or ids to load; an inline record wins.
type Input struct {
	OpportunityID  string                      `json:"opportunityId,omitempty"`
	Opportunity    *models.Opportunity         `json:"opportunity,omitempty"`
	ProjectID      string                      `json:"projectId,omitempty"`
	Project        *models.Project             `json:"project,omitempty"`
	OrganizationID string                      `json:"organizationId,omitempty"`
	Organization   *models.OrganizationProfile `json:"organization,omitempty"`
}

type Output struct {
	FitScore *fitscore.Result `json:"fitScore"`
	ScoreID  string           `json:"scoreId"`
	ScoredAt string           `json:"scoredAt"`
}
