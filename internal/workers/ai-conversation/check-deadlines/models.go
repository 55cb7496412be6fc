package checkdeadlines

import "fundingos-workers/internal/models"

type Input struct {
	OrganizationID string `json:"organizationId,omitempty"`
	WithinDays     int    `json:"withinDays,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Notify         bool   `json:"notify,omitempty"`
}

type Deadline struct {
	OpportunityID string `json:"opportunityId"`
	Title         string `json:"title"`
	Sponsor       string `json:"sponsor,omitempty"`
	Deadline      string `json:"deadline"`
	DaysRemaining int    `json:"daysRemaining"`
	Urgency       string `json:"urgency"`
}

type Output struct {
	Deadlines       []Deadline             `json:"deadlines"`
	AlertsPublished int                    `json:"alertsPublished"`
	Alerts          []models.DeadlineAlert `json:"alerts,omitempty"`
	CheckedAt       string                 `json:"checkedAt"`
}
