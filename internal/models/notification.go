// internal/models/notification.go
package models

// DeadlineAlert is published when a tracked opportunity closes soon.
type DeadlineAlert struct {
	ID             string `json:"id"`
	OpportunityID  string `json:"opportunityId"`
	OrganizationID string `json:"organizationId,omitempty"`
	Title          string `json:"title"`
	Deadline       string `json:"deadline"` // RFC 3339
	DaysRemaining  int    `json:"daysRemaining"`
	Urgency        string `json:"urgency"` // "urgent", "soon", "upcoming"
	Channel        string `json:"channel"` // "sns"
	Status         string `json:"status"`  // "sent", "failed", "disabled"
	CreatedAt      string `json:"createdAt"`
}
