// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeOpportunityByID   QueryType = "opportunity_by_id"
	QueryTypeProjectByID       QueryType = "project_by_id"
	QueryTypeOrganizationByID  QueryType = "organization_by_id"
	QueryTypeRecentTurns       QueryType = "recent_turns"
	QueryTypeUpcomingDeadlines QueryType = "upcoming_deadlines"
)
