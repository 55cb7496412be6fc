package store

import "fundingos-workers/internal/models"

const opportunityColumns = `o.id, o.title, COALESCE(o.description, ''), COALESCE(o.sponsor, ''), COALESCE(o.source, ''),
		       o.amount_min, o.amount_max, o.organization_types, o.project_types,
		       o.focus_areas, o.eligibility_criteria, o.deadline`

var queries = map[models.QueryType]string{
	models.QueryTypeOpportunityByID: `
		SELECT ` + opportunityColumns + `
		FROM opportunities o
		WHERE o.id = $1`,

	models.QueryTypeProjectByID: `
		SELECT id, COALESCE(organization_id, ''), COALESCE(name, ''), COALESCE(title, ''),
		       COALESCE(description, ''), COALESCE(category, ''), funding_requested
		FROM projects
		WHERE id = $1`,

	models.QueryTypeOrganizationByID: `
		SELECT id, COALESCE(name, ''), COALESCE(organization_type, ''), focus_areas,
		       COALESCE(location, ''), annual_revenue
		FROM organizations
		WHERE id = $1`,

	models.QueryTypeRecentTurns: `
		SELECT role, content, created_at, metadata
		FROM conversation_messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,

	models.QueryTypeUpcomingDeadlines: `
		SELECT ` + opportunityColumns + `
		FROM opportunities o
		WHERE o.deadline >= $1 AND o.deadline < $2
		  AND ($3::text = '' OR EXISTS (
		        SELECT 1 FROM tracked_opportunities t
		        WHERE t.opportunity_id = o.id AND t.organization_id = $3))
		ORDER BY o.deadline ASC
		LIMIT $4`,
}
