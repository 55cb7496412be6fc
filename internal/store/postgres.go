package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/lib/pq"

	"fundingos-workers/internal/common/errors"
	"fundingos-workers/internal/models"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (p *Postgres) queryRow(ctx context.Context, qt models.QueryType, args ...interface{}) (*sql.Row, error) {
	q, ok := queries[qt]
	if !ok {
		return nil, errors.NewInvalidQueryTypeError(string(qt))
	}
	return p.db.QueryRowContext(ctx, q, args...), nil
}

func (p *Postgres) query(ctx context.Context, qt models.QueryType, args ...interface{}) (*sql.Rows, error) {
	q, ok := queries[qt]
	if !ok {
		return nil, errors.NewInvalidQueryTypeError(string(qt))
	}
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapQueryError(ctx, qt, err)
	}
	return rows, nil
}

func (p *Postgres) Opportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	row, err := p.queryRow(ctx, models.QueryTypeOpportunityByID, id)
	if err != nil {
		return nil, err
	}
	opp, err := scanOpportunity(row)
	if err != nil {
		return nil, notFoundOr(ctx, models.QueryTypeOpportunityByID, "opportunity", id, err)
	}
	return opp, nil
}

func (p *Postgres) Project(ctx context.Context, id string) (*models.Project, error) {
	row, err := p.queryRow(ctx, models.QueryTypeProjectByID, id)
	if err != nil {
		return nil, err
	}

	var proj models.Project
	var funding sql.NullFloat64
	err = row.Scan(&proj.ID, &proj.OrganizationID, &proj.Name, &proj.Title,
		&proj.Description, &proj.Category, &funding)
	if err != nil {
		return nil, notFoundOr(ctx, models.QueryTypeProjectByID, "project", id, err)
	}
	proj.FundingRequested = nullableFloat(funding)
	return &proj, nil
}

func (p *Postgres) Organization(ctx context.Context, id string) (*models.OrganizationProfile, error) {
	row, err := p.queryRow(ctx, models.QueryTypeOrganizationByID, id)
	if err != nil {
		return nil, err
	}

	var org models.OrganizationProfile
	var revenue sql.NullFloat64
	err = row.Scan(&org.ID, &org.Name, &org.OrganizationType, &org.FocusAreas, &org.Location, &revenue)
	if err != nil {
		return nil, notFoundOr(ctx, models.QueryTypeOrganizationByID, "organization", id, err)
	}
	org.AnnualRevenue = nullableFloat(revenue)
	return &org, nil
}

func (p *Postgres) RecentTurns(ctx context.Context, conversationID string, limit int) ([]models.Turn, error) {
	rows, err := p.query(ctx, models.QueryTypeRecentTurns, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []models.Turn
	for rows.Next() {
		var t models.Turn
		var metadata []byte
		if err := rows.Scan(&t.Role, &t.Content, &t.Timestamp, &metadata); err != nil {
			return nil, mapQueryError(ctx, models.QueryTypeRecentTurns, err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
				t.Metadata = nil
			}
		}
		t.Role = strings.ToLower(strings.TrimSpace(t.Role))
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapQueryError(ctx, models.QueryTypeRecentTurns, err)
	}

	// newest first from the query; callers want oldest first
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (p *Postgres) UpcomingDeadlines(ctx context.Context, q DeadlineQuery) ([]models.Opportunity, error) {
	rows, err := p.query(ctx, models.QueryTypeUpcomingDeadlines, q.From, q.Until, q.OrganizationID, q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opps []models.Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, mapQueryError(ctx, models.QueryTypeUpcomingDeadlines, err)
		}
		opps = append(opps, *opp)
	}
	if err := rows.Err(); err != nil {
		return nil, mapQueryError(ctx, models.QueryTypeUpcomingDeadlines, err)
	}
	return opps, nil
}

func scanOpportunity(s rowScanner) (*models.Opportunity, error) {
	var opp models.Opportunity
	var amountMin, amountMax sql.NullFloat64
	var deadline sql.NullTime

	err := s.Scan(
		&opp.ID, &opp.Title, &opp.Description, &opp.Sponsor, &opp.Source,
		&amountMin, &amountMax,
		&opp.OrganizationTypes, &opp.ProjectTypes, &opp.FocusAreas, &opp.EligibilityCriteria,
		&deadline,
	)
	if err != nil {
		return nil, err
	}

	opp.AmountMin = nullableFloat(amountMin)
	opp.AmountMax = nullableFloat(amountMax)
	if deadline.Valid {
		t := deadline.Time.UTC()
		opp.Deadline = &t
	}
	return &opp, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func notFoundOr(ctx context.Context, qt models.QueryType, kind, id string, err error) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewRecordNotFoundError(kind, id)
	}
	return mapQueryError(ctx, qt, err)
}

// mapQueryError classifies driver errors. Postgres class 08 is a lost or
// refused connection; 57014 is a cancelled statement.
func mapQueryError(ctx context.Context, qt models.QueryType, err error) error {
	if ctx.Err() == context.DeadlineExceeded || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewQueryTimeoutError(string(qt))
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "08":
			return errors.NewDatabaseConnectionFailedError(err)
		case pqErr.Code == "57014":
			return errors.NewQueryTimeoutError(string(qt))
		}
	}
	if stderrors.Is(err, sql.ErrConnDone) {
		return errors.NewDatabaseConnectionFailedError(err)
	}
	return errors.NewQueryExecutionFailedError(string(qt), err)
}
