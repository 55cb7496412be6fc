package models

import (
	"strings"
	"time"
)

// Opportunity is a fundable program, grant or investment listing.
type Opportunity struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Sponsor             string     `json:"sponsor"`
	Source              string     `json:"source"`
	AmountMin           *float64   `json:"amountMin,omitempty"`
	AmountMax           *float64   `json:"amountMax,omitempty"`
	OrganizationTypes   FlexList   `json:"organizationTypes"`
	ProjectTypes        FlexList   `json:"projectTypes"`
	FocusAreas          FlexList   `json:"focusAreas"`
	EligibilityCriteria FlexList   `json:"eligibilityCriteria"`
	Deadline            *time.Time `json:"deadline,omitempty"`
}

// Focus returns the declared focus areas, falling back to project types.
func (o *Opportunity) Focus() []string {
	if o == nil {
		return nil
	}
	if len(o.FocusAreas) > 0 {
		return o.FocusAreas
	}
	return o.ProjectTypes
}

// Project is an applicant's initiative seeking funding.
type Project struct {
	ID               string   `json:"id"`
	OrganizationID   string   `json:"organizationId,omitempty"`
	Name             string   `json:"name"`
	Title            string   `json:"title,omitempty"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	FundingRequested *float64 `json:"fundingRequested,omitempty"`
}

// DisplayName prefers Name and falls back to Title.
func (p *Project) DisplayName() string {
	if p == nil {
		return ""
	}
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	return p.Title
}

// OrganizationProfile describes the applicant entity.
type OrganizationProfile struct {
	ID               string   `json:"id"`
	Name             string   `json:"name,omitempty"`
	OrganizationType string   `json:"organizationType"`
	FocusAreas       FlexList `json:"focusAreas"`
	Location         string   `json:"location"`
	AnnualRevenue    *float64 `json:"annualRevenue,omitempty"`
}
