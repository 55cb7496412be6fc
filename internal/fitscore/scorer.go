// Package fitscore computes an explainable 0-100 suitability score between a
// funding opportunity and a project/organization pair.
package fitscore

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"fundingos-workers/internal/models"
)

var (
	ErrInvalidInput = errors.New("INVALID_INPUT")
)

type Result struct {
	OverallScore int       `json:"overallScore"`
	Eligible     bool      `json:"eligible"`
	Strengths    []string  `json:"strengths"`
	Weaknesses   []string  `json:"weaknesses"`
	Confidence   float64   `json:"confidence"`
	Breakdown    Breakdown `json:"breakdown"`
}

// Breakdown lists every sub-score that went into OverallScore.
type Breakdown struct {
	Base             int      `json:"base"`
	Keyword          int      `json:"keyword"`
	PrimaryMatches   []string `json:"primaryMatches"`
	SecondaryMatches []string `json:"secondaryMatches"`
	OtherMatches     int      `json:"otherMatches"`
	Thematic         int      `json:"thematic"`
	Amount           int      `json:"amount"`
	Raw              int      `json:"raw"`
	CeilingApplied   bool     `json:"ceilingApplied"`
	FieldsPresent    int      `json:"fieldsPresent"`
	FieldsTotal      int      `json:"fieldsTotal"`
}

// Scorer is immutable after New and safe for concurrent use.
type Scorer struct {
	cfg       Config
	primary   map[string]struct{}
	secondary map[string]struct{}
	stop      map[string]struct{}
}

func New(cfg Config) *Scorer {
	return &Scorer{
		cfg:       cfg.withDefaults(),
		primary:   toSet(primaryKeywords, cfg.PrimaryKeywords),
		secondary: toSet(secondaryKeywords, cfg.SecondaryKeywords),
		stop:      toSet(stopwords),
	}
}

func (s *Scorer) Config() Config {
	return s.cfg
}

// Score rates opp against proj and org. Only a missing opportunity together
// with a missing project is an error; every other gap lowers confidence.
func (s *Scorer) Score(opp *models.Opportunity, proj *models.Project, org *models.OrganizationProfile) (*Result, error) {
	if opp == nil && proj == nil {
		return nil, ErrInvalidInput
	}
	if opp == nil {
		opp = &models.Opportunity{}
	}
	if proj == nil {
		proj = &models.Project{}
	}
	if org == nil {
		org = &models.OrganizationProfile{}
	}

	res := &Result{
		Eligible:   true,
		Strengths:  []string{},
		Weaknesses: []string{},
		Breakdown: Breakdown{
			Base:             s.cfg.BaseScore,
			PrimaryMatches:   []string{},
			SecondaryMatches: []string{},
		},
	}

	s.scoreKeywords(res, opp, proj)
	s.scoreThematic(res, opp, proj)
	s.checkEligibility(res, opp, org)
	s.scoreAmount(res, opp, proj)

	b := &res.Breakdown
	b.Raw = b.Base + b.Keyword + b.Thematic + b.Amount
	score := clamp(b.Raw, 0, 100)
	if !res.Eligible && score > s.cfg.IneligibleCeiling {
		score = s.cfg.IneligibleCeiling
		b.CeilingApplied = true
	}
	res.OverallScore = clamp(score, 0, 100)

	b.FieldsPresent, b.FieldsTotal = fieldCoverage(opp, proj, org)
	res.Confidence = math.Round(float64(b.FieldsPresent)/float64(b.FieldsTotal)*100) / 100

	return res, nil
}

func (s *Scorer) scoreKeywords(res *Result, opp *models.Opportunity, proj *models.Project) {
	oppTokens := tokenize(s.stop, opp.Title, opp.Description)
	projTokens := tokenize(s.stop, proj.Name, proj.Title, proj.Description)
	if len(oppTokens) == 0 || len(projTokens) == 0 {
		return
	}

	projSet := toSet(projTokens)
	b := &res.Breakdown
	for _, t := range oppTokens {
		if _, ok := projSet[t]; !ok {
			continue
		}
		switch {
		case has(s.primary, t):
			b.PrimaryMatches = append(b.PrimaryMatches, t)
		case has(s.secondary, t):
			b.SecondaryMatches = append(b.SecondaryMatches, t)
		default:
			b.OtherMatches++
		}
	}

	raw := len(b.PrimaryMatches)*s.cfg.PrimaryWeight +
		len(b.SecondaryMatches)*s.cfg.SecondaryWeight +
		b.OtherMatches*s.cfg.OtherWeight
	if raw > s.cfg.KeywordCap {
		raw = s.cfg.KeywordCap
	}
	b.Keyword = raw

	switch {
	case len(b.PrimaryMatches) > 0:
		res.Strengths = append(res.Strengths,
			fmt.Sprintf("Shared focus terms: %s", strings.Join(b.PrimaryMatches, ", ")))
	case raw == 0:
		res.Weaknesses = append(res.Weaknesses, "Little keyword overlap between the opportunity and the project")
	default:
		res.Weaknesses = append(res.Weaknesses, "Only generic funding terms overlap with the project")
	}
}

func (s *Scorer) scoreThematic(res *Result, opp *models.Opportunity, proj *models.Project) {
	categories := models.NormalizeList(proj.Category)
	focus := opp.Focus()
	if len(categories) == 0 || len(focus) == 0 {
		return
	}

	if c, f, ok := anyRelated(categories, focus, categorySynonyms); ok {
		res.Breakdown.Thematic = s.cfg.CategoryBonus
		res.Strengths = append(res.Strengths,
			fmt.Sprintf("Project category %q aligns with the opportunity focus %q", c, f))
		return
	}

	res.Breakdown.Thematic = -s.cfg.ThematicPenalty
	res.Weaknesses = append(res.Weaknesses,
		fmt.Sprintf("Project category %q is outside the opportunity focus (%s)",
			strings.Join(categories, ", "), strings.Join(focus, ", ")))
}

func (s *Scorer) checkEligibility(res *Result, opp *models.Opportunity, org *models.OrganizationProfile) {
	allowed := models.NormalizeList(opp.OrganizationTypes)
	if len(allowed) == 0 {
		return
	}
	for _, a := range allowed {
		for _, open := range openOrganizationTypes {
			if a == open {
				return
			}
		}
	}

	orgTypes := models.NormalizeList(org.OrganizationType)
	if len(orgTypes) == 0 {
		res.Weaknesses = append(res.Weaknesses,
			"Organization type is unknown; eligibility could not be verified")
		return
	}

	for _, t := range orgTypes {
		for _, a := range allowed {
			if satisfiesOrgType(t, a) {
				res.Strengths = append(res.Strengths,
					fmt.Sprintf("Organization type %q is eligible", t))
				return
			}
		}
	}

	res.Eligible = false
	res.Weaknesses = append(res.Weaknesses,
		fmt.Sprintf("Organization type %q is not eligible (allowed: %s)",
			strings.Join(orgTypes, ", "), strings.Join(allowed, ", ")))
}

func (s *Scorer) scoreAmount(res *Result, opp *models.Opportunity, proj *models.Project) {
	if proj.FundingRequested == nil || *proj.FundingRequested <= 0 {
		return
	}
	if opp.AmountMin == nil && opp.AmountMax == nil {
		return
	}

	requested := *proj.FundingRequested
	lo, hi := 0.0, math.Inf(1)
	if opp.AmountMin != nil {
		lo = *opp.AmountMin
	}
	if opp.AmountMax != nil && *opp.AmountMax > 0 {
		hi = *opp.AmountMax
	}

	switch {
	case requested >= lo && requested <= hi:
		res.Breakdown.Amount = s.cfg.AmountBonus
		res.Strengths = append(res.Strengths, "Requested amount is within the award range")
	case !math.IsInf(hi, 1) && requested > s.cfg.AmountFarFactor*hi:
		res.Breakdown.Amount = -s.cfg.AmountPenalty
		res.Weaknesses = append(res.Weaknesses,
			fmt.Sprintf("Requested amount %.0f is far above the maximum award of %.0f", requested, hi))
	}
}

// fieldCoverage counts the optional fields that carried a usable value.
func fieldCoverage(opp *models.Opportunity, proj *models.Project, org *models.OrganizationProfile) (int, int) {
	checks := []bool{
		strings.TrimSpace(opp.Title) != "",
		strings.TrimSpace(opp.Description) != "",
		strings.TrimSpace(opp.Sponsor) != "",
		len(opp.Focus()) > 0,
		len(opp.OrganizationTypes) > 0,
		len(opp.EligibilityCriteria) > 0,
		opp.AmountMin != nil || opp.AmountMax != nil,
		opp.Deadline != nil,
		proj.DisplayName() != "",
		strings.TrimSpace(proj.Description) != "",
		strings.TrimSpace(proj.Category) != "",
		proj.FundingRequested != nil,
		strings.TrimSpace(org.OrganizationType) != "",
		len(org.FocusAreas) > 0,
		strings.TrimSpace(org.Location) != "",
		org.AnnualRevenue != nil,
	}

	present := 0
	for _, ok := range checks {
		if ok {
			present++
		}
	}
	return present, len(checks)
}

func has(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
