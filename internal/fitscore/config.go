package fitscore

import "fmt"

// Config holds the tunable weights of the fit heuristic. All point values are on
// the 0-100 score scale.
type Config struct {
	BaseScore         int     `mapstructure:"base_score"`
	PrimaryWeight     int     `mapstructure:"primary_weight"`
	SecondaryWeight   int     `mapstructure:"secondary_weight"`
	OtherWeight       int     `mapstructure:"other_weight"`
	KeywordCap        int     `mapstructure:"keyword_cap"`
	CategoryBonus     int     `mapstructure:"category_bonus"`
	ThematicPenalty   int     `mapstructure:"thematic_penalty"`
	IneligibleCeiling int     `mapstructure:"ineligible_ceiling"`
	AmountBonus       int     `mapstructure:"amount_bonus"`
	AmountPenalty     int     `mapstructure:"amount_penalty"`
	AmountFarFactor   float64 `mapstructure:"amount_far_factor"`

	// Extra terms merged into the built-in keyword tables.
	PrimaryKeywords   []string `mapstructure:"primary_keywords"`
	SecondaryKeywords []string `mapstructure:"secondary_keywords"`
}

func DefaultConfig() Config {
	return Config{
		BaseScore:         25,
		PrimaryWeight:     12,
		SecondaryWeight:   4,
		OtherWeight:       1,
		KeywordCap:        50,
		CategoryBonus:     15,
		ThematicPenalty:   25,
		IneligibleCeiling: 20,
		AmountBonus:       10,
		AmountPenalty:     10,
		AmountFarFactor:   3,
	}
}

// MaxIneligibleCeiling is the highest score an ineligible opportunity may
// receive.
const MaxIneligibleCeiling = 20

// Validate rejects weights that would break the score bounds.
func (c Config) Validate() error {
	ints := []struct {
		name  string
		value int
	}{
		{"base_score", c.BaseScore},
		{"primary_weight", c.PrimaryWeight},
		{"secondary_weight", c.SecondaryWeight},
		{"other_weight", c.OtherWeight},
		{"keyword_cap", c.KeywordCap},
		{"category_bonus", c.CategoryBonus},
		{"thematic_penalty", c.ThematicPenalty},
		{"amount_bonus", c.AmountBonus},
		{"amount_penalty", c.AmountPenalty},
	}
	for _, f := range ints {
		if f.value < 0 || f.value > 100 {
			return fmt.Errorf("scoring.%s must be between 0 and 100, got %d", f.name, f.value)
		}
	}
	if c.IneligibleCeiling < 0 || c.IneligibleCeiling > MaxIneligibleCeiling {
		return fmt.Errorf("scoring.ineligible_ceiling must be between 0 and %d, got %d",
			MaxIneligibleCeiling, c.IneligibleCeiling)
	}
	if c.AmountFarFactor < 1 {
		return fmt.Errorf("scoring.amount_far_factor must be at least 1, got %g", c.AmountFarFactor)
	}
	return nil
}

func (c Config) isZero() bool {
	return c.BaseScore == 0 && c.PrimaryWeight == 0 && c.SecondaryWeight == 0 &&
		c.OtherWeight == 0 && c.KeywordCap == 0 && c.CategoryBonus == 0 &&
		c.ThematicPenalty == 0 && c.IneligibleCeiling == 0 && c.AmountBonus == 0 &&
		c.AmountPenalty == 0 && c.AmountFarFactor == 0
}

// withDefaults returns DefaultConfig, keeping the keyword extensions, when no
// weight is set. A populated config is taken as given so an explicit zero
// disables its rule; out-of-range values are pulled back into bounds.
func (c Config) withDefaults() Config {
	if c.isZero() {
		d := DefaultConfig()
		d.PrimaryKeywords = c.PrimaryKeywords
		d.SecondaryKeywords = c.SecondaryKeywords
		return d
	}
	c.IneligibleCeiling = clamp(c.IneligibleCeiling, 0, MaxIneligibleCeiling)
	if c.AmountFarFactor < 1 {
		c.AmountFarFactor = 1
	}
	return c
}
