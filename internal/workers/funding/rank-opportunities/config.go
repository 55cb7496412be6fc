// internal/workers/funding/rank-opportunities/config.go
package rankopportunities

import "time"

type Config struct {
	DefaultResults int
	MaxResults     int
	// CandidatePool is how many search hits are scored before truncation.
	CandidatePool int
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DefaultResults: 10,
		MaxResults:     50,
		CandidatePool:  100,
		Timeout:        30 * time.Second,
	}
}
