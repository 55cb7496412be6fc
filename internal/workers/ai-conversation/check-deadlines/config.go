package checkdeadlines

import "time"

type Config struct {
	WithinDays int
	Limit      int
	// UrgentDays marks deadlines this close as urgent; twice as far is "soon".
	UrgentDays int
	Timeout    time.Duration
}

func LoadConfig() *Config {
	return &Config{
		WithinDays: 30,
		Limit:      50,
		UrgentDays: 7,
		Timeout:    15 * time.Second,
	}
}
