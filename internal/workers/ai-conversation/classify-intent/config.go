package classifyintent

import "time"

type Config struct {
	// HistoryLimit bounds how many stored turns are loaded when the job
	// carries no history.
	HistoryLimit int
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		HistoryLimit: 10,
		Timeout:      5 * time.Second,
	}
}
