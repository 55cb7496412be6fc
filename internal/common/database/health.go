package database

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
)

// Health pings every configured backend. Nil backends are skipped.
type Health struct {
	DB    *sql.DB
	Redis *redis.Client
	ES    *elasticsearch.Client
}

// Check returns one entry per backend; a nil value means healthy.
func (h *Health) Check(ctx context.Context) map[string]error {
	checks := map[string]func(context.Context) error{}
	if h.DB != nil {
		checks["postgres"] = h.DB.PingContext
	}
	if h.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return h.Redis.Ping(ctx).Err() }
	}
	if h.ES != nil {
		checks["elasticsearch"] = func(ctx context.Context) error { return PingElasticsearch(ctx, h.ES) }
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]error, len(checks))
	)
	for name, fn := range checks {
		wg.Add(1)
		go func(name string, fn func(context.Context) error) {
			defer wg.Done()
			err := fn(ctx)
			mu.Lock()
			out[name] = err
			mu.Unlock()
		}(name, fn)
	}
	wg.Wait()
	return out
}

// Failing lists the names of unhealthy backends in sorted order.
func Failing(results map[string]error) []string {
	var names []string
	for name, err := range results {
		if err != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
