package database

import (
	"context"
	"fmt"

	"fundingos-workers/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

func OpenElasticsearch(ctx context.Context, cfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	addresses := cfg.Addresses
	if len(addresses) == 0 && cfg.URL != "" {
		addresses = []string{cfg.URL}
	}

	esCfg := elasticsearch.Config{Addresses: addresses}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	if err := PingElasticsearch(ctx, es); err != nil {
		return nil, err
	}
	return es, nil
}

func PingElasticsearch(ctx context.Context, es *elasticsearch.Client) error {
	res, err := es.Ping(es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}
