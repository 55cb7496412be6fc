package database

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newESServer(t *testing.T, status int) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func TestHealth_AllHealthy(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	h := &Health{DB: db, Redis: rdb, ES: newESServer(t, http.StatusOK)}
	results := h.Check(context.Background())

	assert.Len(t, results, 3)
	assert.Empty(t, Failing(results))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealth_ReportsFailures(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	mr.Close()

	h := &Health{DB: db, Redis: rdb, ES: newESServer(t, http.StatusServiceUnavailable)}
	results := h.Check(context.Background())

	assert.Equal(t, []string{"elasticsearch", "postgres", "redis"}, Failing(results))
}

func TestHealth_SkipsNilBackends(t *testing.T) {
	h := &Health{}
	assert.Empty(t, h.Check(context.Background()))
}
