package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fundingos-workers/internal/common/errors"
	"fundingos-workers/internal/common/logger"
	"fundingos-workers/internal/models"
)

type mockRecords struct {
	mock.Mock
}

func (m *mockRecords) Opportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Opportunity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecords) Project(ctx context.Context, id string) (*models.Project, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecords) Organization(ctx context.Context, id string) (*models.OrganizationProfile, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.OrganizationProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCachedRecords_MissThenHit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	next := new(mockRecords)
	next.On("Opportunity", mock.Anything, "opp-1").
		Return(&models.Opportunity{ID: "opp-1", Title: "Rural AI Grant", FocusAreas: models.FlexList{"ai"}}, nil).Once()

	c := NewCachedRecords(next, rdb, time.Minute, "test", logger.NewTestLogger(t))

	first, err := c.Opportunity(context.Background(), "opp-1")
	require.NoError(t, err)
	second, err := c.Opportunity(context.Background(), "opp-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("test:opportunity:opp-1"))
	assert.Equal(t, time.Minute, mr.TTL("test:opportunity:opp-1"))
	next.AssertExpectations(t)

	require.NoError(t, c.Invalidate(context.Background(), "opportunity", "opp-1"))
	assert.False(t, mr.Exists("test:opportunity:opp-1"))
}

func TestCachedRecords_RedisDownFallsThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	next := new(mockRecords)
	next.On("Project", mock.Anything, "proj-1").Return(&models.Project{ID: "proj-1", Name: "Clinic"}, nil)

	c := NewCachedRecords(next, rdb, time.Minute, "test", logger.NewTestLogger(t))
	proj, err := c.Project(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "Clinic", proj.Name)
}

func TestCachedRecords_LoaderErrorPropagates(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectGet("fundingos:organization:org-x").RedisNil()

	next := new(mockRecords)
	next.On("Organization", mock.Anything, "org-x").Return(nil, errors.NewRecordNotFoundError("organization", "org-x"))

	c := NewCachedRecords(next, rdb, 0, "", logger.NewTestLogger(t))
	_, err := c.Organization(context.Background(), "org-x")

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeRecordNotFound, stdErr.Code)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestCachedRecords_CorruptEntryReloaded(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	org := &models.OrganizationProfile{ID: "org-1", OrganizationType: "nonprofit"}
	data, _ := json.Marshal(org)

	rmock.ExpectGet("fundingos:organization:org-1").SetVal("{not json")
	rmock.ExpectSet("fundingos:organization:org-1", data, 10*time.Minute).SetVal("OK")

	next := new(mockRecords)
	next.On("Organization", mock.Anything, "org-1").Return(org, nil)

	c := NewCachedRecords(next, rdb, 0, "", logger.NewTestLogger(t))
	got, err := c.Organization(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, "nonprofit", got.OrganizationType)
	assert.NoError(t, rmock.ExpectationsWereMet())
}
