package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mindsetu-api/internal/models"
	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
)

type fakeAssignmentStats struct {
	stats models.InstituteAssignmentStats
	err   error
	calls int
}

func (f *fakeAssignmentStats) ComputeInstituteStats(ctx context.Context, instituteName string) (models.InstituteAssignmentStats, error) {
	f.calls++
	return f.stats, f.err
}

type fakeAttitudeStats struct {
	stats models.StudentAttitudeStats
	calls int
}

func (f *fakeAttitudeStats) AttitudeStats(ctx context.Context, instituteName string) (models.StudentAttitudeStats, error) {
	f.calls++
	return f.stats, nil
}

type memCacheRepo struct {
	data map[string][]byte
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{data: make(map[string][]byte)}
}

func (m *memCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
		}
	}
	return nil
}

func newTestDashboardService(stats *fakeAssignmentStats, attitude *fakeAttitudeStats, repo CacheRepository) *DashboardService {
	var cache *CacheService
	if repo != nil {
		cache = NewCacheService(repo, nil, time.Minute, nil, true)
	}
	return NewDashboardService(DashboardServiceParams{
		Stats:    stats,
		Attitude: attitude,
		Metrics:  NewMetricsService(),
		Cache:    cache,
	})
}

func TestInstituteOverviewRequiresStaff(t *testing.T) {
	svc := newTestDashboardService(&fakeAssignmentStats{}, &fakeAttitudeStats{}, nil)

	student := models.User{ID: "s-1", UserType: models.UserTypeStudent, InstituteName: "greenwood high"}
	_, _, err := svc.InstituteOverview(context.Background(), student)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Contains(t, err.Error(), "Only Teachers or SuperAdmins can view the institute dashboard.")
}

func TestInstituteOverviewCacheAside(t *testing.T) {
	stats := &fakeAssignmentStats{stats: models.InstituteAssignmentStats{OnTimePercent: 80, LatePercent: 20}}
	attitude := &fakeAttitudeStats{stats: models.StudentAttitudeStats{PositivePercent: 60, AnalyzedStudentCount: 5}}
	repo := newMemCacheRepo()
	svc := newTestDashboardService(stats, attitude, repo)

	teacher := models.User{ID: "t-1", UserType: models.UserTypeTeacher, InstituteName: "greenwood high", IsActivated: true}

	first, cached, err := svc.InstituteOverview(context.Background(), teacher)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "greenwood high", first.InstituteName)
	assert.Equal(t, 1, stats.calls)

	assert.Contains(t, repo.data, InstituteDashboardKey("greenwood high"))

	second, cached, err := svc.InstituteOverview(context.Background(), teacher)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first.AssignmentStats, second.AssignmentStats)
	assert.Equal(t, 1, stats.calls)
	assert.Equal(t, 1, attitude.calls)

	svc.InvalidateInstitute(context.Background(), "greenwood high")

	_, cached, err = svc.InstituteOverview(context.Background(), teacher)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, stats.calls)
}

func TestInstituteOverviewWithoutCache(t *testing.T) {
	stats := &fakeAssignmentStats{}
	svc := newTestDashboardService(stats, &fakeAttitudeStats{}, nil)

	admin := models.User{ID: "a-1", UserType: models.UserTypeSuperAdmin, InstituteName: "greenwood high", IsActivated: true}
	_, cached, err := svc.InstituteOverview(context.Background(), admin)
	require.NoError(t, err)
	assert.False(t, cached)

	_, cached, err = svc.InstituteOverview(context.Background(), admin)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, stats.calls)
}

func TestSystemStatusSuperAdminOnly(t *testing.T) {
	svc := newTestDashboardService(&fakeAssignmentStats{}, &fakeAttitudeStats{}, nil)

	teacher := models.User{ID: "t-1", UserType: models.UserTypeTeacher, InstituteName: "greenwood high"}
	_, err := svc.SystemStatus(teacher)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	admin := models.User{ID: "a-1", UserType: models.UserTypeSuperAdmin, InstituteName: "greenwood high"}
	status, err := svc.SystemStatus(admin)
	require.NoError(t, err)
	assert.NotZero(t, status.Metrics.GeneratedAt)
}
