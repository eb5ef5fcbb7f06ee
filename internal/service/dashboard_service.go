package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/mindsetu-api/internal/dto"
	"github.com/noah-isme/mindsetu-api/internal/models"
	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
)

type assignmentStatsProvider interface {
	ComputeInstituteStats(ctx context.Context, instituteName string) (models.InstituteAssignmentStats, error)
}

type attitudeStatsProvider interface {
	AttitudeStats(ctx context.Context, instituteName string) (models.StudentAttitudeStats, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Stats    assignmentStatsProvider
	Attitude attitudeStatsProvider
	Metrics  *MetricsService
	Cache    *CacheService
	Logger   *zap.Logger
	Config   DashboardServiceConfig
}

// DashboardService composes the staff-facing institute overview.
type DashboardService struct {
	stats    assignmentStatsProvider
	attitude attitudeStatsProvider
	metrics  *MetricsService
	cache    *CacheService
	logger   *zap.Logger
	now      func() time.Time
	cfg      DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		stats:    params.Stats,
		attitude: params.Attitude,
		metrics:  params.Metrics,
		cache:    params.Cache,
		logger:   logger,
		now:      time.Now,
		cfg:      cfg,
	}
}

// InstituteOverview returns the institute dashboard for staff, indicating
// whether the payload came from cache.
func (s *DashboardService) InstituteOverview(ctx context.Context, actor models.User) (*dto.InstituteOverviewResponse, bool, error) {
	if !actor.IsStaff() {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "Only Teachers or SuperAdmins can view the institute dashboard.")
	}

	cacheKey := InstituteDashboardKey(actor.InstituteName)
	if s.cache.Enabled() {
		var cached dto.InstituteOverviewResponse
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", zap.String("institute", actor.InstituteName), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	assignmentStats, err := s.stats.ComputeInstituteStats(ctx, actor.InstituteName)
	if err != nil {
		return nil, false, err
	}
	attitudeStats, err := s.attitude.AttitudeStats(ctx, actor.InstituteName)
	if err != nil {
		return nil, false, err
	}

	overview := &dto.InstituteOverviewResponse{
		InstituteName:   actor.InstituteName,
		AssignmentStats: assignmentStats,
		AttitudeStats:   attitudeStats,
		GeneratedAt:     s.now().UTC(),
	}
	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, overview, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("institute", actor.InstituteName), zap.Error(err))
		}
	}
	return overview, false, nil
}

// InvalidateInstitute drops cached dashboard payloads for the institute.
// Called after writes that change the underlying statistics.
func (s *DashboardService) InvalidateInstitute(ctx context.Context, instituteName string) {
	if !s.cache.Enabled() {
		return
	}
	pattern := InstituteDashboardPattern(instituteName)
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.String("institute", instituteName), zap.Error(err))
	}
}

// SystemStatus reports runtime metrics for operators.
func (s *DashboardService) SystemStatus(actor models.User) (*dto.SystemStatusResponse, error) {
	if actor.UserType != models.UserTypeSuperAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Only SuperAdmins can view system status.")
	}
	return &dto.SystemStatusResponse{Metrics: s.metrics.Snapshot()}, nil
}
