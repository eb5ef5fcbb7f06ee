package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/mindsetu-api/internal/models"
	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
)

type statsUserRepository interface {
	List(ctx context.Context) ([]models.User, error)
}

type statsAssignmentRepository interface {
	ListByInstitute(ctx context.Context, instituteName string) ([]models.Assignment, error)
}

type statsSubmissionRepository interface {
	ListByInstitute(ctx context.Context, instituteName string) ([]models.Submission, error)
}

// StatsService aggregates institute-wide assignment statistics.
type StatsService struct {
	users       statsUserRepository
	assignments statsAssignmentRepository
	submissions statsSubmissionRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewStatsService constructs a StatsService.
func NewStatsService(users statsUserRepository, assignments statsAssignmentRepository, submissions statsSubmissionRepository, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		users:       users,
		assignments: assignments,
		submissions: submissions,
		logger:      logger,
		now:         time.Now,
	}
}

// ComputeInstituteStats derives on-time, late, and missed percentages for an
// institute. On-time and late rates cover submissions made by currently
// active students. The missed rate covers past-due assignments only: every
// active student is expected to have submitted each past-due assignment, and
// each absent (student, past-due assignment) pair counts as one missed
// instance. On failure it returns zero-valued stats together with the error
// so callers always have a renderable payload.
func (s *StatsService) ComputeInstituteStats(ctx context.Context, instituteName string) (models.InstituteAssignmentStats, error) {
	zero := models.InstituteAssignmentStats{}

	allUsers, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("stats: failed to load users", zap.String("institute", instituteName), zap.Error(err))
		return zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to calculate institute assignment stats.")
	}

	activeStudents := make(map[string]struct{})
	for _, u := range allUsers {
		if u.InstituteName == instituteName && u.UserType == models.UserTypeStudent && u.IsActivated {
			activeStudents[u.ID] = struct{}{}
		}
	}

	assignments, err := s.assignments.ListByInstitute(ctx, instituteName)
	if err != nil {
		s.logger.Error("stats: failed to load assignments", zap.String("institute", instituteName), zap.Error(err))
		return zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to calculate institute assignment stats.")
	}
	submissions, err := s.submissions.ListByInstitute(ctx, instituteName)
	if err != nil {
		s.logger.Error("stats: failed to load submissions", zap.String("institute", instituteName), zap.Error(err))
		return zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to calculate institute assignment stats.")
	}

	var onTime, late int
	submitted := make(map[string]struct{}, len(submissions))
	for _, sub := range submissions {
		submitted[sub.AssignmentID+"|"+sub.StudentID] = struct{}{}
		if _, active := activeStudents[sub.StudentID]; !active {
			continue
		}
		switch sub.Status {
		case models.SubmissionOnTime:
			onTime++
		case models.SubmissionLate:
			late++
		}
	}

	stats := models.InstituteAssignmentStats{}
	if total := onTime + late; total > 0 {
		stats.OnTimePercent = float64(onTime) / float64(total) * 100
		stats.LatePercent = float64(late) / float64(total) * 100
	}

	now := s.now()
	var pastDue []models.Assignment
	for _, a := range assignments {
		if a.DueDate.Before(now) {
			pastDue = append(pastDue, a)
		}
	}

	if len(activeStudents) > 0 && len(pastDue) > 0 {
		var missedInstances, consideredStudents int
		for studentID := range activeStudents {
			for _, a := range pastDue {
				if _, ok := submitted[a.ID+"|"+studentID]; !ok {
					missedInstances++
				}
			}
			consideredStudents++
		}
		if possible := consideredStudents * len(pastDue); possible > 0 {
			stats.MissedPercent = float64(missedInstances) / float64(possible) * 100
		}
		stats.StudentsWithPastDueWork = consideredStudents
	}

	return stats, nil
}
