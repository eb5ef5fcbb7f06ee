package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/mindsetu-api/internal/models"
	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
)

type journalRepository interface {
	Create(ctx context.Context, entry models.MoodEntry) error
	ListByStudent(ctx context.Context, userID, instituteName string) ([]models.MoodEntry, error)
	ListByInstitute(ctx context.Context, instituteName string) ([]models.MoodEntry, error)
}

type journalUserRepository interface {
	List(ctx context.Context) ([]models.User, error)
}

// JournalService records student mood journal entries and derives
// institute-wide attitude statistics from them.
type JournalService struct {
	entries  journalRepository
	users    journalUserRepository
	validate *validator.Validate
	logger   *zap.Logger
	lookback time.Duration
	now      func() time.Time
}

// NewJournalService constructs a JournalService. lookback bounds how far
// back attitude analysis reads entries.
func NewJournalService(entries journalRepository, users journalUserRepository, validate *validator.Validate, logger *zap.Logger, lookback time.Duration) *JournalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if lookback <= 0 {
		lookback = 14 * 24 * time.Hour
	}
	return &JournalService{
		entries:  entries,
		users:    users,
		validate: validate,
		logger:   logger,
		lookback: lookback,
		now:      time.Now,
	}
}

// AddEntry records a mood entry for the calling student.
func (s *JournalService) AddEntry(ctx context.Context, actor models.User, req models.AddMoodEntryRequest) (*models.MoodEntry, error) {
	if actor.UserType != models.UserTypeStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Only students can add journal entries.")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "mood and text are required")
	}
	if !req.Mood.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown mood")
	}

	entry := models.MoodEntry{
		ID:            uuid.NewString(),
		UserID:        actor.ID,
		InstituteName: actor.InstituteName,
		Date:          s.now().UTC(),
		Mood:          req.Mood,
		Text:          strings.TrimSpace(req.Text),
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store journal entry")
	}

	s.logger.Info("journal entry added",
		zap.String("user_id", actor.ID),
		zap.String("institute", actor.InstituteName),
		zap.String("mood", string(entry.Mood)),
	)
	return &entry, nil
}

// ListEntries returns the student's own entries, newest first.
func (s *JournalService) ListEntries(ctx context.Context, actor models.User) ([]models.MoodEntry, error) {
	entries, err := s.entries.ListByStudent(ctx, actor.ID, actor.InstituteName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list journal entries")
	}
	return entries, nil
}

// AttitudeStats classifies each active student by the dominant attitude of
// their recent journal entries. Students with no entries inside the lookback
// window are excluded from the analyzed population.
func (s *JournalService) AttitudeStats(ctx context.Context, instituteName string) (models.StudentAttitudeStats, error) {
	zero := models.StudentAttitudeStats{}

	allUsers, err := s.users.List(ctx)
	if err != nil {
		return zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users for attitude analysis")
	}

	activeStudents := make(map[string]struct{})
	for _, u := range allUsers {
		if u.InstituteName == instituteName && u.UserType == models.UserTypeStudent && u.IsActivated {
			activeStudents[u.ID] = struct{}{}
		}
	}

	entries, err := s.entries.ListByInstitute(ctx, instituteName)
	if err != nil {
		return zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal entries for attitude analysis")
	}

	cutoff := s.now().Add(-s.lookback)
	type tally struct{ positive, negative, neutral int }
	tallies := make(map[string]*tally)
	for _, entry := range entries {
		if _, active := activeStudents[entry.UserID]; !active {
			continue
		}
		if entry.Date.Before(cutoff) {
			continue
		}
		t := tallies[entry.UserID]
		if t == nil {
			t = &tally{}
			tallies[entry.UserID] = t
		}
		switch entry.Mood.Attitude() {
		case models.AttitudePositive:
			t.positive++
		case models.AttitudeNegative:
			t.negative++
		default:
			t.neutral++
		}
	}

	var positive, negative, neutral int
	for _, t := range tallies {
		switch {
		case t.positive >= t.negative && t.positive >= t.neutral:
			positive++
		case t.negative >= t.neutral:
			negative++
		default:
			neutral++
		}
	}

	stats := models.StudentAttitudeStats{
		AnalyzedStudentCount:     len(tallies),
		TotalStudentsInInstitute: len(activeStudents),
	}
	if analyzed := len(tallies); analyzed > 0 {
		stats.PositivePercent = float64(positive) / float64(analyzed) * 100
		stats.NegativePercent = float64(negative) / float64(analyzed) * 100
		stats.NeutralPercent = float64(neutral) / float64(analyzed) * 100
	}
	return stats, nil
}
