package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/mindsetu-api/internal/models"
	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
)

type assignmentRepository interface {
	Create(ctx context.Context, assignment models.Assignment) error
	ListByInstitute(ctx context.Context, instituteName string) ([]models.Assignment, error)
	FindByID(ctx context.Context, id, instituteName string) (*models.Assignment, error)
}

type submissionRepository interface {
	Create(ctx context.Context, submission models.Submission) error
	ListByStudent(ctx context.Context, studentID, instituteName string) ([]models.Submission, error)
	ListByInstitute(ctx context.Context, instituteName string) ([]models.Submission, error)
}

// StudentAssignmentFeed bundles the per-student projection with its alerts.
type StudentAssignmentFeed struct {
	Assignments []models.StudentDisplayableAssignment `json:"assignments"`
	Alerts      []models.AssignmentAlert              `json:"alerts"`
}

// AssignmentService owns the assignment lifecycle: creation by staff,
// institute-scoped listing, and student submissions.
type AssignmentService struct {
	assignments assignmentRepository
	submissions submissionRepository
	validator   *validator.Validate
	logger      *zap.Logger
	windows     AlertWindows
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(assignments assignmentRepository, submissions submissionRepository, validate *validator.Validate, logger *zap.Logger, windows AlertWindows) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if windows.Upcoming <= 0 {
		windows = DefaultAlertWindows()
	}
	return &AssignmentService{
		assignments: assignments,
		submissions: submissions,
		validator:   validate,
		logger:      logger,
		windows:     windows,
		now:         time.Now,
	}
}

// Create records a new assignment in the creator's institute. The due date
// is a calendar date normalized to 23:59:59.999 UTC of that day.
func (s *AssignmentService) Create(ctx context.Context, creator models.User, req models.CreateAssignmentRequest) (*models.Assignment, string, error) {
	if !creator.IsStaff() {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "Unauthorized: Only Teachers or SuperAdmins can create assignments.")
	}
	if strings.TrimSpace(req.Title) == "" || req.DueDate == "" {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "Title and Due Date are required.")
	}

	day, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid due date, expected YYYY-MM-DD")
	}
	dueDate := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)

	assignment := models.Assignment{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(req.Title),
		DueDate:       dueDate,
		InstituteName: creator.InstituteName,
		CreatedBy:     creator.ID,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store assignment")
	}

	s.logger.Info("assignment created",
		zap.String("assignment_id", assignment.ID),
		zap.String("institute", assignment.InstituteName),
		zap.Time("due_date", assignment.DueDate),
	)
	return &assignment, "Assignment created successfully.", nil
}

// ListForInstitute returns the institute's assignments, newest first.
func (s *AssignmentService) ListForInstitute(ctx context.Context, instituteName string) ([]models.Assignment, error) {
	assignments, err := s.assignments.ListByInstitute(ctx, instituteName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// ListSubmissionsForStudent returns the student's submissions in the institute.
func (s *AssignmentService) ListSubmissionsForStudent(ctx context.Context, studentID, instituteName string) ([]models.Submission, error) {
	submissions, err := s.submissions.ListByStudent(ctx, studentID, instituteName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return submissions, nil
}

// ListSubmissionsForInstitute returns every submission in the institute.
func (s *AssignmentService) ListSubmissionsForInstitute(ctx context.Context, instituteName string) ([]models.Submission, error) {
	submissions, err := s.submissions.ListByInstitute(ctx, instituteName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return submissions, nil
}

// AddSubmission records a student marking an assignment as submitted. The
// status is fixed here by comparing the submission instant to the due date;
// a second submission for the same pair is rejected.
func (s *AssignmentService) AddSubmission(ctx context.Context, studentID, assignmentID, instituteName string) (*models.Submission, string, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID, instituteName)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNotFound) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "Assignment not found.")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	submittedAt := s.now().UTC()
	submission := models.Submission{
		ID:            uuid.NewString(),
		AssignmentID:  assignment.ID,
		StudentID:     studentID,
		InstituteName: instituteName,
		SubmittedAt:   submittedAt,
		Status:        SubmissionStatusFor(submittedAt, assignment.DueDate),
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		if appErrors.Is(err, appErrors.ErrAlreadySubmitted) {
			return nil, "", appErrors.Clone(appErrors.ErrAlreadySubmitted, "You have already submitted this assignment.")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store submission")
	}

	message := fmt.Sprintf("Assignment submitted %s.", strings.ToLower(string(submission.Status)))
	return &submission, message, nil
}

// StudentFeed composes the displayable projection and the derived alerts
// for the calling student.
func (s *AssignmentService) StudentFeed(ctx context.Context, studentID, instituteName string) (*StudentAssignmentFeed, error) {
	assignments, err := s.ListForInstitute(ctx, instituteName)
	if err != nil {
		return nil, err
	}
	submissions, err := s.ListSubmissionsForStudent(ctx, studentID, instituteName)
	if err != nil {
		return nil, err
	}

	now := s.now()
	displayable := BuildDisplayableAssignments(assignments, submissions, now)
	alerts := GenerateAssignmentAlerts(studentID, displayable, now, s.windows)
	return &StudentAssignmentFeed{Assignments: displayable, Alerts: alerts}, nil
}
