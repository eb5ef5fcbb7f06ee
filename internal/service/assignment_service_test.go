package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mindsetu-api/internal/models"
	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
)

type mockAssignmentRepo struct {
	assignments []models.Assignment
	createErr   error
}

func (m *mockAssignmentRepo) Create(ctx context.Context, assignment models.Assignment) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.assignments = append(m.assignments, assignment)
	return nil
}

func (m *mockAssignmentRepo) ListByInstitute(ctx context.Context, instituteName string) ([]models.Assignment, error) {
	var list []models.Assignment
	for _, a := range m.assignments {
		if a.InstituteName == instituteName {
			list = append(list, a)
		}
	}
	return list, nil
}

func (m *mockAssignmentRepo) FindByID(ctx context.Context, id, instituteName string) (*models.Assignment, error) {
	for _, a := range m.assignments {
		if a.ID == id && a.InstituteName == instituteName {
			found := a
			return &found, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
}

type mockSubmissionRepo struct {
	submissions []models.Submission
}

func (m *mockSubmissionRepo) Create(ctx context.Context, submission models.Submission) error {
	for _, s := range m.submissions {
		if s.AssignmentID == submission.AssignmentID && s.StudentID == submission.StudentID {
			return appErrors.ErrAlreadySubmitted
		}
	}
	m.submissions = append(m.submissions, submission)
	return nil
}

func (m *mockSubmissionRepo) ListByStudent(ctx context.Context, studentID, instituteName string) ([]models.Submission, error) {
	var list []models.Submission
	for _, s := range m.submissions {
		if s.StudentID == studentID && s.InstituteName == instituteName {
			list = append(list, s)
		}
	}
	return list, nil
}

func (m *mockSubmissionRepo) ListByInstitute(ctx context.Context, instituteName string) ([]models.Submission, error) {
	var list []models.Submission
	for _, s := range m.submissions {
		if s.InstituteName == instituteName {
			list = append(list, s)
		}
	}
	return list, nil
}

func newTestAssignmentService(assignments *mockAssignmentRepo, submissions *mockSubmissionRepo, now time.Time) *AssignmentService {
	svc := NewAssignmentService(assignments, submissions, nil, nil, DefaultAlertWindows())
	svc.now = func() time.Time { return now }
	return svc
}

func staffUser() models.User {
	return models.User{ID: "t-1", UserType: models.UserTypeTeacher, InstituteName: "greenwood high", IsActivated: true}
}

func TestCreateAssignmentNormalizesDueDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	repo := &mockAssignmentRepo{}
	svc := newTestAssignmentService(repo, &mockSubmissionRepo{}, now)

	assignment, message, err := svc.Create(context.Background(), staffUser(), models.CreateAssignmentRequest{
		Title:   "  Algebra Homework  ",
		DueDate: "2026-03-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "Assignment created successfully.", message)
	assert.Equal(t, "Algebra Homework", assignment.Title)
	assert.Equal(t, time.Date(2026, 3, 15, 23, 59, 59, 999000000, time.UTC), assignment.DueDate)
	assert.Equal(t, "greenwood high", assignment.InstituteName)
	assert.Equal(t, "t-1", assignment.CreatedBy)
	require.Len(t, repo.assignments, 1)
}

func TestCreateAssignmentValidation(t *testing.T) {
	svc := newTestAssignmentService(&mockAssignmentRepo{}, &mockSubmissionRepo{}, time.Now())

	student := models.User{ID: "s-1", UserType: models.UserTypeStudent, InstituteName: "greenwood high"}
	_, _, err := svc.Create(context.Background(), student, models.CreateAssignmentRequest{Title: "X", DueDate: "2026-03-15"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized: Only Teachers or SuperAdmins can create assignments.")

	_, _, err = svc.Create(context.Background(), staffUser(), models.CreateAssignmentRequest{Title: "   ", DueDate: "2026-03-15"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Title and Due Date are required.")

	_, _, err = svc.Create(context.Background(), staffUser(), models.CreateAssignmentRequest{Title: "X", DueDate: "15-03-2026"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAddSubmissionStatuses(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assignments := &mockAssignmentRepo{assignments: []models.Assignment{
		{ID: "a-open", InstituteName: "greenwood high", DueDate: now.Add(24 * time.Hour)},
		{ID: "a-yesterday", InstituteName: "greenwood high", DueDate: now.Add(-24 * time.Hour)},
	}}
	submissions := &mockSubmissionRepo{}
	svc := newTestAssignmentService(assignments, submissions, now)

	onTime, message, err := svc.AddSubmission(context.Background(), "stu-1", "a-open", "greenwood high")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionOnTime, onTime.Status)
	assert.Equal(t, "Assignment submitted on-time.", message)

	late, message, err := svc.AddSubmission(context.Background(), "stu-1", "a-yesterday", "greenwood high")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionLate, late.Status)
	assert.Equal(t, "Assignment submitted late.", message)
}

func TestAddSubmissionRejectsDuplicates(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assignments := &mockAssignmentRepo{assignments: []models.Assignment{
		{ID: "a-1", InstituteName: "greenwood high", DueDate: now.Add(24 * time.Hour)},
	}}
	submissions := &mockSubmissionRepo{}
	svc := newTestAssignmentService(assignments, submissions, now)

	_, _, err := svc.AddSubmission(context.Background(), "stu-1", "a-1", "greenwood high")
	require.NoError(t, err)

	_, _, err = svc.AddSubmission(context.Background(), "stu-1", "a-1", "greenwood high")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadySubmitted))
	assert.Contains(t, err.Error(), "You have already submitted this assignment.")
	assert.Len(t, submissions.submissions, 1)
}

func TestAddSubmissionUnknownAssignment(t *testing.T) {
	svc := newTestAssignmentService(&mockAssignmentRepo{}, &mockSubmissionRepo{}, time.Now())

	_, _, err := svc.AddSubmission(context.Background(), "stu-1", "missing", "greenwood high")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Contains(t, err.Error(), "Assignment not found.")
}

func TestStudentFeedComposesProjectionAndAlerts(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assignments := &mockAssignmentRepo{assignments: []models.Assignment{
		{ID: "a-missed", Title: "Missed", InstituteName: "greenwood high", DueDate: now.Add(-24 * time.Hour)},
		{ID: "a-soon", Title: "Soon", InstituteName: "greenwood high", DueDate: now.Add(24 * time.Hour)},
	}}
	submissions := &mockSubmissionRepo{}
	svc := newTestAssignmentService(assignments, submissions, now)

	feed, err := svc.StudentFeed(context.Background(), "stu-1", "greenwood high")
	require.NoError(t, err)
	require.Len(t, feed.Assignments, 2)
	assert.Equal(t, "a-missed", feed.Assignments[0].ID)
	assert.Equal(t, models.DisplayMissed, feed.Assignments[0].StudentSubmissionStatus)

	require.Len(t, feed.Alerts, 2)
	assert.Equal(t, models.AlertError, feed.Alerts[0].Type)
	assert.Equal(t, models.AlertWarning, feed.Alerts[1].Type)
}
