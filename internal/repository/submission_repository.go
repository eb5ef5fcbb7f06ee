package repository

import (
	"context"
	"sync"

	"github.com/noah-isme/mindsetu-api/internal/models"
	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
	"github.com/noah-isme/mindsetu-api/pkg/kvstore"
)

// KeySubmissions is the logical key holding the submission collection.
const KeySubmissions = "submissions"

// SubmissionRepository stores submissions as a single JSON collection. The
// duplicate check and the insert run under one lock so a pair can never be
// recorded twice.
type SubmissionRepository struct {
	store kvstore.Store
	mu    sync.RWMutex
}

// NewSubmissionRepository constructs a submission repository.
func NewSubmissionRepository(store kvstore.Store) *SubmissionRepository {
	return &SubmissionRepository{store: store}
}

// Create appends the submission, rejecting a second submission for the same
// (assignment, student) pair.
func (r *SubmissionRepository) Create(ctx context.Context, submission models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var submissions []models.Submission
	if _, err := kvstore.GetJSON(ctx, r.store, KeySubmissions, &submissions); err != nil {
		return err
	}
	for _, existing := range submissions {
		if existing.AssignmentID == submission.AssignmentID && existing.StudentID == submission.StudentID {
			return appErrors.ErrAlreadySubmitted
		}
	}
	submissions = append(submissions, submission)
	return kvstore.SetJSON(ctx, r.store, KeySubmissions, submissions)
}

// ListByStudent returns the student's submissions within the institute.
func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID, instituteName string) ([]models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var submissions []models.Submission
	if _, err := kvstore.GetJSON(ctx, r.store, KeySubmissions, &submissions); err != nil {
		return nil, err
	}
	filtered := make([]models.Submission, 0, len(submissions))
	for _, submission := range submissions {
		if submission.StudentID == studentID && submission.InstituteName == instituteName {
			filtered = append(filtered, submission)
		}
	}
	return filtered, nil
}

// ListByInstitute returns every submission recorded for the institute.
func (r *SubmissionRepository) ListByInstitute(ctx context.Context, instituteName string) ([]models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var submissions []models.Submission
	if _, err := kvstore.GetJSON(ctx, r.store, KeySubmissions, &submissions); err != nil {
		return nil, err
	}
	filtered := make([]models.Submission, 0, len(submissions))
	for _, submission := range submissions {
		if submission.InstituteName == instituteName {
			filtered = append(filtered, submission)
		}
	}
	return filtered, nil
}
