package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/noah-isme/mindsetu-api/internal/models"
	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
	"github.com/noah-isme/mindsetu-api/pkg/kvstore"
)

// KeyAssignments is the logical key holding the assignment collection.
const KeyAssignments = "assignments"

// AssignmentRepository stores assignments as a single JSON collection.
// Assignments are append-only and immutable once created.
type AssignmentRepository struct {
	store kvstore.Store
	mu    sync.RWMutex
}

// NewAssignmentRepository constructs an assignment repository.
func NewAssignmentRepository(store kvstore.Store) *AssignmentRepository {
	return &AssignmentRepository{store: store}
}

// Create appends a new assignment to the collection.
func (r *AssignmentRepository) Create(ctx context.Context, assignment models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var assignments []models.Assignment
	if _, err := kvstore.GetJSON(ctx, r.store, KeyAssignments, &assignments); err != nil {
		return err
	}
	assignments = append(assignments, assignment)
	return kvstore.SetJSON(ctx, r.store, KeyAssignments, assignments)
}

// ListByInstitute returns the institute's assignments, newest created first.
func (r *AssignmentRepository) ListByInstitute(ctx context.Context, instituteName string) ([]models.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var assignments []models.Assignment
	if _, err := kvstore.GetJSON(ctx, r.store, KeyAssignments, &assignments); err != nil {
		return nil, err
	}

	filtered := make([]models.Assignment, 0, len(assignments))
	for _, assignment := range assignments {
		if assignment.InstituteName == instituteName {
			filtered = append(filtered, assignment)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	return filtered, nil
}

// FindByID returns the assignment with the given id inside the institute.
func (r *AssignmentRepository) FindByID(ctx context.Context, id, instituteName string) (*models.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var assignments []models.Assignment
	if _, err := kvstore.GetJSON(ctx, r.store, KeyAssignments, &assignments); err != nil {
		return nil, err
	}
	for i := range assignments {
		if assignments[i].ID == id && assignments[i].InstituteName == instituteName {
			found := assignments[i]
			return &found, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
}
