package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/noah-isme/mindsetu-api/internal/models"
	"github.com/noah-isme/mindsetu-api/pkg/kvstore"
)

// KeyJournalEntries is the logical key holding the mood journal collection.
const KeyJournalEntries = "journal_entries"

// JournalRepository stores mood entries as a single JSON collection.
type JournalRepository struct {
	store kvstore.Store
	mu    sync.RWMutex
}

// NewJournalRepository constructs a journal repository.
func NewJournalRepository(store kvstore.Store) *JournalRepository {
	return &JournalRepository{store: store}
}

// Create appends a new mood entry.
func (r *JournalRepository) Create(ctx context.Context, entry models.MoodEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []models.MoodEntry
	if _, err := kvstore.GetJSON(ctx, r.store, KeyJournalEntries, &entries); err != nil {
		return err
	}
	entries = append(entries, entry)
	return kvstore.SetJSON(ctx, r.store, KeyJournalEntries, entries)
}

// ListByStudent returns the student's entries in the institute, newest first.
func (r *JournalRepository) ListByStudent(ctx context.Context, userID, instituteName string) ([]models.MoodEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []models.MoodEntry
	if _, err := kvstore.GetJSON(ctx, r.store, KeyJournalEntries, &entries); err != nil {
		return nil, err
	}
	filtered := make([]models.MoodEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.UserID == userID && entry.InstituteName == instituteName {
			filtered = append(filtered, entry)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.After(filtered[j].Date)
	})
	return filtered, nil
}

// ListByInstitute returns every entry written inside the institute.
func (r *JournalRepository) ListByInstitute(ctx context.Context, instituteName string) ([]models.MoodEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []models.MoodEntry
	if _, err := kvstore.GetJSON(ctx, r.store, KeyJournalEntries, &entries); err != nil {
		return nil, err
	}
	filtered := make([]models.MoodEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.InstituteName == instituteName {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}
