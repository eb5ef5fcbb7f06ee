package service

import (
	"sort"
	"time"

	"github.com/noah-isme/mindsetu-api/internal/models"
)

// BuildDisplayableAssignments joins each assignment with the student's
// submission, if any. A submission fixes the display status; otherwise the
// assignment is Missed once its due date has passed and Pending before that.
// The result is ordered by due date ascending, soonest first, which differs
// deliberately from the store's newest-created-first listing.
func BuildDisplayableAssignments(assignments []models.Assignment, submissions []models.Submission, now time.Time) []models.StudentDisplayableAssignment {
	byAssignment := make(map[string]models.Submission, len(submissions))
	for _, submission := range submissions {
		byAssignment[submission.AssignmentID] = submission
	}

	result := make([]models.StudentDisplayableAssignment, 0, len(assignments))
	for _, assignment := range assignments {
		item := models.StudentDisplayableAssignment{
			Assignment:              assignment,
			StudentSubmissionStatus: models.DisplayPending,
		}
		if submission, ok := byAssignment[assignment.ID]; ok {
			item.StudentSubmissionStatus = displayStatus(submission.Status)
			submittedAt := submission.SubmittedAt
			item.StudentSubmittedAt = &submittedAt
		} else if assignment.DueDate.Before(now) {
			item.StudentSubmissionStatus = models.DisplayMissed
		}
		result = append(result, item)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DueDate.Before(result[j].DueDate)
	})
	return result
}

func displayStatus(status models.SubmissionStatus) models.DisplayStatus {
	if status == models.SubmissionLate {
		return models.DisplayLate
	}
	return models.DisplayOnTime
}

// SubmissionStatusFor classifies a submission instant against the due date.
// The boundary case submittedAt == dueDate counts as on time.
func SubmissionStatusFor(submittedAt, dueDate time.Time) models.SubmissionStatus {
	if submittedAt.After(dueDate) {
		return models.SubmissionLate
	}
	return models.SubmissionOnTime
}
