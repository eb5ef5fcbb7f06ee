package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/mindsetu-api/internal/models"
)

// AlertWindows tunes the time windows used for alert generation.
type AlertWindows struct {
	// Upcoming is how far ahead of the due date a pending assignment
	// triggers a reminder.
	Upcoming time.Duration
	// RecentSubmission is how long after submitting the confirmation
	// alert keeps showing.
	RecentSubmission time.Duration
}

// DefaultAlertWindows matches the product defaults: a two day reminder
// horizon and a one day submission confirmation.
func DefaultAlertWindows() AlertWindows {
	return AlertWindows{Upcoming: 48 * time.Hour, RecentSubmission: 24 * time.Hour}
}

// GenerateAssignmentAlerts derives ephemeral notifications from the
// student's displayable assignments, evaluated against now:
//
//   - Pending and due inside the upcoming window (inclusive) → warning.
//   - Missed → error, with no time window.
//   - Submitted inside the recent window → success when on time, info when late.
//
// The output is ordered by severity (error, warning, info, success), then by
// due date ascending when both alerts carry one; alerts without a due date
// keep insertion order relative to ties.
func GenerateAssignmentAlerts(studentID string, assignments []models.StudentDisplayableAssignment, now time.Time, windows AlertWindows) []models.AssignmentAlert {
	if windows.Upcoming <= 0 {
		windows = DefaultAlertWindows()
	}
	horizon := now.Add(windows.Upcoming)

	alerts := make([]models.AssignmentAlert, 0, len(assignments))
	for _, assignment := range assignments {
		dueDate := assignment.DueDate

		switch assignment.StudentSubmissionStatus {
		case models.DisplayPending:
			if !dueDate.Before(now) && !dueDate.After(horizon) {
				alerts = append(alerts, models.AssignmentAlert{
					ID:           "alert_upcoming_" + assignment.ID,
					AssignmentID: assignment.ID,
					Title:        assignment.Title,
					Message:      fmt.Sprintf("Reminder: %q is due on %s.", assignment.Title, dueDate.Format("Jan 2, 2006")),
					Type:         models.AlertWarning,
					DueDate:      &dueDate,
				})
			}
		case models.DisplayMissed:
			alerts = append(alerts, models.AssignmentAlert{
				ID:           "alert_missed_" + assignment.ID,
				AssignmentID: assignment.ID,
				Title:        assignment.Title,
				Message:      fmt.Sprintf("Attention: You missed the deadline for %q which was due on %s.", assignment.Title, dueDate.Format("Jan 2, 2006")),
				Type:         models.AlertError,
				DueDate:      &dueDate,
			})
		}

		if assignment.StudentSubmittedAt == nil {
			continue
		}
		if now.Sub(*assignment.StudentSubmittedAt) >= windows.RecentSubmission {
			continue
		}
		switch assignment.StudentSubmissionStatus {
		case models.DisplayOnTime:
			alerts = append(alerts, models.AssignmentAlert{
				ID:           "alert_submitted_ontime_" + assignment.ID,
				AssignmentID: assignment.ID,
				Title:        assignment.Title,
				Message:      fmt.Sprintf("Great job! You submitted %q on time.", assignment.Title),
				Type:         models.AlertSuccess,
			})
		case models.DisplayLate:
			alerts = append(alerts, models.AssignmentAlert{
				ID:           "alert_submitted_late_" + assignment.ID,
				AssignmentID: assignment.ID,
				Title:        assignment.Title,
				Message:      fmt.Sprintf("You submitted %q late. Remember to check due dates.", assignment.Title),
				Type:         models.AlertInfo,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Type.SeverityRank() != alerts[j].Type.SeverityRank() {
			return alerts[i].Type.SeverityRank() < alerts[j].Type.SeverityRank()
		}
		if alerts[i].DueDate != nil && alerts[j].DueDate != nil {
			return alerts[i].DueDate.Before(*alerts[j].DueDate)
		}
		return false
	})
	return alerts
}
