package models

import "time"

// SubmissionStatus is fixed when a submission is recorded, by comparing the
// submission instant against the assignment due date.
type SubmissionStatus string

const (
	SubmissionOnTime SubmissionStatus = "On-Time"
	SubmissionLate   SubmissionStatus = "Late"
)

// DisplayStatus is the per-student view of an assignment.
type DisplayStatus string

const (
	DisplayPending DisplayStatus = "Pending"
	DisplayOnTime  DisplayStatus = "On-Time"
	DisplayLate    DisplayStatus = "Late"
	DisplayMissed  DisplayStatus = "Missed"
)

// Assignment is immutable once created and owned by its institute.
type Assignment struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	DueDate       time.Time `json:"dueDate"`
	InstituteName string    `json:"instituteName"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Submission records one student marking one assignment as done. At most one
// submission exists per (assignment, student) pair.
type Submission struct {
	ID            string           `json:"id"`
	AssignmentID  string           `json:"assignmentId"`
	StudentID     string           `json:"studentId"`
	InstituteName string           `json:"instituteName"`
	SubmittedAt   time.Time        `json:"submittedAt"`
	Status        SubmissionStatus `json:"status"`
}

// StudentDisplayableAssignment joins an assignment with the calling
// student's submission outcome. Never persisted, recomputed per query.
type StudentDisplayableAssignment struct {
	Assignment
	StudentSubmissionStatus DisplayStatus `json:"studentSubmissionStatus"`
	StudentSubmittedAt      *time.Time    `json:"studentSubmittedAt,omitempty"`
}

// AlertType classifies assignment alerts for display, ordered by severity.
type AlertType string

const (
	AlertError   AlertType = "error"
	AlertWarning AlertType = "warning"
	AlertInfo    AlertType = "info"
	AlertSuccess AlertType = "success"
)

// SeverityRank returns the display ordering rank, most urgent first.
func (t AlertType) SeverityRank() int {
	switch t {
	case AlertError:
		return 0
	case AlertWarning:
		return 1
	case AlertInfo:
		return 2
	case AlertSuccess:
		return 3
	}
	return 4
}

// AssignmentAlert is an ephemeral per-request notification. Never persisted.
type AssignmentAlert struct {
	ID           string     `json:"id"`
	AssignmentID string     `json:"assignmentId"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Type         AlertType  `json:"type"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
}

// CreateAssignmentRequest carries the creation payload. DueDate is a
// calendar date; the store normalizes it to end of day UTC.
type CreateAssignmentRequest struct {
	Title   string `json:"title" validate:"required"`
	DueDate string `json:"dueDate" validate:"required"`
}
