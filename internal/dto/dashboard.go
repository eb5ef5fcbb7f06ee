package dto

import (
	"time"

	"github.com/noah-isme/mindsetu-api/internal/models"
)

// InstituteOverviewResponse is the staff dashboard payload combining
// assignment statistics with journal-derived attitude analysis.
type InstituteOverviewResponse struct {
	InstituteName   string                          `json:"instituteName"`
	AssignmentStats models.InstituteAssignmentStats `json:"assignmentStats"`
	AttitudeStats   models.StudentAttitudeStats     `json:"attitudeStats"`
	GeneratedAt     time.Time                       `json:"generatedAt"`
}

// SystemStatusResponse exposes runtime metrics for operators.
type SystemStatusResponse struct {
	Metrics models.SystemMetricsSnapshot `json:"metrics"`
}
