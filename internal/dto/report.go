package dto

import "github.com/noah-isme/mindsetu-api/internal/models"

// ReportRequest asks for an institute statistics export.
type ReportRequest struct {
	Format models.ReportFormat `json:"format" validate:"required"`
}

// ReportJobResponse acknowledges a queued report.
type ReportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ReportStatus `json:"status"`
}

// ReportStatusResponse exposes report job progress to clients.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	ResultURL string              `json:"resultUrl,omitempty"`
	Error     string              `json:"error,omitempty"`
}
