package models

import "time"

// ReportFormat selects the rendered output type.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Valid reports whether the format is supported.
func (f ReportFormat) Valid() bool {
	return f == ReportFormatCSV || f == ReportFormatPDF
}

// ReportStatus tracks a report job through its lifecycle.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "queued"
	ReportStatusProcessing ReportStatus = "processing"
	ReportStatusFinished   ReportStatus = "finished"
	ReportStatusFailed     ReportStatus = "failed"
)

// StatsReportJob is a background export of institute statistics.
type StatsReportJob struct {
	ID            string       `json:"id"`
	InstituteName string       `json:"instituteName"`
	Format        ReportFormat `json:"format"`
	Status        ReportStatus `json:"status"`
	RequestedBy   string       `json:"requestedBy"`
	ResultURL     string       `json:"resultUrl,omitempty"`
	ErrorMessage  string       `json:"errorMessage,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	FinishedAt    *time.Time   `json:"finishedAt,omitempty"`
}
