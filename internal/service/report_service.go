package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/mindsetu-api/internal/dto"
	"github.com/noah-isme/mindsetu-api/internal/models"
	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
	"github.com/noah-isme/mindsetu-api/pkg/export"
	"github.com/noah-isme/mindsetu-api/pkg/jobs"
	"github.com/noah-isme/mindsetu-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ReportServiceConfig governs export retention and URLs.
type ReportServiceConfig struct {
	APIPrefix       string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ReportFormat
	ExpiresAt time.Time
}

// ReportService renders institute statistics exports in the background and
// serves them through signed download tokens. Job state lives in memory;
// a restart drops unfinished jobs, which callers handle by re-requesting.
type ReportService struct {
	stats    assignmentStatsProvider
	attitude attitudeStatsProvider
	storage  fileStorage
	queue    jobDispatcher
	signer   *storage.SignedURLSigner
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	cfg      ReportServiceConfig
	now      func() time.Time

	mu   sync.RWMutex
	jobs map[string]*models.StatsReportJob
}

// NewReportService constructs the report service.
func NewReportService(stats assignmentStatsProvider, attitude attitudeStatsProvider, files fileStorage, signer *storage.SignedURLSigner, cfg ReportServiceConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ReportService{
		stats:    stats,
		attitude: attitude,
		storage:  files,
		signer:   signer,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		jobs:     make(map[string]*models.StatsReportJob),
	}
}

// AttachQueue wires the dispatcher that will run Process for queued jobs.
func (s *ReportService) AttachQueue(queue jobDispatcher) {
	s.queue = queue
}

// CreateJob registers and enqueues a statistics export for the institute.
func (s *ReportService) CreateJob(ctx context.Context, actor models.User, req dto.ReportRequest) (*dto.ReportJobResponse, error) {
	if !actor.IsStaff() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Only Teachers or SuperAdmins can export institute statistics.")
	}
	if !req.Format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "report queue not available")
	}

	job := &models.StatsReportJob{
		ID:            uuid.NewString(),
		InstituteName: actor.InstituteName,
		Format:        req.Format,
		Status:        models.ReportStatusQueued,
		RequestedBy:   actor.ID,
		CreatedAt:     s.now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "stats_export"}); err != nil {
		s.finishJob(job.ID, models.ReportStatusFailed, "", "failed to enqueue report job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}
	return &dto.ReportJobResponse{ID: job.ID, Status: job.Status}, nil
}

// GetStatus exposes job metadata, enforcing ownership for teachers.
func (s *ReportService) GetStatus(ctx context.Context, actor models.User, id string) (*dto.ReportStatusResponse, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	var snapshot models.StatsReportJob
	if ok {
		snapshot = *job
	}
	s.mu.RUnlock()
	if !ok || snapshot.InstituteName != actor.InstituteName {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	if actor.UserType == models.UserTypeTeacher && snapshot.RequestedBy != actor.ID {
		return nil, appErrors.ErrForbidden
	}
	return &dto.ReportStatusResponse{
		ID:        snapshot.ID,
		Status:    snapshot.Status,
		ResultURL: snapshot.ResultURL,
		Error:     snapshot.ErrorMessage,
	}, nil
}

// Process renders the export for a queued job. Invoked by queue workers.
func (s *ReportService) Process(ctx context.Context, job jobs.Job) error {
	s.mu.Lock()
	record, ok := s.jobs[job.ID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown report job %s", job.ID)
	}
	record.Status = models.ReportStatusProcessing
	snapshot := *record
	s.mu.Unlock()

	dataset, err := s.buildDataset(ctx, snapshot.InstituteName)
	if err != nil {
		s.finishJob(job.ID, models.ReportStatusFailed, "", err.Error())
		return err
	}

	var payload []byte
	switch snapshot.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		err = fmt.Errorf("unsupported format %s", snapshot.Format)
	}
	if err != nil {
		s.finishJob(job.ID, models.ReportStatusFailed, "", err.Error())
		return err
	}

	filename := fmt.Sprintf("stats_%s_%d.%s",
		strings.ReplaceAll(snapshot.InstituteName, " ", "_"),
		s.now().UTC().Unix(),
		snapshot.Format,
	)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.finishJob(job.ID, models.ReportStatusFailed, "", "failed to store export")
		return err
	}

	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.finishJob(job.ID, models.ReportStatusFailed, "", "failed to sign download token")
		return err
	}
	resultURL := path.Join(s.cfg.APIPrefix, "reports", "download", token)
	s.finishJob(job.ID, models.ReportStatusFinished, resultURL, "")
	s.logger.Info("report rendered",
		zap.String("job_id", job.ID),
		zap.String("institute", snapshot.InstituteName),
		zap.String("format", string(snapshot.Format)),
	)
	return nil
}

// ResolveDownload validates the token and opens the stored export file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	var snapshot models.StatsReportJob
	if ok {
		snapshot = *job
	}
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	if snapshot.Status != models.ReportStatusFinished || !strings.HasSuffix(snapshot.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report not ready")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ReportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    snapshot.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
				if err != nil {
					s.logger.Warn("export cleanup failed", zap.Error(err))
					continue
				}
				if len(removed) > 0 {
					s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
				}
				s.dropExpiredJobs()
			}
		}
	}()
}

func (s *ReportService) dropExpiredJobs() {
	cutoff := s.now().Add(-s.cfg.ResultTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}

func (s *ReportService) finishJob(id string, status models.ReportStatus, resultURL, errMsg string) {
	now := s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	job.Status = status
	job.ResultURL = resultURL
	job.ErrorMessage = errMsg
	job.FinishedAt = &now
}

func (s *ReportService) buildDataset(ctx context.Context, instituteName string) (export.Dataset, error) {
	stats, err := s.stats.ComputeInstituteStats(ctx, instituteName)
	if err != nil {
		return export.Dataset{}, err
	}
	attitude, err := s.attitude.AttitudeStats(ctx, instituteName)
	if err != nil {
		return export.Dataset{}, err
	}

	formatPercent := func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Institute Statistics: %s", instituteName),
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"On-Time Submissions (%)", formatPercent(stats.OnTimePercent)},
			{"Late Submissions (%)", formatPercent(stats.LatePercent)},
			{"Missed Assignments (%)", formatPercent(stats.MissedPercent)},
			{"Students With Past-Due Work", strconv.Itoa(stats.StudentsWithPastDueWork)},
			{"Positive Attitude (%)", formatPercent(attitude.PositivePercent)},
			{"Negative Attitude (%)", formatPercent(attitude.NegativePercent)},
			{"Neutral Attitude (%)", formatPercent(attitude.NeutralPercent)},
			{"Students Analyzed", strconv.Itoa(attitude.AnalyzedStudentCount)},
			{"Active Students", strconv.Itoa(attitude.TotalStudentsInInstitute)},
		},
	}, nil
}
