package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mindsetu-api/internal/dto"
	"github.com/noah-isme/mindsetu-api/internal/models"
	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
	"github.com/noah-isme/mindsetu-api/pkg/jobs"
	"github.com/noah-isme/mindsetu-api/pkg/storage"
)

// inlineDispatcher runs jobs synchronously so tests observe final state.
type inlineDispatcher struct {
	process func(ctx context.Context, job jobs.Job) error
	err     error
}

func (d *inlineDispatcher) Enqueue(job jobs.Job) error {
	if d.err != nil {
		return d.err
	}
	return d.process(context.Background(), job)
}

func newTestReportService(t *testing.T, stats *fakeAssignmentStats, attitude *fakeAttitudeStats) *ReportService {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := NewReportService(stats, attitude, files, signer, ReportServiceConfig{
		APIPrefix: "/api/v1",
		ResultTTL: time.Hour,
	}, nil)
	svc.AttachQueue(&inlineDispatcher{process: svc.Process})
	return svc
}

func TestCreateJobAccessChecks(t *testing.T) {
	svc := newTestReportService(t, &fakeAssignmentStats{}, &fakeAttitudeStats{})

	student := models.User{ID: "s-1", UserType: models.UserTypeStudent, InstituteName: "greenwood high"}
	_, err := svc.CreateJob(context.Background(), student, dto.ReportRequest{Format: models.ReportFormatCSV})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Only Teachers or SuperAdmins can export institute statistics.")

	teacher := models.User{ID: "t-1", UserType: models.UserTypeTeacher, InstituteName: "greenwood high"}
	_, err = svc.CreateJob(context.Background(), teacher, dto.ReportRequest{Format: "xlsx"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReportLifecycleCSV(t *testing.T) {
	stats := &fakeAssignmentStats{stats: models.InstituteAssignmentStats{OnTimePercent: 75, LatePercent: 25, MissedPercent: 10, StudentsWithPastDueWork: 4}}
	attitude := &fakeAttitudeStats{stats: models.StudentAttitudeStats{PositivePercent: 50, AnalyzedStudentCount: 8}}
	svc := newTestReportService(t, stats, attitude)

	teacher := models.User{ID: "t-1", UserType: models.UserTypeTeacher, InstituteName: "greenwood high"}
	job, err := svc.CreateJob(context.Background(), teacher, dto.ReportRequest{Format: models.ReportFormatCSV})
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)

	status, err := svc.GetStatus(context.Background(), teacher, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, status.Status)
	require.NotEmpty(t, status.ResultURL)
	assert.True(t, strings.HasPrefix(status.ResultURL, "/api/v1/reports/download/"))

	token := status.ResultURL[strings.LastIndex(status.ResultURL, "/")+1:]
	download, err := svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()

	assert.Equal(t, models.ReportFormatCSV, download.Format)
	content, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Metric,Value")
	assert.Contains(t, string(content), "On-Time Submissions (%)")
	assert.Contains(t, string(content), "75.00")
}

func TestReportLifecyclePDF(t *testing.T) {
	svc := newTestReportService(t, &fakeAssignmentStats{}, &fakeAttitudeStats{})

	admin := models.User{ID: "a-1", UserType: models.UserTypeSuperAdmin, InstituteName: "greenwood high"}
	job, err := svc.CreateJob(context.Background(), admin, dto.ReportRequest{Format: models.ReportFormatPDF})
	require.NoError(t, err)

	status, err := svc.GetStatus(context.Background(), admin, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, status.Status)
}

func TestGetStatusScoping(t *testing.T) {
	svc := newTestReportService(t, &fakeAssignmentStats{}, &fakeAttitudeStats{})

	owner := models.User{ID: "t-1", UserType: models.UserTypeTeacher, InstituteName: "greenwood high"}
	job, err := svc.CreateJob(context.Background(), owner, dto.ReportRequest{Format: models.ReportFormatCSV})
	require.NoError(t, err)

	// Another teacher in the same institute cannot read the job.
	other := models.User{ID: "t-2", UserType: models.UserTypeTeacher, InstituteName: "greenwood high"}
	_, err = svc.GetStatus(context.Background(), other, job.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	// A SuperAdmin from a different institute gets not-found.
	outsider := models.User{ID: "a-9", UserType: models.UserTypeSuperAdmin, InstituteName: "riverside"}
	_, err = svc.GetStatus(context.Background(), outsider, job.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	// The institute's SuperAdmin can read any teacher's job.
	admin := models.User{ID: "a-1", UserType: models.UserTypeSuperAdmin, InstituteName: "greenwood high"}
	status, err := svc.GetStatus(context.Background(), admin, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, status.ID)
}

func TestCreateJobEnqueueFailureMarksJobFailed(t *testing.T) {
	svc := newTestReportService(t, &fakeAssignmentStats{}, &fakeAttitudeStats{})
	svc.AttachQueue(&inlineDispatcher{err: assert.AnError})

	teacher := models.User{ID: "t-1", UserType: models.UserTypeTeacher, InstituteName: "greenwood high"}
	_, err := svc.CreateJob(context.Background(), teacher, dto.ReportRequest{Format: models.ReportFormatCSV})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestResolveDownloadRejectsBadToken(t *testing.T) {
	svc := newTestReportService(t, &fakeAssignmentStats{}, &fakeAttitudeStats{})

	_, err := svc.ResolveDownload(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}
