package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mindsetu-api/internal/middleware"
	"github.com/noah-isme/mindsetu-api/internal/repository"
	"github.com/noah-isme/mindsetu-api/internal/service"
	"github.com/noah-isme/mindsetu-api/pkg/jobs"
	"github.com/noah-isme/mindsetu-api/pkg/kvstore"
	"github.com/noah-isme/mindsetu-api/pkg/response"
	"github.com/noah-isme/mindsetu-api/pkg/storage"
)

const testPrefix = "/api/v1"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := kvstore.NewMemoryStore()
	userRepo := repository.NewUserRepository(store)
	assignmentRepo := repository.NewAssignmentRepository(store)
	submissionRepo := repository.NewSubmissionRepository(store)
	journalRepo := repository.NewJournalRepository(store)

	authSvc := service.NewAuthService(userRepo, nil, nil, service.AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "test",
	})
	assignmentSvc := service.NewAssignmentService(assignmentRepo, submissionRepo, nil, nil, service.DefaultAlertWindows())
	statsSvc := service.NewStatsService(userRepo, assignmentRepo, submissionRepo, nil)
	journalSvc := service.NewJournalService(journalRepo, userRepo, nil, nil, 0)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Stats:    statsSvc,
		Attitude: journalSvc,
		Metrics:  service.NewMetricsService(),
	})

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	reportSvc := service.NewReportService(statsSvc, journalSvc, files, signer, service.ReportServiceConfig{
		APIPrefix: testPrefix,
		ResultTTL: time.Hour,
	}, nil)
	reportSvc.AttachQueue(&syncDispatcher{svc: reportSvc})

	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	RegisterRoutes(r, testPrefix, Handlers{
		Auth:       NewAuthHandler(authSvc),
		Users:      NewUserHandler(authSvc),
		Assignment: NewAssignmentHandler(assignmentSvc, dashboardSvc),
		Dashboard:  NewDashboardHandler(dashboardSvc, statsSvc),
		Journal:    NewJournalHandler(journalSvc),
		Reports:    NewReportHandler(reportSvc),
	}, authSvc)
	return r
}

type syncDispatcher struct {
	svc *service.ReportService
}

func (d *syncDispatcher) Enqueue(job jobs.Job) error {
	return d.svc.Process(context.Background(), job)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, response.Envelope) {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope response.Envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &envelope)
	}
	return w, envelope
}

func signupAndLogin(t *testing.T, r *gin.Engine, userType, email, institute string) string {
	t.Helper()
	w, env := doJSON(t, r, http.MethodPost, testPrefix+"/auth/signup", "", map[string]interface{}{
		"firstName":       "Test",
		"email":           email,
		"password":        "secret1",
		"confirmPassword": "secret1",
		"userType":        userType,
		"instituteName":   institute,
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	return login(t, r, email, institute)
}

func login(t *testing.T, r *gin.Engine, email, institute string) string {
	t.Helper()
	w, env := doJSON(t, r, http.MethodPost, testPrefix+"/auth/login", "", map[string]interface{}{
		"email":         email,
		"password":      "secret1",
		"instituteName": institute,
	})
	require.Equal(t, http.StatusOK, w.Code, env.Error)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	token, _ := data["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRoutesRequireAuthentication(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodGet, testPrefix+"/assignments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
}

func TestSignupLoginAssignmentFlow(t *testing.T) {
	r := newTestRouter(t)

	adminToken := signupAndLogin(t, r, "SuperAdmin", "admin@greenwood.edu", "Greenwood High")

	// Pre-register and activate a student, then log them in.
	w, env := doJSON(t, r, http.MethodPost, testPrefix+"/users/students", adminToken, map[string]interface{}{
		"firstName": "Sam",
		"email":     "sam@greenwood.edu",
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Error)

	w, env = doJSON(t, r, http.MethodPost, testPrefix+"/auth/signup", "", map[string]interface{}{
		"firstName":       "Sam",
		"email":           "sam@greenwood.edu",
		"password":        "secret1",
		"confirmPassword": "secret1",
		"userType":        "Student",
		"instituteName":   "Greenwood High",
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	assert.Contains(t, env.Message, "Student account activated!")
	studentToken := login(t, r, "sam@greenwood.edu", "Greenwood High")

	// Staff creates an assignment; the student cannot.
	w, env = doJSON(t, r, http.MethodPost, testPrefix+"/assignments", adminToken, map[string]interface{}{
		"title":   "Algebra Homework",
		"dueDate": "2030-01-15",
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	created, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assignmentID, _ := created["id"].(string)
	require.NotEmpty(t, assignmentID)

	w, _ = doJSON(t, r, http.MethodPost, testPrefix+"/assignments", studentToken, map[string]interface{}{
		"title":   "Should Fail",
		"dueDate": "2030-01-15",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Student submits once, then gets a conflict.
	submitPath := fmt.Sprintf("%s/assignments/%s/submissions", testPrefix, assignmentID)
	w, env = doJSON(t, r, http.MethodPost, submitPath, studentToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	assert.Equal(t, "Assignment submitted on-time.", env.Message)

	w, env = doJSON(t, r, http.MethodPost, submitPath, studentToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "You have already submitted this assignment.", env.Error)

	// Feed reflects the submitted assignment.
	w, env = doJSON(t, r, http.MethodGet, testPrefix+"/assignments/feed", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assignments, _ := feed["assignments"].([]interface{})
	require.Len(t, assignments, 1)
}

func TestDashboardAccessControl(t *testing.T) {
	r := newTestRouter(t)

	adminToken := signupAndLogin(t, r, "SuperAdmin", "admin@greenwood.edu", "Greenwood High")

	w, env := doJSON(t, r, http.MethodGet, testPrefix+"/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	overview, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "greenwood high", overview["instituteName"])
	require.NotNil(t, env.Meta)
	assert.Equal(t, false, env.Meta["cache_hit"])
	assert.Contains(t, env.Meta, "processing_time_ms")

	w, _ = doJSON(t, r, http.MethodGet, testPrefix+"/dashboard/system", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJournalEndpointsStudentOnly(t *testing.T) {
	r := newTestRouter(t)

	adminToken := signupAndLogin(t, r, "SuperAdmin", "admin@greenwood.edu", "Greenwood High")
	w, _ := doJSON(t, r, http.MethodPost, testPrefix+"/journal", adminToken, map[string]interface{}{
		"mood": "Happy",
		"text": "all good",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReportEndToEnd(t *testing.T) {
	r := newTestRouter(t)

	adminToken := signupAndLogin(t, r, "SuperAdmin", "admin@greenwood.edu", "Greenwood High")

	w, env := doJSON(t, r, http.MethodPost, testPrefix+"/reports", adminToken, map[string]interface{}{
		"format": "csv",
	})
	require.Equal(t, http.StatusAccepted, w.Code, env.Error)
	job, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	jobID, _ := job["id"].(string)
	require.NotEmpty(t, jobID)

	w, env = doJSON(t, r, http.MethodGet, testPrefix+"/reports/"+jobID, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	status, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "finished", status["status"])
	resultURL, _ := status["resultUrl"].(string)
	require.NotEmpty(t, resultURL)

	// Download is public; the signed token carries the authorization.
	req := httptest.NewRequest(http.MethodGet, resultURL, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, rec.Body.String(), "Metric,Value")
}
