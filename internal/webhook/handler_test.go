package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitelis_backend/internal/adapters/storage"
	analysesrepo "vitelis_backend/internal/analyses/repository"
	analyses "vitelis_backend/internal/analyses/transport"
	apphttp "vitelis_backend/internal/http"
	reports "vitelis_backend/internal/reports/transport"
	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/httpkit"
	"vitelis_backend/platform/logger"
	"vitelis_backend/platform/validator"
)

const testSecret = "s3cret"

type fakeAnalyses struct {
	known     map[string]string
	yamlKeys  map[string]string
	progress  []int
	panicking bool
}

func newFakeAnalyses() *fakeAnalyses {
	return &fakeAnalyses{
		known:    map[string]string{"exec-1": analysesrepo.KindVitelisSales, "exec-2": analysesrepo.KindAnalyze},
		yamlKeys: map[string]string{},
	}
}

func (f *fakeAnalyses) lookup(executionID string) (string, error) {
	kind, ok := f.known[executionID]
	if !ok {
		return "", apperr.NotFound("no analysis for executionId")
	}
	return kind, nil
}

func (f *fakeAnalyses) UpdateProgress(_ context.Context, cb analyses.ProgressCallback) (analyses.CallbackResponse, error) {
	if f.panicking {
		panic("boom")
	}
	if _, err := f.lookup(cb.ExecutionID); err != nil {
		return analyses.CallbackResponse{}, err
	}
	f.progress = append(f.progress, *cb.Step)
	return analyses.CallbackResponse{Status: analysesrepo.StatusProgress, Applied: true}, nil
}

func (f *fakeAnalyses) UpdateResult(_ context.Context, cb analyses.ResultCallback) (analyses.CallbackResponse, error) {
	if _, err := f.lookup(cb.ExecutionID); err != nil {
		return analyses.CallbackResponse{}, err
	}
	return analyses.CallbackResponse{Status: analysesrepo.StatusFinished, Applied: true}, nil
}

func (f *fakeAnalyses) UpdateSalesResult(_ context.Context, cb analyses.SalesResultCallback) (analyses.CallbackResponse, error) {
	if _, err := f.lookup(cb.ExecutionID); err != nil {
		return analyses.CallbackResponse{}, err
	}
	return analyses.CallbackResponse{Status: analysesrepo.StatusFinished, Applied: true}, nil
}

func (f *fakeAnalyses) UpdateYAMLResult(_ context.Context, executionID, fileKey string) (analyses.CallbackResponse, error) {
	f.yamlKeys[executionID] = fileKey
	return analyses.CallbackResponse{Status: analysesrepo.StatusFinished, Applied: true}, nil
}

func (f *fakeAnalyses) RequireSalesExecution(_ context.Context, executionID string) (analysesrepo.Analysis, error) {
	kind, err := f.lookup(executionID)
	if err != nil {
		return analysesrepo.Analysis{}, err
	}
	if kind != analysesrepo.KindVitelisSales {
		return analysesrepo.Analysis{}, apperr.Validation("executionId does not belong to a VitelisSales analysis")
	}
	return analysesrepo.Analysis{Kind: kind}, nil
}

func (f *fakeAnalyses) MarkError(_ context.Context, cb analyses.ErrorCallback) (analyses.CallbackResponse, error) {
	if _, err := f.lookup(cb.ExecutionID); err != nil {
		return analyses.CallbackResponse{}, err
	}
	return analyses.CallbackResponse{Status: analysesrepo.StatusError, Applied: true, Refunded: true}, nil
}

type fakeSteps struct {
	source string
}

func (f *fakeSteps) UpdateStepStatus(_ context.Context, _ uuid.UUID, req reports.UpdateStepStatusRequest, source string) (reports.MatrixCell, error) {
	f.source = source
	return reports.MatrixCell{StepID: req.StepID, Status: req.Status}, nil
}

type fakeStore struct {
	uploads map[string][]byte
}

func (f *fakeStore) Upload(_ context.Context, folder, fileName, _ string, reader io.Reader, _ int64) (string, error) {
	data, _ := io.ReadAll(reader)
	key := storage.ObjectKey(folder, fileName, uuid.New())
	f.uploads[key] = data
	return key, nil
}

func (f *fakeStore) Open(context.Context, string) (storage.Object, error) {
	return storage.Object{}, apperr.NotFound("file not found")
}

func (f *fakeStore) PresignDownload(context.Context, string) (storage.PresignedURL, error) {
	return storage.PresignedURL{}, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	delete(f.uploads, key)
	return nil
}

func (f *fakeStore) ValidateContentType(string) error { return nil }
func (f *fakeStore) ValidateFileSize(int64) error     { return nil }
func (f *fakeStore) MaxFileSize() int64               { return 1 << 20 }

type secretConfig string

func (s secretConfig) GetWebhookSharedSecret() string { return string(s) }

type fixture struct {
	engine   *gin.Engine
	analyses *fakeAnalyses
	steps    *fakeSteps
	store    *fakeStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := fixture{
		engine:   gin.New(),
		analyses: newFakeAnalyses(),
		steps:    &fakeSteps{},
		store:    &fakeStore{uploads: map[string][]byte{}},
	}
	module := NewModule(f.analyses, f.steps, f.store, secretConfig(testSecret), validator.New(), logger.Discard())
	module.RegisterRoutes(&apphttp.RouterContext{Engine: f.engine, V1: f.engine.Group("/api/v1")})
	return f
}

func (f fixture) postJSON(t *testing.T, path string, body interface{}, secret string) httpkit.WebhookResponse {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SecretHeader, secret)
	return f.do(t, req)
}

func (f fixture) do(t *testing.T, req *http.Request) httpkit.WebhookResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpkit.WebhookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWrongSecretIsRejectedWithSuccessFalse(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/api/v1/webhooks/progress", gin.H{"executionId": "exec-1", "step": 1}, "nope")

	assert.False(t, resp.Success)
	assert.Equal(t, "unauthorized", resp.Kind)
	assert.Empty(t, f.analyses.progress)
}

func TestProgressCallbackIsApplied(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/api/v1/webhooks/progress", gin.H{"executionId": "exec-1", "step": 4}, testSecret)

	assert.True(t, resp.Success)
	assert.Equal(t, []int{4}, f.analyses.progress)
}

func TestUnknownExecutionIDReportsNotFound(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/api/v1/webhooks/error", gin.H{"executionId": "missing", "message": "x"}, testSecret)

	assert.False(t, resp.Success)
	assert.Equal(t, "not_found", resp.Kind)
}

func TestMalformedCallbackIsRejected(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/api/v1/webhooks/progress", gin.H{"executionId": "exec-1"}, testSecret)

	assert.False(t, resp.Success)
	assert.Equal(t, "validation", resp.Kind)
}

func TestNegativeStepIsRejected(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/api/v1/webhooks/progress", gin.H{"executionId": "exec-1", "step": -2}, testSecret)

	assert.False(t, resp.Success)
	assert.Equal(t, "validation", resp.Kind)
	assert.Empty(t, f.analyses.progress)
}

func TestResultForUnknownExecutionIDReportsNotFound(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/api/v1/webhooks/result", gin.H{"executionId": "missing", "data": "Report text"}, testSecret)

	assert.False(t, resp.Success)
	assert.Equal(t, "not_found", resp.Kind)
}

func TestPanicInCallbackStillAnswersWithBody(t *testing.T) {
	f := newFixture(t)
	f.analyses.panicking = true

	resp := f.postJSON(t, "/api/v1/webhooks/progress", gin.H{"executionId": "exec-1", "step": 1}, testSecret)

	assert.False(t, resp.Success)
	assert.Equal(t, "internal", resp.Kind)
}

func TestStepStatusCallbackWritesAsEngine(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/api/v1/webhooks/steps/status", gin.H{
		"reportId": uuid.New(), "companyId": uuid.New(), "stepId": uuid.New(), "status": "DONE",
	}, testSecret)

	assert.True(t, resp.Success)
	assert.Equal(t, sourceEngine, f.steps.source)
}

func yamlUpload(t *testing.T, executionID, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField(formExecutionID, executionID))
	part, err := w.CreateFormFile(formFile, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/vitelis-sales/yaml", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set(SecretHeader, testSecret)
	return req
}

func TestSalesYAMLIsStoredUnderExecutionFolder(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, yamlUpload(t, "exec-1", "report.yaml", "company: Acme\nscore: 7\n"))

	require.True(t, resp.Success, resp.Error)
	key := f.analyses.yamlKeys["exec-1"]
	assert.True(t, strings.HasPrefix(key, "vitelis-sales/exec-1/report_"), key)
	assert.Equal(t, "company: Acme\nscore: 7\n", string(f.store.uploads[key]))
}

func TestSalesYAMLRejectsInvalidDocuments(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, yamlUpload(t, "exec-1", "report.yaml", "key: [unclosed"))

	assert.False(t, resp.Success)
	assert.Equal(t, "validation", resp.Kind)
	assert.Empty(t, f.store.uploads)
}

func TestSalesYAMLRejectsOtherExtensions(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, yamlUpload(t, "exec-1", "report.docx", "a: b"))

	assert.False(t, resp.Success)
	assert.Empty(t, f.store.uploads)
}

func TestSalesYAMLRejectsNonSalesAnalyses(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, yamlUpload(t, "exec-2", "report.yaml", "a: b"))

	assert.False(t, resp.Success)
	assert.Equal(t, "validation", resp.Kind)
}
