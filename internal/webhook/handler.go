package webhook

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"vitelis_backend/internal/adapters/storage"
	analysesrepo "vitelis_backend/internal/analyses/repository"
	analyses "vitelis_backend/internal/analyses/transport"
	reports "vitelis_backend/internal/reports/transport"
	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/httpkit"
	"vitelis_backend/platform/logger"
	"vitelis_backend/platform/validator"
)

const (
	salesFolder     = "vitelis-sales"
	formExecutionID = "executionId"
	formFile        = "file"
	sourceEngine    = "engine"
)

// AnalysisCallbacks is the analyses side of workflow callbacks.
type AnalysisCallbacks interface {
	UpdateProgress(ctx context.Context, cb analyses.ProgressCallback) (analyses.CallbackResponse, error)
	UpdateResult(ctx context.Context, cb analyses.ResultCallback) (analyses.CallbackResponse, error)
	UpdateSalesResult(ctx context.Context, cb analyses.SalesResultCallback) (analyses.CallbackResponse, error)
	UpdateYAMLResult(ctx context.Context, executionID, fileKey string) (analyses.CallbackResponse, error)
	RequireSalesExecution(ctx context.Context, executionID string) (analysesrepo.Analysis, error)
	MarkError(ctx context.Context, cb analyses.ErrorCallback) (analyses.CallbackResponse, error)
}

// StepStatusWriter is the reports side of engine callbacks.
type StepStatusWriter interface {
	UpdateStepStatus(ctx context.Context, reportID uuid.UUID, req reports.UpdateStepStatusRequest, source string) (reports.MatrixCell, error)
}

// StepStatusCallback is posted by a report engine when a cell changes.
type StepStatusCallback struct {
	ReportID  uuid.UUID `json:"reportId" validate:"required"`
	CompanyID uuid.UUID `json:"companyId" validate:"required"`
	StepID    uuid.UUID `json:"stepId" validate:"required"`
	Status    string    `json:"status" validate:"required,step_status"`
}

// Handler answers workflow and engine callbacks. Every response is HTTP 200;
// the body's success flag tells the sender whether the callback applied.
type Handler struct {
	analyses AnalysisCallbacks
	steps    StepStatusWriter
	store    storage.ObjectStore
	val      *validator.Validator
	log      *logger.Logger
}

// NewHandler creates a webhook handler. store may be nil when object storage
// is not configured; YAML uploads then fail.
func NewHandler(analyses AnalysisCallbacks, steps StepStatusWriter, store storage.ObjectStore, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{analyses: analyses, steps: steps, store: store, val: val, log: log}
}

// HandleProgress records the current workflow step.
// POST /api/v1/webhooks/progress
func (h *Handler) HandleProgress(c *gin.Context) {
	var req analyses.ProgressCallback
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.analyses.UpdateProgress(c.Request.Context(), req)
	h.respond(c, "progress", req.ExecutionID, "progress recorded", resp, err)
}

// HandleResult stores a finished BizMiner or SalesMiner report.
// POST /api/v1/webhooks/result
func (h *Handler) HandleResult(c *gin.Context) {
	var req analyses.ResultCallback
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.analyses.UpdateResult(c.Request.Context(), req)
	h.respond(c, "result", req.ExecutionID, "result stored", resp, err)
}

// HandleSalesResult stores a finished VitelisSales report.
// POST /api/v1/webhooks/vitelis-sales/result
func (h *Handler) HandleSalesResult(c *gin.Context) {
	var req analyses.SalesResultCallback
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.analyses.UpdateSalesResult(c.Request.Context(), req)
	h.respond(c, "vitelis-sales/result", req.ExecutionID, "result stored", resp, err)
}

// HandleSalesYAML uploads the YAML report of a VitelisSales run.
// POST /api/v1/webhooks/vitelis-sales/yaml (multipart: executionId, file)
func (h *Handler) HandleSalesYAML(c *gin.Context) {
	executionID := strings.TrimSpace(c.PostForm(formExecutionID))
	if executionID == "" {
		h.fail(c, "vitelis-sales/yaml", "", apperr.Validation("executionId is required"))
		return
	}
	fileHeader, err := c.FormFile(formFile)
	if err != nil {
		h.fail(c, "vitelis-sales/yaml", executionID, apperr.Validation("file is required"))
		return
	}

	ctx := c.Request.Context()
	if _, err := h.analyses.RequireSalesExecution(ctx, executionID); err != nil {
		h.fail(c, "vitelis-sales/yaml", executionID, err)
		return
	}
	if h.store == nil {
		h.fail(c, "vitelis-sales/yaml", executionID, apperr.Internal("file storage is not configured"))
		return
	}

	data, contentType, err := h.readYAML(fileHeader)
	if err != nil {
		h.fail(c, "vitelis-sales/yaml", executionID, err)
		return
	}

	folder := path.Join(salesFolder, executionID)
	key, err := h.store.Upload(ctx, folder, fileHeader.Filename, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		h.fail(c, "vitelis-sales/yaml", executionID, err)
		return
	}

	resp, err := h.analyses.UpdateYAMLResult(ctx, executionID, key)
	if err != nil {
		if delErr := h.store.Delete(ctx, key); delErr != nil {
			h.log.Error("remove orphaned yaml upload", "error", delErr, "key", key)
		}
		h.fail(c, "vitelis-sales/yaml", executionID, err)
		return
	}
	h.log.WebhookEvent("vitelis-sales/yaml", executionID, true, "")
	httpkit.WebhookOK(c, "yaml stored", gin.H{"analysisId": resp.AnalysisID, "status": resp.Status, "fileKey": key})
}

// HandleError fails a run.
// POST /api/v1/webhooks/error
func (h *Handler) HandleError(c *gin.Context) {
	var req analyses.ErrorCallback
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.analyses.MarkError(c.Request.Context(), req)
	h.respond(c, "error", req.ExecutionID, "error recorded", resp, err)
}

// HandleStepStatus updates one cell of a report's status matrix.
// POST /api/v1/webhooks/steps/status
func (h *Handler) HandleStepStatus(c *gin.Context) {
	var req StepStatusCallback
	if !h.bind(c, &req) {
		return
	}
	cell, err := h.steps.UpdateStepStatus(c.Request.Context(), req.ReportID, reports.UpdateStepStatusRequest{
		CompanyID: req.CompanyID,
		StepID:    req.StepID,
		Status:    req.Status,
	}, sourceEngine)
	if err != nil {
		h.fail(c, "steps/status", "", err)
		return
	}
	h.log.WebhookEvent("steps/status", "", true, "")
	httpkit.WebhookOK(c, "step status updated", gin.H{
		"reportId": req.ReportID, "companyId": req.CompanyID, "stepId": cell.StepID, "status": cell.Status,
	})
}

func (h *Handler) readYAML(fh *multipart.FileHeader) ([]byte, string, error) {
	ext := strings.ToLower(path.Ext(fh.Filename))
	if ext != ".yaml" && ext != ".yml" {
		return nil, "", apperr.Validation("file must have a .yaml or .yml extension")
	}
	if !isYAMLUploadType(fh.Header.Get("Content-Type")) {
		return nil, "", apperr.Validation("file content type is not YAML")
	}
	if err := h.store.ValidateFileSize(fh.Size); err != nil {
		return nil, "", err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", apperr.Validation("file could not be read")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.store.MaxFileSize()+1))
	if err != nil {
		return nil, "", apperr.Validation("file could not be read")
	}
	if err := h.store.ValidateFileSize(int64(len(data))); err != nil {
		return nil, "", err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, "", apperr.Validation("file is not valid YAML")
	}
	return data, storage.ContentTypeForName(fh.Filename), nil
}

func isYAMLUploadType(contentType string) bool {
	ct := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	switch ct {
	case "", "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml",
		"text/plain", "application/octet-stream":
		return true
	}
	return false
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.fail(c, c.FullPath(), "", apperr.BadRequest("invalid request body"))
		return false
	}
	if err := h.val.Struct(req); err != nil {
		h.fail(c, c.FullPath(), "", apperr.Validation(err.Error()))
		return false
	}
	return true
}

func (h *Handler) respond(c *gin.Context, route, executionID, message string, resp analyses.CallbackResponse, err error) {
	if err != nil {
		h.fail(c, route, executionID, err)
		return
	}
	h.log.WebhookEvent(route, executionID, true, "")
	httpkit.WebhookOK(c, message, resp)
}

func (h *Handler) fail(c *gin.Context, route, executionID string, err error) {
	h.log.WebhookEvent(route, executionID, false, err.Error())
	httpkit.WebhookFail(c, err)
}
