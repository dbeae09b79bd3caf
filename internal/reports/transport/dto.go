package transport

import (
	"time"

	"github.com/google/uuid"
)

// Reports and companies

type CreateReportRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type ListReportsRequest struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type AddCompanyRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	URL     string `json:"url" validate:"omitempty,url,max=2048"`
	Country string `json:"country" validate:"max=100"`
}

type CompanyResponse struct {
	ID        uuid.UUID `json:"id"`
	ReportID  uuid.UUID `json:"reportId"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReportResponse struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	CreatedBy   *uuid.UUID        `json:"createdBy,omitempty"`
	Companies   []CompanyResponse `json:"companies,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type ReportListResponse struct {
	Items      []ReportResponse `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

// Step configuration

type AddStepRequest struct {
	StepID uuid.UUID `json:"stepId" validate:"required"`
}

type ReorderStepRequest struct {
	Order int `json:"order" validate:"required,min=1"`
}

// UpdateStepSettingsRequest replaces the settings. An empty object clears them.
type UpdateStepSettingsRequest struct {
	Settings map[string]string `json:"settings" validate:"dive,keys,min=1,max=100,endkeys,max=4000"`
}

type ConfiguredStepResponse struct {
	StepID     uuid.UUID         `json:"stepId"`
	Name       string            `json:"name"`
	URL        string            `json:"url"`
	Dependency *string           `json:"dependency,omitempty"`
	Order      int               `json:"order"`
	Settings   map[string]string `json:"settings"`
}

type AvailableStepResponse struct {
	StepID     uuid.UUID `json:"stepId"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Dependency *string   `json:"dependency,omitempty"`
}

type ReportStepsResponse struct {
	Configured []ConfiguredStepResponse `json:"configured"`
	Available  []AvailableStepResponse  `json:"available"`
}

// Status matrix

type MatrixQuery struct {
	Search    string   `form:"search" validate:"max=200"`
	Statuses  []string `form:"status" validate:"omitempty,dive,step_status"`
	StepIDs   []string `form:"step" validate:"omitempty,dive,uuid"`
	SortBy    string   `form:"sortBy" validate:"max=64"`
	SortOrder string   `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type UpdateStepStatusRequest struct {
	CompanyID uuid.UUID `json:"companyId" validate:"required"`
	StepID    uuid.UUID `json:"stepId" validate:"required"`
	Status    string    `json:"status" validate:"required,step_status"`
}

type MatrixStep struct {
	StepID uuid.UUID `json:"stepId"`
	Name   string    `json:"name"`
	Order  int       `json:"order"`
}

type MatrixCompany struct {
	CompanyID uuid.UUID `json:"companyId"`
	Name      string    `json:"name"`
}

type MatrixCell struct {
	StepID uuid.UUID `json:"stepId"`
	Status string    `json:"status"`
}

type MatrixRow struct {
	CompanyID   uuid.UUID    `json:"companyId"`
	CompanyName string       `json:"companyName"`
	Cells       []MatrixCell `json:"cells"`
}

type StepsMatrixResponse struct {
	Companies []MatrixCompany `json:"companies"`
	Steps     []MatrixStep    `json:"steps"`
	Matrix    []MatrixRow     `json:"matrix"`
}

// Orchestrator

// UpdateOrchestratorRequest patches the orchestrator. In Metadata a null value
// deletes the key and any other value sets it; keys not sent are untouched.
type UpdateOrchestratorRequest struct {
	Status   *string                `json:"status,omitempty" validate:"omitempty,orchestrator_status"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type OrchestratorResponse struct {
	ReportID  uuid.UUID              `json:"reportId"`
	Status    string                 `json:"status"`
	Metadata  map[string]interface{} `json:"metadata"`
	UpdatedAt *time.Time             `json:"updatedAt,omitempty"`
}

type TriggerTickRequest struct {
	Instance int `json:"instance" validate:"required,min=1"`
}

type TriggerTickResponse struct {
	Accepted bool `json:"accepted"`
	Instance int  `json:"instance"`
}
