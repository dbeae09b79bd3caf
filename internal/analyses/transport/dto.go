package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateAnalysisRequest struct {
	Kind                  string  `json:"kind" validate:"omitempty,oneof=analyze vitelis_sales"`
	CompanyName           string  `json:"companyName" validate:"required,min=1,max=200"`
	BusinessLine          string  `json:"businessLine" validate:"max=200"`
	URL                   string  `json:"url" validate:"omitempty,url,max=2048"`
	Country               string  `json:"country" validate:"max=100"`
	UseCase               string  `json:"useCase" validate:"max=100"`
	Timeline              string  `json:"timeline" validate:"max=100"`
	Language              string  `json:"language" validate:"max=50"`
	AdditionalInformation string  `json:"additionalInformation" validate:"max=5000"`
	ExecutionID           *string `json:"executionId,omitempty" validate:"omitempty,min=1,max=200"`
}

type ListAnalysesRequest struct {
	Kind      string `form:"kind" validate:"omitempty,oneof=analyze vitelis_sales"`
	Status    string `form:"status" validate:"omitempty,analysis_status"`
	Search    string `form:"search" validate:"max=100"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// UpdateAnalysisRequest is the admin patch. ExecutionID can only be set when
// the record has none.
type UpdateAnalysisRequest struct {
	Status               *string `json:"status,omitempty" validate:"omitempty,analysis_status"`
	ExecutionStatus      *string `json:"executionStatus,omitempty" validate:"omitempty,execution_status"`
	ExecutionStep        *int    `json:"executionStep,omitempty" validate:"omitempty,min=0"`
	ExecutionID          *string `json:"executionId,omitempty" validate:"omitempty,min=1,max=200"`
	ResultText           *string `json:"resultText,omitempty"`
	Summary              *string `json:"summary,omitempty"`
	ImprovementLeverages *string `json:"improvementLeverages,omitempty"`
	HeadToHead           *string `json:"headToHead,omitempty"`
	Sources              *string `json:"sources,omitempty"`
	DocxFile             *string `json:"docxFile,omitempty"`
	YAMLFile             *string `json:"yamlFile,omitempty"`
}

type AnalysisResponse struct {
	ID                    uuid.UUID `json:"id"`
	Kind                  string    `json:"kind"`
	UserID                uuid.UUID `json:"userId"`
	CompanyName           string    `json:"companyName"`
	BusinessLine          string    `json:"businessLine"`
	URL                   string    `json:"url"`
	Country               string    `json:"country"`
	UseCase               string    `json:"useCase"`
	Timeline              string    `json:"timeline"`
	Language              string    `json:"language"`
	AdditionalInformation string    `json:"additionalInformation"`
	Status                string    `json:"status"`
	ExecutionID           *string   `json:"executionId,omitempty"`
	ExecutionStatus       string    `json:"executionStatus"`
	ExecutionStep         int       `json:"executionStep"`
	ResultText            *string   `json:"resultText,omitempty"`
	Summary               *string   `json:"summary,omitempty"`
	ImprovementLeverages  *string   `json:"improvementLeverages,omitempty"`
	HeadToHead            *string   `json:"headToHead,omitempty"`
	Sources               *string   `json:"sources,omitempty"`
	DocxFile              *string   `json:"docxFile,omitempty"`
	YAMLFile              *string   `json:"yamlFile,omitempty"`
	ErrorMessage          *string   `json:"errorMessage,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

type AnalysisListResponse struct {
	Items      []AnalysisResponse `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}

// Callback payloads

type ProgressCallback struct {
	ExecutionID string `json:"executionId" validate:"required,max=200"`
	Step        *int   `json:"step" validate:"required,min=0"`
}

type ResultCallback struct {
	ExecutionID          string  `json:"executionId" validate:"required,max=200"`
	Data                 *string `json:"data" validate:"required"`
	Summary              *string `json:"summary,omitempty"`
	ImprovementLeverages *string `json:"improvementLeverages,omitempty"`
	HeadToHead           *string `json:"headToHead,omitempty"`
	Sources              *string `json:"sources,omitempty"`
}

type SalesResultCallback struct {
	ExecutionID string  `json:"executionId" validate:"required,max=200"`
	Data        *string `json:"data,omitempty"`
	DocxFile    *string `json:"docxFile,omitempty" validate:"omitempty,max=1024"`
}

type ErrorCallback struct {
	ExecutionID string `json:"executionId" validate:"required,max=200"`
	Message     string `json:"message" validate:"max=4000"`
}

// CallbackResponse is the data returned to the workflow after a callback.
type CallbackResponse struct {
	AnalysisID uuid.UUID `json:"analysisId"`
	Status     string    `json:"status"`
	Applied    bool      `json:"applied"`
	Refunded   bool      `json:"refunded,omitempty"`
}
