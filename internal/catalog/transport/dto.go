package transport

import "github.com/google/uuid"

// Generation steps

type CreateGenerationStepRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=120"`
	URL        string  `json:"url" validate:"required,url,max=2048"`
	Dependency *string `json:"dependency,omitempty" validate:"omitempty,min=1,max=120"`
}

// UpdateGenerationStepRequest patches a step. An empty dependency string
// clears the dependency.
type UpdateGenerationStepRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	URL        *string `json:"url,omitempty" validate:"omitempty,url,max=2048"`
	Dependency *string `json:"dependency,omitempty" validate:"omitempty,max=120"`
}

type GenerationStepResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Dependency *string   `json:"dependency,omitempty"`
	CreatedAt  string    `json:"createdAt"`
	UpdatedAt  string    `json:"updatedAt"`
}

type GenerationStepListResponse struct {
	Items []GenerationStepResponse `json:"items"`
	Total int                      `json:"total"`
}

// Industries

type CreateIndustryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type IndustryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt string    `json:"createdAt"`
}

type IndustryListResponse struct {
	Items []IndustryResponse `json:"items"`
	Total int                `json:"total"`
}
