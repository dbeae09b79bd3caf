package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type statusRequest struct {
	Status    string  `validate:"required,step_status"`
	Execution *string `validate:"omitempty,execution_status"`
}

func TestDomainStatusTags(t *testing.T) {
	val := New()
	inProgress := "inProgress"
	bogus := "running"

	assert.NoError(t, val.Struct(statusRequest{Status: "DONE"}))
	assert.NoError(t, val.Struct(statusRequest{Status: "PENDING", Execution: &inProgress}))
	assert.Error(t, val.Struct(statusRequest{Status: "done"}))
	assert.Error(t, val.Struct(statusRequest{Status: "DONE", Execution: &bogus}))
}

func TestVarAnalysisStatus(t *testing.T) {
	val := New()
	assert.NoError(t, val.Var("canceled", "analysis_status"))
	assert.Error(t, val.Var("cancelled", "analysis_status"))
}
