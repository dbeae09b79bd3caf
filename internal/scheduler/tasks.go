package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskWorkflowLaunch starts the n8n workflow for a freshly created analysis.
const TaskWorkflowLaunch = "analyses.workflow_launch"

type WorkflowLaunchPayload struct {
	AnalysisID string `json:"analysisId"`
}

func NewWorkflowLaunchTask(payload WorkflowLaunchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWorkflowLaunch, data), nil
}

func ParseWorkflowLaunchPayload(task *asynq.Task) (WorkflowLaunchPayload, error) {
	var payload WorkflowLaunchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return WorkflowLaunchPayload{}, err
	}
	return payload, nil
}
