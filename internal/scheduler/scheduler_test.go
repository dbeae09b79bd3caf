package scheduler

import (
	"context"
	"errors"
	"testing"

	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schedulerConfig struct {
	url   string
	queue string
}

func (c schedulerConfig) GetRedisURL() string       { return c.url }
func (c schedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c schedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c schedulerConfig) GetAsynqConcurrency() int  { return 1 }

type stubLauncher struct {
	calls []uuid.UUID
	err   error
}

func (s *stubLauncher) Launch(_ context.Context, id uuid.UUID) error {
	s.calls = append(s.calls, id)
	return s.err
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	_, err := NewClient(schedulerConfig{})
	require.Error(t, err)
}

func TestRedisClientOptParsesURL(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@cache.internal:6380/2", false)
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)
	assert.Nil(t, opt.TLSConfig)

	opt, err = redisClientOpt("rediss://cache.internal:6380", true)
	require.NoError(t, err)
	require.NotNil(t, opt.TLSConfig)
	assert.True(t, opt.TLSConfig.InsecureSkipVerify)
}

func TestEnqueueWorkflowLaunchPushesToConfiguredQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(schedulerConfig{url: "redis://" + mr.Addr(), queue: "vitelis"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	id := uuid.New()
	require.NoError(t, client.DispatchLaunch(context.Background(), id))

	pending, err := mr.List("asynq:{vitelis}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestWorkflowLaunchTaskRoundTrip(t *testing.T) {
	id := uuid.New()
	task, err := NewWorkflowLaunchTask(WorkflowLaunchPayload{AnalysisID: id.String()})
	require.NoError(t, err)
	assert.Equal(t, TaskWorkflowLaunch, task.Type())

	payload, err := ParseWorkflowLaunchPayload(task)
	require.NoError(t, err)
	assert.Equal(t, id.String(), payload.AnalysisID)
}

func TestHandleWorkflowLaunch(t *testing.T) {
	id := uuid.New()
	task, err := NewWorkflowLaunchTask(WorkflowLaunchPayload{AnalysisID: id.String()})
	require.NoError(t, err)

	tests := []struct {
		name      string
		launchErr error
		wantErr   bool
		wantSkip  bool
	}{
		{name: "launched", launchErr: nil},
		{name: "analysis deleted", launchErr: apperr.NotFound("analysis not found")},
		{name: "workflow rejected", launchErr: apperr.Upstream("workflow launch failed", errors.New("502")), wantErr: true, wantSkip: true},
		{name: "database down", launchErr: errors.New("connection refused"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			launcher := &stubLauncher{err: tt.launchErr}
			w := &Worker{launcher: launcher, log: logger.Discard()}

			err := w.handleWorkflowLaunch(context.Background(), task)
			require.Equal(t, []uuid.UUID{id}, launcher.calls)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantSkip, errors.Is(err, asynq.SkipRetry))
		})
	}
}

func TestHandleWorkflowLaunchRejectsBadPayload(t *testing.T) {
	launcher := &stubLauncher{}
	w := &Worker{launcher: launcher, log: logger.Discard()}

	err := w.handleWorkflowLaunch(context.Background(), asynq.NewTask(TaskWorkflowLaunch, []byte(`{"analysisId":"nope"}`)))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, launcher.calls)
}
