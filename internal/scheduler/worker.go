package scheduler

import (
	"context"
	"fmt"

	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/config"
	"vitelis_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Launcher starts the external workflow of a stored analysis.
type Launcher interface {
	Launch(ctx context.Context, analysisID uuid.UUID) error
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	launcher Launcher
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, launcher Launcher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		launcher: launcher,
		log:      log,
	}

	mux.HandleFunc(TaskWorkflowLaunch, w.handleWorkflowLaunch)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleWorkflowLaunch(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseWorkflowLaunchPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	analysisID, err := uuid.Parse(payload.AnalysisID)
	if err != nil {
		return fmt.Errorf("%w: invalid analysis id %q", asynq.SkipRetry, payload.AnalysisID)
	}

	err = w.launcher.Launch(ctx, analysisID)
	switch {
	case err == nil:
		return nil
	case apperr.Is(err, apperr.KindNotFound):
		w.log.Warn("workflow launch dropped: analysis gone", "analysisId", analysisID)
		return nil
	case apperr.Is(err, apperr.KindUpstream):
		// The analysis is already marked failed; a retry would be skipped anyway.
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	default:
		return err
	}
}
