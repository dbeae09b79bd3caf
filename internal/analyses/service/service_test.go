package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"vitelis_backend/internal/analyses/repository"
	"vitelis_backend/internal/analyses/transport"
	"vitelis_backend/internal/analyses/workflow"
	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/config"
	"vitelis_backend/platform/logger"
)

type fakeRepo struct {
	items     map[uuid.UUID]repository.Analysis
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[uuid.UUID]repository.Analysis{}}
}

func (f *fakeRepo) Create(_ context.Context, p repository.CreateParams) (repository.Analysis, error) {
	if f.createErr != nil {
		return repository.Analysis{}, f.createErr
	}
	a := repository.Analysis{
		ID: uuid.New(), Kind: p.Kind, UserID: p.UserID, CompanyName: p.CompanyName, UseCase: p.UseCase,
		Status: repository.StatusProgress, ExecutionStatus: repository.ExecutionStarted, ExecutionID: p.ExecutionID,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.items[a.ID] = a
	return a, nil
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (repository.Analysis, error) {
	a, ok := f.items[id]
	if !ok {
		return repository.Analysis{}, apperr.NotFound("analysis not found")
	}
	return a, nil
}

func (f *fakeRepo) GetByExecutionID(_ context.Context, executionID string) (repository.Analysis, error) {
	for _, a := range f.items {
		if a.ExecutionID != nil && *a.ExecutionID == executionID {
			return a, nil
		}
	}
	return repository.Analysis{}, apperr.NotFound("no analysis for executionId")
}

func (f *fakeRepo) List(_ context.Context, p repository.ListParams) ([]repository.Analysis, int, error) {
	var out []repository.Analysis
	for _, a := range f.items {
		if p.UserID != nil && a.UserID != *p.UserID {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

func (f *fakeRepo) FindOwnerByFileKey(_ context.Context, key string) (uuid.UUID, error) {
	for _, a := range f.items {
		if (a.YAMLFile != nil && *a.YAMLFile == key) || (a.DocxFile != nil && *a.DocxFile == key) {
			return a.UserID, nil
		}
	}
	return uuid.Nil, apperr.NotFound("file not found")
}

func (f *fakeRepo) SetExecutionID(_ context.Context, id uuid.UUID, executionID string) (repository.Analysis, error) {
	a := f.items[id]
	if a.ExecutionID != nil && *a.ExecutionID != executionID {
		return repository.Analysis{}, apperr.Conflict("executionId is already assigned")
	}
	a.ExecutionID = &executionID
	f.items[id] = a
	return a, nil
}

func (f *fakeRepo) Update(_ context.Context, p repository.UpdateParams) (repository.Transition, error) {
	a, ok := f.items[p.ID]
	if !ok {
		return repository.Transition{}, apperr.NotFound("analysis not found")
	}
	prev := a.ExecutionStatus
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.ExecutionStatus != nil {
		a.ExecutionStatus = *p.ExecutionStatus
	}
	if p.ExecutionID != nil && a.ExecutionID == nil {
		a.ExecutionID = p.ExecutionID
	}
	f.items[p.ID] = a
	return repository.Transition{Analysis: a, PreviousExecutionStatus: prev, Applied: true}, nil
}

func (f *fakeRepo) Cancel(_ context.Context, id uuid.UUID) (repository.Analysis, error) {
	a := f.items[id]
	if a.Status != repository.StatusProgress {
		return repository.Analysis{}, apperr.Conflict("analysis is no longer in progress")
	}
	a.Status = repository.StatusCanceled
	a.ExecutionStatus = repository.ExecutionCanceled
	f.items[id] = a
	return a, nil
}

func (f *fakeRepo) MarkFailed(_ context.Context, id uuid.UUID, message string) (repository.Transition, error) {
	a := f.items[id]
	prev := a.ExecutionStatus
	if a.Status != repository.StatusProgress && a.Status != repository.StatusError {
		return repository.Transition{Analysis: a, PreviousExecutionStatus: prev}, nil
	}
	a.Status = repository.StatusError
	a.ExecutionStatus = repository.ExecutionError
	a.ErrorMessage = &message
	f.items[id] = a
	return repository.Transition{Analysis: a, PreviousExecutionStatus: prev, Applied: true}, nil
}

func (f *fakeRepo) UpdateProgress(ctx context.Context, executionID string, step int) (repository.Analysis, bool, error) {
	a, err := f.GetByExecutionID(ctx, executionID)
	if err != nil {
		return repository.Analysis{}, false, err
	}
	if a.Status != repository.StatusProgress {
		return a, false, nil
	}
	a.ExecutionStep = step
	a.ExecutionStatus = repository.ExecutionStarted
	if step > 0 {
		a.ExecutionStatus = repository.ExecutionInProgress
	}
	f.items[a.ID] = a
	return a, true, nil
}

func (f *fakeRepo) Finish(ctx context.Context, executionID string, result repository.Result) (repository.Transition, error) {
	a, err := f.GetByExecutionID(ctx, executionID)
	if err != nil {
		return repository.Transition{}, err
	}
	prev := a.ExecutionStatus
	if a.Status != repository.StatusProgress && a.Status != repository.StatusFinished {
		return repository.Transition{Analysis: a, PreviousExecutionStatus: prev}, nil
	}
	a.Status = repository.StatusFinished
	a.ExecutionStatus = repository.ExecutionFinished
	if result.ResultText != nil {
		a.ResultText = result.ResultText
	}
	if result.YAMLFile != nil {
		a.YAMLFile = result.YAMLFile
	}
	f.items[a.ID] = a
	return repository.Transition{Analysis: a, PreviousExecutionStatus: prev, Applied: true}, nil
}

func (f *fakeRepo) MarkError(ctx context.Context, executionID, message string) (repository.Transition, error) {
	a, err := f.GetByExecutionID(ctx, executionID)
	if err != nil {
		return repository.Transition{}, err
	}
	return f.MarkFailed(ctx, a.ID, message)
}

type fakeCredits struct {
	balance  map[uuid.UUID]int
	refunds  int
	returned int
}

func (f *fakeCredits) DeductCredits(_ context.Context, userID uuid.UUID, amount int) (bool, error) {
	if f.balance[userID] < amount {
		return false, nil
	}
	f.balance[userID] -= amount
	return true, nil
}

func (f *fakeCredits) RefundCredits(_ context.Context, userID uuid.UUID, amount int) error {
	f.balance[userID] += amount
	f.returned += amount
	return nil
}

func (f *fakeCredits) HandleStatusChangeRefund(_ context.Context, userID uuid.UUID, oldStatus, newStatus string) (bool, error) {
	if oldStatus != repository.ExecutionInProgress || newStatus != repository.ExecutionError {
		return false, nil
	}
	f.balance[userID]++
	f.refunds++
	return true, nil
}

type fakeWorkflows struct {
	executionID string
	err         error
	launched    []string
}

func (f *fakeWorkflows) Launch(_ context.Context, workflowName string, _ workflow.LaunchRequest) (string, error) {
	f.launched = append(f.launched, workflowName)
	return f.executionID, f.err
}

type fakeDispatcher struct {
	dispatched []uuid.UUID
	err        error
}

func (f *fakeDispatcher) DispatchLaunch(_ context.Context, id uuid.UUID) error {
	f.dispatched = append(f.dispatched, id)
	return f.err
}

type costConfig int

func (c costConfig) GetAnalysisCreditCost() int { return int(c) }

type harness struct {
	svc       *Service
	repo      *fakeRepo
	credits   *fakeCredits
	workflows *fakeWorkflows
}

func newHarness() harness {
	repo := newFakeRepo()
	credits := &fakeCredits{balance: map[uuid.UUID]int{}}
	workflows := &fakeWorkflows{executionID: "exec-1"}
	svc := New(repo, credits, workflows, nil, costConfig(1), logger.Discard())
	return harness{svc: svc, repo: repo, credits: credits, workflows: workflows}
}

func TestCreateChargesAndLaunchesInline(t *testing.T) {
	h := newHarness()
	user := Actor{UserID: uuid.New()}
	h.credits.balance[user.UserID] = 2

	got, err := h.svc.Create(context.Background(), user, transport.CreateAnalysisRequest{CompanyName: " Acme "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if h.credits.balance[user.UserID] != 1 {
		t.Fatalf("expected one credit charged, balance %d", h.credits.balance[user.UserID])
	}
	if got.Kind != repository.KindAnalyze || got.CompanyName != "Acme" {
		t.Fatalf("unexpected analysis %+v", got)
	}
	if got.ExecutionID == nil || *got.ExecutionID != "exec-1" {
		t.Fatalf("expected executionId from launch, got %v", got.ExecutionID)
	}
	if len(h.workflows.launched) != 1 || h.workflows.launched[0] != config.WorkflowBizMiner {
		t.Fatalf("unexpected launches %v", h.workflows.launched)
	}
}

func TestCreateWithoutCreditsIsForbidden(t *testing.T) {
	h := newHarness()
	_, err := h.svc.Create(context.Background(), Actor{UserID: uuid.New()}, transport.CreateAnalysisRequest{CompanyName: "Acme"})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(h.repo.items) != 0 {
		t.Fatalf("no analysis may be stored")
	}
}

func TestCreateAsAdminIsFree(t *testing.T) {
	h := newHarness()
	admin := Actor{UserID: uuid.New(), Admin: true}
	if _, err := h.svc.Create(context.Background(), admin, transport.CreateAnalysisRequest{CompanyName: "Acme"}); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestCreateReturnsChargeWhenInsertFails(t *testing.T) {
	h := newHarness()
	h.repo.createErr = errors.New("db down")
	user := Actor{UserID: uuid.New()}
	h.credits.balance[user.UserID] = 1

	if _, err := h.svc.Create(context.Background(), user, transport.CreateAnalysisRequest{CompanyName: "Acme"}); err == nil {
		t.Fatalf("expected error")
	}
	if h.credits.balance[user.UserID] != 1 || h.credits.returned != 1 {
		t.Fatalf("charge must be returned, balance %d", h.credits.balance[user.UserID])
	}
}

func TestCreateUsesDispatcherWhenSet(t *testing.T) {
	h := newHarness()
	d := &fakeDispatcher{}
	h.svc.SetDispatcher(d)

	got, err := h.svc.Create(context.Background(), Actor{UserID: uuid.New(), Admin: true}, transport.CreateAnalysisRequest{CompanyName: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(d.dispatched) != 1 || d.dispatched[0] != got.ID {
		t.Fatalf("expected launch dispatched for %s, got %v", got.ID, d.dispatched)
	}
	if len(h.workflows.launched) != 0 {
		t.Fatalf("workflow must not be launched inline")
	}
}

func TestLaunchFailureMarksAnalysisErrored(t *testing.T) {
	h := newHarness()
	h.workflows.err = errors.New("connection refused")
	a, _ := h.repo.Create(context.Background(), repository.CreateParams{Kind: repository.KindAnalyze, UserID: uuid.New()})

	err := h.svc.Launch(context.Background(), a.ID)
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	stored := h.repo.items[a.ID]
	if stored.Status != repository.StatusError || stored.ExecutionStatus != repository.ExecutionError {
		t.Fatalf("unexpected state %s/%s", stored.Status, stored.ExecutionStatus)
	}

	h.workflows.err = nil
	if err := h.svc.Launch(context.Background(), a.ID); err != nil {
		t.Fatalf("retry must be a no-op, got %v", err)
	}
	if len(h.workflows.launched) != 1 {
		t.Fatalf("errored analysis must not be relaunched")
	}
}

func TestWorkflowFor(t *testing.T) {
	tests := []struct {
		kind, useCase, want string
	}{
		{repository.KindVitelisSales, "", config.WorkflowVitelisSales},
		{repository.KindAnalyze, "SalesMiner", config.WorkflowSalesMiner},
		{repository.KindAnalyze, "Sales Miner", config.WorkflowSalesMiner},
		{repository.KindAnalyze, "Leadership", config.WorkflowBizMiner},
		{repository.KindAnalyze, "", config.WorkflowBizMiner},
	}
	for _, tt := range tests {
		got := WorkflowFor(repository.Analysis{Kind: tt.kind, UseCase: tt.useCase})
		if got != tt.want {
			t.Fatalf("kind %q useCase %q: got %q, want %q", tt.kind, tt.useCase, got, tt.want)
		}
	}
}

func TestGetHidesOtherUsersAnalyses(t *testing.T) {
	h := newHarness()
	a, _ := h.repo.Create(context.Background(), repository.CreateParams{UserID: uuid.New()})

	_, err := h.svc.Get(context.Background(), Actor{UserID: uuid.New()}, a.ID)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := h.svc.Get(context.Background(), Actor{UserID: uuid.New(), Admin: true}, a.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
}

func seedRunning(t *testing.T, h harness, executionID string) repository.Analysis {
	t.Helper()
	a, _ := h.repo.Create(context.Background(), repository.CreateParams{Kind: repository.KindAnalyze, UserID: uuid.New()})
	a, err := h.repo.SetExecutionID(context.Background(), a.ID, executionID)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return a
}

func TestProgressThenErrorRefundsOnce(t *testing.T) {
	h := newHarness()
	a := seedRunning(t, h, "exec-9")
	ctx := context.Background()
	step := 3

	progress, err := h.svc.UpdateProgress(ctx, transport.ProgressCallback{ExecutionID: "exec-9", Step: &step})
	if err != nil || !progress.Applied {
		t.Fatalf("progress: %+v %v", progress, err)
	}

	first, err := h.svc.MarkError(ctx, transport.ErrorCallback{ExecutionID: "exec-9", Message: "boom"})
	if err != nil || !first.Refunded {
		t.Fatalf("first error: %+v %v", first, err)
	}
	second, err := h.svc.MarkError(ctx, transport.ErrorCallback{ExecutionID: "exec-9", Message: "boom"})
	if err != nil || second.Refunded {
		t.Fatalf("repeated error must not refund: %+v %v", second, err)
	}
	if h.credits.balance[a.UserID] != 1 {
		t.Fatalf("expected exactly one refund, balance %d", h.credits.balance[a.UserID])
	}
}

func TestErrorBeforeProgressDoesNotRefund(t *testing.T) {
	h := newHarness()
	seedRunning(t, h, "exec-2")

	got, err := h.svc.MarkError(context.Background(), transport.ErrorCallback{ExecutionID: "exec-2"})
	if err != nil {
		t.Fatalf("error callback: %v", err)
	}
	if got.Refunded || h.credits.refunds != 0 {
		t.Fatalf("started runs are not refunded")
	}
}

func TestProgressAfterFinishIsIgnored(t *testing.T) {
	h := newHarness()
	seedRunning(t, h, "exec-3")
	ctx := context.Background()
	data := "report"

	if _, err := h.svc.UpdateResult(ctx, transport.ResultCallback{ExecutionID: "exec-3", Data: &data}); err != nil {
		t.Fatalf("result: %v", err)
	}
	step := 7
	got, err := h.svc.UpdateProgress(ctx, transport.ProgressCallback{ExecutionID: "exec-3", Step: &step})
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if got.Applied || got.Status != repository.StatusFinished {
		t.Fatalf("late progress must be a no-op, got %+v", got)
	}
}

func TestUnknownExecutionIDIsNotFound(t *testing.T) {
	h := newHarness()
	step := 1
	_, err := h.svc.UpdateProgress(context.Background(), transport.ProgressCallback{ExecutionID: "missing", Step: &step})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSalesResultRejectsOtherKinds(t *testing.T) {
	h := newHarness()
	seedRunning(t, h, "exec-4")

	_, err := h.svc.UpdateSalesResult(context.Background(), transport.SalesResultCallback{ExecutionID: "exec-4"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdminUpdateRejectsSecondExecutionID(t *testing.T) {
	h := newHarness()
	a := seedRunning(t, h, "exec-5")
	other := "exec-6"

	_, err := h.svc.Update(context.Background(), a.ID, transport.UpdateAnalysisRequest{ExecutionID: &other})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAdminUpdateAppliesRefundRule(t *testing.T) {
	h := newHarness()
	a := seedRunning(t, h, "exec-7")
	step := 1
	_, _ = h.svc.UpdateProgress(context.Background(), transport.ProgressCallback{ExecutionID: "exec-7", Step: &step})

	status := repository.ExecutionError
	if _, err := h.svc.Update(context.Background(), a.ID, transport.UpdateAnalysisRequest{ExecutionStatus: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if h.credits.balance[a.UserID] != 1 {
		t.Fatalf("expected refund, balance %d", h.credits.balance[a.UserID])
	}
}

func TestCancelFinishedAnalysisConflicts(t *testing.T) {
	h := newHarness()
	a := seedRunning(t, h, "exec-8")
	data := "done"
	_, _ = h.svc.UpdateResult(context.Background(), transport.ResultCallback{ExecutionID: "exec-8", Data: &data})

	_, err := h.svc.Cancel(context.Background(), Actor{UserID: a.UserID}, a.ID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestProgressStepZeroKeepsRunStarted(t *testing.T) {
	h := newHarness()
	a := seedRunning(t, h, "exec-10")
	ctx := context.Background()
	step := 0

	if _, err := h.svc.UpdateProgress(ctx, transport.ProgressCallback{ExecutionID: "exec-10", Step: &step}); err != nil {
		t.Fatalf("progress: %v", err)
	}
	if got := h.repo.items[a.ID]; got.ExecutionStatus != repository.ExecutionStarted || got.ExecutionStep != 0 {
		t.Fatalf("expected started at step 0, got %s/%d", got.ExecutionStatus, got.ExecutionStep)
	}

	failed, err := h.svc.MarkError(ctx, transport.ErrorCallback{ExecutionID: "exec-10", Message: "boom"})
	if err != nil {
		t.Fatalf("error callback: %v", err)
	}
	if failed.Refunded || h.credits.refunds != 0 {
		t.Fatalf("a run that never passed step 0 must not be refunded")
	}
}

func TestProgressRejectsNegativeStep(t *testing.T) {
	h := newHarness()
	a := seedRunning(t, h, "exec-11")
	step := -1

	_, err := h.svc.UpdateProgress(context.Background(), transport.ProgressCallback{ExecutionID: "exec-11", Step: &step})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := h.repo.items[a.ID]; got.ExecutionStatus != repository.ExecutionStarted {
		t.Fatalf("record must be untouched, got %s", got.ExecutionStatus)
	}
}

func TestProgressThenResultFinishesOrder(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	user := Actor{UserID: uuid.New()}
	h.credits.balance[user.UserID] = 1
	h.workflows.executionID = "abc123"

	created, err := h.svc.Create(ctx, user, transport.CreateAnalysisRequest{CompanyName: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	step := 2
	if _, err := h.svc.UpdateProgress(ctx, transport.ProgressCallback{ExecutionID: "abc123", Step: &step}); err != nil {
		t.Fatalf("progress: %v", err)
	}
	got := h.repo.items[created.ID]
	if got.ExecutionStatus != repository.ExecutionInProgress || got.ExecutionStep != 2 {
		t.Fatalf("expected inProgress at step 2, got %s/%d", got.ExecutionStatus, got.ExecutionStep)
	}

	data := "Report text"
	resp, err := h.svc.UpdateResult(ctx, transport.ResultCallback{ExecutionID: "abc123", Data: &data})
	if err != nil || !resp.Applied {
		t.Fatalf("result: %+v %v", resp, err)
	}
	got = h.repo.items[created.ID]
	if got.Status != repository.StatusFinished || got.ExecutionStatus != repository.ExecutionFinished {
		t.Fatalf("expected finished/finished, got %s/%s", got.Status, got.ExecutionStatus)
	}
	if got.ResultText == nil || *got.ResultText != "Report text" {
		t.Fatalf("unexpected result text %v", got.ResultText)
	}
}

func TestRepeatedResultIsIdempotent(t *testing.T) {
	h := newHarness()
	a := seedRunning(t, h, "exec-12")
	ctx := context.Background()
	data := "Report text"

	for i := 0; i < 2; i++ {
		resp, err := h.svc.UpdateResult(ctx, transport.ResultCallback{ExecutionID: "exec-12", Data: &data})
		if err != nil || resp.Status != repository.StatusFinished {
			t.Fatalf("delivery %d: %+v %v", i+1, resp, err)
		}
	}
	got := h.repo.items[a.ID]
	if got.Status != repository.StatusFinished || got.ExecutionStatus != repository.ExecutionFinished || *got.ResultText != data {
		t.Fatalf("unexpected state after repeated result %+v", got)
	}
}

func TestResultForUnknownExecutionIDIsNotFound(t *testing.T) {
	h := newHarness()
	data := "Report text"

	_, err := h.svc.UpdateResult(context.Background(), transport.ResultCallback{ExecutionID: "missing", Data: &data})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTerminalOrdersIgnoreLateCallbacks(t *testing.T) {
	data := "late report"
	tests := []struct {
		name       string
		settle     func(h harness, a repository.Analysis)
		callback   func(h harness) (transport.CallbackResponse, error)
		wantStatus string
	}{
		{
			name: "error after finished",
			settle: func(h harness, _ repository.Analysis) {
				done := "done"
				_, _ = h.svc.UpdateResult(context.Background(), transport.ResultCallback{ExecutionID: "exec-13", Data: &done})
			},
			callback: func(h harness) (transport.CallbackResponse, error) {
				return h.svc.MarkError(context.Background(), transport.ErrorCallback{ExecutionID: "exec-13", Message: "late"})
			},
			wantStatus: repository.StatusFinished,
		},
		{
			name: "result after cancel",
			settle: func(h harness, a repository.Analysis) {
				_, _ = h.svc.Cancel(context.Background(), Actor{UserID: a.UserID}, a.ID)
			},
			callback: func(h harness) (transport.CallbackResponse, error) {
				return h.svc.UpdateResult(context.Background(), transport.ResultCallback{ExecutionID: "exec-13", Data: &data})
			},
			wantStatus: repository.StatusCanceled,
		},
		{
			name: "result after error",
			settle: func(h harness, _ repository.Analysis) {
				step := 1
				_, _ = h.svc.UpdateProgress(context.Background(), transport.ProgressCallback{ExecutionID: "exec-13", Step: &step})
				_, _ = h.svc.MarkError(context.Background(), transport.ErrorCallback{ExecutionID: "exec-13", Message: "boom"})
			},
			callback: func(h harness) (transport.CallbackResponse, error) {
				return h.svc.UpdateResult(context.Background(), transport.ResultCallback{ExecutionID: "exec-13", Data: &data})
			},
			wantStatus: repository.StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			a := seedRunning(t, h, "exec-13")
			tt.settle(h, a)
			refundsBefore := h.credits.refunds

			resp, err := tt.callback(h)
			if err != nil {
				t.Fatalf("callback: %v", err)
			}
			if resp.Applied || resp.Refunded || resp.Status != tt.wantStatus {
				t.Fatalf("late callback must be a no-op, got %+v", resp)
			}
			got := h.repo.items[a.ID]
			if got.Status != tt.wantStatus {
				t.Fatalf("expected status %s, got %s", tt.wantStatus, got.Status)
			}
			if got.ResultText != nil && *got.ResultText == data {
				t.Fatalf("late result must not be stored")
			}
			if h.credits.refunds != refundsBefore {
				t.Fatalf("late callback must not refund")
			}
		})
	}
}
