package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"vitelis_backend/internal/reports/engine"
	"vitelis_backend/internal/reports/matrixview"
	"vitelis_backend/internal/reports/repository"
	"vitelis_backend/internal/reports/transport"
	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/logger"
)

type stepKey struct{ report, step uuid.UUID }

type fakeRepo struct {
	reports      map[uuid.UUID]repository.Report
	companies    map[uuid.UUID]repository.Company
	steps        map[stepKey]repository.ConfiguredStep
	cells        map[uuid.UUID][]repository.StatusCell
	orchestrator map[uuid.UUID]repository.Orchestrator
	catalog      map[uuid.UUID]CatalogStep
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		reports:      map[uuid.UUID]repository.Report{},
		companies:    map[uuid.UUID]repository.Company{},
		steps:        map[stepKey]repository.ConfiguredStep{},
		cells:        map[uuid.UUID][]repository.StatusCell{},
		orchestrator: map[uuid.UUID]repository.Orchestrator{},
		catalog:      map[uuid.UUID]CatalogStep{},
	}
}

func (f *fakeRepo) ListReports(context.Context, int, int) ([]repository.Report, int, error) {
	out := make([]repository.Report, 0, len(f.reports))
	for _, r := range f.reports {
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeRepo) GetReport(_ context.Context, id uuid.UUID) (repository.Report, error) {
	r, ok := f.reports[id]
	if !ok {
		return repository.Report{}, apperr.NotFound("report not found")
	}
	return r, nil
}

func (f *fakeRepo) ListCompanies(_ context.Context, reportID uuid.UUID) ([]repository.Company, error) {
	out := make([]repository.Company, 0)
	for _, c := range f.companies {
		if c.ReportID == reportID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRepo) GetCompany(_ context.Context, reportID, companyID uuid.UUID) (repository.Company, error) {
	c, ok := f.companies[companyID]
	if !ok || c.ReportID != reportID {
		return repository.Company{}, apperr.NotFound("company not found")
	}
	return c, nil
}

func (f *fakeRepo) CreateReport(_ context.Context, p repository.CreateReportParams) (repository.Report, error) {
	by := p.CreatedBy
	r := repository.Report{ID: uuid.New(), Name: p.Name, Description: p.Description, CreatedBy: &by, CreatedAt: time.Now()}
	f.reports[r.ID] = r
	return r, nil
}

func (f *fakeRepo) DeleteReport(_ context.Context, id uuid.UUID) error {
	if _, ok := f.reports[id]; !ok {
		return apperr.NotFound("report not found")
	}
	delete(f.reports, id)
	return nil
}

func (f *fakeRepo) AddCompany(_ context.Context, p repository.AddCompanyParams) (repository.Company, error) {
	c := repository.Company{ID: uuid.New(), ReportID: p.ReportID, Name: p.Name, URL: p.URL, Country: p.Country}
	f.companies[c.ID] = c
	return c, nil
}

func (f *fakeRepo) RemoveCompany(_ context.Context, _, companyID uuid.UUID) error {
	delete(f.companies, companyID)
	return nil
}

func (f *fakeRepo) ListConfiguredSteps(_ context.Context, reportID uuid.UUID) ([]repository.ConfiguredStep, error) {
	out := make([]repository.ConfiguredStep, 0)
	for k, s := range f.steps {
		if k.report == reportID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order == out[j].Order {
			return out[i].Name < out[j].Name
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

func (f *fakeRepo) GetConfiguredStep(_ context.Context, reportID, stepID uuid.UUID) (repository.ConfiguredStep, error) {
	s, ok := f.steps[stepKey{reportID, stepID}]
	if !ok {
		return repository.ConfiguredStep{}, apperr.NotFound("step is not configured for this report")
	}
	return s, nil
}

func (f *fakeRepo) AddStep(_ context.Context, reportID, stepID uuid.UUID) (int, error) {
	if _, ok := f.steps[stepKey{reportID, stepID}]; ok {
		return 0, apperr.Conflict("step is already configured for this report")
	}
	order := 1
	for k, s := range f.steps {
		if k.report == reportID && s.Order >= order {
			order = s.Order + 1
		}
	}
	c := f.catalog[stepID]
	f.steps[stepKey{reportID, stepID}] = repository.ConfiguredStep{StepID: stepID, Name: c.Name, URL: c.URL, Order: order}
	return order, nil
}

func (f *fakeRepo) RemoveStep(_ context.Context, reportID, stepID uuid.UUID) error {
	if _, ok := f.steps[stepKey{reportID, stepID}]; !ok {
		return apperr.NotFound("step is not configured for this report")
	}
	delete(f.steps, stepKey{reportID, stepID})
	return nil
}

func (f *fakeRepo) SetStepOrder(_ context.Context, reportID, stepID uuid.UUID, order int) error {
	s, ok := f.steps[stepKey{reportID, stepID}]
	if !ok {
		return apperr.NotFound("step is not configured for this report")
	}
	s.Order = order
	f.steps[stepKey{reportID, stepID}] = s
	return nil
}

func (f *fakeRepo) SetStepSettings(_ context.Context, reportID, stepID uuid.UUID, settings map[string]string) error {
	s, ok := f.steps[stepKey{reportID, stepID}]
	if !ok {
		return apperr.NotFound("step is not configured for this report")
	}
	s.Settings = settings
	f.steps[stepKey{reportID, stepID}] = s
	return nil
}

func (f *fakeRepo) ListStatusCells(_ context.Context, reportID uuid.UUID) ([]repository.StatusCell, error) {
	return f.cells[reportID], nil
}

func (f *fakeRepo) UpsertStatusCell(_ context.Context, reportID uuid.UUID, cell repository.StatusCell) error {
	cells := f.cells[reportID]
	for i, c := range cells {
		if c.CompanyID == cell.CompanyID && c.StepID == cell.StepID {
			cells[i] = cell
			return nil
		}
	}
	f.cells[reportID] = append(cells, cell)
	return nil
}

func (f *fakeRepo) GetOrchestrator(_ context.Context, reportID uuid.UUID) (repository.Orchestrator, error) {
	o, ok := f.orchestrator[reportID]
	if !ok {
		return repository.Orchestrator{ReportID: reportID, Status: repository.StatusPending, Metadata: map[string]interface{}{}}, nil
	}
	return o, nil
}

func (f *fakeRepo) PatchOrchestrator(ctx context.Context, p repository.OrchestratorPatch) (repository.Orchestrator, error) {
	o, _ := f.GetOrchestrator(ctx, p.ReportID)
	if p.Status != nil {
		o.Status = *p.Status
	}
	merged := map[string]interface{}{}
	for k, v := range o.Metadata {
		merged[k] = v
	}
	for k, v := range p.Set {
		merged[k] = v
	}
	for _, k := range p.DeleteKeys {
		delete(merged, k)
	}
	o.Metadata = merged
	f.orchestrator[p.ReportID] = o
	return o, nil
}

// catalog port on the same fake
type fakeCatalog struct{ repo *fakeRepo }

func (c fakeCatalog) ListGenerationSteps(context.Context) ([]CatalogStep, error) {
	out := make([]CatalogStep, 0, len(c.repo.catalog))
	for _, s := range c.repo.catalog {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c fakeCatalog) GetGenerationStep(_ context.Context, id uuid.UUID) (CatalogStep, error) {
	s, ok := c.repo.catalog[id]
	if !ok {
		return CatalogStep{}, apperr.NotFound("generation step not found")
	}
	return s, nil
}

type fakeEngine struct {
	instances int
	err       error
	ticks     []engine.TickRequest
}

func (e *fakeEngine) Instances() int { return e.instances }

func (e *fakeEngine) Tick(_ context.Context, _ int, tick engine.TickRequest) error {
	if e.err != nil {
		return e.err
	}
	e.ticks = append(e.ticks, tick)
	return nil
}

type fixture struct {
	svc    *Service
	repo   *fakeRepo
	engine *fakeEngine
	report uuid.UUID
	stepA  uuid.UUID
	stepB  uuid.UUID
	stepC  uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := newFakeRepo()
	eng := &fakeEngine{instances: 2}
	svc := New(repo, fakeCatalog{repo}, eng, nil, logger.Discard())

	f := fixture{svc: svc, repo: repo, engine: eng, stepA: uuid.New(), stepB: uuid.New(), stepC: uuid.New()}
	repo.catalog[f.stepA] = CatalogStep{ID: f.stepA, Name: "a-profile", URL: "https://e/a"}
	repo.catalog[f.stepB] = CatalogStep{ID: f.stepB, Name: "b-market", URL: "https://e/b"}
	repo.catalog[f.stepC] = CatalogStep{ID: f.stepC, Name: "c-swot", URL: "https://e/c"}

	report, err := svc.CreateReport(context.Background(), uuid.New(), transport.CreateReportRequest{Name: "Q3 deep dive"})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	f.report = report.ID
	return f
}

func TestGetReportStepsSplitsConfiguredAndAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddStepToReport(ctx, f.report, f.stepA); err != nil {
		t.Fatalf("add step: %v", err)
	}
	if _, err := f.svc.AddStepToReport(ctx, f.report, f.stepB); err != nil {
		t.Fatalf("add step: %v", err)
	}

	got, err := f.svc.GetReportSteps(ctx, f.report)
	if err != nil {
		t.Fatalf("get report steps: %v", err)
	}
	if len(got.Configured) != 2 || got.Configured[0].Order != 1 || got.Configured[1].Order != 2 {
		t.Fatalf("unexpected configured %+v", got.Configured)
	}
	if len(got.Available) != 1 || got.Available[0].StepID != f.stepC {
		t.Fatalf("unexpected available %+v", got.Available)
	}
}

func TestAddStepToReportRejectsDuplicatesAndUnknownSteps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddStepToReport(ctx, f.report, f.stepA); err != nil {
		t.Fatalf("add step: %v", err)
	}
	if _, err := f.svc.AddStepToReport(ctx, f.report, f.stepA); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := f.svc.AddStepToReport(ctx, f.report, uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.svc.AddStepToReport(ctx, uuid.New(), f.stepB); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected report not found, got %v", err)
	}
}

func TestRemoveStepKeepsGapsAndNextOrderFollowsMax(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _ = f.svc.AddStepToReport(ctx, f.report, f.stepA)
	_, _ = f.svc.AddStepToReport(ctx, f.report, f.stepB)
	if err := f.svc.RemoveStepFromReport(ctx, f.report, f.stepA); err != nil {
		t.Fatalf("remove: %v", err)
	}

	got, _ := f.svc.GetReportSteps(ctx, f.report)
	if len(got.Configured) != 1 || got.Configured[0].Order != 2 {
		t.Fatalf("expected survivor to keep order 2, got %+v", got.Configured)
	}

	added, err := f.svc.AddStepToReport(ctx, f.report, f.stepC)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added.Order != 3 {
		t.Fatalf("expected order 3, got %d", added.Order)
	}
}

func TestReorderStepAllowsSharedOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _ = f.svc.AddStepToReport(ctx, f.report, f.stepA)
	_, _ = f.svc.AddStepToReport(ctx, f.report, f.stepB)

	got, err := f.svc.ReorderStep(ctx, f.report, f.stepB, 1)
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if got.Order != 1 {
		t.Fatalf("expected order 1, got %d", got.Order)
	}
	if _, err := f.svc.ReorderStep(ctx, f.report, f.stepB, 0); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStepSettingsEmptyClears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.AddStepToReport(ctx, f.report, f.stepA)

	got, err := f.svc.UpdateStepSettings(ctx, f.report, f.stepA, map[string]string{"depth": "high"})
	if err != nil || got.Settings["depth"] != "high" {
		t.Fatalf("expected settings to be stored, got %+v err=%v", got.Settings, err)
	}

	got, err = f.svc.UpdateStepSettings(ctx, f.report, f.stepA, map[string]string{})
	if err != nil {
		t.Fatalf("clear settings: %v", err)
	}
	if got.Settings != nil {
		t.Fatalf("expected settings cleared to null, got %+v", got.Settings)
	}
}

func TestGetStepsMatrixDefaultsToPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.AddStepToReport(ctx, f.report, f.stepA)
	_, _ = f.svc.AddStepToReport(ctx, f.report, f.stepB)
	acme, _ := f.svc.AddCompany(ctx, f.report, transport.AddCompanyRequest{Name: "Acme"})
	_, _ = f.svc.AddCompany(ctx, f.report, transport.AddCompanyRequest{Name: "Beta"})

	if _, err := f.svc.UpdateStepStatus(ctx, f.report, transport.UpdateStepStatusRequest{
		CompanyID: acme.ID, StepID: f.stepB, Status: "ERROR",
	}, SourceOperator); err != nil {
		t.Fatalf("update status: %v", err)
	}

	m, err := f.svc.GetStepsMatrix(ctx, f.report, matrixview.Options{})
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	if len(m.Matrix) != 2 || len(m.Steps) != 2 {
		t.Fatalf("expected 2x2 matrix, got %d rows %d steps", len(m.Matrix), len(m.Steps))
	}
	for _, row := range m.Matrix {
		for _, cell := range row.Cells {
			want := "PENDING"
			if row.CompanyID == acme.ID && cell.StepID == f.stepB {
				want = "ERROR"
			}
			if cell.Status != want {
				t.Fatalf("company %s step %s: expected %s, got %s", row.CompanyName, cell.StepID, want, cell.Status)
			}
		}
	}
}

func TestUpdateStepStatusAllowsAnyTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.AddStepToReport(ctx, f.report, f.stepA)
	acme, _ := f.svc.AddCompany(ctx, f.report, transport.AddCompanyRequest{Name: "Acme"})

	for _, status := range []string{"DONE", "PENDING", "ERROR", "PROCESSING", "DONE"} {
		if _, err := f.svc.UpdateStepStatus(ctx, f.report, transport.UpdateStepStatusRequest{
			CompanyID: acme.ID, StepID: f.stepA, Status: status,
		}, SourceEngine); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}
	if len(f.repo.cells[f.report]) != 1 || f.repo.cells[f.report][0].Status != "DONE" {
		t.Fatalf("expected a single DONE cell, got %+v", f.repo.cells[f.report])
	}
}

func TestUpdateStepStatusValidatesMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme, _ := f.svc.AddCompany(ctx, f.report, transport.AddCompanyRequest{Name: "Acme"})

	_, err := f.svc.UpdateStepStatus(ctx, f.report, transport.UpdateStepStatusRequest{
		CompanyID: acme.ID, StepID: f.stepA, Status: "DONE",
	}, SourceOperator)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unconfigured step, got %v", err)
	}

	_, err = f.svc.UpdateStepStatus(ctx, f.report, transport.UpdateStepStatusRequest{
		CompanyID: acme.ID, StepID: f.stepA, Status: "FINISHED",
	}, SourceOperator)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateOrchestratorPatchesMetadata(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.UpdateOrchestrator(ctx, f.report, transport.UpdateOrchestratorRequest{
		Metadata: map[string]interface{}{"batch": "a", "region": "eu"},
	}); err != nil {
		t.Fatalf("seed metadata: %v", err)
	}

	status := "PROCESSING"
	got, err := f.svc.UpdateOrchestrator(ctx, f.report, transport.UpdateOrchestratorRequest{
		Status:   &status,
		Metadata: map[string]interface{}{"batch": "b", "region": nil},
	})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if got.Status != "PROCESSING" {
		t.Fatalf("expected PROCESSING, got %s", got.Status)
	}
	if got.Metadata["batch"] != "b" {
		t.Fatalf("expected batch overwritten, got %v", got.Metadata)
	}
	if _, ok := got.Metadata["region"]; ok {
		t.Fatalf("expected region deleted, got %v", got.Metadata)
	}
}

func TestGetOrchestratorDefaults(t *testing.T) {
	f := newFixture(t)
	got, err := f.svc.GetOrchestratorStatus(context.Background(), f.report)
	if err != nil {
		t.Fatalf("get orchestrator: %v", err)
	}
	if got.Status != "PENDING" || got.Metadata == nil || len(got.Metadata) != 0 {
		t.Fatalf("unexpected default %+v", got)
	}
}

func TestTriggerEngineTickRequiresProcessing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.TriggerEngineTick(ctx, f.report, 1); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.engine.ticks) != 0 {
		t.Fatal("no tick may be sent while not PROCESSING")
	}

	status := "PROCESSING"
	_, _ = f.svc.UpdateOrchestrator(ctx, f.report, transport.UpdateOrchestratorRequest{Status: &status, Metadata: map[string]interface{}{"batch": "a"}})

	got, err := f.svc.TriggerEngineTick(ctx, f.report, 2)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if !got.Accepted || got.Instance != 2 {
		t.Fatalf("unexpected response %+v", got)
	}
	if len(f.engine.ticks) != 1 || f.engine.ticks[0].Metadata["batch"] != "a" {
		t.Fatalf("unexpected ticks %+v", f.engine.ticks)
	}
}

func TestTriggerEngineTickValidatesInstanceAndMapsUpstreamErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	status := "PROCESSING"
	_, _ = f.svc.UpdateOrchestrator(ctx, f.report, transport.UpdateOrchestratorRequest{Status: &status})

	if _, err := f.svc.TriggerEngineTick(ctx, f.report, 3); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	f.engine.err = errors.New("connection refused")
	if _, err := f.svc.TriggerEngineTick(ctx, f.report, 1); !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
