package matrixview

import (
	"testing"

	"github.com/google/uuid"

	"vitelis_backend/internal/reports/transport"
)

func fixture() (transport.StepsMatrixResponse, uuid.UUID, uuid.UUID) {
	profile, swot := uuid.New(), uuid.New()
	rows := []struct {
		name     string
		profile  string
		swotCell string
	}{
		{"Acme", "DONE", "PENDING"},
		{"Björk AB", "ERROR", "DONE"},
		{"Contoso", "PROCESSING", "ERROR"},
		{"Delta", "PENDING", "PENDING"},
	}

	m := transport.StepsMatrixResponse{
		Steps: []transport.MatrixStep{{StepID: profile, Name: "profile", Order: 1}, {StepID: swot, Name: "swot", Order: 2}},
	}
	for _, r := range rows {
		id := uuid.New()
		m.Companies = append(m.Companies, transport.MatrixCompany{CompanyID: id, Name: r.name})
		m.Matrix = append(m.Matrix, transport.MatrixRow{
			CompanyID:   id,
			CompanyName: r.name,
			Cells:       []transport.MatrixCell{{StepID: profile, Status: r.profile}, {StepID: swot, Status: r.swotCell}},
		})
	}
	return m, profile, swot
}

func names(m transport.StepsMatrixResponse) []string {
	out := make([]string, len(m.Matrix))
	for i, r := range m.Matrix {
		out[i] = r.CompanyName
	}
	return out
}

func TestApplyWithoutOptionsKeepsEverything(t *testing.T) {
	m, _, _ := fixture()
	got := Apply(m, Options{})
	if len(got.Matrix) != 4 || len(got.Steps) != 2 || len(got.Companies) != 4 {
		t.Fatalf("unexpected shape: %d rows, %d steps", len(got.Matrix), len(got.Steps))
	}
}

func TestApplySearchIsCaseFolded(t *testing.T) {
	m, _, _ := fixture()
	got := Apply(m, Options{Search: "BJÖRK"})
	if len(got.Matrix) != 1 || got.Matrix[0].CompanyName != "Björk AB" {
		t.Fatalf("unexpected rows %v", names(got))
	}
}

func TestApplySearchMatchesCompanyID(t *testing.T) {
	m, _, _ := fixture()
	id := m.Matrix[2].CompanyID.String()
	got := Apply(m, Options{Search: id[:8]})
	if len(got.Matrix) != 1 || got.Matrix[0].CompanyName != "Contoso" {
		t.Fatalf("unexpected rows %v", names(got))
	}
}

func TestApplyStatusFilterOnlyConsidersVisibleSteps(t *testing.T) {
	m, profile, _ := fixture()

	got := Apply(m, Options{Statuses: []string{"ERROR"}})
	if len(got.Matrix) != 2 {
		t.Fatalf("expected two rows with an error cell, got %v", names(got))
	}

	got = Apply(m, Options{Statuses: []string{"ERROR"}, StepIDs: []uuid.UUID{profile}})
	if len(got.Matrix) != 1 || got.Matrix[0].CompanyName != "Björk AB" {
		t.Fatalf("expected only the profile error row, got %v", names(got))
	}
	if len(got.Steps) != 1 || len(got.Matrix[0].Cells) != 1 {
		t.Fatalf("expected a single visible column")
	}
}

func TestApplySortsStepColumnBySeverity(t *testing.T) {
	m, profile, _ := fixture()

	got := Apply(m, Options{SortBy: profile.String(), SortOrder: "desc"})
	want := []string{"Björk AB", "Contoso", "Delta", "Acme"}
	for i, n := range names(got) {
		if n != want[i] {
			t.Fatalf("expected %v, got %v", want, names(got))
		}
	}
}

func TestApplySortsByCompanyDescending(t *testing.T) {
	m, _, _ := fixture()
	got := Apply(m, Options{SortBy: SortByCompany, SortOrder: "desc"})
	if got.Matrix[0].CompanyName != "Delta" || got.Matrix[3].CompanyName != "Acme" {
		t.Fatalf("unexpected order %v", names(got))
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	m, profile, _ := fixture()
	_ = Apply(m, Options{StepIDs: []uuid.UUID{profile}, SortBy: SortByCompany, SortOrder: "desc"})
	if m.Matrix[0].CompanyName != "Acme" || len(m.Matrix[0].Cells) != 2 {
		t.Fatal("input matrix was modified")
	}
}
