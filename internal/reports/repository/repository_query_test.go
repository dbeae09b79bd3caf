package repository

import (
	"strings"
	"testing"
)

func TestPatchOrchestratorQueryMergesAndDeletesInOneStatement(t *testing.T) {
	for _, fragment := range []string{
		"ON CONFLICT (report_id) DO UPDATE",
		"(report_orchestrators.metadata || $3::jsonb) - $4::text[]",
		"COALESCE($2::text, report_orchestrators.status)",
	} {
		if !strings.Contains(patchOrchestratorQuery, fragment) {
			t.Fatalf("expected patch query to contain %q", fragment)
		}
	}
}

func TestAddStepQueryAssignsNextOrder(t *testing.T) {
	if !strings.Contains(addStepQuery, "COALESCE(MAX(step_order), 0) + 1") {
		t.Fatalf("expected next-order computation, got %s", addStepQuery)
	}
	if !strings.Contains(addStepQuery, "WHERE report_id = $1") {
		t.Fatal("next order must be scoped to the report")
	}
}

func TestUpsertStatusCellOverwritesWithoutTransitionRules(t *testing.T) {
	if !strings.Contains(upsertStatusCellQuery, "SET status = EXCLUDED.status") {
		t.Fatalf("expected unconditional overwrite, got %s", upsertStatusCellQuery)
	}
	if strings.Contains(upsertStatusCellQuery, "WHERE step_statuses.status") {
		t.Fatal("cell overwrite must not be conditional on the previous status")
	}
}
