package repository

import (
	"strings"
	"testing"
)

func TestProgressNeverTouchesTerminalRecords(t *testing.T) {
	if !strings.Contains(updateProgressQuery, "WHERE execution_id = $1 AND status = 'progress'") {
		t.Fatalf("progress must be scoped to in-progress records, got %s", updateProgressQuery)
	}
}

func TestProgressStatusFollowsStep(t *testing.T) {
	if !strings.Contains(updateProgressQuery, "CASE WHEN $2::integer > 0 THEN 'inProgress' ELSE 'started' END") {
		t.Fatalf("step 0 must keep the run started, got %s", updateProgressQuery)
	}
}

func TestTerminalTransitionsOnlyLeaveProgressOrRepeat(t *testing.T) {
	for name, tc := range map[string]struct {
		query string
		guard string
	}{
		"finish":             {finishQuery, "AND prev.status IN ('progress', 'finished')"},
		"error by execution": {markErrorByExecutionQuery, "AND prev.status IN ('progress', 'error')"},
		"error by id":        {markErrorByIDQuery, "AND prev.status IN ('progress', 'error')"},
	} {
		if !strings.Contains(tc.query, "SELECT id, status, execution_status") || !strings.Contains(tc.query, tc.guard) {
			t.Fatalf("%s query must not leave another terminal state: %s", name, tc.query)
		}
	}
}

func TestSkippedTransitionKeepsCurrentRow(t *testing.T) {
	a := Analysis{Status: StatusCanceled, ExecutionStatus: ExecutionCanceled}
	got := skipped(a)
	if got.Applied || got.PreviousExecutionStatus != ExecutionCanceled || got.Analysis.Status != StatusCanceled {
		t.Fatalf("unexpected skipped transition %+v", got)
	}
}

func TestExecutionIDIsSetOnce(t *testing.T) {
	if !strings.Contains(setExecutionIDQuery, "(execution_id IS NULL OR execution_id = $2)") {
		t.Fatalf("executionId must never be replaced, got %s", setExecutionIDQuery)
	}
}

func TestTransitionsReturnPreviousExecutionStatus(t *testing.T) {
	for name, q := range map[string]string{
		"finish":             finishQuery,
		"error by execution": markErrorByExecutionQuery,
		"error by id":        markErrorByIDQuery,
	} {
		if !strings.Contains(q, "FOR UPDATE") || !strings.Contains(q, "RETURNING prev.execution_status, a.id") {
			t.Fatalf("%s query must lock and return the previous status: %s", name, q)
		}
	}
}

func TestColumnsQualifiesWithAlias(t *testing.T) {
	got := columns("a")
	if !strings.HasPrefix(got, "a.id, a.kind") || strings.Contains(got, " id,") {
		t.Fatalf("unexpected qualified columns %s", got)
	}
}
