package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/db"
)

const upsertStatusCellQuery = `
	INSERT INTO step_statuses (report_id, company_id, step_id, status)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (report_id, company_id, step_id) DO UPDATE
	SET status = EXCLUDED.status, updated_at = now()`

// patchOrchestratorQuery applies a metadata patch in one statement so
// concurrent patches touching different keys do not overwrite each other.
const patchOrchestratorQuery = `
	INSERT INTO report_orchestrators (report_id, status, metadata)
	VALUES ($1, COALESCE($2::text, 'PENDING'), $3::jsonb - $4::text[])
	ON CONFLICT (report_id) DO UPDATE
	SET status = COALESCE($2::text, report_orchestrators.status),
		metadata = (report_orchestrators.metadata || $3::jsonb) - $4::text[],
		updated_at = now()
	RETURNING status, metadata, updated_at`

func (r *Repo) ListStatusCells(ctx context.Context, reportID uuid.UUID) ([]StatusCell, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT company_id, step_id, status FROM step_statuses WHERE report_id = $1`, reportID)
	if err != nil {
		return nil, fmt.Errorf("list status cells: %w", err)
	}
	defer rows.Close()

	cells := make([]StatusCell, 0)
	for rows.Next() {
		var c StatusCell
		if err := rows.Scan(&c.CompanyID, &c.StepID, &c.Status); err != nil {
			return nil, fmt.Errorf("scan status cell: %w", err)
		}
		cells = append(cells, c)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate status cells: %w", rows.Err())
	}
	return cells, nil
}

func (r *Repo) UpsertStatusCell(ctx context.Context, reportID uuid.UUID, cell StatusCell) error {
	if _, err := r.pool.Exec(ctx, upsertStatusCellQuery, reportID, cell.CompanyID, cell.StepID, cell.Status); err != nil {
		if db.IsForeignKeyViolation(err) {
			return apperr.NotFound(reportNotFoundMessage)
		}
		return fmt.Errorf("upsert status cell: %w", err)
	}
	return nil
}

func (r *Repo) GetOrchestrator(ctx context.Context, reportID uuid.UUID) (Orchestrator, error) {
	o := Orchestrator{ReportID: reportID}
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT status, metadata, updated_at FROM report_orchestrators WHERE report_id = $1`, reportID,
	).Scan(&o.Status, &raw, &o.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return Orchestrator{ReportID: reportID, Status: StatusPending, Metadata: map[string]interface{}{}}, nil
		}
		return Orchestrator{}, fmt.Errorf("get orchestrator: %w", err)
	}
	if o.Metadata, err = decodeMetadata(raw); err != nil {
		return Orchestrator{}, err
	}
	return o, nil
}

func (r *Repo) PatchOrchestrator(ctx context.Context, patch OrchestratorPatch) (Orchestrator, error) {
	set := patch.Set
	if set == nil {
		set = map[string]interface{}{}
	}
	encoded, err := json.Marshal(set)
	if err != nil {
		return Orchestrator{}, fmt.Errorf("encode orchestrator metadata: %w", err)
	}
	deleteKeys := patch.DeleteKeys
	if deleteKeys == nil {
		deleteKeys = []string{}
	}

	o := Orchestrator{ReportID: patch.ReportID}
	var raw []byte
	err = r.pool.QueryRow(ctx, patchOrchestratorQuery,
		patch.ReportID, patch.Status, string(encoded), deleteKeys,
	).Scan(&o.Status, &raw, &o.UpdatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Orchestrator{}, apperr.NotFound(reportNotFoundMessage)
		}
		return Orchestrator{}, fmt.Errorf("patch orchestrator: %w", err)
	}
	if o.Metadata, err = decodeMetadata(raw); err != nil {
		return Orchestrator{}, err
	}
	return o, nil
}

func decodeMetadata(raw []byte) (map[string]interface{}, error) {
	metadata := map[string]interface{}{}
	if len(raw) == 0 {
		return metadata, nil
	}
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, fmt.Errorf("decode orchestrator metadata: %w", err)
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return metadata, nil
}
