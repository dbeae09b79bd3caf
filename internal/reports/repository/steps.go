package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/db"
)

const configuredStepColumns = `gs.id, gs.name, gs.url, gs.dependency, rs.step_order, rs.settings`

// addStepQuery computes the next order in the same statement as the insert.
// Concurrent adds may share an order; order is not unique.
const addStepQuery = `
	INSERT INTO report_steps (report_id, step_id, step_order)
	SELECT $1::uuid, $2::uuid, COALESCE(MAX(step_order), 0) + 1
	FROM report_steps
	WHERE report_id = $1
	RETURNING step_order`

func scanConfiguredStep(row rowScanner) (ConfiguredStep, error) {
	var (
		s   ConfiguredStep
		raw []byte
	)
	if err := row.Scan(&s.StepID, &s.Name, &s.URL, &s.Dependency, &s.Order, &raw); err != nil {
		return ConfiguredStep{}, err
	}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &s.Settings); err != nil {
			return ConfiguredStep{}, fmt.Errorf("decode step settings: %w", err)
		}
	}
	return s, nil
}

// ListConfiguredSteps returns the report's steps ordered by order, then name.
func (r *Repo) ListConfiguredSteps(ctx context.Context, reportID uuid.UUID) ([]ConfiguredStep, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+configuredStepColumns+`
		FROM report_steps rs
		JOIN generation_steps gs ON gs.id = rs.step_id
		WHERE rs.report_id = $1
		ORDER BY rs.step_order ASC, gs.name ASC`, reportID)
	if err != nil {
		return nil, fmt.Errorf("list configured steps: %w", err)
	}
	defer rows.Close()

	items := make([]ConfiguredStep, 0)
	for rows.Next() {
		s, err := scanConfiguredStep(rows)
		if err != nil {
			return nil, fmt.Errorf("scan configured step: %w", err)
		}
		items = append(items, s)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate configured steps: %w", rows.Err())
	}
	return items, nil
}

func (r *Repo) GetConfiguredStep(ctx context.Context, reportID, stepID uuid.UUID) (ConfiguredStep, error) {
	s, err := scanConfiguredStep(r.pool.QueryRow(ctx, `
		SELECT `+configuredStepColumns+`
		FROM report_steps rs
		JOIN generation_steps gs ON gs.id = rs.step_id
		WHERE rs.report_id = $1 AND rs.step_id = $2`, reportID, stepID))
	if err != nil {
		if db.IsNoRows(err) {
			return ConfiguredStep{}, apperr.NotFound(stepNotConfigured)
		}
		return ConfiguredStep{}, fmt.Errorf("get configured step: %w", err)
	}
	return s, nil
}

func (r *Repo) AddStep(ctx context.Context, reportID, stepID uuid.UUID) (int, error) {
	var order int
	if err := r.pool.QueryRow(ctx, addStepQuery, reportID, stepID).Scan(&order); err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return 0, apperr.Conflict(stepAlreadyConfigured)
		case db.IsForeignKeyViolation(err):
			return 0, apperr.NotFound(stepNotFoundMessage)
		}
		return 0, fmt.Errorf("add step: %w", err)
	}
	return order, nil
}

// RemoveStep detaches a step. Remaining orders keep their gaps.
func (r *Repo) RemoveStep(ctx context.Context, reportID, stepID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM report_steps WHERE report_id = $1 AND step_id = $2`, reportID, stepID)
	if err != nil {
		return fmt.Errorf("remove step: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(stepNotConfigured)
	}
	return nil
}

func (r *Repo) SetStepOrder(ctx context.Context, reportID, stepID uuid.UUID, order int) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE report_steps SET step_order = $3, updated_at = now()
		WHERE report_id = $1 AND step_id = $2`, reportID, stepID, order)
	if err != nil {
		return fmt.Errorf("set step order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(stepNotConfigured)
	}
	return nil
}

func (r *Repo) SetStepSettings(ctx context.Context, reportID, stepID uuid.UUID, settings map[string]string) error {
	var payload *string
	if settings != nil {
		encoded, err := json.Marshal(settings)
		if err != nil {
			return fmt.Errorf("encode step settings: %w", err)
		}
		s := string(encoded)
		payload = &s
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE report_steps SET settings = $3::jsonb, updated_at = now()
		WHERE report_id = $1 AND step_id = $2`, reportID, stepID, payload)
	if err != nil {
		return fmt.Errorf("set step settings: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(stepNotConfigured)
	}
	return nil
}
