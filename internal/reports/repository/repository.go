package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/db"
)

const (
	reportNotFoundMessage  = "report not found"
	companyNotFoundMessage = "company not found"
	stepNotConfigured      = "step is not configured for this report"
	stepAlreadyConfigured  = "step is already configured for this report"
	stepNotFoundMessage    = "generation step not found"
)

const reportColumns = `id, name, description, created_by, created_at, updated_at`
const companyColumns = `id, report_id, name, url, country, created_at`

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a reports repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (Report, error) {
	var r Report
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func scanCompany(row rowScanner) (Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.ReportID, &c.Name, &c.URL, &c.Country, &c.CreatedAt)
	return c, err
}

// ListReports returns a page of reports, newest first.
func (r *Repo) ListReports(ctx context.Context, offset, limit int) ([]Report, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC, name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	items := make([]Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan report: %w", err)
		}
		items = append(items, report)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate reports: %w", rows.Err())
	}
	return items, total, nil
}

func (r *Repo) GetReport(ctx context.Context, reportID uuid.UUID) (Report, error) {
	report, err := scanReport(r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, reportID))
	if err != nil {
		if db.IsNoRows(err) {
			return Report{}, apperr.NotFound(reportNotFoundMessage)
		}
		return Report{}, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

func (r *Repo) CreateReport(ctx context.Context, params CreateReportParams) (Report, error) {
	report, err := scanReport(r.pool.QueryRow(ctx, `
		INSERT INTO reports (id, name, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING `+reportColumns,
		uuid.New(), params.Name, params.Description, params.CreatedBy))
	if err != nil {
		return Report{}, fmt.Errorf("create report: %w", err)
	}
	return report, nil
}

// DeleteReport removes a report with its companies, steps, cells and orchestrator.
func (r *Repo) DeleteReport(ctx context.Context, reportID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1`, reportID)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(reportNotFoundMessage)
	}
	return nil
}

func (r *Repo) ListCompanies(ctx context.Context, reportID uuid.UUID) ([]Company, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+companyColumns+` FROM report_companies WHERE report_id = $1 ORDER BY name ASC, created_at ASC`, reportID)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	items := make([]Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		items = append(items, c)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate companies: %w", rows.Err())
	}
	return items, nil
}

func (r *Repo) GetCompany(ctx context.Context, reportID, companyID uuid.UUID) (Company, error) {
	c, err := scanCompany(r.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM report_companies WHERE id = $1 AND report_id = $2`, companyID, reportID))
	if err != nil {
		if db.IsNoRows(err) {
			return Company{}, apperr.NotFound(companyNotFoundMessage)
		}
		return Company{}, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

func (r *Repo) AddCompany(ctx context.Context, params AddCompanyParams) (Company, error) {
	c, err := scanCompany(r.pool.QueryRow(ctx, `
		INSERT INTO report_companies (id, report_id, name, url, country)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+companyColumns,
		uuid.New(), params.ReportID, params.Name, params.URL, params.Country))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Company{}, apperr.NotFound(reportNotFoundMessage)
		}
		return Company{}, fmt.Errorf("add company: %w", err)
	}
	return c, nil
}

func (r *Repo) RemoveCompany(ctx context.Context, reportID, companyID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM report_companies WHERE id = $1 AND report_id = $2`, companyID, reportID)
	if err != nil {
		return fmt.Errorf("remove company: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(companyNotFoundMessage)
	}
	return nil
}
