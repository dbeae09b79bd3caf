package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/db"
)

const (
	analysisNotFoundMessage  = "analysis not found"
	executionNotFoundMessage = "no analysis for executionId"
	executionIDTakenMessage  = "executionId is already assigned"
	analysisTerminalMessage  = "analysis is no longer in progress"
)

var analysisFields = []string{
	"id", "kind", "user_id", "company_name", "business_line", "url", "country", "use_case",
	"timeline", "language", "additional_information", "status", "execution_id",
	"execution_status", "execution_step", "result_text", "summary", "improvement_leverages",
	"head_to_head", "sources", "docx_file", "yaml_file", "error_message", "created_at", "updated_at",
}

// columns renders the select list, optionally qualified by a table alias.
func columns(alias string) string {
	if alias == "" {
		return strings.Join(analysisFields, ", ")
	}
	qualified := make([]string, len(analysisFields))
	for i, f := range analysisFields {
		qualified[i] = alias + "." + f
	}
	return strings.Join(qualified, ", ")
}

// resultAssignments overwrites result fields only when a value is supplied.
// Parameters start at $2.
const resultAssignments = `
		result_text = COALESCE($2::text, a.result_text),
		summary = COALESCE($3::text, a.summary),
		improvement_leverages = COALESCE($4::text, a.improvement_leverages),
		head_to_head = COALESCE($5::text, a.head_to_head),
		sources = COALESCE($6::text, a.sources),
		docx_file = COALESCE($7::text, a.docx_file),
		yaml_file = COALESCE($8::text, a.yaml_file)`

// finishQuery locks the row, completes it and returns the previous execution
// status in the same statement. Records already canceled or errored are left
// alone; a repeated result overwrites the same fields.
var finishQuery = `
	WITH prev AS (
		SELECT id, status, execution_status FROM analyses WHERE execution_id = $1 FOR UPDATE
	)
	UPDATE analyses a
	SET status = 'finished',
		execution_status = 'finished',
		error_message = NULL,` + resultAssignments + `,
		updated_at = now()
	FROM prev
	WHERE a.id = prev.id AND prev.status IN ('progress', 'finished')
	RETURNING prev.execution_status, ` + columns("a")

// markErrorQuery fails an in-progress record. A repeated error rewrites the
// message; finished and canceled records are left alone.
func markErrorQuery(where string) string {
	return `
	WITH prev AS (
		SELECT id, status, execution_status FROM analyses WHERE ` + where + ` = $1 FOR UPDATE
	)
	UPDATE analyses a
	SET status = 'error',
		execution_status = 'error',
		error_message = NULLIF($2, ''),
		updated_at = now()
	FROM prev
	WHERE a.id = prev.id AND prev.status IN ('progress', 'error')
	RETURNING prev.execution_status, ` + columns("a")
}

var (
	markErrorByExecutionQuery = markErrorQuery("execution_id")
	markErrorByIDQuery        = markErrorQuery("id")
)

const updateProgressQuery = `
	UPDATE analyses
	SET execution_step = $2,
		execution_status = CASE WHEN $2::integer > 0 THEN 'inProgress' ELSE 'started' END,
		updated_at = now()
	WHERE execution_id = $1 AND status = 'progress'
	RETURNING `

// setExecutionIDQuery never replaces an existing, different executionId.
const setExecutionIDQuery = `
	UPDATE analyses
	SET execution_id = $2, updated_at = now()
	WHERE id = $1 AND (execution_id IS NULL OR execution_id = $2)
	RETURNING `

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates an analyses repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInto(row rowScanner, prefix ...any) (Analysis, error) {
	var a Analysis
	dest := append(prefix,
		&a.ID, &a.Kind, &a.UserID, &a.CompanyName, &a.BusinessLine, &a.URL, &a.Country, &a.UseCase,
		&a.Timeline, &a.Language, &a.AdditionalInformation, &a.Status, &a.ExecutionID,
		&a.ExecutionStatus, &a.ExecutionStep, &a.ResultText, &a.Summary, &a.ImprovementLeverages,
		&a.HeadToHead, &a.Sources, &a.DocxFile, &a.YAMLFile, &a.ErrorMessage, &a.CreatedAt, &a.UpdatedAt,
	)
	err := row.Scan(dest...)
	return a, err
}

func scanTransition(row rowScanner) (Transition, error) {
	var t Transition
	a, err := scanInto(row, &t.PreviousExecutionStatus)
	if err != nil {
		return Transition{}, err
	}
	t.Analysis = a
	t.Applied = true
	return t, nil
}

// skipped reports a record the transition did not touch.
func skipped(a Analysis) Transition {
	return Transition{Analysis: a, PreviousExecutionStatus: a.ExecutionStatus}
}

func (r *Repo) Create(ctx context.Context, p CreateParams) (Analysis, error) {
	a, err := scanInto(r.pool.QueryRow(ctx, `
		INSERT INTO analyses (id, kind, user_id, company_name, business_line, url, country, use_case,
			timeline, language, additional_information, status, execution_id, execution_status, execution_step)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'progress', $12, 'started', 0)
		RETURNING `+columns(""),
		uuid.New(), p.Kind, p.UserID, p.CompanyName, p.BusinessLine, p.URL, p.Country, p.UseCase,
		p.Timeline, p.Language, p.AdditionalInformation, p.ExecutionID,
	))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Analysis{}, apperr.Conflict(executionIDTakenMessage)
		}
		return Analysis{}, fmt.Errorf("create analysis: %w", err)
	}
	return a, nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (Analysis, error) {
	a, err := scanInto(r.pool.QueryRow(ctx, `SELECT `+columns("")+` FROM analyses WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return Analysis{}, apperr.NotFound(analysisNotFoundMessage)
		}
		return Analysis{}, fmt.Errorf("get analysis: %w", err)
	}
	return a, nil
}

func (r *Repo) GetByExecutionID(ctx context.Context, executionID string) (Analysis, error) {
	a, err := scanInto(r.pool.QueryRow(ctx, `SELECT `+columns("")+` FROM analyses WHERE execution_id = $1`, executionID))
	if err != nil {
		if db.IsNoRows(err) {
			return Analysis{}, apperr.NotFound(executionNotFoundMessage)
		}
		return Analysis{}, fmt.Errorf("get analysis by execution id: %w", err)
	}
	return a, nil
}

func (r *Repo) List(ctx context.Context, p ListParams) ([]Analysis, int, error) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if p.UserID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, *p.UserID)
		argIdx++
	}
	if p.Kind != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, p.Kind)
		argIdx++
	}
	if p.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, p.Status)
		argIdx++
	}
	if p.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(company_name ILIKE $%d OR execution_id ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+p.Search+"%")
		argIdx++
	}
	whereClause := strings.Join(whereClauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM analyses WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count analyses: %w", err)
	}

	sortOrder := "DESC"
	if p.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	args = append(args, p.Limit, p.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM analyses
		WHERE %s
		ORDER BY created_at %s, id
		LIMIT $%d OFFSET $%d`, columns(""), whereClause, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	items := make([]Analysis, 0)
	for rows.Next() {
		a, err := scanInto(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan analysis: %w", err)
		}
		items = append(items, a)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate analyses: %w", rows.Err())
	}
	return items, total, nil
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(analysisNotFoundMessage)
	}
	return nil
}

func (r *Repo) FindOwnerByFileKey(ctx context.Context, key string) (uuid.UUID, error) {
	var owner uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT user_id FROM analyses WHERE docx_file = $1 OR yaml_file = $1 LIMIT 1`, key).Scan(&owner)
	if err != nil {
		if db.IsNoRows(err) {
			return uuid.Nil, apperr.NotFound("file not found")
		}
		return uuid.Nil, fmt.Errorf("find file owner: %w", err)
	}
	return owner, nil
}

func (r *Repo) SetExecutionID(ctx context.Context, id uuid.UUID, executionID string) (Analysis, error) {
	a, err := scanInto(r.pool.QueryRow(ctx, setExecutionIDQuery+columns(""), id, executionID))
	if err == nil {
		return a, nil
	}
	switch {
	case db.IsUniqueViolation(err):
		return Analysis{}, apperr.Conflict(executionIDTakenMessage)
	case db.IsNoRows(err):
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return Analysis{}, getErr
		}
		return Analysis{}, apperr.Conflict(executionIDTakenMessage)
	}
	return Analysis{}, fmt.Errorf("set execution id: %w", err)
}

func (r *Repo) Update(ctx context.Context, p UpdateParams) (Transition, error) {
	query := `
	WITH prev AS (
		SELECT id, execution_status FROM analyses WHERE id = $1 FOR UPDATE
	)
	UPDATE analyses a
	SET` + resultAssignments + `,
		status = COALESCE($9::text, a.status),
		execution_status = COALESCE($10::text, a.execution_status),
		execution_step = COALESCE($11::integer, a.execution_step),
		execution_id = COALESCE(a.execution_id, $12::text),
		updated_at = now()
	FROM prev
	WHERE a.id = prev.id
	RETURNING prev.execution_status, ` + columns("a")

	t, err := scanTransition(r.pool.QueryRow(ctx, query,
		p.ID, p.Result.ResultText, p.Result.Summary, p.Result.ImprovementLeverages, p.Result.HeadToHead,
		p.Result.Sources, p.Result.DocxFile, p.Result.YAMLFile,
		p.Status, p.ExecutionStatus, p.ExecutionStep, p.ExecutionID,
	))
	if err != nil {
		switch {
		case db.IsNoRows(err):
			return Transition{}, apperr.NotFound(analysisNotFoundMessage)
		case db.IsUniqueViolation(err):
			return Transition{}, apperr.Conflict(executionIDTakenMessage)
		}
		return Transition{}, fmt.Errorf("update analysis: %w", err)
	}
	return t, nil
}

func (r *Repo) Cancel(ctx context.Context, id uuid.UUID) (Analysis, error) {
	a, err := scanInto(r.pool.QueryRow(ctx, `
		UPDATE analyses
		SET status = 'canceled', execution_status = 'canceled', updated_at = now()
		WHERE id = $1 AND status = 'progress'
		RETURNING `+columns(""), id))
	if err == nil {
		return a, nil
	}
	if !db.IsNoRows(err) {
		return Analysis{}, fmt.Errorf("cancel analysis: %w", err)
	}
	if _, getErr := r.Get(ctx, id); getErr != nil {
		return Analysis{}, getErr
	}
	return Analysis{}, apperr.Conflict(analysisTerminalMessage)
}

func (r *Repo) MarkFailed(ctx context.Context, id uuid.UUID, message string) (Transition, error) {
	t, err := scanTransition(r.pool.QueryRow(ctx, markErrorByIDQuery, id, message))
	if err == nil {
		return t, nil
	}
	if !db.IsNoRows(err) {
		return Transition{}, fmt.Errorf("mark analysis failed: %w", err)
	}
	current, getErr := r.Get(ctx, id)
	if getErr != nil {
		return Transition{}, getErr
	}
	return skipped(current), nil
}

func (r *Repo) UpdateProgress(ctx context.Context, executionID string, step int) (Analysis, bool, error) {
	a, err := scanInto(r.pool.QueryRow(ctx, updateProgressQuery+columns(""), executionID, step))
	if err == nil {
		return a, true, nil
	}
	if !db.IsNoRows(err) {
		return Analysis{}, false, fmt.Errorf("update progress: %w", err)
	}
	// Either unknown or already terminal.
	current, getErr := r.GetByExecutionID(ctx, executionID)
	if getErr != nil {
		return Analysis{}, false, getErr
	}
	return current, false, nil
}

func (r *Repo) Finish(ctx context.Context, executionID string, result Result) (Transition, error) {
	t, err := scanTransition(r.pool.QueryRow(ctx, finishQuery,
		executionID, result.ResultText, result.Summary, result.ImprovementLeverages, result.HeadToHead,
		result.Sources, result.DocxFile, result.YAMLFile,
	))
	if err == nil {
		return t, nil
	}
	if !db.IsNoRows(err) {
		return Transition{}, fmt.Errorf("finish analysis: %w", err)
	}
	current, getErr := r.GetByExecutionID(ctx, executionID)
	if getErr != nil {
		return Transition{}, getErr
	}
	return skipped(current), nil
}

func (r *Repo) MarkError(ctx context.Context, executionID, message string) (Transition, error) {
	t, err := scanTransition(r.pool.QueryRow(ctx, markErrorByExecutionQuery, executionID, message))
	if err == nil {
		return t, nil
	}
	if !db.IsNoRows(err) {
		return Transition{}, fmt.Errorf("mark analysis error: %w", err)
	}
	current, getErr := r.GetByExecutionID(ctx, executionID)
	if getErr != nil {
		return Transition{}, getErr
	}
	return skipped(current), nil
}
