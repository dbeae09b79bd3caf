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
	userNotFoundMessage = "user not found"
	emailTakenMessage   = "email already registered"

	rootAdminMarker = "root_admin"
)

const userColumns = `id, email, password_hash, company_name, role, is_active, credits, usercases, last_login, created_at, updated_at`

const insertRootAdminMarkerQuery = `
	INSERT INTO system_markers (key, value)
	VALUES ($1, $2)
	ON CONFLICT (key) DO NOTHING`

const upsertRootAdminQuery = `
	INSERT INTO users (id, email, password_hash, company_name, role, is_active, credits)
	VALUES ($1, $2, $3, '', 'admin', true, 0)
	ON CONFLICT ((lower(email))) DO UPDATE
	SET role = 'admin', is_active = true, password_hash = EXCLUDED.password_hash, updated_at = now()`

// Repo implements the user repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CompanyName, &u.Role, &u.IsActive,
		&u.Credits, &u.Usercases, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func notFoundOr(err error, op string) error {
	if db.IsNoRows(err) {
		return apperr.NotFound(userNotFoundMessage)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// CreateUser inserts a user. Emails are stored lowercased.
func (r *Repo) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	usercases := params.Usercases
	if usercases == nil {
		usercases = []string{}
	}
	query := `
		INSERT INTO users (id, email, password_hash, company_name, role, is_active, credits, usercases)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query,
		uuid.New(), strings.ToLower(params.Email), params.PasswordHash, params.CompanyName,
		params.Role, params.IsActive, params.Credits, usercases,
	))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, apperr.Conflict(emailTakenMessage)
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetUserByID fetches a user.
func (r *Repo) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		return User{}, notFoundOr(err, "get user by id")
	}
	return user, nil
}

// GetUserByEmail fetches a user by case-insensitive email.
func (r *Repo) GetUserByEmail(ctx context.Context, email string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
	if err != nil {
		return User{}, notFoundOr(err, "get user by email")
	}
	return user, nil
}

// TouchLastLogin records a successful login.
func (r *Repo) TouchLastLogin(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `UPDATE users SET last_login = now() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// UpdateCompanyName edits the caller's profile.
func (r *Repo) UpdateCompanyName(ctx context.Context, userID uuid.UUID, companyName string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		UPDATE users SET company_name = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, userID, companyName))
	if err != nil {
		return User{}, notFoundOr(err, "update company name")
	}
	return user, nil
}

// UpdatePassword stores a new bcrypt hash.
func (r *Repo) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(userNotFoundMessage)
	}
	return nil
}

// UpdateUser applies admin edits.
func (r *Repo) UpdateUser(ctx context.Context, params UpdateUserParams) (User, error) {
	query := `
		UPDATE users
		SET company_name = COALESCE($2, company_name),
			role = COALESCE($3, role),
			is_active = COALESCE($4, is_active),
			usercases = COALESCE($5, usercases),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query,
		params.ID, params.CompanyName, params.Role, params.IsActive, params.Usercases))
	if err != nil {
		return User{}, notFoundOr(err, "update user")
	}
	return user, nil
}

// DeleteUser hard-deletes a user. Their analyses and chats cascade.
func (r *Repo) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(userNotFoundMessage)
	}
	return nil
}

// ListUsers lists users with search, role filter and pagination.
func (r *Repo) ListUsers(ctx context.Context, params ListUsersParams) ([]User, int, error) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(email ILIKE $%d OR company_name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.Role != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	sortColumn := "created_at"
	switch params.SortBy {
	case "email":
		sortColumn = "email"
	case "companyName":
		sortColumn = "company_name"
	case "credits":
		sortColumn = "credits"
	case "lastLogin":
		sortColumn = "last_login"
	}
	sortOrder := "DESC"
	if params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY %s %s NULLS LAST, email ASC
		LIMIT $%d OFFSET $%d`, userColumns, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", rows.Err())
	}
	return users, total, nil
}

// EnsureRootAdmin claims the root_admin marker and upserts the admin in one
// transaction. A second call, from this or any other instance, is a no-op.
func (r *Repo) EnsureRootAdmin(ctx context.Context, email, passwordHash string) (created bool, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin bootstrap tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, insertRootAdminMarkerQuery, rootAdminMarker, strings.ToLower(email))
	if err != nil {
		return false, fmt.Errorf("claim root admin marker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}

	if _, err = tx.Exec(ctx, upsertRootAdminQuery, uuid.New(), strings.ToLower(email), passwordHash); err != nil {
		return false, fmt.Errorf("upsert root admin: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit bootstrap tx: %w", err)
	}
	return true, nil
}
