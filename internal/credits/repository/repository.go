// Package repository stores credit balances on the users table.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/db"
)

const userNotFoundMessage = "user not found"

// deductCreditsQuery charges regular users only when they can afford it.
// Admins match the WHERE clause but keep their balance.
const deductCreditsQuery = `
	UPDATE users
	SET credits = CASE WHEN role = 'admin' THEN credits ELSE credits - $2 END,
		updated_at = now()
	WHERE id = $1 AND (role = 'admin' OR credits >= $2)
	RETURNING credits`

const addCreditsQuery = `
	UPDATE users SET credits = credits + $2, updated_at = now()
	WHERE id = $1
	RETURNING credits`

const setCreditsQuery = `
	UPDATE users SET credits = $2, updated_at = now()
	WHERE id = $1
	RETURNING credits`

const userExistsQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

const getBalanceQuery = `SELECT credits, role FROM users WHERE id = $1`

// Balance is a user's current credit position.
type Balance struct {
	Credits int
	Role    string
}

// Repository is the credit ledger contract.
type Repository interface {
	// Deduct returns false without mutating when the balance is insufficient.
	Deduct(ctx context.Context, userID uuid.UUID, amount int) (bool, error)
	Add(ctx context.Context, userID uuid.UUID, amount int) (int, error)
	Set(ctx context.Context, userID uuid.UUID, credits int) (int, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (Balance, error)
}

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a credits repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func (r *Repo) Deduct(ctx context.Context, userID uuid.UUID, amount int) (bool, error) {
	var remaining int
	err := r.pool.QueryRow(ctx, deductCreditsQuery, userID, amount).Scan(&remaining)
	if err == nil {
		return true, nil
	}
	if !db.IsNoRows(err) {
		return false, fmt.Errorf("deduct credits: %w", err)
	}

	// No row matched: either the user is unknown or the balance is short.
	var exists bool
	if err := r.pool.QueryRow(ctx, userExistsQuery, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return false, apperr.NotFound(userNotFoundMessage)
	}
	return false, nil
}

func (r *Repo) Add(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	return r.scanCredits(ctx, addCreditsQuery, "add credits", userID, amount)
}

func (r *Repo) Set(ctx context.Context, userID uuid.UUID, credits int) (int, error) {
	return r.scanCredits(ctx, setCreditsQuery, "set credits", userID, credits)
}

func (r *Repo) GetBalance(ctx context.Context, userID uuid.UUID) (Balance, error) {
	var b Balance
	if err := r.pool.QueryRow(ctx, getBalanceQuery, userID).Scan(&b.Credits, &b.Role); err != nil {
		if db.IsNoRows(err) {
			return Balance{}, apperr.NotFound(userNotFoundMessage)
		}
		return Balance{}, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

func (r *Repo) scanCredits(ctx context.Context, query, op string, userID uuid.UUID, value int) (int, error) {
	var credits int
	if err := r.pool.QueryRow(ctx, query, userID, value).Scan(&credits); err != nil {
		if db.IsNoRows(err) {
			return 0, apperr.NotFound(userNotFoundMessage)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return credits, nil
}
