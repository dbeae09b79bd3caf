package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a row of the users table.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CompanyName  string
	Role         string
	IsActive     bool
	Credits      int
	Usercases    []string
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserParams contains data for inserting a user.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	CompanyName  string
	Role         string
	IsActive     bool
	Credits      int
	Usercases    []string
}

// UpdateUserParams contains admin-editable fields. Nil means unchanged.
type UpdateUserParams struct {
	ID          uuid.UUID
	CompanyName *string
	Role        *string
	IsActive    *bool
	Usercases   []string
}

// ListUsersParams defines filters for the admin user list.
type ListUsersParams struct {
	Search    string
	Role      string
	Offset    int
	Limit     int
	SortBy    string
	SortOrder string
}

// UserReader is the read side other modules may depend on.
type UserReader interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
}

// Repository defines the user data access contract.
type Repository interface {
	UserReader
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	TouchLastLogin(ctx context.Context, userID uuid.UUID) error
	UpdateCompanyName(ctx context.Context, userID uuid.UUID, companyName string) (User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	UpdateUser(ctx context.Context, params UpdateUserParams) (User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	ListUsers(ctx context.Context, params ListUsersParams) ([]User, int, error)
	// EnsureRootAdmin creates or promotes the root admin exactly once per
	// database. It returns false when the marker already existed.
	EnsureRootAdmin(ctx context.Context, email, passwordHash string) (bool, error)
}
