package transport

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,strongpassword,max=128"`
	CompanyName string `json:"companyName" validate:"required,min=1,max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=128"`
}

type UpdateMeRequest struct {
	CompanyName string `json:"companyName" validate:"required,min=1,max=200"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,strongpassword,max=128"`
}

type CreateUserRequest struct {
	Email       string   `json:"email" validate:"required,email,max=254"`
	Password    string   `json:"password" validate:"required,strongpassword,max=128"`
	CompanyName string   `json:"companyName" validate:"max=200"`
	Role        string   `json:"role" validate:"omitempty,oneof=user admin"`
	Credits     int      `json:"credits" validate:"min=0"`
	Usercases   []string `json:"usercases" validate:"omitempty,dive,min=1,max=60"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

type UpdateUserRequest struct {
	CompanyName *string  `json:"companyName,omitempty" validate:"omitempty,max=200"`
	Role        *string  `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	IsActive    *bool    `json:"isActive,omitempty"`
	Usercases   []string `json:"usercases,omitempty" validate:"omitempty,dive,min=1,max=60"`
}

type ListUsersRequest struct {
	Search    string `form:"search" validate:"max=100"`
	Role      string `form:"role" validate:"omitempty,oneof=user admin"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=email companyName credits lastLogin createdAt"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	CompanyName string     `json:"companyName"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	Credits     int        `json:"credits"`
	Usercases   []string   `json:"usercases"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type UserListResponse struct {
	Items      []UserResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}
