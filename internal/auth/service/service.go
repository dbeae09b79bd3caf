package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"vitelis_backend/internal/auth/password"
	"vitelis_backend/internal/auth/repository"
	"vitelis_backend/internal/auth/token"
	"vitelis_backend/internal/auth/transport"
	"vitelis_backend/internal/events"
	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/config"
	"vitelis_backend/platform/logger"
)

const (
	msgInvalidCredentials = "invalid credentials"
	msgAccountDisabled    = "account is disabled"
)

// Service implements registration, login, profile and admin user management.
type Service struct {
	repo     repository.Repository
	issuer   *token.Issuer
	eventBus events.Bus
	log      *logger.Logger
}

// New creates the auth service.
func New(repo repository.Repository, cfg config.AuthServiceConfig, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		issuer:   token.NewIssuer(cfg.GetJWTAccessSecret(), cfg.GetAccessTokenTTL()),
		eventBus: eventBus,
		log:      log,
	}
}

// Register creates a self-service account with role user and zero credits.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest) (transport.UserResponse, error) {
	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.UserResponse{}, err
	}

	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		CompanyName:  strings.TrimSpace(req.CompanyName),
		Role:         repository.RoleUser,
		IsActive:     true,
	})
	if err != nil {
		return transport.UserResponse{}, err
	}

	s.log.AuthEvent("register", user.Email, true, "")
	s.publish(ctx, events.UserRegistered{
		BaseEvent: events.NewBaseEvent(), UserID: user.ID, Email: user.Email,
		CompanyName: user.CompanyName, CreatedBy: "self",
	})
	return ToUserResponse(user), nil
}

// Login verifies credentials with bcrypt and issues an access token.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.AuthEvent("login", email, false, "unknown email")
			return transport.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
		}
		return transport.AuthResponse{}, err
	}

	if err := password.Compare(user.PasswordHash, req.Password); err != nil {
		s.log.AuthEvent("login", email, false, "password mismatch")
		return transport.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if !user.IsActive {
		s.log.AuthEvent("login", email, false, "inactive account")
		return transport.AuthResponse{}, apperr.Unauthorized(msgAccountDisabled)
	}

	signed, expiresAt, err := s.issuer.Issue(token.Subject{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return transport.AuthResponse{}, err
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		// A failed timestamp write must not block a valid login.
		s.log.DatabaseError("touch last login", err)
	}

	s.log.AuthEvent("login", email, true, "")
	return transport.AuthResponse{Token: signed, ExpiresAt: expiresAt, User: ToUserResponse(user)}, nil
}

// GetMe returns the caller's account.
func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (transport.UserResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return transport.UserResponse{}, err
	}
	return ToUserResponse(user), nil
}

// UpdateMe edits the caller's company name.
func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, req transport.UpdateMeRequest) (transport.UserResponse, error) {
	user, err := s.repo.UpdateCompanyName(ctx, userID, strings.TrimSpace(req.CompanyName))
	if err != nil {
		return transport.UserResponse{}, err
	}
	return ToUserResponse(user), nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req transport.ChangePasswordRequest) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := password.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		return apperr.Unauthorized("current password is incorrect")
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.log.AuthEvent("change_password", user.Email, true, "")
	return nil
}

// ListUsers returns a page of users for admins.
func (s *Service) ListUsers(ctx context.Context, req transport.ListUsersRequest) (transport.UserListResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	users, total, err := s.repo.ListUsers(ctx, repository.ListUsersParams{
		Search:    strings.TrimSpace(req.Search),
		Role:      req.Role,
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return transport.UserListResponse{}, err
	}

	items := make([]transport.UserResponse, len(users))
	for i, u := range users {
		items[i] = ToUserResponse(u)
	}
	return transport.UserListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// GetUser returns one user for admins.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (transport.UserResponse, error) {
	return s.GetMe(ctx, userID)
}

// CreateUser lets an admin create an account with any role and opening credits.
func (s *Service) CreateUser(ctx context.Context, req transport.CreateUserRequest) (transport.UserResponse, error) {
	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.UserResponse{}, err
	}

	role := req.Role
	if role == "" {
		role = repository.RoleUser
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		CompanyName:  strings.TrimSpace(req.CompanyName),
		Role:         role,
		IsActive:     isActive,
		Credits:      req.Credits,
		Usercases:    req.Usercases,
	})
	if err != nil {
		return transport.UserResponse{}, err
	}

	s.log.Info("user created by admin", "userId", user.ID, "email", user.Email, "role", user.Role)
	s.publish(ctx, events.UserRegistered{
		BaseEvent: events.NewBaseEvent(), UserID: user.ID, Email: user.Email,
		CompanyName: user.CompanyName, CreatedBy: "admin",
	})
	return ToUserResponse(user), nil
}

// UpdateUser applies admin edits. Admins cannot demote or deactivate themselves.
func (s *Service) UpdateUser(ctx context.Context, actorID, userID uuid.UUID, req transport.UpdateUserRequest) (transport.UserResponse, error) {
	if actorID == userID {
		if req.Role != nil && *req.Role != repository.RoleAdmin {
			return transport.UserResponse{}, apperr.Forbidden("admins cannot demote themselves")
		}
		if req.IsActive != nil && !*req.IsActive {
			return transport.UserResponse{}, apperr.Forbidden("admins cannot deactivate themselves")
		}
	}

	var companyName *string
	if req.CompanyName != nil {
		trimmed := strings.TrimSpace(*req.CompanyName)
		companyName = &trimmed
	}

	user, err := s.repo.UpdateUser(ctx, repository.UpdateUserParams{
		ID:          userID,
		CompanyName: companyName,
		Role:        req.Role,
		IsActive:    req.IsActive,
		Usercases:   req.Usercases,
	})
	if err != nil {
		return transport.UserResponse{}, err
	}

	s.log.Info("user updated by admin", "userId", user.ID, "actorId", actorID)
	return ToUserResponse(user), nil
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return apperr.Forbidden("admins cannot delete themselves")
	}
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.log.Info("user deleted by admin", "userId", userID, "actorId", actorID)
	return nil
}

// EnsureRootAdmin seeds the configured root admin once per database. It is
// called at process start by the API and the CLI; the marker row makes
// concurrent and repeated calls safe.
func (s *Service) EnsureRootAdmin(ctx context.Context, email, plainPassword string) error {
	email = normalizeEmail(email)
	if email == "" || plainPassword == "" {
		s.log.Warn("root admin bootstrap skipped: credentials not configured")
		return nil
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return err
	}

	created, err := s.repo.EnsureRootAdmin(ctx, email, hash)
	if err != nil {
		return err
	}
	if created {
		s.log.Info("root admin bootstrapped", "email", email)
	} else {
		s.log.Debug("root admin already bootstrapped")
	}
	return nil
}

// Profile resolves the shared view of a user for other modules.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (repository.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// LookupByEmail resolves an account by case-insensitive email.
func (s *Service) LookupByEmail(ctx context.Context, email string) (repository.User, error) {
	return s.repo.GetUserByEmail(ctx, normalizeEmail(email))
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, event)
	}
}

// ToUserResponse maps a user row to its API shape. The password hash never leaves.
func ToUserResponse(u repository.User) transport.UserResponse {
	usercases := u.Usercases
	if usercases == nil {
		usercases = []string{}
	}
	return transport.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		CompanyName: u.CompanyName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		Credits:     u.Credits,
		Usercases:   usercases,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
