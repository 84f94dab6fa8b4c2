package service

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"fast-order/internal/apperror"
	"fast-order/internal/models"
	"fast-order/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UserService manages customers
type UserService struct {
	users   UserStore
	roles   RoleStore
	timeout time.Duration
	logger  *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(users UserStore, roles RoleStore, timeout time.Duration) *UserService {
	return &UserService{
		users:   users,
		roles:   roles,
		timeout: timeout,
		logger:  util.GetLogger(),
	}
}

// UserRequest carries the fields of a new or updated user
type UserRequest struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
	RoleID     uuid.UUID       `json:"roleId"`
}

func (r *UserRequest) validate() error {
	name := strings.TrimSpace(r.Name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return apperror.InvalidRequest("The name must be between 2 and 100 characters long.")
	}
	for _, c := range name {
		if !unicode.IsLetter(c) && c != ' ' {
			return apperror.InvalidRequest("The name can only contain letters and spaces.")
		}
	}
	if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
		return apperror.InvalidRequest("The email must be a valid address.")
	}
	if r.TotalSpent.IsNegative() {
		return apperror.InvalidRequest("The total spent cannot be negative.")
	}
	if r.RoleID == uuid.Nil {
		return apperror.InvalidRequest("A role is required.")
	}
	return nil
}

// CreateUser registers a user under an existing role
func (s *UserService) CreateUser(ctx context.Context, req *UserRequest) (*models.User, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := s.checkRole(ctx, req.RoleID); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(req.Name),
		Email:      req.Email,
		SignUpDate: time.Now().UTC().Truncate(24 * time.Hour),
		TotalSpent: req.TotalSpent,
		RoleID:     req.RoleID,
	}
	if err := persistExec(ctx, s.timeout, "create_user", func(ctx context.Context) error {
		return s.users.CreateUser(ctx, user)
	}); err != nil {
		return nil, storeErr(err, "User")
	}

	s.logger.Info("User created", zap.String("user_id", user.ID.String()))
	return user, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := persist(ctx, s.timeout, "get_user", func(ctx context.Context) (*models.User, error) {
		return s.users.GetUserByID(ctx, id)
	})
	if err != nil {
		return nil, storeErr(err, "User")
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := persist(ctx, s.timeout, "get_user_by_email", func(ctx context.Context) (*models.User, error) {
		return s.users.GetUserByEmail(ctx, email)
	})
	if err != nil {
		return nil, storeErr(err, "User")
	}
	return user, nil
}

// ListUsers returns every user
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := persist(ctx, s.timeout, "list_users", s.users.GetUsers)
	if err != nil {
		return nil, storeErr(err, "User")
	}
	return users, nil
}

// UpdateUser rewrites a user's profile and role
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req *UserRequest) (*models.User, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRole(ctx, req.RoleID); err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Email = req.Email
	user.TotalSpent = req.TotalSpent
	user.RoleID = req.RoleID

	affected, err := persist(ctx, s.timeout, "update_user", func(ctx context.Context) (int64, error) {
		return s.users.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, storeErr(err, "User")
	}
	if affected == 0 {
		return nil, apperror.NotFound("User")
	}
	return user, nil
}

// DeleteUser removes a user without orders
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	affected, err := persist(ctx, s.timeout, "delete_user", func(ctx context.Context) (int64, error) {
		return s.users.DeleteUser(ctx, id)
	})
	if err != nil {
		return storeErr(err, "User")
	}
	if affected == 0 {
		return apperror.NotFound("User")
	}

	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

func (s *UserService) checkRole(ctx context.Context, roleID uuid.UUID) error {
	_, err := persist(ctx, s.timeout, "get_role", func(ctx context.Context) (*models.Role, error) {
		return s.roles.GetRoleByID(ctx, roleID)
	})
	return storeErr(err, "Role")
}
