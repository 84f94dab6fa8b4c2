package service

import (
	"context"
	"strings"
	"time"

	"fast-order/internal/apperror"
	"fast-order/internal/models"
	"fast-order/internal/util"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

var defaultRoles = []models.Role{
	{RoleName: models.RoleAdmin, Description: "Administrator with full access"},
	{RoleName: models.RoleUser, Description: "Registered customer"},
	{RoleName: models.RoleInvited, Description: "Guest with read-only access"},
}

// RoleService manages the fixed set of user roles
type RoleService struct {
	roles   RoleStore
	timeout time.Duration
	logger  *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(roles RoleStore, timeout time.Duration) *RoleService {
	return &RoleService{
		roles:   roles,
		timeout: timeout,
		logger:  util.GetLogger(),
	}
}

type RoleRequest struct {
	RoleName    string `json:"roleName"`
	Description string `json:"description"`
}

// SeedRoles inserts the default roles that do not exist yet
func (s *RoleService) SeedRoles(ctx context.Context) error {
	for _, role := range defaultRoles {
		role := role
		role.ID = uuid.New()
		if err := persistExec(ctx, s.timeout, "seed_role", func(ctx context.Context) error {
			return s.roles.SeedRole(ctx, &role)
		}); err != nil {
			return storeErr(err, "Role")
		}
	}

	s.logger.Info("Roles seeded", zap.Strings("roles", lo.Map(defaultRoles, func(r models.Role, _ int) string {
		return r.RoleName
	})))
	return nil
}

// CreateRole adds one of the known roles
func (s *RoleService) CreateRole(ctx context.Context, req *RoleRequest) (*models.Role, error) {
	name := strings.ToLower(strings.TrimSpace(req.RoleName))
	known := lo.Map(defaultRoles, func(r models.Role, _ int) string { return r.RoleName })
	if !lo.Contains(known, name) {
		return nil, apperror.InvalidRequest("The role name must be one of: " + strings.Join(known, ", ") + ".")
	}
	if len(req.Description) > 200 {
		return nil, apperror.InvalidRequest("The description must be at most 200 characters long.")
	}

	role := &models.Role{ID: uuid.New(), RoleName: name, Description: req.Description}
	if err := persistExec(ctx, s.timeout, "create_role", func(ctx context.Context) error {
		return s.roles.CreateRole(ctx, role)
	}); err != nil {
		return nil, storeErr(err, "Role")
	}
	return role, nil
}

// GetRole retrieves a role by ID
func (s *RoleService) GetRole(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	role, err := persist(ctx, s.timeout, "get_role", func(ctx context.Context) (*models.Role, error) {
		return s.roles.GetRoleByID(ctx, id)
	})
	if err != nil {
		return nil, storeErr(err, "Role")
	}
	return role, nil
}

// GetRoleByName retrieves a role by name
func (s *RoleService) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	role, err := persist(ctx, s.timeout, "get_role_by_name", func(ctx context.Context) (*models.Role, error) {
		return s.roles.GetRoleByName(ctx, strings.ToLower(name))
	})
	if err != nil {
		return nil, storeErr(err, "Role")
	}
	return role, nil
}

// ListRoles returns every role
func (s *RoleService) ListRoles(ctx context.Context) ([]models.Role, error) {
	roles, err := persist(ctx, s.timeout, "list_roles", s.roles.GetRoles)
	if err != nil {
		return nil, storeErr(err, "Role")
	}
	return roles, nil
}
