package store

import (
	"context"

	"fast-order/internal/models"

	"github.com/google/uuid"
)

// CreateRole inserts a role
func (s *Store) CreateRole(ctx context.Context, role *models.Role) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO roles (id, role_name, description) VALUES ($1, $2, $3)",
		role.ID, role.RoleName, role.Description)
	return translate(err)
}

// SeedRole inserts a role unless one with the same name exists
func (s *Store) SeedRole(ctx context.Context, role *models.Role) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO roles (id, role_name, description) VALUES ($1, $2, $3) ON CONFLICT (role_name) DO NOTHING",
		role.ID, role.RoleName, role.Description)
	return translate(err)
}

// GetRoleByID retrieves a role by ID
func (s *Store) GetRoleByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	err := s.db.GetContext(ctx, &role, "SELECT * FROM roles WHERE id = $1", id)
	if err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

// GetRoleByName retrieves a role by name
func (s *Store) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := s.db.GetContext(ctx, &role, "SELECT * FROM roles WHERE role_name = $1", name)
	if err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

// GetRoles retrieves all roles
func (s *Store) GetRoles(ctx context.Context) ([]models.Role, error) {
	roles := []models.Role{}
	err := s.db.SelectContext(ctx, &roles, "SELECT * FROM roles ORDER BY role_name")
	return roles, translate(err)
}
