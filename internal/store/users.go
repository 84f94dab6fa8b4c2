package store

import (
	"context"

	"fast-order/internal/models"

	"github.com/google/uuid"
)

// CreateUser inserts a user
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, sign_up_date, total_spent, role_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Email, user.SignUpDate, user.TotalSpent, user.RoleID)
	return translate(err)
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = $1", email)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetUsers retrieves all users
func (s *Store) GetUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY name")
	return users, translate(err)
}

// UpdateUser overwrites a user's profile
func (s *Store) UpdateUser(ctx context.Context, user *models.User) (int64, error) {
	return rowsAffected(s.db.ExecContext(ctx,
		"UPDATE users SET name = $1, email = $2, total_spent = $3, role_id = $4 WHERE id = $5",
		user.Name, user.Email, user.TotalSpent, user.RoleID, user.ID))
}

// DeleteUser removes a user
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) (int64, error) {
	return rowsAffected(s.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id))
}
