package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/VadymBoyko/PW-HW14/internal/models"
	"github.com/VadymBoyko/PW-HW14/internal/storage"
)

// Ensure UserStore satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*UserStore)(nil)

// UserStore provides Postgres-backed persistence for users.
type UserStore struct {
	db *sql.DB
}

const userColumns = `id, username, email, password, COALESCE(refresh_token, ''), COALESCE(avatar, ''), confirmed`

// CreateUser inserts a new user row. A duplicate email yields
// storage.ErrAlreadyExists.
func (s *UserStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		INSERT INTO users (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns
	row := s.db.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByEmail fetches a user by email address.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

// FindByID fetches a user by primary key.
func (s *UserStore) FindByID(ctx context.Context, id int64) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

// UpdateRefreshToken overwrites the stored refresh token. An empty token
// clears the column, revoking the current refresh token.
func (s *UserStore) UpdateRefreshToken(ctx context.Context, id int64, token string) error {
	query := `UPDATE users SET refresh_token = NULLIF($2, '') WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ConfirmEmail sets the confirmed flag. Confirming an already confirmed user
// is a no-op.
func (s *UserStore) ConfirmEmail(ctx context.Context, email string) error {
	query := `UPDATE users SET confirmed = TRUE WHERE email = $1`
	res, err := s.db.ExecContext(ctx, query, email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateAvatar stores the avatar URL and returns the updated user.
func (s *UserStore) UpdateAvatar(ctx context.Context, id int64, url string) (models.User, error) {
	query := `UPDATE users SET avatar = $2 WHERE id = $1 RETURNING ` + userColumns
	return scanUser(s.db.QueryRowContext(ctx, query, id, url))
}

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.RefreshToken, &user.Avatar, &user.Confirmed)
	if err != nil {
		return models.User{}, mapRowError(err)
	}
	return user, nil
}
