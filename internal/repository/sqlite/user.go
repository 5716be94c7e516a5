package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
)

func (r *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	if u.Created == 0 {
		u.Created = now()
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO users (id, email, password_hash, created) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Created)
	return err
}

func (r *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, email, password_hash, created FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, email, password_hash, created FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &u, nil
}
