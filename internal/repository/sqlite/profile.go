package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
)

func (r *Store) CreateProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	ts := now()
	p.Created = ts
	p.Updated = ts

	_, err := r.conn.Exec(ctx, `INSERT INTO profiles (id, full_name, role, governorate, city, phone, avatar_url, rating, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.FullName, p.Role, p.Governorate, p.City, p.Phone, nullString(p.AvatarURL), p.Rating, p.Created, p.Updated)
	return err
}

func (r *Store) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, full_name, role, governorate, city, phone, avatar_url, rating, created, updated FROM profiles WHERE id = ?`, id)
	var p models.Profile
	var avatar sql.NullString
	if err := row.Scan(&p.ID, &p.FullName, &p.Role, &p.Governorate, &p.City, &p.Phone, &avatar, &p.Rating, &p.Created, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}
	if avatar.Valid {
		p.AvatarURL = avatar.String
	}

	return &p, nil
}

func (r *Store) UpdateProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE profiles SET full_name = ?, governorate = ?, city = ?, phone = ?, avatar_url = ?, updated = ? WHERE id = ?`,
		p.FullName, p.Governorate, p.City, p.Phone, nullString(p.AvatarURL), now(), p.ID)
	return err
}

func (r *Store) SetProfileRating(ctx context.Context, id string, rating float64) error {
	_, err := r.conn.Exec(ctx, `UPDATE profiles SET rating = ?, updated = ? WHERE id = ?`, rating, now(), id)
	return err
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
