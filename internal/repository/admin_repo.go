package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"thesis-manager/internal/database"
	"thesis-manager/internal/model"
)

type AdminRepository struct {
	db *database.DB
}

func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (model.Admin, error) {
	var a model.Admin
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at, updated_at
		 FROM admins WHERE lower(username) = lower($1)`, strings.TrimSpace(username)).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Admin{}, model.ErrPrincipalNotFound
	}
	if err != nil {
		return model.Admin{}, fmt.Errorf("find admin by username: %w", err)
	}
	return a, nil
}

func (r *AdminRepository) FindByID(ctx context.Context, id string) (model.Admin, error) {
	var a model.Admin
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at, updated_at
		 FROM admins WHERE id = $1`, id).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Admin{}, model.ErrPrincipalNotFound
	}
	if err != nil {
		return model.Admin{}, fmt.Errorf("find admin by id: %w", err)
	}
	return a, nil
}

func (r *AdminRepository) Create(ctx context.Context, a model.Admin) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO admins (id, username, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Username, a.PasswordHash, a.CreatedAt, a.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrPrincipalExists
	}
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE admins SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		id, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPrincipalNotFound
	}
	return nil
}

func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}
