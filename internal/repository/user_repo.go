package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"thesis-manager/internal/database"
	"thesis-manager/internal/model"
)

const userSelect = `
	SELECT u.id, u.email, u.full_name, u.password_hash, u.is_active, u.created_at, u.updated_at,
	       l.lecturer_id, l.is_moderator, s.student_id
	FROM users u
	LEFT JOIN lecturers l ON l.user_id = u.id
	LEFT JOIN students s ON s.user_id = u.id`

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id))
	if err != nil {
		return model.User{}, wrapNotFound(err, "find user by id")
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx,
		userSelect+` WHERE lower(u.email) = lower($1)`, strings.TrimSpace(email)))
	if err != nil {
		return model.User{}, wrapNotFound(err, "find user by email")
	}
	return u, nil
}

// Create inserts the user together with its lecturer or student record.
func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id, email, full_name, password_hash, is_active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			u.ID, strings.TrimSpace(u.Email), u.FullName, u.PasswordHash, u.IsActive, u.CreatedAt, u.UpdatedAt); err != nil {
			return err
		}

		if u.Lecturer != nil {
			if _, err := tx.Exec(ctx,
				`INSERT INTO lecturers (user_id, lecturer_id, is_moderator) VALUES ($1, $2, $3)`,
				u.ID, u.Lecturer.LecturerID, u.Lecturer.IsModerator); err != nil {
				return err
			}
		}

		if u.Student != nil {
			if _, err := tx.Exec(ctx,
				`INSERT INTO students (user_id, student_id) VALUES ($1, $2)`,
				u.ID, u.Student.StudentID); err != nil {
				return err
			}
		}
		return nil
	})

	if isUniqueViolation(err) {
		return model.ErrPrincipalExists
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		id, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPrincipalNotFound
	}
	return nil
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = $3 WHERE id = $1`,
		id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPrincipalNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Pool.Query(ctx, userSelect+` ORDER BY lower(u.email)`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		u           model.User
		lecturerID  *string
		isModerator *bool
		studentID   *string
	)

	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		&lecturerID, &isModerator, &studentID)
	if err != nil {
		return model.User{}, err
	}

	if lecturerID != nil {
		u.Lecturer = &model.Lecturer{UserID: u.ID, LecturerID: *lecturerID, IsModerator: isModerator != nil && *isModerator}
	}
	if studentID != nil {
		u.Student = &model.Student{UserID: u.ID, StudentID: *studentID}
	}
	return u, nil
}

func wrapNotFound(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrPrincipalNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
