package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tamilore/orgvoice/api/custom_errors"
	"github.com/tamilore/orgvoice/database"
)

type Store interface {
	CreateUser(ctx context.Context, params CreateUserParams) (database.User, error)
	FindUserByID(ctx context.Context, userID int64) (database.User, error)
	FindUserByEmail(ctx context.Context, email string) (database.User, error)
	ListUsers(ctx context.Context) ([]database.User, error)
}

const UniqueViolation = "23505"

type Repository struct {
	db *pgxpool.Pool
}

func NewUserStore(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, email, password, role, department_id, created_at`

func scanUser(row pgx.Row) (database.User, error) {
	var user database.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Password, &user.Role,
		&user.DepartmentID, &user.CreatedAt,
	)
	return user, err
}

func (r *Repository) CreateUser(ctx context.Context, params CreateUserParams) (database.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	departmentID := pgtype.Int8{}
	if params.DepartmentID != nil {
		departmentID = pgtype.Int8{Int64: *params.DepartmentID, Valid: true}
	}

	user, err := scanUser(r.db.QueryRow(ctx, `
		INSERT INTO users (email, password, role, department_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		params.Email, params.Password, params.Role, departmentID,
	))
	if err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == UniqueViolation {
			return database.User{}, custom_errors.ErrConflict
		}
		return database.User{}, fmt.Errorf("error creating user: %v", err)
	}

	return user, nil
}

func (r *Repository) FindUserByID(ctx context.Context, userID int64) (database.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return database.User{}, custom_errors.ErrNotFound
	}
	if err != nil {
		return database.User{}, fmt.Errorf("error getting user by id: %v", err)
	}

	return user, nil
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (database.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return database.User{}, custom_errors.ErrNotFound
	}
	if err != nil {
		return database.User{}, fmt.Errorf("error getting user by email: %v", err)
	}

	return user, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]database.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %v", err)
	}
	defer rows.Close()

	var result []database.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user: %v", err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error listing users: %v", err)
	}

	return result, nil
}
