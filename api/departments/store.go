package departments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tamilore/orgvoice/api/custom_errors"
	"github.com/tamilore/orgvoice/database"
)

type Store interface {
	CreateDepartment(ctx context.Context, name string) (database.Department, error)
	GetDepartment(ctx context.Context, departmentID int64) (database.Department, error)
	ListDepartments(ctx context.Context) ([]database.Department, error)
	DeleteDepartment(ctx context.Context, departmentID int64) error
	DepartmentExists(ctx context.Context, departmentID int64) (bool, error)
}

const UniqueViolation = "23505"

type Repository struct {
	db *pgxpool.Pool
}

func NewDepartmentStore(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateDepartment(ctx context.Context, name string) (database.Department, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var department database.Department
	err := r.db.QueryRow(ctx, `
		INSERT INTO departments (name)
		VALUES ($1)
		RETURNING id, name, created_at`,
		name,
	).Scan(&department.ID, &department.Name, &department.CreatedAt)
	if err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == UniqueViolation {
			return database.Department{}, custom_errors.ErrConflict
		}
		return database.Department{}, fmt.Errorf("error creating department: %v", err)
	}

	return department, nil
}

func (r *Repository) GetDepartment(ctx context.Context, departmentID int64) (database.Department, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var department database.Department
	err := r.db.QueryRow(ctx, `
		SELECT id, name, created_at FROM departments WHERE id = $1`,
		departmentID,
	).Scan(&department.ID, &department.Name, &department.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return database.Department{}, custom_errors.ErrNotFound
	}
	if err != nil {
		return database.Department{}, fmt.Errorf("error getting department: %v", err)
	}

	return department, nil
}

func (r *Repository) ListDepartments(ctx context.Context) ([]database.Department, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, name, created_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing departments: %v", err)
	}
	defer rows.Close()

	var result []database.Department
	for rows.Next() {
		var department database.Department
		if err := rows.Scan(&department.ID, &department.Name, &department.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning department: %v", err)
		}
		result = append(result, department)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error listing departments: %v", err)
	}

	return result, nil
}

func (r *Repository) DeleteDepartment(ctx context.Context, departmentID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM departments WHERE id = $1`, departmentID)
	if err != nil {
		return fmt.Errorf("error deleting department: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return custom_errors.ErrNotFound
	}

	return nil
}

func (r *Repository) DepartmentExists(ctx context.Context, departmentID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM departments WHERE id = $1)`,
		departmentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking department: %v", err)
	}

	return exists, nil
}
