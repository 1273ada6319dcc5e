package users

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsersByDepartment(ctx context.Context, departmentID uuid.UUID) ([]User, error)

	ListDepartments(ctx context.Context) ([]Department, error)
	GetDepartmentByID(ctx context.Context, id uuid.UUID) (*Department, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, email, full_name, password_hash, role_level, department_id
		) VALUES (
			:id, :email, :full_name, :password_hash, :role_level, :department_id
		)`
	_, err := r.db.NamedExecContext(ctx, query, user)
	return err
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &user, err
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &user, err
}

func (r *postgresRepository) ListUsersByDepartment(ctx context.Context, departmentID uuid.UUID) ([]User, error) {
	var list []User
	err := r.db.SelectContext(ctx, &list,
		"SELECT * FROM users WHERE department_id = $1 ORDER BY role_level, created_at", departmentID)
	return list, err
}

func (r *postgresRepository) ListDepartments(ctx context.Context) ([]Department, error) {
	var list []Department
	err := r.db.SelectContext(ctx, &list, "SELECT * FROM departments ORDER BY name")
	return list, err
}

func (r *postgresRepository) GetDepartmentByID(ctx context.Context, id uuid.UUID) (*Department, error) {
	var dept Department
	err := r.db.GetContext(ctx, &dept, "SELECT * FROM departments WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &dept, err
}
