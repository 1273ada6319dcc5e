package users

import (
	"time"

	"github.com/google/uuid"
)

// User is a portal account. RoleLevel is an ordinal seniority rank; higher
// values outrank lower ones when routing documents.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	FullName     string    `json:"full_name" db:"full_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	RoleLevel    int       `json:"role_level" db:"role_level"`
	DepartmentID uuid.UUID `json:"department_id" db:"department_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type Department struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
