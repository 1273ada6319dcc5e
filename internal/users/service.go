package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service resolves users, departments and role relationships. It is the
// single place role-level comparisons for workflow routing are derived from.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

func (s *Service) ListDepartmentUsers(ctx context.Context, departmentID uuid.UUID) ([]User, error) {
	return s.repo.ListUsersByDepartment(ctx, departmentID)
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.repo.ListDepartments(ctx)
}

// HigherLevelUsers lists users in the actor's department that outrank the
// actor. These are the eligible submit targets.
func (s *Service) HigherLevelUsers(ctx context.Context, actorID uuid.UUID) ([]User, error) {
	actor, err := s.repo.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, fmt.Errorf("user %s not found", actorID)
	}

	candidates, err := s.repo.ListUsersByDepartment(ctx, actor.DepartmentID)
	if err != nil {
		return nil, err
	}

	var result []User
	for _, u := range candidates {
		if u.RoleLevel > actor.RoleLevel {
			result = append(result, u)
		}
	}
	return result, nil
}

// LowerOrEqualUsers lists users in the actor's department at or below the
// actor's role level, excluding the actor. These are the eligible revision
// request targets.
func (s *Service) LowerOrEqualUsers(ctx context.Context, actorID uuid.UUID) ([]User, error) {
	actor, err := s.repo.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, fmt.Errorf("user %s not found", actorID)
	}

	candidates, err := s.repo.ListUsersByDepartment(ctx, actor.DepartmentID)
	if err != nil {
		return nil, err
	}

	var result []User
	for _, u := range candidates {
		if u.ID != actor.ID && u.RoleLevel <= actor.RoleLevel {
			result = append(result, u)
		}
	}
	return result, nil
}
