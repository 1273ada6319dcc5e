package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) ListUsersByDepartment(ctx context.Context, departmentID uuid.UUID) ([]User, error) {
	args := m.Called(ctx, departmentID)
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockRepository) ListDepartments(ctx context.Context) ([]Department, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Department), args.Error(1)
}

func (m *MockRepository) GetDepartmentByID(ctx context.Context, id uuid.UUID) (*Department, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Department), args.Error(1)
}

func ladderFixture() (uuid.UUID, []User) {
	dept := uuid.New()
	return dept, []User{
		{ID: uuid.New(), RoleLevel: 1, DepartmentID: dept},
		{ID: uuid.New(), RoleLevel: 2, DepartmentID: dept},
		{ID: uuid.New(), RoleLevel: 2, DepartmentID: dept},
		{ID: uuid.New(), RoleLevel: 3, DepartmentID: dept},
	}
}

func TestHigherLevelUsers(t *testing.T) {
	dept, members := ladderFixture()
	actor := members[1] // level 2

	repo := new(MockRepository)
	repo.On("GetUserByID", mock.Anything, actor.ID).Return(&actor, nil)
	repo.On("ListUsersByDepartment", mock.Anything, dept).Return(members, nil)

	svc := NewService(repo)
	result, err := svc.HigherLevelUsers(context.Background(), actor.ID)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 3, result[0].RoleLevel)
}

func TestLowerOrEqualUsersExcludesActor(t *testing.T) {
	dept, members := ladderFixture()
	actor := members[1] // level 2

	repo := new(MockRepository)
	repo.On("GetUserByID", mock.Anything, actor.ID).Return(&actor, nil)
	repo.On("ListUsersByDepartment", mock.Anything, dept).Return(members, nil)

	svc := NewService(repo)
	result, err := svc.LowerOrEqualUsers(context.Background(), actor.ID)

	require.NoError(t, err)
	require.Len(t, result, 2)
	for _, u := range result {
		assert.NotEqual(t, actor.ID, u.ID)
		assert.LessOrEqual(t, u.RoleLevel, actor.RoleLevel)
	}
}

func TestHigherLevelUsersUnknownActor(t *testing.T) {
	repo := new(MockRepository)
	actorID := uuid.New()
	repo.On("GetUserByID", mock.Anything, actorID).Return(nil, nil)

	svc := NewService(repo)
	_, err := svc.HigherLevelUsers(context.Background(), actorID)
	assert.Error(t, err)
}
