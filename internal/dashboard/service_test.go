package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CountByStatus(ctx context.Context, departmentID *uuid.UUID) ([]StatusCount, error) {
	args := m.Called(ctx, departmentID)
	return args.Get(0).([]StatusCount), args.Error(1)
}

func (m *MockRepository) CountAssigned(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) CountDueWithin(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int, error) {
	args := m.Called(ctx, userID, cutoff)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) RecentActivity(ctx context.Context, userID uuid.UUID, limit int) ([]ActivityEntry, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]ActivityEntry), args.Error(1)
}

func TestSummary(t *testing.T) {
	userID := uuid.New()
	repo := new(MockRepository)

	counts := []StatusCount{{Status: "DRAFT", Count: 2}, {Status: "PENDING", Count: 5}}
	activity := []ActivityEntry{{DocumentID: uuid.New(), Action: "SUBMIT", CreatedAt: time.Now()}}

	repo.On("CountByStatus", mock.Anything, (*uuid.UUID)(nil)).Return(counts, nil)
	repo.On("CountAssigned", mock.Anything, userID).Return(3, nil)
	repo.On("CountDueWithin", mock.Anything, userID, mock.AnythingOfType("time.Time")).Return(1, nil)
	repo.On("RecentActivity", mock.Anything, userID, recentActivityLimit).Return(activity, nil)

	svc := NewService(repo)
	summary, err := svc.Summary(context.Background(), userID, nil)

	require.NoError(t, err)
	assert.Equal(t, counts, summary.StatusCounts)
	assert.Equal(t, 3, summary.AssignedToMe)
	assert.Equal(t, 1, summary.DueSoon)
	assert.Equal(t, activity, summary.RecentActivity)
}

func TestSummaryScopedToDepartment(t *testing.T) {
	userID := uuid.New()
	deptID := uuid.New()
	repo := new(MockRepository)

	repo.On("CountByStatus", mock.Anything, &deptID).Return([]StatusCount{}, nil)
	repo.On("CountAssigned", mock.Anything, userID).Return(0, nil)
	repo.On("CountDueWithin", mock.Anything, userID, mock.AnythingOfType("time.Time")).Return(0, nil)
	repo.On("RecentActivity", mock.Anything, userID, recentActivityLimit).Return([]ActivityEntry{}, nil)

	svc := NewService(repo)
	_, err := svc.Summary(context.Background(), userID, &deptID)

	require.NoError(t, err)
	repo.AssertCalled(t, "CountByStatus", mock.Anything, &deptID)
}
