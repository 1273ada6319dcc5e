package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Summary is the per-user dashboard payload.
type Summary struct {
	StatusCounts   []StatusCount   `json:"status_counts"`
	AssignedToMe   int             `json:"assigned_to_me"`
	DueSoon        int             `json:"due_soon"`
	RecentActivity []ActivityEntry `json:"recent_activity"`
}

const (
	dueSoonWindow       = 72 * time.Hour
	recentActivityLimit = 20
)

type Service interface {
	Summary(ctx context.Context, userID uuid.UUID, departmentID *uuid.UUID) (*Summary, error)
}

type dashboardService struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &dashboardService{repo: repo}
}

func (s *dashboardService) Summary(ctx context.Context, userID uuid.UUID, departmentID *uuid.UUID) (*Summary, error) {
	counts, err := s.repo.CountByStatus(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	assigned, err := s.repo.CountAssigned(ctx, userID)
	if err != nil {
		return nil, err
	}

	dueSoon, err := s.repo.CountDueWithin(ctx, userID, time.Now().Add(dueSoonWindow))
	if err != nil {
		return nil, err
	}

	activity, err := s.repo.RecentActivity(ctx, userID, recentActivityLimit)
	if err != nil {
		return nil, err
	}

	return &Summary{
		StatusCounts:   counts,
		AssignedToMe:   assigned,
		DueSoon:        dueSoon,
		RecentActivity: activity,
	}, nil
}
