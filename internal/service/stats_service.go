package service

import (
	"context"

	"github.com/civic-care/issue-service/internal/domain"
	"github.com/civic-care/issue-service/internal/repository"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

// DashboardStats feeds the admin dashboard.
type DashboardStats struct {
	Users        int
	Issues       domain.IssueStats
	TotalRevenue int64
	RecentIssues []domain.Issue
	RecentUsers  []domain.User
}

// StatsService aggregates dashboard numbers across repositories.
type StatsService struct {
	users    repository.UserRepository
	issues   repository.IssueRepository
	payments repository.PaymentRepository
}

// NewStatsService constructs the service.
func NewStatsService(users repository.UserRepository, issues repository.IssueRepository, payments repository.PaymentRepository) *StatsService {
	return &StatsService{users: users, issues: issues, payments: payments}
}

const recentSampleSize = 6

// Dashboard collects the admin overview.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	issueStats, err := s.issues.Stats(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	revenue, err := s.payments.TotalAmount(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	recentIssues, err := s.issues.Recent(ctx, recentSampleSize)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	recentUsers, err := s.users.Recent(ctx, recentSampleSize)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &DashboardStats{
		Users:        userCount,
		Issues:       *issueStats,
		TotalRevenue: revenue,
		RecentIssues: recentIssues,
		RecentUsers:  recentUsers,
	}, nil
}
