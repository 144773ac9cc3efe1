// Package analytics implements the manager-only reporting endpoints:
// dashboard KPIs, a ticket-density heatmap, team/category/neighborhood
// performance tables, and feedback rating trends. Grounded in
// original_source's analytics schema/endpoints (SPEC_FULL.md §4.I).
// Every method runs with its own bounded deadline, since these are the
// one class of query in this service expected to scan a large table.
package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/civictrack/civictrackd/internal/domain"
)

// DefaultTimeout is used when New is called with timeout <= 0.
const DefaultTimeout = 30 * time.Second

type repo interface {
	DashboardKPIs(ctx context.Context) (domain.DashboardKPIs, error)
	Heatmap(ctx context.Context, categoryID *uuid.UUID) ([]domain.HeatmapPoint, error)
	TeamPerformance(ctx context.Context) ([]domain.TeamPerformance, error)
	TeamMembers(ctx context.Context, teamID uuid.UUID) ([]domain.MemberPerformance, error)
	CategoryStats(ctx context.Context) ([]domain.CategoryStat, error)
	NeighborhoodStats(ctx context.Context) ([]domain.NeighborhoodStat, error)
	FeedbackTrends(ctx context.Context) ([]domain.FeedbackTrend, error)
}

type workloadSource interface {
	Workload(ctx context.Context, teamID uuid.UUID) (int, error)
}

type Service struct {
	repo     repo
	workload workloadSource
	timeout  time.Duration
}

func New(repo repo, workload workloadSource, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{repo: repo, workload: workload, timeout: timeout}
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) Dashboard(ctx context.Context) (domain.DashboardKPIs, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.DashboardKPIs(ctx)
}

func (s *Service) Heatmap(ctx context.Context, categoryID *uuid.UUID) ([]domain.HeatmapPoint, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.Heatmap(ctx, categoryID)
}

// Teams returns per-team performance, with Workload populated from the
// routing service's live count — never from a stored column.
func (s *Service) Teams(ctx context.Context) ([]domain.TeamPerformance, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	teams, err := s.repo.TeamPerformance(ctx)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		w, err := s.workload.Workload(ctx, teams[i].TeamID)
		if err != nil {
			return nil, err
		}
		teams[i].Workload = w
	}
	return teams, nil
}

func (s *Service) TeamMembers(ctx context.Context, teamID uuid.UUID) ([]domain.MemberPerformance, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.TeamMembers(ctx, teamID)
}

func (s *Service) Categories(ctx context.Context) ([]domain.CategoryStat, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.CategoryStats(ctx)
}

func (s *Service) Neighborhoods(ctx context.Context) ([]domain.NeighborhoodStat, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.NeighborhoodStats(ctx)
}

func (s *Service) FeedbackTrends(ctx context.Context) ([]domain.FeedbackTrend, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.FeedbackTrends(ctx)
}
