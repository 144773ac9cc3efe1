package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civictrack/civictrackd/internal/analytics"
	"github.com/civictrack/civictrackd/internal/domain"
)

type fakeRepo struct {
	kpis   domain.DashboardKPIs
	teams  []domain.TeamPerformance
	dashErr error
}

func (f *fakeRepo) DashboardKPIs(ctx context.Context) (domain.DashboardKPIs, error) {
	if err := ctx.Err(); err != nil {
		return domain.DashboardKPIs{}, err
	}
	return f.kpis, f.dashErr
}

func (f *fakeRepo) Heatmap(_ context.Context, _ *uuid.UUID) ([]domain.HeatmapPoint, error) {
	return nil, nil
}

func (f *fakeRepo) TeamPerformance(_ context.Context) ([]domain.TeamPerformance, error) {
	return f.teams, nil
}

func (f *fakeRepo) TeamMembers(_ context.Context, _ uuid.UUID) ([]domain.MemberPerformance, error) {
	return nil, nil
}

func (f *fakeRepo) CategoryStats(_ context.Context) ([]domain.CategoryStat, error) { return nil, nil }

func (f *fakeRepo) NeighborhoodStats(_ context.Context) ([]domain.NeighborhoodStat, error) {
	return nil, nil
}

func (f *fakeRepo) FeedbackTrends(_ context.Context) ([]domain.FeedbackTrend, error) {
	return nil, nil
}

type fakeWorkload struct {
	byTeam map[uuid.UUID]int
}

func (f *fakeWorkload) Workload(_ context.Context, teamID uuid.UUID) (int, error) {
	return f.byTeam[teamID], nil
}

func TestDashboard_ReturnsRepoResult(t *testing.T) {
	repo := &fakeRepo{kpis: domain.DashboardKPIs{Total: 10, Open: 4, Resolved: 6}}
	svc := analytics.New(repo, &fakeWorkload{}, time.Second)

	got, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, got.Total)
}

func TestTeams_PopulatesLiveWorkloadNotStoredColumn(t *testing.T) {
	teamID := uuid.New()
	repo := &fakeRepo{teams: []domain.TeamPerformance{{TeamID: teamID, TeamName: "Roads", Workload: 999}}}
	workload := &fakeWorkload{byTeam: map[uuid.UUID]int{teamID: 3}}
	svc := analytics.New(repo, workload, time.Second)

	got, err := svc.Teams(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Workload, "workload must come from the live routing count, not whatever the repo prefilled")
}

func TestNew_DefaultsTimeoutWhenNonPositive(t *testing.T) {
	repo := &fakeRepo{kpis: domain.DashboardKPIs{Total: 1}}
	svc := analytics.New(repo, &fakeWorkload{}, 0)

	got, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Total)
}
