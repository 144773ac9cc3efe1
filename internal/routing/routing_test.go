package routing_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civictrack/civictrackd/internal/apperror"
	"github.com/civictrack/civictrackd/internal/domain"
	"github.com/civictrack/civictrackd/internal/routing"
)

type fakeTeams struct {
	byDistrict map[uuid.UUID][]domain.Team
	byCity     map[string][]domain.Team
	byCategory []domain.Team
	fallback   *domain.Team
	workload   map[uuid.UUID]int
}

func (f *fakeTeams) MatchingTeamsByDistrict(_ context.Context, _, districtID uuid.UUID) ([]domain.Team, error) {
	return f.byDistrict[districtID], nil
}

func (f *fakeTeams) MatchingTeamsByCity(_ context.Context, _ uuid.UUID, city string) ([]domain.Team, error) {
	return f.byCity[city], nil
}

func (f *fakeTeams) MatchingTeamsByCategory(_ context.Context, _ uuid.UUID) ([]domain.Team, error) {
	return f.byCategory, nil
}

func (f *fakeTeams) FallbackTeam(_ context.Context) (domain.Team, error) {
	if f.fallback == nil {
		return domain.Team{}, apperror.NotFound("fallback team")
	}
	return *f.fallback, nil
}

func (f *fakeTeams) Workload(_ context.Context, teamID uuid.UUID) (int, error) {
	return f.workload[teamID], nil
}

type fakeDistricts struct {
	byNameCity map[string]domain.District
}

func (f *fakeDistricts) FindByNameCity(_ context.Context, name, city string) (domain.District, error) {
	d, ok := f.byNameCity[name+"|"+city]
	if !ok {
		return domain.District{}, apperror.NotFound("district")
	}
	return d, nil
}

type fakeServiceAreas struct {
	byTeam map[uuid.UUID][]domain.ServiceArea
}

func (f *fakeServiceAreas) ListByTeam(_ context.Context, teamID uuid.UUID) ([]domain.ServiceArea, error) {
	return f.byTeam[teamID], nil
}

func newTeam(id string) domain.Team {
	return domain.Team{ID: uuid.MustParse(id)}
}

func TestFindMatchingTeam_DistrictMatchWins(t *testing.T) {
	categoryID := uuid.New()
	districtID := uuid.New()
	wantTeam := newTeam("00000000-0000-0000-0000-000000000001")

	teams := &fakeTeams{
		byDistrict: map[uuid.UUID][]domain.Team{districtID: {wantTeam}},
		byCity:     map[string][]domain.Team{"Springfield": {newTeam("00000000-0000-0000-0000-000000000099")}},
		byCategory: []domain.Team{newTeam("00000000-0000-0000-0000-000000000098")},
	}
	districts := &fakeDistricts{byNameCity: map[string]domain.District{
		"Downtown|Springfield": {ID: districtID, Name: "Downtown", City: "Springfield"},
	}}
	svc := routing.New(teams, districts, &fakeServiceAreas{})

	got, err := svc.FindMatchingTeam(context.Background(), categoryID, "Downtown", "Springfield")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wantTeam.ID, *got)
}

func TestFindMatchingTeam_FallsBackToCityWhenNoDistrictMatch(t *testing.T) {
	categoryID := uuid.New()
	wantTeam := newTeam("00000000-0000-0000-0000-000000000002")

	teams := &fakeTeams{
		byCity:     map[string][]domain.Team{"Springfield": {wantTeam}},
		byCategory: []domain.Team{newTeam("00000000-0000-0000-0000-000000000098")},
	}
	districts := &fakeDistricts{}
	svc := routing.New(teams, districts, &fakeServiceAreas{})

	got, err := svc.FindMatchingTeam(context.Background(), categoryID, "Unknown District", "Springfield")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wantTeam.ID, *got)
}

func TestFindMatchingTeam_FallsBackToCategoryWhenNoCityMatch(t *testing.T) {
	categoryID := uuid.New()
	wantTeam := newTeam("00000000-0000-0000-0000-000000000003")

	teams := &fakeTeams{
		byCategory: []domain.Team{wantTeam},
	}
	svc := routing.New(teams, &fakeDistricts{}, &fakeServiceAreas{})

	got, err := svc.FindMatchingTeam(context.Background(), categoryID, "", "Springfield")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wantTeam.ID, *got)
}

func TestFindMatchingTeam_FallsBackToFallbackTeam(t *testing.T) {
	categoryID := uuid.New()
	fallback := newTeam("00000000-0000-0000-0000-000000000004")

	teams := &fakeTeams{fallback: &fallback}
	svc := routing.New(teams, &fakeDistricts{}, &fakeServiceAreas{})

	got, err := svc.FindMatchingTeam(context.Background(), categoryID, "", "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, fallback.ID, *got)
}

func TestFindMatchingTeam_UnassignedWhenNoFallbackConfigured(t *testing.T) {
	categoryID := uuid.New()

	teams := &fakeTeams{}
	svc := routing.New(teams, &fakeDistricts{}, &fakeServiceAreas{})

	got, err := svc.FindMatchingTeam(context.Background(), categoryID, "", "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindMatchingTeam_TieBreakIsLowestUUID(t *testing.T) {
	categoryID := uuid.New()
	low := newTeam("00000000-0000-0000-0000-000000000001")
	high := newTeam("00000000-0000-0000-0000-000000000009")

	teams := &fakeTeams{
		byCategory: []domain.Team{high, low},
	}
	svc := routing.New(teams, &fakeDistricts{}, &fakeServiceAreas{})

	got, err := svc.FindMatchingTeam(context.Background(), categoryID, "", "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, low.ID, *got)
}

func TestWorkload(t *testing.T) {
	teamID := uuid.New()
	teams := &fakeTeams{workload: map[uuid.UUID]int{teamID: 7}}
	svc := routing.New(teams, &fakeDistricts{}, &fakeServiceAreas{})

	got, err := svc.Workload(context.Background(), teamID)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestServiceAreas(t *testing.T) {
	teamID := uuid.New()
	areas := []domain.ServiceArea{{TeamID: teamID, CategoryID: uuid.New(), DistrictID: uuid.New()}}
	serviceAreas := &fakeServiceAreas{byTeam: map[uuid.UUID][]domain.ServiceArea{teamID: areas}}
	svc := routing.New(&fakeTeams{}, &fakeDistricts{}, serviceAreas)

	got, err := svc.ServiceAreas(context.Background(), teamID)
	require.NoError(t, err)
	assert.Equal(t, areas, got)
}
