// Package routing implements the team-routing service: resolving which
// team a newly created ticket is assigned to, by (category, district,
// city) coverage. The priority ladder and fallback-team behavior are
// spec.md §4.C, unchanged by this implementation.
package routing

import (
	"context"

	"github.com/google/uuid"

	"github.com/civictrack/civictrackd/internal/apperror"
	"github.com/civictrack/civictrackd/internal/domain"
)

// teamRepo is the subset of *repository.TeamRepo routing depends on.
type teamRepo interface {
	MatchingTeamsByDistrict(ctx context.Context, categoryID, districtID uuid.UUID) ([]domain.Team, error)
	MatchingTeamsByCity(ctx context.Context, categoryID uuid.UUID, city string) ([]domain.Team, error)
	MatchingTeamsByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Team, error)
	FallbackTeam(ctx context.Context) (domain.Team, error)
	Workload(ctx context.Context, teamID uuid.UUID) (int, error)
}

type districtRepo interface {
	FindByNameCity(ctx context.Context, name, city string) (domain.District, error)
}

type serviceAreaRepo interface {
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.ServiceArea, error)
}

// Service resolves routing decisions at ticket-creation time.
type Service struct {
	teams        teamRepo
	districts    districtRepo
	serviceAreas serviceAreaRepo
}

func New(teams teamRepo, districts districtRepo, serviceAreas serviceAreaRepo) *Service {
	return &Service{teams: teams, districts: districts, serviceAreas: serviceAreas}
}

// FindMatchingTeam resolves a team for categoryID in the given
// (districtName, city), following the priority ladder:
//  1. exact (category, district) match
//  2. category match within any district of city
//  3. category match regardless of district
//  4. the configured fallback team, if any
//
// Returns a nil *uuid.UUID, not an error, when no team can be found and
// no fallback is configured — the ticket is created unassigned.
func (s *Service) FindMatchingTeam(ctx context.Context, categoryID uuid.UUID, districtName, city string) (*uuid.UUID, error) {
	if districtName != "" {
		district, err := s.districts.FindByNameCity(ctx, districtName, city)
		if err == nil {
			teams, err := s.teams.MatchingTeamsByDistrict(ctx, categoryID, district.ID)
			if err != nil {
				return nil, err
			}
			if id := lowestID(teams); id != nil {
				return id, nil
			}
		} else if !apperror.Is(err, apperror.KindNotFound) {
			return nil, err
		}
	}

	if city != "" {
		teams, err := s.teams.MatchingTeamsByCity(ctx, categoryID, city)
		if err != nil {
			return nil, err
		}
		if id := lowestID(teams); id != nil {
			return id, nil
		}
	}

	teams, err := s.teams.MatchingTeamsByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if id := lowestID(teams); id != nil {
		return id, nil
	}

	fallback, err := s.teams.FallbackTeam(ctx)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &fallback.ID, nil
}

// lowestID breaks ties within a priority level deterministically by team
// id (spec.md §4.C tie-break rule) rather than by workload — workload is
// tracked for analytics only and never feeds the routing decision.
func lowestID(teams []domain.Team) *uuid.UUID {
	if len(teams) == 0 {
		return nil
	}
	lowest := teams[0]
	for _, t := range teams[1:] {
		if t.ID.String() < lowest.ID.String() {
			lowest = t
		}
	}
	return &lowest.ID
}

// Workload returns the count of tickets in {NEW, IN_PROGRESS} assigned to
// teamID — exposed for analytics, never consulted by FindMatchingTeam
// (spec.md §4.C).
func (s *Service) Workload(ctx context.Context, teamID uuid.UUID) (int, error) {
	return s.teams.Workload(ctx, teamID)
}

// ServiceAreas lists the (category, district) tuples a team is
// responsible for — read-only, for analytics/admin tooling (SPEC_FULL.md
// §4.C ADDED).
func (s *Service) ServiceAreas(ctx context.Context, teamID uuid.UUID) ([]domain.ServiceArea, error) {
	return s.serviceAreas.ListByTeam(ctx, teamID)
}
