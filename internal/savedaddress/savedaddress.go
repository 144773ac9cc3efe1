// Package savedaddress implements owner-scoped CRUD over a citizen's
// reusable favorite locations. SPEC_FULL.md §4.J, grounded on
// original_source's address model/schema.
package savedaddress

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/civictrack/civictrackd/internal/apperror"
	"github.com/civictrack/civictrackd/internal/domain"
)

type repo interface {
	Create(ctx context.Context, a domain.SavedAddress) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.SavedAddress, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SavedAddress, error)
	Update(ctx context.Context, id uuid.UUID, name, address string, lat, lon float64) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type Service struct {
	repo repo
}

func New(repo repo) *Service { return &Service{repo: repo} }

// validRange rejects coordinates outside the physically valid range —
// the soft validation SPEC_FULL.md §4.J calls for, short of a full
// geocoding round trip.
func validRange(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func (s *Service) List(ctx context.Context, principal domain.Principal) ([]domain.SavedAddress, error) {
	return s.repo.ListByUser(ctx, principal.UserID)
}

func (s *Service) Create(ctx context.Context, name, address string, lat, lon float64, city string, principal domain.Principal) (domain.SavedAddress, error) {
	if !validRange(lat, lon) {
		return domain.SavedAddress{}, apperror.Validation(apperror.FieldError{Field: "latitude/longitude", Message: "out of range"})
	}
	a := domain.SavedAddress{
		ID:        uuid.New(),
		UserID:    principal.UserID,
		Name:      name,
		Address:   address,
		Latitude:  lat,
		Longitude: lon,
		City:      city,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return domain.SavedAddress{}, err
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, name, address string, lat, lon float64, principal domain.Principal) (domain.SavedAddress, error) {
	if !validRange(lat, lon) {
		return domain.SavedAddress{}, apperror.Validation(apperror.FieldError{Field: "latitude/longitude", Message: "out of range"})
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.SavedAddress{}, err
	}
	if existing.UserID != principal.UserID {
		return domain.SavedAddress{}, apperror.Forbidden("not the owner")
	}
	if err := s.repo.Update(ctx, id, name, address, lat, lon); err != nil {
		return domain.SavedAddress{}, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, principal domain.Principal) error {
	return s.repo.Delete(ctx, id, principal.UserID)
}
