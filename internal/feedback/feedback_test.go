package feedback_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civictrack/civictrackd/internal/apperror"
	"github.com/civictrack/civictrackd/internal/domain"
	"github.com/civictrack/civictrackd/internal/feedback"
)

type fakeDB struct{}

func (fakeDB) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error { return fn(nil) }

type fakeTickets struct{ byID map[uuid.UUID]domain.Ticket }

func (f *fakeTickets) FindByID(_ context.Context, id uuid.UUID) (domain.Ticket, error) {
	return f.byID[id], nil
}

type fakeFeedback struct {
	byTicket map[uuid.UUID]*domain.Feedback
}

func newFakeFeedback() *fakeFeedback {
	return &fakeFeedback{byTicket: map[uuid.UUID]*domain.Feedback{}}
}

func (f *fakeFeedback) Create(_ context.Context, _ pgx.Tx, fb domain.Feedback) error {
	f.byTicket[fb.TicketID] = &fb
	return nil
}

func (f *fakeFeedback) FindByTicket(_ context.Context, ticketID uuid.UUID) (*domain.Feedback, error) {
	return f.byTicket[ticketID], nil
}

func TestCreate_ValidatesRatingRange(t *testing.T) {
	tickets := &fakeTickets{byID: map[uuid.UUID]domain.Ticket{}}
	svc := feedback.New(fakeDB{}, tickets, newFakeFeedback())

	_, err := svc.Create(context.Background(), uuid.New(), 0, "", domain.Principal{})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Create(context.Background(), uuid.New(), 6, "", domain.Principal{})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestCreate_ReporterOnlyAfterResolution(t *testing.T) {
	tickets := &fakeTickets{byID: map[uuid.UUID]domain.Ticket{}}
	svc := feedback.New(fakeDB{}, tickets, newFakeFeedback())

	reporter := uuid.New()
	ticketID := uuid.New()
	tickets.byID[ticketID] = domain.Ticket{ID: ticketID, ReporterID: reporter, Status: domain.StatusInProgress}

	_, err := svc.Create(context.Background(), ticketID, 5, "great", domain.Principal{UserID: uuid.New()})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = svc.Create(context.Background(), ticketID, 5, "great", domain.Principal{UserID: reporter})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	tickets.byID[ticketID] = domain.Ticket{ID: ticketID, ReporterID: reporter, Status: domain.StatusResolved}
	fb, err := svc.Create(context.Background(), ticketID, 5, "great", domain.Principal{UserID: reporter})
	require.NoError(t, err)
	assert.Equal(t, 5, fb.Rating)
}

func TestCreate_RejectsDuplicateFeedback(t *testing.T) {
	tickets := &fakeTickets{byID: map[uuid.UUID]domain.Ticket{}}
	fb := newFakeFeedback()
	svc := feedback.New(fakeDB{}, tickets, fb)

	reporter := uuid.New()
	ticketID := uuid.New()
	tickets.byID[ticketID] = domain.Ticket{ID: ticketID, ReporterID: reporter, Status: domain.StatusResolved}
	fb.byTicket[ticketID] = &domain.Feedback{ID: uuid.New(), TicketID: ticketID}

	_, err := svc.Create(context.Background(), ticketID, 3, "", domain.Principal{UserID: reporter})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}
