package commentsvc_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civictrack/civictrackd/internal/commentsvc"
	"github.com/civictrack/civictrackd/internal/domain"
)

type fakeDB struct{}

func (fakeDB) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error { return fn(nil) }

type fakeTickets struct{ byID map[uuid.UUID]domain.Ticket }

func (f *fakeTickets) FindByID(_ context.Context, id uuid.UUID) (domain.Ticket, error) {
	return f.byID[id], nil
}

type fakeComments struct {
	created []domain.Comment
}

func (f *fakeComments) Create(_ context.Context, _ pgx.Tx, c domain.Comment) error {
	f.created = append(f.created, c)
	return nil
}

func (f *fakeComments) ListByTicket(_ context.Context, ticketID uuid.UUID, includeInternal bool) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range f.created {
		if c.TicketID != ticketID {
			continue
		}
		if c.IsInternal && !includeInternal {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type fakeNotifier struct{ added int }

func (f *fakeNotifier) CommentAdded(_ context.Context, _ domain.Ticket, _ uuid.UUID) { f.added++ }

func newFixture() (*fakeTickets, *fakeComments, *fakeNotifier, *commentsvc.Service) {
	tickets := &fakeTickets{byID: map[uuid.UUID]domain.Ticket{}}
	comments := &fakeComments{}
	notify := &fakeNotifier{}
	return tickets, comments, notify, commentsvc.New(fakeDB{}, tickets, comments, notify)
}

func TestAdd_CitizenCannotPostInternal(t *testing.T) {
	tickets, _, notify, svc := newFixture()
	ticketID := uuid.New()
	tickets.byID[ticketID] = domain.Ticket{ID: ticketID}

	c, err := svc.Add(context.Background(), ticketID, "please help", true, domain.Principal{Role: domain.RoleCitizen})
	require.NoError(t, err)
	assert.False(t, c.IsInternal)
	assert.Equal(t, 1, notify.added)
}

func TestAdd_SupportCanPostInternal(t *testing.T) {
	tickets, _, _, svc := newFixture()
	ticketID := uuid.New()
	tickets.byID[ticketID] = domain.Ticket{ID: ticketID}

	c, err := svc.Add(context.Background(), ticketID, "assigning to crew", true, domain.Principal{Role: domain.RoleSupport})
	require.NoError(t, err)
	assert.True(t, c.IsInternal)
}

func TestList_CitizenDoesNotSeeInternalComments(t *testing.T) {
	tickets, comments, _, svc := newFixture()
	ticketID := uuid.New()
	tickets.byID[ticketID] = domain.Ticket{ID: ticketID}
	comments.created = []domain.Comment{
		{ID: uuid.New(), TicketID: ticketID, IsInternal: false},
		{ID: uuid.New(), TicketID: ticketID, IsInternal: true},
	}

	got, err := svc.List(context.Background(), ticketID, domain.Principal{Role: domain.RoleCitizen})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.List(context.Background(), ticketID, domain.Principal{Role: domain.RoleSupport})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
