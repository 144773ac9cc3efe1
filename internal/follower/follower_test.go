package follower_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civictrack/civictrackd/internal/domain"
	"github.com/civictrack/civictrackd/internal/follower"
)

type fakeDB struct{}

func (fakeDB) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error { return fn(nil) }

type fakeTickets struct{ byID map[uuid.UUID]domain.Ticket }

func (f *fakeTickets) FindByID(_ context.Context, id uuid.UUID) (domain.Ticket, error) {
	return f.byID[id], nil
}

type fakeFollowers struct {
	following map[uuid.UUID]map[uuid.UUID]bool
}

func newFakeFollowers() *fakeFollowers {
	return &fakeFollowers{following: map[uuid.UUID]map[uuid.UUID]bool{}}
}

func (f *fakeFollowers) Follow(_ context.Context, _ pgx.Tx, ticketID, userID uuid.UUID) error {
	if f.following[ticketID] == nil {
		f.following[ticketID] = map[uuid.UUID]bool{}
	}
	f.following[ticketID][userID] = true
	return nil
}

func (f *fakeFollowers) Unfollow(_ context.Context, _ pgx.Tx, ticketID, userID uuid.UUID) error {
	delete(f.following[ticketID], userID)
	return nil
}

type fakeNotifier struct{ followed int }

func (f *fakeNotifier) TicketFollowed(_ context.Context, _ domain.Ticket, _ uuid.UUID) { f.followed++ }

func TestFollow_IsIdempotent(t *testing.T) {
	tickets := &fakeTickets{byID: map[uuid.UUID]domain.Ticket{}}
	followers := newFakeFollowers()
	notify := &fakeNotifier{}
	svc := follower.New(fakeDB{}, tickets, followers, notify)

	ticketID := uuid.New()
	userID := uuid.New()
	tickets.byID[ticketID] = domain.Ticket{ID: ticketID}

	require.NoError(t, svc.Follow(context.Background(), ticketID, domain.Principal{UserID: userID}))
	require.NoError(t, svc.Follow(context.Background(), ticketID, domain.Principal{UserID: userID}))

	assert.True(t, followers.following[ticketID][userID])
	assert.Equal(t, 2, notify.followed)
}

func TestUnfollow_OfNonFollowedTicketIsNoop(t *testing.T) {
	tickets := &fakeTickets{byID: map[uuid.UUID]domain.Ticket{}}
	followers := newFakeFollowers()
	svc := follower.New(fakeDB{}, tickets, followers, &fakeNotifier{})

	ticketID := uuid.New()
	tickets.byID[ticketID] = domain.Ticket{ID: ticketID}

	err := svc.Unfollow(context.Background(), ticketID, domain.Principal{UserID: uuid.New()})
	assert.NoError(t, err)
}
