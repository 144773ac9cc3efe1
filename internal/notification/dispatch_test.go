package notification_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civictrack/civictrackd/internal/domain"
	"github.com/civictrack/civictrackd/internal/notification"
	"github.com/civictrack/civictrackd/internal/notifier"
)

type fakeNotifications struct {
	mu      sync.Mutex
	created []domain.Notification
}

func (f *fakeNotifications) Create(_ context.Context, n domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, n)
	return nil
}

type fakeFollowers struct {
	byTicket map[uuid.UUID][]uuid.UUID
}

func (f *fakeFollowers) ListFollowerUserIDs(_ context.Context, ticketID uuid.UUID) ([]uuid.UUID, error) {
	return f.byTicket[ticketID], nil
}

type fakeUsers struct {
	byTeam   map[uuid.UUID][]domain.User
	managers []domain.User
}

func (f *fakeUsers) ListByTeam(_ context.Context, teamID uuid.UUID) ([]domain.User, error) {
	return f.byTeam[teamID], nil
}
func (f *fakeUsers) ListManagers(_ context.Context) ([]domain.User, error) { return f.managers, nil }
func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	return domain.User{ID: id}, nil
}

func newEngine() (*notification.Engine, *fakeNotifications, *fakeFollowers, *fakeUsers) {
	n := &fakeNotifications{}
	f := &fakeFollowers{byTicket: map[uuid.UUID][]uuid.UUID{}}
	u := &fakeUsers{byTeam: map[uuid.UUID][]domain.User{}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return notification.New(n, f, u, notifier.Noop{}, log), n, f, u
}

// TestCommentAdded_NeverLeaksCommentContent is the T5 property: an
// internal comment's body must never surface in a citizen's (or
// anyone's) notification payload. CommentAdded never takes the comment
// body as input at all, so this asserts the stronger invariant that
// holds regardless of IsInternal: the dispatched message is always the
// fixed template, never the comment text.
func TestCommentAdded_NeverLeaksCommentContent(t *testing.T) {
	engine, repo, followers, _ := newEngine()
	ticket := domain.Ticket{ID: uuid.New(), Title: "Pothole", ReporterID: uuid.New()}
	secretInternalNote := "internal-only: budget code 4471-B, do not disclose"
	followers.byTicket[ticket.ID] = nil

	engine.CommentAdded(context.Background(), ticket, uuid.New())

	require.Len(t, repo.created, 1)
	assert.NotContains(t, repo.created[0].Message, secretInternalNote)
	assert.Equal(t, "New comment", repo.created[0].Title)
}

func TestCommentAdded_RecipientsExcludeAuthorAndDeduplicate(t *testing.T) {
	engine, repo, followers, users := newEngine()
	reporter := uuid.New()
	author := uuid.New()
	follower1 := uuid.New()
	teamID := uuid.New()
	ticket := domain.Ticket{ID: uuid.New(), Title: "Graffiti", ReporterID: reporter, TeamID: &teamID}

	followers.byTicket[ticket.ID] = []uuid.UUID{follower1, author}
	users.byTeam[teamID] = []domain.User{{ID: follower1}, {ID: author}}

	engine.CommentAdded(context.Background(), ticket, author)

	var recipients []uuid.UUID
	for _, n := range repo.created {
		recipients = append(recipients, n.UserID)
	}
	assert.ElementsMatch(t, []uuid.UUID{reporter, follower1}, recipients)
}

func TestTicketStatusChanged_ExcludesActor(t *testing.T) {
	engine, repo, followers, _ := newEngine()
	reporter := uuid.New()
	ticket := domain.Ticket{ID: uuid.New(), Title: "Noise complaint", ReporterID: reporter}
	followers.byTicket[ticket.ID] = nil

	engine.TicketStatusChanged(context.Background(), ticket, reporter, domain.StatusInProgress)

	assert.Empty(t, repo.created, "the actor making the change should not be notified of their own action")
}

func TestNewTicketForTeam_NilTeamIsNoop(t *testing.T) {
	engine, repo, _, _ := newEngine()
	ticket := domain.Ticket{ID: uuid.New(), Title: "Unassigned", ReporterID: uuid.New()}

	engine.NewTicketForTeam(context.Background(), ticket)

	assert.Empty(t, repo.created)
}
