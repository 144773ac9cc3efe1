package ticketsvc_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civictrack/civictrackd/internal/apperror"
	"github.com/civictrack/civictrackd/internal/domain"
	"github.com/civictrack/civictrackd/internal/ticketsvc"
)

type fakeDB struct{}

func (fakeDB) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeTickets struct {
	byID    map[uuid.UUID]domain.Ticket
	created []domain.Ticket
}

func newFakeTickets() *fakeTickets {
	return &fakeTickets{byID: map[uuid.UUID]domain.Ticket{}}
}

func (f *fakeTickets) Create(_ context.Context, _ pgx.Tx, t domain.Ticket) error {
	f.created = append(f.created, t)
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTickets) FindByID(_ context.Context, id uuid.UUID) (domain.Ticket, error) {
	t, ok := f.byID[id]
	if !ok {
		return domain.Ticket{}, apperror.NotFound("ticket")
	}
	return t, nil
}

func (f *fakeTickets) UpdateStatus(_ context.Context, _ pgx.Tx, id uuid.UUID, status domain.Status, resolvedAt bool) error {
	t := f.byID[id]
	t.Status = status
	if resolvedAt {
		now := time.Now()
		t.ResolvedAt = &now
	}
	f.byID[id] = t
	return nil
}

func (f *fakeTickets) AssignTeam(_ context.Context, _ pgx.Tx, id uuid.UUID, teamID uuid.UUID) error {
	t := f.byID[id]
	t.TeamID = &teamID
	f.byID[id] = t
	return nil
}

func (f *fakeTickets) Update(_ context.Context, _ pgx.Tx, id uuid.UUID, title, description string, categoryID uuid.UUID) error {
	t := f.byID[id]
	t.Title = title
	t.Description = description
	t.CategoryID = categoryID
	f.byID[id] = t
	return nil
}

func (f *fakeTickets) SoftDelete(_ context.Context, _ pgx.Tx, id uuid.UUID) error {
	t := f.byID[id]
	now := time.Now()
	t.DeletedAt = &now
	f.byID[id] = t
	return nil
}

func (f *fakeTickets) List(_ context.Context, filter ticketsvc.TicketListFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range f.byID {
		if filter.ReporterID != nil && t.ReporterID != *filter.ReporterID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTickets) FindNearby(_ context.Context, _, _, _ float64, _ *uuid.UUID, _ int) ([]domain.NearbyTicket, error) {
	return nil, nil
}

type fakeLocations struct{ created []domain.Location }

func (f *fakeLocations) Create(_ context.Context, _ pgx.Tx, loc domain.Location) error {
	f.created = append(f.created, loc)
	return nil
}

type fakeCategories struct{ byID map[uuid.UUID]domain.Category }

func (f *fakeCategories) FindByID(_ context.Context, id uuid.UUID) (domain.Category, error) {
	c, ok := f.byID[id]
	if !ok {
		return domain.Category{}, apperror.NotFound("category")
	}
	return c, nil
}

type fakeFollowers struct {
	following map[uuid.UUID]bool
	followed  []uuid.UUID
}

func (f *fakeFollowers) Follow(_ context.Context, _ pgx.Tx, ticketID, _ uuid.UUID) error {
	f.followed = append(f.followed, ticketID)
	return nil
}
func (f *fakeFollowers) Unfollow(_ context.Context, _ pgx.Tx, _, _ uuid.UUID) error { return nil }
func (f *fakeFollowers) IsFollowing(_ context.Context, ticketID, userID uuid.UUID) (bool, error) {
	if f.following == nil {
		return false, nil
	}
	return f.following[ticketID], nil
}

type fakeStatusLogs struct{ appended []domain.StatusLog }

func (f *fakeStatusLogs) Append(_ context.Context, _ pgx.Tx, log domain.StatusLog) error {
	f.appended = append(f.appended, log)
	return nil
}

type fakeEscalations struct{ nonTerminal bool }

func (f *fakeEscalations) HasNonTerminal(_ context.Context, _ uuid.UUID) (bool, error) {
	return f.nonTerminal, nil
}

type fakeFeedback struct{ byTicket *domain.Feedback }

func (f *fakeFeedback) FindByTicket(_ context.Context, _ uuid.UUID) (*domain.Feedback, error) {
	return f.byTicket, nil
}

type fakeSavedAddrs struct{ byID map[uuid.UUID]domain.SavedAddress }

func (f *fakeSavedAddrs) FindByID(_ context.Context, id uuid.UUID) (domain.SavedAddress, error) {
	a, ok := f.byID[id]
	if !ok {
		return domain.SavedAddress{}, apperror.NotFound("saved address")
	}
	return a, nil
}

type fakeTeams struct{ byID map[uuid.UUID]domain.Team }

func (f *fakeTeams) FindByID(_ context.Context, id uuid.UUID) (domain.Team, error) {
	t, ok := f.byID[id]
	if !ok {
		return domain.Team{}, apperror.NotFound("team")
	}
	return t, nil
}

type fakeDetail struct {
	detail domain.TicketDetail
}

func (f *fakeDetail) Load(_ context.Context, _ uuid.UUID) (domain.TicketDetail, error) {
	return f.detail, nil
}

type fakeRouter struct {
	teamID *uuid.UUID
}

func (f *fakeRouter) FindMatchingTeam(_ context.Context, _ uuid.UUID, _, _ string) (*uuid.UUID, error) {
	return f.teamID, nil
}

type fakeNotifier struct {
	created      int
	newForTeam   int
	statusChange int
	assigned     int
}

func (f *fakeNotifier) TicketCreated(_ context.Context, _ domain.Ticket)      { f.created++ }
func (f *fakeNotifier) NewTicketForTeam(_ context.Context, _ domain.Ticket)   { f.newForTeam++ }
func (f *fakeNotifier) TicketFollowed(_ context.Context, _ domain.Ticket, _ uuid.UUID) {}
func (f *fakeNotifier) TicketStatusChanged(_ context.Context, _ domain.Ticket, _ uuid.UUID, _ domain.Status) {
	f.statusChange++
}
func (f *fakeNotifier) TicketAssigned(_ context.Context, _ domain.Ticket, _ uuid.UUID) { f.assigned++ }

type fixture struct {
	tickets     *fakeTickets
	locations   *fakeLocations
	categories  *fakeCategories
	followers   *fakeFollowers
	statusLogs  *fakeStatusLogs
	escalations *fakeEscalations
	feedback    *fakeFeedback
	savedAddrs  *fakeSavedAddrs
	teams       *fakeTeams
	detail      *fakeDetail
	router      *fakeRouter
	notify      *fakeNotifier
	svc         *ticketsvc.Service
}

func newFixture() *fixture {
	f := &fixture{
		tickets:     newFakeTickets(),
		locations:   &fakeLocations{},
		categories:  &fakeCategories{byID: map[uuid.UUID]domain.Category{}},
		followers:   &fakeFollowers{},
		statusLogs:  &fakeStatusLogs{},
		escalations: &fakeEscalations{},
		feedback:    &fakeFeedback{},
		savedAddrs:  &fakeSavedAddrs{byID: map[uuid.UUID]domain.SavedAddress{}},
		teams:       &fakeTeams{byID: map[uuid.UUID]domain.Team{}},
		detail:      &fakeDetail{},
		router:      &fakeRouter{},
		notify:      &fakeNotifier{},
	}
	f.svc = ticketsvc.New(fakeDB{}, f.tickets, f.locations, f.categories, f.followers,
		f.statusLogs, f.escalations, f.feedback, f.savedAddrs, f.teams, f.detail, f.router, f.notify)
	return f
}

func activeCategory() (uuid.UUID, domain.Category) {
	id := uuid.New()
	return id, domain.Category{ID: id, Name: "Pothole", IsActive: true}
}

func TestCreate_RoutesAndNotifies(t *testing.T) {
	f := newFixture()
	catID, cat := activeCategory()
	f.categories.byID[catID] = cat
	teamID := uuid.New()
	f.router.teamID = &teamID

	reporter := uuid.New()
	ticket, err := f.svc.Create(context.Background(), ticketsvc.CreateRequest{
		Title:      "Pothole on Main St",
		CategoryID: catID,
		Latitude:   1, Longitude: 2, City: "Springfield",
	}, domain.Principal{UserID: reporter, Role: domain.RoleCitizen})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, ticket.Status)
	assert.Equal(t, reporter, ticket.ReporterID)
	require.NotNil(t, ticket.TeamID)
	assert.Equal(t, teamID, *ticket.TeamID)
	assert.Equal(t, 1, f.notify.created)
	assert.Equal(t, 1, f.notify.newForTeam)
	assert.Len(t, f.statusLogs.appended, 1)
	require.Len(t, f.followers.followed, 1, "the reporter must be a follower immediately after creation")
	assert.Equal(t, ticket.ID, f.followers.followed[0])
}

func TestCreate_RejectsInactiveCategory(t *testing.T) {
	f := newFixture()
	catID := uuid.New()
	f.categories.byID[catID] = domain.Category{ID: catID, IsActive: false}

	_, err := f.svc.Create(context.Background(), ticketsvc.CreateRequest{CategoryID: catID}, domain.Principal{UserID: uuid.New()})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
}

func TestCreate_SavedAddressMustBelongToCaller(t *testing.T) {
	f := newFixture()
	catID, cat := activeCategory()
	f.categories.byID[catID] = cat
	addrID := uuid.New()
	f.savedAddrs.byID[addrID] = domain.SavedAddress{ID: addrID, UserID: uuid.New()}

	_, err := f.svc.Create(context.Background(), ticketsvc.CreateRequest{
		CategoryID: catID, SavedAddressID: &addrID,
	}, domain.Principal{UserID: uuid.New()})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestUpdate_CitizenCannotEditAfterLeavingNew(t *testing.T) {
	f := newFixture()
	reporter := uuid.New()
	ticketID := uuid.New()
	f.tickets.byID[ticketID] = domain.Ticket{ID: ticketID, ReporterID: reporter, Status: domain.StatusInProgress}

	_, err := f.svc.Update(context.Background(), ticketID, ticketsvc.UpdateRequest{Title: "new title"},
		domain.Principal{UserID: reporter, Role: domain.RoleCitizen})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestUpdate_ClosedTicketIsImmutable(t *testing.T) {
	f := newFixture()
	ticketID := uuid.New()
	f.tickets.byID[ticketID] = domain.Ticket{ID: ticketID, Status: domain.StatusClosed}

	_, err := f.svc.Update(context.Background(), ticketID, ticketsvc.UpdateRequest{Title: "x"},
		domain.Principal{Role: domain.RoleManager})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestDelete_OnlyReporterWhileNew(t *testing.T) {
	f := newFixture()
	reporter := uuid.New()
	ticketID := uuid.New()
	f.tickets.byID[ticketID] = domain.Ticket{ID: ticketID, ReporterID: reporter, Status: domain.StatusNew}

	err := f.svc.Delete(context.Background(), ticketID, domain.Principal{UserID: uuid.New()})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	err = f.svc.Delete(context.Background(), ticketID, domain.Principal{UserID: reporter})
	require.NoError(t, err)
}

func TestUpdateStatus_CitizensForbidden(t *testing.T) {
	f := newFixture()
	ticketID := uuid.New()
	f.tickets.byID[ticketID] = domain.Ticket{ID: ticketID, Status: domain.StatusNew}

	_, err := f.svc.UpdateStatus(context.Background(), ticketID, domain.StatusInProgress, "", domain.Principal{Role: domain.RoleCitizen})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestUpdateStatus_RejectsIllegalTransition(t *testing.T) {
	f := newFixture()
	ticketID := uuid.New()
	f.tickets.byID[ticketID] = domain.Ticket{ID: ticketID, Status: domain.StatusNew}

	_, err := f.svc.UpdateStatus(context.Background(), ticketID, domain.StatusClosed, "", domain.Principal{Role: domain.RoleSupport})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
}

func TestUpdateStatus_StampsResolvedAtAndNotifies(t *testing.T) {
	f := newFixture()
	ticketID := uuid.New()
	f.tickets.byID[ticketID] = domain.Ticket{ID: ticketID, Status: domain.StatusInProgress}

	updated, err := f.svc.UpdateStatus(context.Background(), ticketID, domain.StatusResolved, "fixed", domain.Principal{UserID: uuid.New(), Role: domain.RoleSupport})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, 1, f.notify.statusChange)
	require.Len(t, f.statusLogs.appended, 1)
	assert.Equal(t, "fixed", f.statusLogs.appended[0].Comment)
}

func TestUpdateStatus_ResolvedAtIsMonotoneAcrossReopen(t *testing.T) {
	f := newFixture()
	ticketID := uuid.New()
	f.tickets.byID[ticketID] = domain.Ticket{ID: ticketID, Status: domain.StatusInProgress}

	support := domain.Principal{UserID: uuid.New(), Role: domain.RoleSupport}
	resolved, err := f.svc.UpdateStatus(context.Background(), ticketID, domain.StatusResolved, "fixed", support)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	firstResolvedAt := *resolved.ResolvedAt

	reopened, err := f.svc.UpdateStatus(context.Background(), ticketID, domain.StatusInProgress, "reopened", support)
	require.NoError(t, err)
	require.NotNil(t, reopened.ResolvedAt, "reopening must not clear the original resolvedAt")
	assert.Equal(t, firstResolvedAt, *reopened.ResolvedAt)

	resolvedAgain, err := f.svc.UpdateStatus(context.Background(), ticketID, domain.StatusResolved, "fixed again", support)
	require.NoError(t, err)
	require.NotNil(t, resolvedAgain.ResolvedAt)
	assert.Equal(t, firstResolvedAt, *resolvedAgain.ResolvedAt, "a second RESOLVED must keep the first timestamp, not overwrite it")
}

func TestAssignTeam_ManagerOnly(t *testing.T) {
	f := newFixture()
	ticketID := uuid.New()
	teamID := uuid.New()
	f.tickets.byID[ticketID] = domain.Ticket{ID: ticketID}
	f.teams.byID[teamID] = domain.Team{ID: teamID}

	_, err := f.svc.AssignTeam(context.Background(), ticketID, teamID, domain.Principal{Role: domain.RoleSupport})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	updated, err := f.svc.AssignTeam(context.Background(), ticketID, teamID, domain.Principal{Role: domain.RoleManager})
	require.NoError(t, err)
	require.NotNil(t, updated.TeamID)
	assert.Equal(t, teamID, *updated.TeamID)
	assert.Equal(t, 1, f.notify.assigned)
}

func TestList_CitizenIsScopedToSelf(t *testing.T) {
	f := newFixture()
	self := uuid.New()
	other := uuid.New()
	f.tickets.byID[uuid.New()] = domain.Ticket{ID: uuid.New(), ReporterID: self}
	f.tickets.byID[uuid.New()] = domain.Ticket{ID: uuid.New(), ReporterID: other}

	got, err := f.svc.List(context.Background(), ticketsvc.TicketListFilter{}, domain.Principal{UserID: self, Role: domain.RoleCitizen})
	require.NoError(t, err)
	for _, ticket := range got {
		assert.Equal(t, self, ticket.ReporterID)
	}
}

func TestDetail_FiltersInternalCommentsForCitizens(t *testing.T) {
	f := newFixture()
	ticketID := uuid.New()
	f.detail.detail = domain.TicketDetail{
		Ticket: domain.Ticket{ID: ticketID},
		Comments: []domain.Comment{
			{ID: uuid.New(), IsInternal: false},
			{ID: uuid.New(), IsInternal: true},
		},
	}

	d, err := f.svc.Detail(context.Background(), ticketID, domain.Principal{UserID: uuid.New(), Role: domain.RoleCitizen})
	require.NoError(t, err)
	assert.Len(t, d.Comments, 1)
	assert.False(t, d.Comments[0].IsInternal)
}

func TestDetail_ManagerSeesInternalComments(t *testing.T) {
	f := newFixture()
	ticketID := uuid.New()
	f.detail.detail = domain.TicketDetail{
		Ticket: domain.Ticket{ID: ticketID},
		Comments: []domain.Comment{
			{ID: uuid.New(), IsInternal: false},
			{ID: uuid.New(), IsInternal: true},
		},
	}

	d, err := f.svc.Detail(context.Background(), ticketID, domain.Principal{UserID: uuid.New(), Role: domain.RoleManager})
	require.NoError(t, err)
	assert.Len(t, d.Comments, 2)
}

func TestDetail_SetsCanEscalateOnlyWhenAssignedAndNoOpenEscalation(t *testing.T) {
	f := newFixture()
	ticketID := uuid.New()
	teamID := uuid.New()
	f.detail.detail = domain.TicketDetail{Ticket: domain.Ticket{ID: ticketID, TeamID: &teamID}}
	f.escalations.nonTerminal = false

	d, err := f.svc.Detail(context.Background(), ticketID, domain.Principal{UserID: uuid.New(), Role: domain.RoleManager})
	require.NoError(t, err)
	assert.True(t, d.CanEscalate)

	f.escalations.nonTerminal = true
	d, err = f.svc.Detail(context.Background(), ticketID, domain.Principal{UserID: uuid.New(), Role: domain.RoleManager})
	require.NoError(t, err)
	assert.False(t, d.CanEscalate)
}
