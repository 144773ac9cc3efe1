package httpapi

import (
	"github.com/civictrack/civictrackd/internal/analytics"
	"github.com/civictrack/civictrackd/internal/commentsvc"
	"github.com/civictrack/civictrackd/internal/escalation"
	"github.com/civictrack/civictrackd/internal/feedback"
	"github.com/civictrack/civictrackd/internal/follower"
	"github.com/civictrack/civictrackd/internal/repository"
	"github.com/civictrack/civictrackd/internal/savedaddress"
	"github.com/civictrack/civictrackd/internal/storageclient"
	"github.com/civictrack/civictrackd/internal/ticketsvc"
)

// Handler bundles every service this adapter fronts. It holds no
// business logic of its own — each method binds a request, calls
// straight through to a service, and translates the result.
type Handler struct {
	tickets       *ticketsvc.Service
	escalations   *escalation.Service
	comments      *commentsvc.Service
	followers     *follower.Service
	feedback      *feedback.Service
	addresses     *savedaddress.Service
	analytics     *analytics.Service
	notifications *repository.NotificationRepo
	categories    *repository.CategoryRepo
	teams         *repository.TeamRepo
	districts     *repository.DistrictRepo
	storage       storageclient.Client

	nearbyDefaultRadiusM float64
	nearbyMinRadiusM     float64
	nearbyMaxRadiusM     float64
}

// Config is the set of dependencies and tunables New needs to assemble
// a Handler — one struct so cmd/civictl's wiring call stays readable.
type Config struct {
	Tickets       *ticketsvc.Service
	Escalations   *escalation.Service
	Comments      *commentsvc.Service
	Followers     *follower.Service
	Feedback      *feedback.Service
	Addresses     *savedaddress.Service
	Analytics     *analytics.Service
	Notifications *repository.NotificationRepo
	Categories    *repository.CategoryRepo
	Teams         *repository.TeamRepo
	Districts     *repository.DistrictRepo
	Storage       storageclient.Client

	NearbyDefaultRadiusM float64
	NearbyMinRadiusM     float64
	NearbyMaxRadiusM     float64
}

func New(cfg Config) *Handler {
	return &Handler{
		tickets:               cfg.Tickets,
		escalations:           cfg.Escalations,
		comments:              cfg.Comments,
		followers:             cfg.Followers,
		feedback:              cfg.Feedback,
		addresses:             cfg.Addresses,
		analytics:             cfg.Analytics,
		notifications:         cfg.Notifications,
		categories:            cfg.Categories,
		teams:                 cfg.Teams,
		districts:             cfg.Districts,
		storage:               cfg.Storage,
		nearbyDefaultRadiusM:  cfg.NearbyDefaultRadiusM,
		nearbyMinRadiusM:      cfg.NearbyMinRadiusM,
		nearbyMaxRadiusM:      cfg.NearbyMaxRadiusM,
	}
}
