package main

import (
	"context"
	"fmt"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/civictrack/civictrackd/internal/analytics"
	"github.com/civictrack/civictrackd/internal/appconfig"
	"github.com/civictrack/civictrackd/internal/auth"
	"github.com/civictrack/civictrackd/internal/commentsvc"
	"github.com/civictrack/civictrackd/internal/escalation"
	"github.com/civictrack/civictrackd/internal/feedback"
	"github.com/civictrack/civictrackd/internal/follower"
	"github.com/civictrack/civictrackd/internal/httpapi"
	"github.com/civictrack/civictrackd/internal/notification"
	"github.com/civictrack/civictrackd/internal/notifier"
	"github.com/civictrack/civictrackd/internal/repository"
	"github.com/civictrack/civictrackd/internal/routing"
	"github.com/civictrack/civictrackd/internal/savedaddress"
	"github.com/civictrack/civictrackd/internal/storageclient"
	"github.com/civictrack/civictrackd/internal/telemetry"
	"github.com/civictrack/civictrackd/internal/ticketsvc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the civictrackd HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := appconfig.NewLogger(cfg)

	shutdownTelemetry, err := telemetry.Init(rootCtx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	db, err := repository.Open(rootCtx, cfg.DatabaseDSN, cfg.DatabaseMaxConn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	storageClient, err := newStorageClient(cfg)
	if err != nil {
		return fmt.Errorf("configure storage client: %w", err)
	}

	sms := buildNotifier(cfg)

	users := repository.NewUserRepo(db.Pool)
	teams := repository.NewTeamRepo(db.Pool)
	categories := repository.NewCategoryRepo(db.Pool)
	districts := repository.NewDistrictRepo(db.Pool)
	locations := repository.NewLocationRepo()
	serviceAreas := repository.NewServiceAreaRepo(db.Pool)
	tickets := repository.NewTicketRepo(db.Pool)
	comments := repository.NewCommentRepo(db.Pool)
	followers := repository.NewFollowerRepo(db.Pool)
	statusLogs := repository.NewStatusLogRepo(db.Pool)
	escalations := repository.NewEscalationRepo(db.Pool)
	feedbacks := repository.NewFeedbackRepo(db.Pool)
	savedAddrs := repository.NewSavedAddressRepo(db.Pool)
	notifications := repository.NewNotificationRepo(db.Pool)
	detail := repository.NewDetailRepo(db.Pool, tickets, categories, users, teams, comments, followers, statusLogs, feedbacks, escalations)
	analyticsRepo := repository.NewAnalyticsRepo(db.Pool)

	routingSvc := routing.New(teams, districts, serviceAreas)
	notifyEngine := notification.New(notifications, followers, users, sms, log)

	ticketSvc := ticketsvc.New(db, tickets, locations, categories, followers, statusLogs, escalations, feedbacks, savedAddrs, teams, detail, routingSvc, notifyEngine)
	escalationSvc := escalation.New(db, tickets, escalations, statusLogs, notifyEngine)
	commentSvc := commentsvc.New(db, tickets, comments, notifyEngine)
	followerSvc := follower.New(db, tickets, followers, notifyEngine)
	feedbackSvc := feedback.New(db, tickets, feedbacks)
	addressSvc := savedaddress.New(savedAddrs)
	analyticsSvc := analytics.New(analyticsRepo, routingSvc, cfg.AnalyticsTimeout)

	resolver := auth.NewJWTResolver(cfg.JWTSigningKey, cfg.JWTIssuer)

	h := httpapi.New(httpapi.Config{
		Tickets:              ticketSvc,
		Escalations:          escalationSvc,
		Comments:             commentSvc,
		Followers:            followerSvc,
		Feedback:             feedbackSvc,
		Addresses:            addressSvc,
		Analytics:            analyticsSvc,
		Notifications:        notifications,
		Categories:           categories,
		Teams:                teams,
		Districts:            districts,
		Storage:              storageClient,
		NearbyDefaultRadiusM: cfg.NearbyDefaultRadiusM,
		NearbyMinRadiusM:     cfg.NearbyMinRadiusM,
		NearbyMaxRadiusM:     cfg.NearbyMaxRadiusM,
	})

	router := httpapi.NewRouter(h, resolver, cfg.CORSOrigins)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		<-rootCtx.Done()
		log.Info("shutting down")
		_ = server.Close()
	}()

	log.Info("civictrackd listening", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// newStorageClient builds the S3-compatible client from cfg, pointing
// at a MinIO endpoint when StorageEndpoint is set or AWS S3 itself
// otherwise.
func newStorageClient(cfg *appconfig.Config) (storageclient.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(rootCtx,
		awsconfig.WithRegion(cfg.StorageRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.StorageAccessKey, cfg.StorageSecretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.StorageEndpoint != "" {
			o.BaseEndpoint = &cfg.StorageEndpoint
			o.UsePathStyle = true
		}
	})

	return storageclient.NewS3Client(api, cfg.StorageBucket, cfg.StorageEndpoint, cfg.StorageUseSSL), nil
}

func buildNotifier(cfg *appconfig.Config) notifier.Notifier {
	if cfg.TwilioAccountSID == "" && cfg.SMTPAddr == "" {
		return notifier.Noop{}
	}
	return notifier.NewTwilioEmail(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.SMTPAddr, cfg.SMTPFrom)
}
