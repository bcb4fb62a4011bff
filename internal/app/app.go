package app

import (
	"agroshare-backend/internal/config"
	"agroshare-backend/internal/diagnostics"
	"agroshare-backend/internal/health"
	"agroshare-backend/internal/infrastructure/database"
	"agroshare-backend/internal/leaderboard"
	"agroshare-backend/internal/ledger"
	"agroshare-backend/internal/middleware"
	"agroshare-backend/internal/offers"
	"agroshare-backend/internal/pkg/constants"
	"agroshare-backend/internal/proposals"
	"agroshare-backend/internal/rating"
	"agroshare-backend/internal/scheduler"
	"agroshare-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App bundles the wired application and the resources main must manage.
type App struct {
	Fiber     *fiber.App
	DB        *gorm.DB
	Rdb       *redis.Client
	Scheduler *scheduler.Scheduler
}

// New wires config → database → redis → services → routes.
func New(cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		rdb = redis.NewClient(opt)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ledgerSvc := ledger.NewService(db, ledger.NewMetrics(registry))
	offersSvc := &offers.Service{DB: db, Ledger: ledgerSvc, MinSharePrice: cfg.MinSharePrice}
	proposalsSvc := &proposals.Service{DB: db, MinSharePrice: cfg.MinSharePrice}
	ratingSvc := &rating.Service{DB: db, Redis: rdb, CacheTTL: cfg.RatingCacheTTL}
	diagnosticsSvc := &diagnostics.Service{DB: db, Rating: ratingSvc}
	leaderboardSvc := &leaderboard.Service{DB: db}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})
	app.Use(middleware.CORS())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.Identify())

	hh := health.NewHandlers(db, rdb)
	app.Get("/health", hh.Live)
	app.Get("/health/json", hh.JSON)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	Register(app, Handlers{
		Offers:      &offers.Handlers{Service: offersSvc},
		Proposals:   &proposals.Handlers{Service: proposalsSvc},
		Rating:      &rating.Handlers{Service: ratingSvc},
		Diagnostics: &diagnostics.Handlers{Service: diagnosticsSvc},
		Leaderboard: &leaderboard.Handlers{Service: leaderboardSvc},
		Users:       &users.Handlers{Service: &users.Service{DB: db}},
	})

	return &App{
		Fiber:     app,
		DB:        db,
		Rdb:       rdb,
		Scheduler: scheduler.New(ratingSvc, cfg.RatingRecalcCron),
	}, nil
}

// Handlers groups the route handlers for registration.
type Handlers struct {
	Offers      *offers.Handlers
	Proposals   *proposals.Handlers
	Rating      *rating.Handlers
	Diagnostics *diagnostics.Handlers
	Leaderboard *leaderboard.Handlers
	Users       *users.Handlers
}

// Register mounts the API routes. Split out so handler tests can mount the
// same surface on a bare fiber app.
func Register(app *fiber.App, h Handlers) {
	api := app.Group("/api/v1")

	offersGroup := api.Group("/offers")
	offersGroup.Get("/get-all-offers", h.Offers.GetAllOffers)
	offersGroup.Get("/get-offer/:offer_id", h.Offers.GetOffer)
	offersGroup.Use(middleware.RequireAuth())
	offersGroup.Get("/get-my-offers", h.Offers.GetMyOffers)
	offersGroup.Get("/get-my-requests", h.Offers.GetMyRequests)
	offersGroup.Post("/create-request", h.Offers.CreateRequest)
	offersGroup.Use(middleware.RequireRole(constants.RoleFarmer))
	offersGroup.Post("/create-offer", h.Offers.CreateOffer)
	offersGroup.Post("/publish-offer/:offer_id", h.Offers.PublishOffer)
	offersGroup.Post("/close-offer/:offer_id", h.Offers.CloseOffer)
	offersGroup.Post("/approve-request/:request_id", h.Offers.ApproveRequest)
	offersGroup.Post("/reject-request/:request_id", h.Offers.RejectRequest)
	offersGroup.Get("/get-offer-requests", h.Offers.GetOfferRequests)

	proposalsGroup := api.Group("/proposals")
	proposalsGroup.Get("/get-all-proposals", h.Proposals.GetAllProposals)
	proposalsGroup.Get("/get-proposal/:proposal_id", h.Proposals.GetProposal)
	proposalsGroup.Get("/get-deletion-request/:deletion_request_id", h.Proposals.GetDeletionRequest)
	proposalsGroup.Use(middleware.RequireAuth())
	proposalsGroup.Post("/invest", h.Proposals.Invest)
	proposalsGroup.Post("/cancel-investment/:investment_id", h.Proposals.CancelInvestment)
	proposalsGroup.Get("/get-my-investments", h.Proposals.GetMyInvestments)
	proposalsGroup.Post("/confirm-deletion/:deletion_request_id", h.Proposals.ConfirmDeletion)
	proposalsGroup.Use(middleware.RequireRole(constants.RoleFarmer))
	proposalsGroup.Post("/create-proposal", h.Proposals.CreateProposal)
	proposalsGroup.Get("/get-my-proposals", h.Proposals.GetMyProposals)
	proposalsGroup.Post("/delete-proposal/:proposal_id", h.Proposals.DeleteProposal)

	ratingGroup := api.Group("/rating")
	ratingGroup.Post("/calculate", h.Rating.Calculate)
	ratingGroup.Get("/get-rating", middleware.RequireAuth(), h.Rating.GetRating)

	diagnosticsGroup := api.Group("/diagnostics", middleware.RequireAuth(), middleware.RequireRole(constants.RoleFarmer))
	diagnosticsGroup.Post("/save-diagnosis", h.Diagnostics.SaveDiagnosis)
	diagnosticsGroup.Get("/get-diagnosis", h.Diagnostics.GetDiagnosis)

	usersGroup := api.Group("/users")
	usersGroup.Get("/get-profile/:user_id", h.Users.GetProfile)
	usersGroup.Use(middleware.RequireAuth())
	usersGroup.Post("/save-profile", h.Users.SaveProfile)
	usersGroup.Get("/get-notifications", h.Users.GetNotifications)
	usersGroup.Post("/read-notification/:notification_id", h.Users.ReadNotification)

	api.Get("/leaderboard", h.Leaderboard.GetLeaderboard)
}
