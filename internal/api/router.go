package api

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/socialboost/panel/internal/api/handler"
	"github.com/socialboost/panel/internal/api/middleware"
	"github.com/socialboost/panel/internal/api/spec"
	"github.com/socialboost/panel/internal/config"
	"github.com/socialboost/panel/internal/events"
	"github.com/socialboost/panel/internal/gateway"
	"github.com/socialboost/panel/internal/idempotency"
	"github.com/socialboost/panel/internal/repository"
	"github.com/socialboost/panel/internal/service"
	"github.com/socialboost/panel/internal/session"
)

// Router wires services and handlers onto the HTTP surface.
type Router struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *sql.DB
	store    *repository.Store
	sessions *session.Manager
	bus      *events.Bus
	idem     *idempotency.Store
	redis    redis.Cmdable
	cards    gateway.CardGateway
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *sql.DB,
	store *repository.Store,
	sessions *session.Manager,
	bus *events.Bus,
	idem *idempotency.Store,
	redisClient redis.Cmdable,
	cards gateway.CardGateway,
) *Router {
	return &Router{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		store:    store,
		sessions: sessions,
		bus:      bus,
		idem:     idem,
		redis:    redisClient,
		cards:    cards,
	}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)

	auditSvc := service.NewAuditService(api.store)
	userSvc := service.NewUserService(api.store, api.sessions, auditSvc, api.logger)
	catalogSvc := service.NewCatalogService(api.store, auditSvc)
	orderSvc := service.NewOrderService(api.store, api.sessions, api.bus, auditSvc, api.cards)
	fundSvc := service.NewFundService(api.store, api.sessions, api.bus, auditSvc, api.cards, orderSvc)
	inboxSvc := service.NewInboxService(api.store, api.bus)
	integritySvc := service.NewIntegrityService(api.store)

	authHandler := handler.NewAuthHandler(userSvc, api.cfg.AdminEmail, api.cfg.TokenTTL)
	accountHandler := handler.NewAccountHandler(userSvc)
	orderHandler := handler.NewOrderHandler(orderSvc, catalogSvc)
	fundHandler := handler.NewFundHandler(fundSvc, catalogSvc)
	inboxHandler := handler.NewInboxHandler(inboxSvc)
	publicHandler := handler.NewPublicAPIHandler(orderSvc, catalogSvc)
	adminHandler := handler.NewAdminHandler(userSvc, orderSvc, fundSvc, inboxSvc, catalogSvc, auditSvc, integritySvc)
	eventsHandler := handler.NewEventsHandler(api.bus)
	healthHandler := handler.NewHealthHandler(api.db, api.redis)

	r.Get("/healthz", healthHandler.Live)
	r.Get("/readyz", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())

	// Unauthenticated auth endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))
		r.Post("/v1/auth/register", authHandler.Register)
		r.Post("/v1/auth/login", authHandler.Login)
		r.Post("/v1/auth/password-reset", authHandler.RequestPasswordReset)
	})

	// Key-authenticated public API
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyMiddleware(userSvc.GetByAPIKey))
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))
		r.Get("/services", publicHandler.Services)
		r.With(middleware.IdempotencyMiddleware(api.idem, api.logger)).Post("/orders", publicHandler.PlaceOrder)
		r.Get("/orders/{orderID}", publicHandler.GetOrder)
	})

	// Dashboard, token-authenticated
	r.Route("/v1/dashboard", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))

		r.Post("/logout", authHandler.Logout)
		r.Get("/me", accountHandler.Me)
		r.Put("/profile/name", accountHandler.UpdateName)
		r.Put("/profile/email", accountHandler.UpdateEmail)
		r.Put("/profile/password", accountHandler.UpdatePassword)
		r.Put("/profile/picture", accountHandler.UpdatePicture)

		r.Get("/services", publicHandler.Services)
		r.Get("/orders", orderHandler.ListMine)
		r.Post("/orders", orderHandler.Place)

		r.Get("/funds", fundHandler.ListMine)
		r.Post("/funds", fundHandler.File)
		r.Get("/funds/banks", fundHandler.Banks)
		r.Post("/funds/card", fundHandler.TopUpCard)

		r.Get("/inbox", inboxHandler.List)
		r.Post("/inbox/read", inboxHandler.MarkAllRead)
	})

	// Admin surface
	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.RequireRole("admin"))
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))

		r.Get("/users", adminHandler.ListUsers)
		r.Put("/users/{email}/balance", adminHandler.SetBalance)
		r.Put("/users/{email}/email", adminHandler.RenameUserEmail)
		r.Put("/users/{email}/name", adminHandler.UpdateUserName)
		r.Put("/users/{email}/password", adminHandler.ResetUserPassword)
		r.Delete("/users/{email}", adminHandler.DeleteUser)

		r.Get("/orders", adminHandler.ListOrders)
		r.Put("/orders/{orderID}/status", adminHandler.SetOrderStatus)

		r.Get("/funds", adminHandler.ListFundRequests)
		r.Post("/funds/{requestID}/decision", adminHandler.DecideFundRequest)

		r.Post("/messages", adminHandler.SendMessage)
		r.Put("/prices", adminHandler.UpdateServicePrice)
		r.Put("/payment-settings", adminHandler.ReplaceBanks)

		r.Get("/events", eventsHandler.Stream)
		r.Get("/audit", adminHandler.ListAudit)
		r.Get("/integrity", adminHandler.IntegrityReport)
	})

	return r
}
