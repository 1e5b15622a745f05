// Package matching provides the lead/property matching bounded context:
// evaluation, notification storage and the notification lifecycle.
package matching

import (
	"realty_crm_backend/internal/events"
	apphttp "realty_crm_backend/internal/http"
	"realty_crm_backend/internal/matching/contact"
	"realty_crm_backend/internal/matching/handler"
	"realty_crm_backend/internal/matching/ports"
	"realty_crm_backend/internal/matching/repository"
	"realty_crm_backend/internal/matching/service"
	"realty_crm_backend/platform/config"
	"realty_crm_backend/platform/logger"
	"realty_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the matching bounded context module implementing http.Module.
type Module struct {
	repo       *repository.Repository
	engine     *service.Engine
	lifecycle  *service.LifecycleService
	dispatcher *service.Dispatcher
	handler    *handler.Handler
}

// NewModule wires the matching module. A nil enqueuer runs triggers inline.
func NewModule(
	pool *pgxpool.Pool,
	cfg config.MatchingConfig,
	eventBus events.Bus,
	enqueuer ports.TriggerEnqueuer,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	resolver := contact.NewResolver(repo, cfg.GetPhoneDefaultRegion())

	engine := service.NewEngine(service.EngineDeps{
		Leads:      repo,
		Properties: repo,
		Writer:     repo,
		Store:      repo,
		Contacts:   resolver,
		Bus:        eventBus,
		Log:        log,
	}, service.EngineOptions{
		MaxCandidates:   cfg.GetMatchMaxCandidates(),
		PairConcurrency: cfg.GetMatchPairConcurrency(),
		Timeout:         cfg.GetMatchEvaluationTimeout(),
	})
	lifecycle := service.NewLifecycleService(repo, resolver, contact.ParsePolicy(cfg.GetContactPhonePolicy()), eventBus, log)
	dispatcher := service.NewDispatcher(engine, enqueuer, log)

	return &Module{
		repo:       repo,
		engine:     engine,
		lifecycle:  lifecycle,
		dispatcher: dispatcher,
		handler:    handler.New(lifecycle, dispatcher, val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "matching"
}

// Engine returns the synchronous evaluator, used by the worker and backfill.
func (m *Module) Engine() *service.Engine {
	return m.engine
}

// Dispatcher returns the trigger dispatcher for the CRUD layer.
func (m *Module) Dispatcher() *service.Dispatcher {
	return m.dispatcher
}

// Repository returns the storage adapter.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterHandlers subscribes the dispatcher to CRM change events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	m.dispatcher.Subscribe(bus)
}

// RegisterRoutes mounts matching routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	var trigger gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if ctx.TriggerRateLimiter != nil {
		trigger = ctx.TriggerRateLimiter.RateLimit()
	}
	m.handler.RegisterRoutes(ctx.Protected.Group("/matching"), trigger)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
