// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"realty_crm_backend/internal/events"
	"realty_crm_backend/platform/config"
	"realty_crm_backend/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheckers reports the first failing dependency.
type HealthCheckers []HealthChecker

func (h HealthCheckers) Ping(ctx context.Context) error {
	for _, checker := range h {
		if checker == nil {
			continue
		}
		if err := checker.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and JWT settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness/health checks (e.g., DB ping).
	Health HealthChecker
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
