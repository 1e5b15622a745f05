// Package notification pushes match notifications to connected users in
// response to domain events. Durable state lives in the matching tables;
// this module only fans events out over Server-Sent Events.
package notification

import (
	"context"

	"realty_crm_backend/internal/events"
	apphttp "realty_crm_backend/internal/http"
	"realty_crm_backend/internal/notification/sse"
	"realty_crm_backend/platform/httpkit"
	"realty_crm_backend/platform/logger"
)

// Module is the real-time notification module implementing http.Module.
type Module struct {
	sse *sse.Service
	log *logger.Logger
}

// New creates the notification module.
func New(log *logger.Logger) *Module {
	if log == nil {
		log = logger.Discard()
	}
	return &Module{sse: sse.New(log), log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// SSE returns the stream service.
func (m *Module) SSE() *sse.Service { return m.sse }

// RegisterRoutes mounts the authenticated match stream.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/matching/stream", m.sse.Handler(httpkit.UserIDFromContext))
}

// RegisterHandlers subscribes the module to matching events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	for _, name := range events.NotificationEvents() {
		bus.Subscribe(name, m)
	}

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the addressed user's streams.
func (m *Module) Handle(_ context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadNotificationCreated:
		m.sse.Publish(e.UserID, sse.Event{
			Type:       sse.EventLeadNotificationCreated,
			LeadID:     e.LeadID,
			PropertyID: e.PropertyID,
		})
	case events.PartnershipNotificationCreated:
		m.sse.Publish(e.ToUserID, sse.Event{
			Type:       sse.EventPartnershipNotificationCreated,
			LeadID:     e.LeadID,
			PropertyID: e.PropertyID,
			Message:    e.PropertyTitle,
			Data: map[string]any{
				"fromUserId": e.FromUserID,
				"matchType":  e.MatchType,
			},
		})
	case events.NotificationsReset:
		m.sse.Publish(e.UserID, sse.Event{
			Type: sse.EventNotificationsReset,
			Data: map[string]any{
				"leadNotifications":        e.LeadNotifications,
				"partnershipNotifications": e.PartnershipNotifications,
			},
		})
	default:
		m.log.Warn("notification module received unhandled event", "event", event.EventName())
	}
	return nil
}

// Close ends all open streams.
func (m *Module) Close() {
	m.sse.Close()
}

var _ apphttp.Module = (*Module)(nil)
