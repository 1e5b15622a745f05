package events

import (
	platformevents "realty_crm_backend/platform/events"
	"realty_crm_backend/platform/logger"
)

// InMemoryBus carries CRM change events to the match dispatcher and match
// events to the notification stream within one process. Across processes the
// scheduler relay takes over.
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates the process-local bus shared by the API, the
// scheduler worker and the backfill command.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// NotificationEvents names the events that announce a change to a user's
// pending notifications. Stream fan-out and the cross-process relay both
// key on this set.
func NotificationEvents() []string {
	return []string{
		LeadNotificationCreated{}.EventName(),
		PartnershipNotificationCreated{}.EventName(),
		NotificationsReset{}.EventName(),
	}
}
