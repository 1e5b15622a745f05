// Package events defines the CRM change events that trigger matching and the
// matching events that drive notification delivery. The bus itself lives in
// platform/events; this package aliases it so modules import one package.
package events

import (
	"time"

	"realty_crm_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// NewBaseEvent stamps a CRM or matching event with the current time.
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// CRM Domain Events (published by the lead and property CRUD layer)
// =============================================================================

// LeadCreated is published when a lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	UserID uuid.UUID `json:"userId"`
}

func (e LeadCreated) EventName() string { return "crm.lead.created" }

// LeadUpdated is published when any matching-relevant field of a lead changes.
type LeadUpdated struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	UserID uuid.UUID `json:"userId"`
}

func (e LeadUpdated) EventName() string { return "crm.lead.updated" }

// PropertyCreated is published when a listing is created.
type PropertyCreated struct {
	BaseEvent
	PropertyID uuid.UUID `json:"propertyId"`
	UserID     uuid.UUID `json:"userId"`
}

func (e PropertyCreated) EventName() string { return "crm.property.created" }

// PropertyUpdated is published when a listing changes, including its
// partnership flag.
type PropertyUpdated struct {
	BaseEvent
	PropertyID uuid.UUID `json:"propertyId"`
	UserID     uuid.UUID `json:"userId"`
}

func (e PropertyUpdated) EventName() string { return "crm.property.updated" }

// =============================================================================
// Matching Domain Events
// =============================================================================

// LeadNotificationCreated is published when an internal match is first stored.
type LeadNotificationCreated struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	PropertyID uuid.UUID `json:"propertyId"`
	UserID     uuid.UUID `json:"userId"`
}

func (e LeadNotificationCreated) EventName() string { return "matching.lead_notification.created" }

// PartnershipNotificationCreated is published when a partnership match is first stored.
type PartnershipNotificationCreated struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	PropertyID    uuid.UUID `json:"propertyId"`
	FromUserID    uuid.UUID `json:"fromUserId"`
	ToUserID      uuid.UUID `json:"toUserId"`
	MatchType     string    `json:"matchType"`
	PropertyTitle string    `json:"propertyTitle"`
}

func (e PartnershipNotificationCreated) EventName() string {
	return "matching.partnership_notification.created"
}

// NotificationsReset is published after a user's notifications went back to pending.
type NotificationsReset struct {
	BaseEvent
	UserID                   uuid.UUID `json:"userId"`
	ActorID                  uuid.UUID `json:"actorId"`
	LeadNotifications        int       `json:"leadNotifications"`
	PartnershipNotifications int       `json:"partnershipNotifications"`
	ResetAt                  time.Time `json:"resetAt"`
}

func (e NotificationsReset) EventName() string { return "matching.notifications.reset" }
