// Package ports defines what the matching engine needs from the rest of the
// CRM. Leads, properties and user contacts belong to the CRUD layer; the
// engine reads them through these interfaces and writes back only the
// matched property of a lead.
package ports

import (
	"context"

	"realty_crm_backend/internal/matching/domain"

	"github.com/google/uuid"
)

// PropertyFilter is the coarse pre-filter for properties that may match a lead.
// The price window is applied to the rent or sale column chosen by Interest.
type PropertyFilter struct {
	PropertyType  domain.PropertyType
	Interest      domain.Interest
	MinPriceCents int64
	MaxPriceCents int64
	Limit         int
}

// LeadFilter is the coarse pre-filter for active leads that may match a property.
// A nil price excludes leads with that interest.
type LeadFilter struct {
	PropertyType   domain.PropertyType
	RentPriceCents *int64
	SalePriceCents *int64
	Limit          int
}

// LeadReader reads leads owned by the CRUD layer.
type LeadReader interface {
	GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	ListActiveLeads(ctx context.Context, filter LeadFilter) ([]domain.Lead, error)
}

// ActiveLeadPager walks active leads in id order for operator backfills.
type ActiveLeadPager interface {
	ListActiveLeadIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error)
}

// PropertyReader reads properties owned by the CRUD layer.
type PropertyReader interface {
	GetProperty(ctx context.Context, id uuid.UUID) (domain.Property, error)
	ListAvailableProperties(ctx context.Context, filter PropertyFilter) ([]domain.Property, error)
}

// LeadMatchWriter is the single write the engine performs on a lead.
type LeadMatchWriter interface {
	SetLeadMatchedProperty(ctx context.Context, leadID, propertyID uuid.UUID) error
}

// UserContact is the identity-service view of a user used for snapshots.
type UserContact struct {
	UserID         uuid.UUID
	OrganizationID *uuid.UUID
	Name           string
	Email          string
	Phone          string
}

// ContactDirectory resolves user and organization contact data.
type ContactDirectory interface {
	GetUserContact(ctx context.Context, userID uuid.UUID) (UserContact, error)
	GetOrganizationPhone(ctx context.Context, organizationID uuid.UUID) (string, error)
}

// LeadNotificationParams identifies an internal match to record.
type LeadNotificationParams struct {
	LeadID     uuid.UUID
	PropertyID uuid.UUID
	UserID     uuid.UUID
}

// NotificationStore persists match notifications with insert-or-ignore
// semantics. created is false when the dedup key already existed.
type NotificationStore interface {
	UpsertLeadNotification(ctx context.Context, params LeadNotificationParams) (created bool, err error)
	CreatePartnershipNotification(ctx context.Context, n domain.PartnershipNotification) (created bool, err error)
}

// ResetParams describes an administrative reset of a user's notifications.
type ResetParams struct {
	UserID  uuid.UUID
	ActorID uuid.UUID
	Reason  string
}

// ResetResult reports how many notifications went back to pending.
type ResetResult struct {
	LeadNotifications        int
	PartnershipNotifications int
}

// LifecycleStore reads and transitions notifications addressed to a user.
// Mark operations must reject the whole call with a Forbidden error, without
// mutating anything, when any id is not addressed to userID.
type LifecycleStore interface {
	ListPendingLeadNotifications(ctx context.Context, userID uuid.UUID) ([]domain.LeadNotification, error)
	ListPendingPartnershipNotifications(ctx context.Context, userID uuid.UUID) ([]domain.PartnershipNotification, error)
	CountPending(ctx context.Context, userID uuid.UUID) (leadCount int, partnershipCount int, err error)
	MarkLeadNotificationsSent(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error)
	MarkPartnershipNotificationsViewed(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error)
	Reset(ctx context.Context, params ResetParams) (ResetResult, error)
}

// TriggerEnqueuer defers an evaluation to the background worker. Identical
// pending triggers may be coalesced by the implementation.
type TriggerEnqueuer interface {
	EnqueueLeadEvaluation(ctx context.Context, leadID uuid.UUID) error
	EnqueuePropertyEvaluation(ctx context.Context, propertyID uuid.UUID) error
}
