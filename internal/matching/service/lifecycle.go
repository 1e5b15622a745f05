package service

import (
	"context"
	"strings"
	"time"

	"realty_crm_backend/internal/events"
	"realty_crm_backend/internal/matching/contact"
	"realty_crm_backend/internal/matching/domain"
	"realty_crm_backend/internal/matching/ports"
	"realty_crm_backend/platform/apperr"
	"realty_crm_backend/platform/logger"
	"realty_crm_backend/platform/metrics"

	"github.com/google/uuid"
)

const (
	maxLifecycleBatch = 500
	maxResetReason    = 500

	msgIDsRequired   = "ids must not be empty"
	msgTooManyIDs    = "too many ids in one request"
	msgResetDenied   = "only the user or an administrator may reset these notifications"
	msgReasonTooLong = "reason is too long"
)

// PhoneResolver resolves a user's current phone.
type PhoneResolver interface {
	ResolvePhone(ctx context.Context, userID uuid.UUID) (string, bool, error)
}

// PendingPartnership is a pending partnership notification as read by its
// addressee. CurrentFromUserPhone is only set under the
// snapshot_with_current policy and never replaces the stored snapshot.
type PendingPartnership struct {
	domain.PartnershipNotification
	CurrentFromUserPhone *string
}

// PendingNotifications is everything awaiting action by one user.
type PendingNotifications struct {
	LeadNotifications        []domain.LeadNotification
	PartnershipNotifications []PendingPartnership
}

// PendingCount is the badge count for one user.
type PendingCount struct {
	LeadNotifications        int
	PartnershipNotifications int
}

// Total is the sum of both kinds.
func (c PendingCount) Total() int {
	return c.LeadNotifications + c.PartnershipNotifications
}

// ResetRequest asks to return a user's resolved notifications to pending.
type ResetRequest struct {
	ActorID      uuid.UUID
	ActorIsAdmin bool
	UserID       uuid.UUID
	Reason       string
}

// LifecycleService moves notifications between pending and resolved.
type LifecycleService struct {
	store  ports.LifecycleStore
	phones PhoneResolver
	policy contact.Policy
	bus    events.Bus
	log    *logger.Logger
}

// NewLifecycleService creates a LifecycleService. phones may be nil under
// the snapshot policy.
func NewLifecycleService(store ports.LifecycleStore, phones PhoneResolver, policy contact.Policy, bus events.Bus, log *logger.Logger) *LifecycleService {
	if log == nil {
		log = logger.Discard()
	}
	return &LifecycleService{store: store, phones: phones, policy: policy, bus: bus, log: log}
}

// ListPending returns the user's unsent lead notifications and unviewed
// partnership notifications, newest first.
func (s *LifecycleService) ListPending(ctx context.Context, userID uuid.UUID) (PendingNotifications, error) {
	leadItems, err := s.store.ListPendingLeadNotifications(ctx, userID)
	if err != nil {
		return PendingNotifications{}, err
	}
	partnershipItems, err := s.store.ListPendingPartnershipNotifications(ctx, userID)
	if err != nil {
		return PendingNotifications{}, err
	}

	result := PendingNotifications{
		LeadNotifications:        leadItems,
		PartnershipNotifications: make([]PendingPartnership, 0, len(partnershipItems)),
	}
	current := s.currentPhones(ctx, partnershipItems)
	for _, n := range partnershipItems {
		item := PendingPartnership{PartnershipNotification: n}
		if p, ok := current[n.FromUserID]; ok {
			item.CurrentFromUserPhone = &p
		}
		result.PartnershipNotifications = append(result.PartnershipNotifications, item)
	}
	return result, nil
}

// currentPhones resolves each distinct sender once. Lookup failures only
// drop the live value; the stored snapshot is still returned.
func (s *LifecycleService) currentPhones(ctx context.Context, items []domain.PartnershipNotification) map[uuid.UUID]string {
	if s.policy != contact.PolicySnapshotWithCurrent || s.phones == nil {
		return nil
	}
	phones := make(map[uuid.UUID]string)
	seen := make(map[uuid.UUID]struct{})
	for _, n := range items {
		if _, ok := seen[n.FromUserID]; ok {
			continue
		}
		seen[n.FromUserID] = struct{}{}
		p, ok, err := s.phones.ResolvePhone(ctx, n.FromUserID)
		if err != nil {
			s.log.Warn("current phone lookup failed", "user_id", n.FromUserID, "error", err)
			continue
		}
		if ok {
			phones[n.FromUserID] = p
		}
	}
	return phones
}

// CountPending returns the number of pending notifications per kind.
func (s *LifecycleService) CountPending(ctx context.Context, userID uuid.UUID) (PendingCount, error) {
	leadCount, partnershipCount, err := s.store.CountPending(ctx, userID)
	if err != nil {
		return PendingCount{}, err
	}
	return PendingCount{LeadNotifications: leadCount, PartnershipNotifications: partnershipCount}, nil
}

// MarkSent resolves lead notifications addressed to userID. If any id is not
// addressed to the user nothing changes and a Forbidden error is returned.
func (s *LifecycleService) MarkSent(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}
	n, err := s.store.MarkLeadNotificationsSent(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	metrics.LifecycleTransitions.WithLabelValues("sent").Add(float64(n))
	return n, nil
}

// MarkViewed resolves partnership notifications addressed to userID, with
// the same all-or-nothing rule as MarkSent.
func (s *LifecycleService) MarkViewed(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}
	n, err := s.store.MarkPartnershipNotificationsViewed(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	metrics.LifecycleTransitions.WithLabelValues("viewed").Add(float64(n))
	return n, nil
}

// Reset returns every resolved notification addressed to req.UserID to
// pending. The change is committed before Reset returns.
func (s *LifecycleService) Reset(ctx context.Context, req ResetRequest) (ports.ResetResult, error) {
	if req.UserID == uuid.Nil {
		req.UserID = req.ActorID
	}
	if req.ActorID != req.UserID && !req.ActorIsAdmin {
		return ports.ResetResult{}, apperr.Forbidden(msgResetDenied)
	}
	reason := strings.TrimSpace(req.Reason)
	if len(reason) > maxResetReason {
		return ports.ResetResult{}, apperr.Validation(msgReasonTooLong)
	}

	result, err := s.store.Reset(ctx, ports.ResetParams{UserID: req.UserID, ActorID: req.ActorID, Reason: reason})
	if err != nil {
		return ports.ResetResult{}, err
	}

	metrics.LifecycleTransitions.WithLabelValues("reset").Add(float64(result.LeadNotifications + result.PartnershipNotifications))
	s.log.Info("match_notifications_reset",
		"user_id", req.UserID,
		"actor_id", req.ActorID,
		"lead_notifications", result.LeadNotifications,
		"partnership_notifications", result.PartnershipNotifications,
	)
	if s.bus != nil {
		s.bus.Publish(ctx, events.NotificationsReset{
			BaseEvent:                events.NewBaseEvent(),
			UserID:                   req.UserID,
			ActorID:                  req.ActorID,
			LeadNotifications:        result.LeadNotifications,
			PartnershipNotifications: result.PartnershipNotifications,
			ResetAt:                  time.Now().UTC(),
		})
	}
	return result, nil
}

func validateIDs(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return apperr.Validation(msgIDsRequired)
	}
	if len(ids) > maxLifecycleBatch {
		return apperr.Validation(msgTooManyIDs)
	}
	return nil
}
