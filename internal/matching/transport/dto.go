package transport

import (
	"time"

	"realty_crm_backend/internal/matching/domain"
	"realty_crm_backend/internal/matching/service"

	"github.com/google/uuid"
)

type NotificationIDsRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=500,dive,required"`
}

type ResetRequest struct {
	UserID *uuid.UUID `json:"userId,omitempty"`
	Reason string     `json:"reason,omitempty" validate:"max=500"`
}

type LeadNotificationResponse struct {
	ID                 uuid.UUID                `json:"id"`
	LeadID             uuid.UUID                `json:"leadId"`
	PropertyID         uuid.UUID                `json:"propertyId"`
	UserID             uuid.UUID                `json:"userId"`
	LeadName           string                   `json:"leadName"`
	PropertyTitle      string                   `json:"propertyTitle"`
	PropertyPriceCents *int64                   `json:"propertyPriceCents,omitempty"`
	State              domain.NotificationState `json:"state"`
	Sent               bool                     `json:"sent"`
	SentAt             *time.Time               `json:"sentAt,omitempty"`
	CreatedAt          time.Time                `json:"createdAt"`
}

type PartnershipNotificationResponse struct {
	ID                   uuid.UUID                `json:"id"`
	FromUserID           uuid.UUID                `json:"fromUserId"`
	ToUserID             uuid.UUID                `json:"toUserId"`
	LeadID               uuid.UUID                `json:"leadId"`
	PropertyID           uuid.UUID                `json:"propertyId"`
	FromUserName         string                   `json:"fromUserName"`
	FromUserPhone        *string                  `json:"fromUserPhone"`
	FromUserEmail        string                   `json:"fromUserEmail"`
	CurrentFromUserPhone *string                  `json:"currentFromUserPhone,omitempty"`
	LeadName             string                   `json:"leadName"`
	LeadPhone            *string                  `json:"leadPhone"`
	PropertyTitle        string                   `json:"propertyTitle"`
	PropertyPriceCents   int64                    `json:"propertyPriceCents"`
	MatchType            domain.Interest          `json:"matchType"`
	State                domain.NotificationState `json:"state"`
	Viewed               bool                     `json:"viewed"`
	ViewedAt             *time.Time               `json:"viewedAt,omitempty"`
	CreatedAt            time.Time                `json:"createdAt"`
}

type PendingNotificationsResponse struct {
	LeadNotifications        []LeadNotificationResponse        `json:"leadNotifications"`
	PartnershipNotifications []PartnershipNotificationResponse `json:"partnershipNotifications"`
}

type PendingCountResponse struct {
	LeadNotifications        int `json:"leadNotifications"`
	PartnershipNotifications int `json:"partnershipNotifications"`
	Total                    int `json:"total"`
}

type UpdatedResponse struct {
	Updated int `json:"updated"`
}

type ResetResponse struct {
	UserID                   uuid.UUID `json:"userId"`
	LeadNotifications        int       `json:"leadNotifications"`
	PartnershipNotifications int       `json:"partnershipNotifications"`
}

type PairFailureResponse struct {
	LeadID     uuid.UUID `json:"leadId"`
	PropertyID uuid.UUID `json:"propertyId"`
}

type EvaluationResponse struct {
	Trigger                         string                `json:"trigger"`
	SubjectID                       uuid.UUID             `json:"subjectId"`
	Skipped                         bool                  `json:"skipped"`
	Truncated                       bool                  `json:"truncated"`
	Candidates                      int                   `json:"candidates"`
	Matched                         int                   `json:"matched"`
	LeadNotificationsCreated        int                   `json:"leadNotificationsCreated"`
	PartnershipNotificationsCreated int                   `json:"partnershipNotificationsCreated"`
	Failures                        []PairFailureResponse `json:"failures"`
}

func ToPendingNotificationsResponse(p service.PendingNotifications) PendingNotificationsResponse {
	resp := PendingNotificationsResponse{
		LeadNotifications:        make([]LeadNotificationResponse, 0, len(p.LeadNotifications)),
		PartnershipNotifications: make([]PartnershipNotificationResponse, 0, len(p.PartnershipNotifications)),
	}
	for _, n := range p.LeadNotifications {
		resp.LeadNotifications = append(resp.LeadNotifications, LeadNotificationResponse{
			ID:                 n.ID,
			LeadID:             n.LeadID,
			PropertyID:         n.PropertyID,
			UserID:             n.UserID,
			LeadName:           n.LeadName,
			PropertyTitle:      n.PropertyTitle,
			PropertyPriceCents: n.PropertyPriceCents,
			State:              n.State(),
			Sent:               n.Sent,
			SentAt:             n.SentAt,
			CreatedAt:          n.CreatedAt,
		})
	}
	for _, n := range p.PartnershipNotifications {
		s := n.Snapshot
		resp.PartnershipNotifications = append(resp.PartnershipNotifications, PartnershipNotificationResponse{
			ID:                   n.ID,
			FromUserID:           n.FromUserID,
			ToUserID:             n.ToUserID,
			LeadID:               n.LeadID,
			PropertyID:           n.PropertyID,
			FromUserName:         s.FromUserName,
			FromUserPhone:        s.FromUserPhone,
			FromUserEmail:        s.FromUserEmail,
			CurrentFromUserPhone: n.CurrentFromUserPhone,
			LeadName:             s.LeadName,
			LeadPhone:            s.LeadPhone,
			PropertyTitle:        s.PropertyTitle,
			PropertyPriceCents:   s.PropertyPriceCents,
			MatchType:            n.MatchType,
			State:                n.State(),
			Viewed:               n.Viewed,
			ViewedAt:             n.ViewedAt,
			CreatedAt:            n.CreatedAt,
		})
	}
	return resp
}

func ToEvaluationResponse(r service.EvaluationReport) EvaluationResponse {
	failures := make([]PairFailureResponse, 0, len(r.Failures))
	for _, f := range r.Failures {
		failures = append(failures, PairFailureResponse{LeadID: f.LeadID, PropertyID: f.PropertyID})
	}
	return EvaluationResponse{
		Trigger:                         r.Trigger,
		SubjectID:                       r.SubjectID,
		Skipped:                         r.Skipped,
		Truncated:                       r.Truncated,
		Candidates:                      r.Candidates,
		Matched:                         r.Matched,
		LeadNotificationsCreated:        r.LeadNotificationsCreated,
		PartnershipNotificationsCreated: r.PartnershipNotificationsCreated,
		Failures:                        failures,
	}
}
