package repository

import (
	"context"
	"errors"

	"realty_crm_backend/internal/matching/domain"
	"realty_crm_backend/internal/matching/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	opUpsertLeadNotification        = "matching.repository.upsert_lead_notification"
	opCreatePartnershipNotification = "matching.repository.create_partnership_notification"

	msgPairNotFound = "lead or property no longer exists"
)

// The unique constraint is the dedup check; a conflicting row, sent or not,
// is left untouched and no row is returned.
const upsertLeadNotificationQuery = `INSERT INTO lead_notifications (lead_id, property_id, user_id)
	VALUES ($1, $2, $3)
	ON CONFLICT ON CONSTRAINT lead_notifications_pair_key DO NOTHING
	RETURNING id`

const createPartnershipNotificationQuery = `INSERT INTO partnership_notifications (
		from_user_id, to_user_id, lead_id, property_id,
		from_user_name, from_user_phone, from_user_email,
		lead_name, lead_phone, property_title, property_price_cents, match_type
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT ON CONSTRAINT partnership_notifications_tuple_key DO NOTHING
	RETURNING id`

func (r *Repository) UpsertLeadNotification(ctx context.Context, params ports.LeadNotificationParams) (bool, error) {
	if err := r.ready(opUpsertLeadNotification); err != nil {
		return false, err
	}
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, upsertLeadNotificationQuery, params.LeadID, params.PropertyID, params.UserID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapError(opUpsertLeadNotification, msgPairNotFound, err)
	}
	return true, nil
}

func (r *Repository) CreatePartnershipNotification(ctx context.Context, n domain.PartnershipNotification) (bool, error) {
	if err := r.ready(opCreatePartnershipNotification); err != nil {
		return false, err
	}
	s := n.Snapshot
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, createPartnershipNotificationQuery,
		n.FromUserID, n.ToUserID, n.LeadID, n.PropertyID,
		s.FromUserName, s.FromUserPhone, s.FromUserEmail,
		s.LeadName, s.LeadPhone, s.PropertyTitle, s.PropertyPriceCents, string(n.MatchType),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapError(opCreatePartnershipNotification, msgPairNotFound, err)
	}
	return true, nil
}
