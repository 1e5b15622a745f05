package repository

import (
	"context"

	"realty_crm_backend/internal/matching/domain"
	"realty_crm_backend/internal/matching/ports"
	"realty_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	opListPendingLeadNotifications        = "matching.repository.list_pending_lead_notifications"
	opListPendingPartnershipNotifications = "matching.repository.list_pending_partnership_notifications"
	opCountPending                        = "matching.repository.count_pending"
	opMarkLeadNotificationsSent           = "matching.repository.mark_lead_notifications_sent"
	opMarkPartnershipNotificationsViewed  = "matching.repository.mark_partnership_notifications_viewed"
	opReset                               = "matching.repository.reset"

	msgNotAddressed = "one or more notifications are not addressed to the current user"
)

// Lead notifications are addressed to the lead's current owner, so every
// lifecycle query scopes through leads.user_id rather than the creation-time
// lead_notifications.user_id.
const listPendingLeadNotificationsQuery = `SELECT ln.id, ln.lead_id, ln.property_id, l.user_id, ln.sent, ln.sent_at, ln.created_at,
		l.name, p.title,
		CASE WHEN l.interest = 'RENT' THEN p.rent_price_cents ELSE p.sale_price_cents END
	FROM lead_notifications ln
	JOIN leads l ON l.id = ln.lead_id
	JOIN properties p ON p.id = ln.property_id
	WHERE l.user_id = $1 AND ln.sent = FALSE
	ORDER BY ln.created_at DESC, ln.id`

const listPendingPartnershipNotificationsQuery = `SELECT id, from_user_id, to_user_id, lead_id, property_id,
		from_user_name, from_user_phone, from_user_email, lead_name, lead_phone,
		property_title, property_price_cents, match_type, viewed, viewed_at, created_at
	FROM partnership_notifications
	WHERE to_user_id = $1 AND viewed = FALSE
	ORDER BY created_at DESC, id`

const countPendingQuery = `SELECT
	(SELECT COUNT(*) FROM lead_notifications ln JOIN leads l ON l.id = ln.lead_id
		WHERE l.user_id = $1 AND ln.sent = FALSE),
	(SELECT COUNT(*) FROM partnership_notifications WHERE to_user_id = $1 AND viewed = FALSE)`

const lockLeadNotificationsQuery = `SELECT ln.id FROM lead_notifications ln
	JOIN leads l ON l.id = ln.lead_id
	WHERE ln.id = ANY($1::uuid[]) AND l.user_id = $2
	FOR UPDATE OF ln`

const markLeadNotificationsSentQuery = `UPDATE lead_notifications
	SET sent = TRUE, sent_at = now()
	WHERE id = ANY($1::uuid[]) AND sent = FALSE`

const lockPartnershipNotificationsQuery = `SELECT id FROM partnership_notifications
	WHERE id = ANY($1::uuid[]) AND to_user_id = $2
	FOR UPDATE`

const markPartnershipNotificationsViewedQuery = `UPDATE partnership_notifications
	SET viewed = TRUE, viewed_at = now()
	WHERE id = ANY($1::uuid[]) AND viewed = FALSE`

const resetLeadNotificationsQuery = `UPDATE lead_notifications ln
	SET sent = FALSE, sent_at = NULL
	FROM leads l
	WHERE l.id = ln.lead_id AND l.user_id = $1 AND ln.sent = TRUE`

const resetPartnershipNotificationsQuery = `UPDATE partnership_notifications
	SET viewed = FALSE, viewed_at = NULL
	WHERE to_user_id = $1 AND viewed = TRUE`

const insertResetAuditQuery = `INSERT INTO notification_reset_audit
	(user_id, actor_id, lead_notifications_reset, partnership_notifications_reset, reason)
	VALUES ($1, $2, $3, $4, $5)`

func (r *Repository) ListPendingLeadNotifications(ctx context.Context, userID uuid.UUID) ([]domain.LeadNotification, error) {
	if err := r.ready(opListPendingLeadNotifications); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, listPendingLeadNotificationsQuery, userID)
	if err != nil {
		return nil, apperr.Storage(opListPendingLeadNotifications, err)
	}
	defer rows.Close()

	items := make([]domain.LeadNotification, 0)
	for rows.Next() {
		var n domain.LeadNotification
		if scanErr := rows.Scan(&n.ID, &n.LeadID, &n.PropertyID, &n.UserID, &n.Sent, &n.SentAt, &n.CreatedAt,
			&n.LeadName, &n.PropertyTitle, &n.PropertyPriceCents); scanErr != nil {
			return nil, apperr.Storage(opListPendingLeadNotifications, scanErr)
		}
		items = append(items, n)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperr.Storage(opListPendingLeadNotifications, rowsErr)
	}
	return items, nil
}

func (r *Repository) ListPendingPartnershipNotifications(ctx context.Context, userID uuid.UUID) ([]domain.PartnershipNotification, error) {
	if err := r.ready(opListPendingPartnershipNotifications); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, listPendingPartnershipNotificationsQuery, userID)
	if err != nil {
		return nil, apperr.Storage(opListPendingPartnershipNotifications, err)
	}
	defer rows.Close()

	items := make([]domain.PartnershipNotification, 0)
	for rows.Next() {
		var n domain.PartnershipNotification
		var matchType string
		s := &n.Snapshot
		if scanErr := rows.Scan(&n.ID, &n.FromUserID, &n.ToUserID, &n.LeadID, &n.PropertyID,
			&s.FromUserName, &s.FromUserPhone, &s.FromUserEmail, &s.LeadName, &s.LeadPhone,
			&s.PropertyTitle, &s.PropertyPriceCents, &matchType, &n.Viewed, &n.ViewedAt, &n.CreatedAt); scanErr != nil {
			return nil, apperr.Storage(opListPendingPartnershipNotifications, scanErr)
		}
		n.MatchType = domain.Interest(matchType)
		items = append(items, n)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperr.Storage(opListPendingPartnershipNotifications, rowsErr)
	}
	return items, nil
}

func (r *Repository) CountPending(ctx context.Context, userID uuid.UUID) (int, int, error) {
	if err := r.ready(opCountPending); err != nil {
		return 0, 0, err
	}
	var leadCount, partnershipCount int
	if err := r.pool.QueryRow(ctx, countPendingQuery, userID).Scan(&leadCount, &partnershipCount); err != nil {
		return 0, 0, apperr.Storage(opCountPending, err)
	}
	return leadCount, partnershipCount, nil
}

func (r *Repository) MarkLeadNotificationsSent(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	return r.markResolved(ctx, opMarkLeadNotificationsSent, lockLeadNotificationsQuery, markLeadNotificationsSentQuery, userID, ids)
}

func (r *Repository) MarkPartnershipNotificationsViewed(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	return r.markResolved(ctx, opMarkPartnershipNotificationsViewed, lockPartnershipNotificationsQuery, markPartnershipNotificationsViewedQuery, userID, ids)
}

// markResolved locks the rows addressed to userID and resolves them only if
// every requested id is among them. Rows already resolved keep their timestamp.
func (r *Repository) markResolved(ctx context.Context, op, lockQuery, updateQuery string, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	if err := r.ready(op); err != nil {
		return 0, err
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, apperr.Storage(op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, lockQuery, ids, userID)
	if err != nil {
		return 0, apperr.Storage(op, err)
	}
	owned, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return 0, apperr.Storage(op, err)
	}
	if len(owned) != len(ids) {
		return 0, apperr.Forbidden(msgNotAddressed).WithOp(op)
	}

	tag, err := tx.Exec(ctx, updateQuery, ids)
	if err != nil {
		return 0, apperr.Storage(op, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, apperr.Storage(op, err)
	}
	return int(tag.RowsAffected()), nil
}

// Reset returns every resolved notification addressed to the user to pending
// and records the audit row in the same transaction.
func (r *Repository) Reset(ctx context.Context, params ports.ResetParams) (ports.ResetResult, error) {
	if err := r.ready(opReset); err != nil {
		return ports.ResetResult{}, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return ports.ResetResult{}, apperr.Storage(opReset, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	leadTag, err := tx.Exec(ctx, resetLeadNotificationsQuery, params.UserID)
	if err != nil {
		return ports.ResetResult{}, apperr.Storage(opReset, err)
	}
	partnershipTag, err := tx.Exec(ctx, resetPartnershipNotificationsQuery, params.UserID)
	if err != nil {
		return ports.ResetResult{}, apperr.Storage(opReset, err)
	}

	result := ports.ResetResult{
		LeadNotifications:        int(leadTag.RowsAffected()),
		PartnershipNotifications: int(partnershipTag.RowsAffected()),
	}
	if _, err := tx.Exec(ctx, insertResetAuditQuery, params.UserID, params.ActorID,
		result.LeadNotifications, result.PartnershipNotifications, params.Reason); err != nil {
		return ports.ResetResult{}, mapError(opReset, "user not found", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return ports.ResetResult{}, apperr.Storage(opReset, err)
	}
	return result, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
