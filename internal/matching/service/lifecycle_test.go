package service

import (
	"context"
	"testing"

	"realty_crm_backend/internal/matching/contact"
	"realty_crm_backend/internal/matching/domain"
	"realty_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lifecycleFixture struct {
	store       *memStore
	u1, u2      uuid.UUID
	leadNotifID uuid.UUID
	partnerID   uuid.UUID
}

// newLifecycleFixture stores one internal match for u2 and one partnership
// match from u1 to u2.
func newLifecycleFixture(t *testing.T) lifecycleFixture {
	t.Helper()
	store := newMemStore()
	u1 := store.addUser("u1", "11987654321")
	u2 := store.addUser("u2", "")

	crossLead := saoPauloRentLead(u1)
	ownLead := saoPauloRentLead(u2)
	property := saoPauloRentProperty(u2, 250000, true)
	store.putLead(crossLead)
	store.putLead(ownLead)
	store.putProperty(property)

	_, err := newTestEngine(store).EvaluateProperty(context.Background(), property.ID)
	require.NoError(t, err)

	leadItems, err := store.ListPendingLeadNotifications(context.Background(), u2)
	require.NoError(t, err)
	require.Len(t, leadItems, 1)
	partnerItems, err := store.ListPendingPartnershipNotifications(context.Background(), u2)
	require.NoError(t, err)
	require.Len(t, partnerItems, 1)

	return lifecycleFixture{
		store:       store,
		u1:          u1,
		u2:          u2,
		leadNotifID: leadItems[0].ID,
		partnerID:   partnerItems[0].ID,
	}
}

func TestListPendingReturnsBothKinds(t *testing.T) {
	f := newLifecycleFixture(t)
	svc := NewLifecycleService(f.store, nil, contact.PolicySnapshot, nil, nil)

	pending, err := svc.ListPending(context.Background(), f.u2)
	require.NoError(t, err)

	assert.Len(t, pending.LeadNotifications, 1)
	require.Len(t, pending.PartnershipNotifications, 1)
	assert.Nil(t, pending.PartnershipNotifications[0].CurrentFromUserPhone)

	count, err := svc.CountPending(context.Background(), f.u2)
	require.NoError(t, err)
	assert.Equal(t, 2, count.Total())
}

func TestMarkSentResolvesAndKeepsTimestamp(t *testing.T) {
	f := newLifecycleFixture(t)
	svc := NewLifecycleService(f.store, nil, contact.PolicySnapshot, nil, nil)

	n, err := svc.MarkSent(context.Background(), f.u2, []uuid.UUID{f.leadNotifID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.MarkSent(context.Background(), f.u2, []uuid.UUID{f.leadNotifID})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	pending, err := svc.ListPending(context.Background(), f.u2)
	require.NoError(t, err)
	assert.Empty(t, pending.LeadNotifications)
}

func TestMarkViewedByOtherUserIsForbiddenAndMutatesNothing(t *testing.T) {
	f := newLifecycleFixture(t)
	svc := NewLifecycleService(f.store, nil, contact.PolicySnapshot, nil, nil)

	_, err := svc.MarkViewed(context.Background(), f.u1, []uuid.UUID{f.partnerID})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	pending, err := svc.ListPending(context.Background(), f.u2)
	require.NoError(t, err)
	assert.Len(t, pending.PartnershipNotifications, 1)
}

func TestMarkViewedRejectsWholeBatchWithForeignID(t *testing.T) {
	f := newLifecycleFixture(t)
	svc := NewLifecycleService(f.store, nil, contact.PolicySnapshot, nil, nil)

	_, err := svc.MarkViewed(context.Background(), f.u2, []uuid.UUID{f.partnerID, uuid.New()})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	pending, err := svc.ListPending(context.Background(), f.u2)
	require.NoError(t, err)
	assert.Len(t, pending.PartnershipNotifications, 1)
}

func TestLeadNotificationFollowsReassignedLeadOwner(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	svc := NewLifecycleService(f.store, nil, contact.PolicySnapshot, nil, nil)
	u3 := f.store.addUser("u3", "")

	items, err := f.store.ListPendingLeadNotifications(ctx, f.u2)
	require.NoError(t, err)
	require.Len(t, items, 1)

	lead := f.store.lead(items[0].LeadID)
	lead.UserID = u3
	f.store.putLead(lead)
	property, err := f.store.GetProperty(ctx, items[0].PropertyID)
	require.NoError(t, err)
	property.UserID = u3
	f.store.putProperty(property)

	report, err := newTestEngine(f.store).EvaluateLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.Zero(t, report.LeadNotificationsCreated)

	former, err := svc.ListPending(ctx, f.u2)
	require.NoError(t, err)
	assert.Empty(t, former.LeadNotifications)

	current, err := svc.ListPending(ctx, u3)
	require.NoError(t, err)
	require.Len(t, current.LeadNotifications, 1)
	assert.Equal(t, f.leadNotifID, current.LeadNotifications[0].ID)
	assert.Equal(t, u3, current.LeadNotifications[0].UserID)

	_, err = svc.MarkSent(ctx, f.u2, []uuid.UUID{f.leadNotifID})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	n, err := svc.MarkSent(ctx, u3, []uuid.UUID{f.leadNotifID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMarkSentRequiresIDs(t *testing.T) {
	svc := NewLifecycleService(newMemStore(), nil, contact.PolicySnapshot, nil, nil)

	_, err := svc.MarkSent(context.Background(), uuid.New(), nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestResetThenListReturnsResetNotifications(t *testing.T) {
	f := newLifecycleFixture(t)
	svc := NewLifecycleService(f.store, nil, contact.PolicySnapshot, nil, nil)
	_, err := svc.MarkSent(context.Background(), f.u2, []uuid.UUID{f.leadNotifID})
	require.NoError(t, err)
	_, err = svc.MarkViewed(context.Background(), f.u2, []uuid.UUID{f.partnerID})
	require.NoError(t, err)

	result, err := svc.Reset(context.Background(), ResetRequest{ActorID: f.u2, Reason: "client reinstall"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.LeadNotifications)
	assert.Equal(t, 1, result.PartnershipNotifications)

	pending, err := svc.ListPending(context.Background(), f.u2)
	require.NoError(t, err)
	require.Len(t, pending.LeadNotifications, 1)
	require.Len(t, pending.PartnershipNotifications, 1)
	assert.Equal(t, domain.StatePending, pending.LeadNotifications[0].State())
	assert.Nil(t, pending.PartnershipNotifications[0].ViewedAt)

	require.Len(t, f.store.resetAudit, 1)
	assert.Equal(t, "client reinstall", f.store.resetAudit[0].Reason)
}

func TestResetOfAnotherUserRequiresAdmin(t *testing.T) {
	f := newLifecycleFixture(t)
	svc := NewLifecycleService(f.store, nil, contact.PolicySnapshot, nil, nil)

	_, err := svc.Reset(context.Background(), ResetRequest{ActorID: f.u1, UserID: f.u2})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.Empty(t, f.store.resetAudit)

	_, err = svc.Reset(context.Background(), ResetRequest{ActorID: f.u1, ActorIsAdmin: true, UserID: f.u2})
	require.NoError(t, err)
	require.Len(t, f.store.resetAudit, 1)
	assert.Equal(t, f.u1, f.store.resetAudit[0].ActorID)
}

func TestSnapshotWithCurrentPolicyAddsLivePhoneWithoutRewriting(t *testing.T) {
	f := newLifecycleFixture(t)
	owner := f.store.users[f.u1]
	owner.Phone = "11912345678"
	f.store.users[f.u1] = owner

	resolver := contact.NewResolver(f.store, "BR")
	svc := NewLifecycleService(f.store, resolver, contact.PolicySnapshotWithCurrent, nil, nil)

	pending, err := svc.ListPending(context.Background(), f.u2)
	require.NoError(t, err)
	require.Len(t, pending.PartnershipNotifications, 1)
	item := pending.PartnershipNotifications[0]

	require.NotNil(t, item.Snapshot.FromUserPhone)
	assert.Equal(t, "+5511987654321", *item.Snapshot.FromUserPhone)
	require.NotNil(t, item.CurrentFromUserPhone)
	assert.Equal(t, "+5511912345678", *item.CurrentFromUserPhone)
}
