package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"realty_crm_backend/internal/matching/domain"
	"realty_crm_backend/internal/matching/ports"
	"realty_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

type pairKey struct {
	leadID     uuid.UUID
	propertyID uuid.UUID
}

// memStore implements every matching port in memory, with the same
// uniqueness rules as the SQL constraints.
type memStore struct {
	mu sync.Mutex

	leads      map[uuid.UUID]domain.Lead
	properties map[uuid.UUID]domain.Property
	users      map[uuid.UUID]ports.UserContact
	orgPhones  map[uuid.UUID]string

	leadNotifications        map[pairKey]*domain.LeadNotification
	partnershipNotifications map[domain.PartnershipKey]*domain.PartnershipNotification
	resetAudit               []ports.ResetParams

	failUpsertFor map[pairKey]error
}

func newMemStore() *memStore {
	return &memStore{
		leads:                    make(map[uuid.UUID]domain.Lead),
		properties:               make(map[uuid.UUID]domain.Property),
		users:                    make(map[uuid.UUID]ports.UserContact),
		orgPhones:                make(map[uuid.UUID]string),
		leadNotifications:        make(map[pairKey]*domain.LeadNotification),
		partnershipNotifications: make(map[domain.PartnershipKey]*domain.PartnershipNotification),
		failUpsertFor:            make(map[pairKey]error),
	}
}

func (m *memStore) addUser(name, phone string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.users[id] = ports.UserContact{UserID: id, Name: name, Email: name + "@example.com", Phone: phone}
	return id
}

func (m *memStore) putLead(l domain.Lead) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads[l.ID] = l
}

func (m *memStore) putProperty(p domain.Property) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.properties[p.ID] = p
}

func (m *memStore) lead(id uuid.UUID) domain.Lead {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leads[id]
}

func (m *memStore) countLeadNotifications() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.leadNotifications)
}

func (m *memStore) countPartnershipNotifications() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.partnershipNotifications)
}

func (m *memStore) GetLead(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	return l, nil
}

func (m *memStore) ListActiveLeads(_ context.Context, filter ports.LeadFilter) ([]domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Lead, 0)
	for _, l := range m.leads {
		if l.Status != domain.LeadStatusActive || l.PropertyType != filter.PropertyType {
			continue
		}
		price := filter.SalePriceCents
		if l.Interest == domain.InterestRent {
			price = filter.RentPriceCents
		}
		if price == nil || *price <= 0 || *price > l.MaxPriceCents {
			continue
		}
		if l.MinPriceCents != nil && *price < *l.MinPriceCents {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memStore) GetProperty(_ context.Context, id uuid.UUID) (domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[id]
	if !ok {
		return domain.Property{}, apperr.NotFound("property not found")
	}
	return p, nil
}

func (m *memStore) ListAvailableProperties(_ context.Context, filter ports.PropertyFilter) ([]domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Property, 0)
	for _, p := range m.properties {
		if p.Status != domain.PropertyStatusAvailable || p.PropertyType != filter.PropertyType {
			continue
		}
		price, ok := p.TargetPriceCents(filter.Interest)
		if !ok || price <= 0 || price < filter.MinPriceCents || price > filter.MaxPriceCents {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memStore) SetLeadMatchedProperty(_ context.Context, leadID, propertyID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[leadID]
	if !ok {
		return apperr.NotFound("lead not found")
	}
	id := propertyID
	l.MatchedPropertyID = &id
	m.leads[leadID] = l
	return nil
}

func (m *memStore) GetUserContact(_ context.Context, userID uuid.UUID) (ports.UserContact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ports.UserContact{}, apperr.NotFound("user not found")
	}
	return u, nil
}

func (m *memStore) GetOrganizationPhone(_ context.Context, organizationID uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.orgPhones[organizationID]
	if !ok {
		return "", apperr.NotFound("organization not found")
	}
	return p, nil
}

func (m *memStore) UpsertLeadNotification(_ context.Context, params ports.LeadNotificationParams) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{leadID: params.LeadID, propertyID: params.PropertyID}
	if err, ok := m.failUpsertFor[key]; ok {
		return false, err
	}
	if _, ok := m.leadNotifications[key]; ok {
		return false, nil
	}
	m.leadNotifications[key] = &domain.LeadNotification{
		ID:         uuid.New(),
		LeadID:     params.LeadID,
		PropertyID: params.PropertyID,
		UserID:     params.UserID,
		CreatedAt:  time.Now().UTC(),
	}
	return true, nil
}

func (m *memStore) CreatePartnershipNotification(_ context.Context, n domain.PartnershipNotification) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.partnershipNotifications[n.Key()]; ok {
		return false, nil
	}
	n.ID = uuid.New()
	n.CreatedAt = time.Now().UTC()
	m.partnershipNotifications[n.Key()] = &n
	return true, nil
}

// leadOwner is the lead's current owner, the addressee of its lead
// notifications. Callers hold m.mu.
func (m *memStore) leadOwner(n *domain.LeadNotification) uuid.UUID {
	return m.leads[n.LeadID].UserID
}

func (m *memStore) ListPendingLeadNotifications(_ context.Context, userID uuid.UUID) ([]domain.LeadNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.LeadNotification, 0)
	for _, n := range m.leadNotifications {
		if m.leadOwner(n) == userID && !n.Sent {
			item := *n
			item.UserID = userID
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memStore) ListPendingPartnershipNotifications(_ context.Context, userID uuid.UUID) ([]domain.PartnershipNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.PartnershipNotification, 0)
	for _, n := range m.partnershipNotifications {
		if n.ToUserID == userID && !n.Viewed {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *memStore) CountPending(ctx context.Context, userID uuid.UUID) (int, int, error) {
	leads, _ := m.ListPendingLeadNotifications(ctx, userID)
	partnerships, _ := m.ListPendingPartnershipNotifications(ctx, userID)
	return len(leads), len(partnerships), nil
}

func (m *memStore) MarkLeadNotificationsSent(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	targets := make([]*domain.LeadNotification, 0, len(ids))
	for _, id := range ids {
		var found *domain.LeadNotification
		for _, n := range m.leadNotifications {
			if n.ID == id && m.leadOwner(n) == userID {
				found = n
			}
		}
		if found == nil {
			return 0, apperr.Forbidden("not addressed to user")
		}
		targets = append(targets, found)
	}
	changed := 0
	now := time.Now().UTC()
	for _, n := range targets {
		if !n.Sent {
			n.Sent = true
			n.SentAt = &now
			changed++
		}
	}
	return changed, nil
}

func (m *memStore) MarkPartnershipNotificationsViewed(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	targets := make([]*domain.PartnershipNotification, 0, len(ids))
	for _, id := range ids {
		var found *domain.PartnershipNotification
		for _, n := range m.partnershipNotifications {
			if n.ID == id && n.ToUserID == userID {
				found = n
			}
		}
		if found == nil {
			return 0, apperr.Forbidden("not addressed to user")
		}
		targets = append(targets, found)
	}
	changed := 0
	now := time.Now().UTC()
	for _, n := range targets {
		if !n.Viewed {
			n.Viewed = true
			n.ViewedAt = &now
			changed++
		}
	}
	return changed, nil
}

func (m *memStore) Reset(_ context.Context, params ports.ResetParams) (ports.ResetResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result ports.ResetResult
	for _, n := range m.leadNotifications {
		if m.leadOwner(n) == params.UserID && n.Sent {
			n.Sent = false
			n.SentAt = nil
			result.LeadNotifications++
		}
	}
	for _, n := range m.partnershipNotifications {
		if n.ToUserID == params.UserID && n.Viewed {
			n.Viewed = false
			n.ViewedAt = nil
			result.PartnershipNotifications++
		}
	}
	m.resetAudit = append(m.resetAudit, params)
	return result, nil
}
