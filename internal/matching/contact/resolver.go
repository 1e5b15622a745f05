// Package contact resolves the phone and identity data copied into
// partnership notifications.
package contact

import (
	"context"
	"strings"

	"realty_crm_backend/internal/matching/domain"
	"realty_crm_backend/internal/matching/ports"
	"realty_crm_backend/platform/apperr"
	"realty_crm_backend/platform/phone"

	"github.com/google/uuid"
)

// Policy controls what partnership notification reads expose.
type Policy string

const (
	// PolicySnapshot returns only the fields stored at creation.
	PolicySnapshot Policy = "snapshot"
	// PolicySnapshotWithCurrent also resolves the sender's current phone on read.
	PolicySnapshotWithCurrent Policy = "snapshot_with_current"
)

// ParsePolicy maps a config value onto a Policy, defaulting to PolicySnapshot.
func ParsePolicy(value string) Policy {
	if Policy(strings.ToLower(strings.TrimSpace(value))) == PolicySnapshotWithCurrent {
		return PolicySnapshotWithCurrent
	}
	return PolicySnapshot
}

// Resolver looks up contact data through the directory port.
type Resolver struct {
	directory ports.ContactDirectory
	region    string
}

// NewResolver creates a resolver normalising phones for region.
func NewResolver(directory ports.ContactDirectory, region string) *Resolver {
	if region == "" {
		region = phone.DefaultRegion
	}
	return &Resolver{directory: directory, region: region}
}

// ResolvePhone returns the user's phone, falling back to the phone of the
// user's organization. ok is false when neither exists.
func (r *Resolver) ResolvePhone(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	user, err := r.directory.GetUserContact(ctx, userID)
	if err != nil {
		return "", false, err
	}
	return r.phoneFor(ctx, user)
}

func (r *Resolver) phoneFor(ctx context.Context, user ports.UserContact) (string, bool, error) {
	if p := strings.TrimSpace(user.Phone); p != "" {
		return phone.NormalizeE164(p, r.region), true, nil
	}
	if user.OrganizationID == nil {
		return "", false, nil
	}

	orgPhone, err := r.directory.GetOrganizationPhone(ctx, *user.OrganizationID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if p := strings.TrimSpace(orgPhone); p != "" {
		return phone.NormalizeE164(p, r.region), true, nil
	}
	return "", false, nil
}

// Snapshot builds the contact snapshot of a partnership notification. The
// sender is always the lead owner as stored, never the caller.
func (r *Resolver) Snapshot(ctx context.Context, lead domain.Lead, property domain.Property, priceCents int64) (domain.ContactSnapshot, error) {
	sender, err := r.directory.GetUserContact(ctx, lead.UserID)
	if err != nil {
		return domain.ContactSnapshot{}, err
	}

	snapshot := domain.ContactSnapshot{
		FromUserName:       sender.Name,
		FromUserEmail:      sender.Email,
		LeadName:           lead.Name,
		PropertyTitle:      property.Title,
		PropertyPriceCents: priceCents,
	}

	senderPhone, ok, err := r.phoneFor(ctx, sender)
	if err != nil {
		return domain.ContactSnapshot{}, err
	}
	if ok {
		snapshot.FromUserPhone = &senderPhone
	}

	if p := strings.TrimSpace(lead.Phone); p != "" {
		leadPhone := phone.NormalizeE164(p, r.region)
		snapshot.LeadPhone = &leadPhone
	}

	return snapshot, nil
}
