package contact

import (
	"context"
	"errors"
	"testing"

	"realty_crm_backend/internal/matching/domain"
	"realty_crm_backend/internal/matching/ports"
	"realty_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeDirectory struct {
	users  map[uuid.UUID]ports.UserContact
	orgs   map[uuid.UUID]string
	orgErr error
}

func (f *fakeDirectory) GetUserContact(_ context.Context, userID uuid.UUID) (ports.UserContact, error) {
	user, ok := f.users[userID]
	if !ok {
		return ports.UserContact{}, apperr.NotFound("user not found")
	}
	return user, nil
}

func (f *fakeDirectory) GetOrganizationPhone(_ context.Context, organizationID uuid.UUID) (string, error) {
	if f.orgErr != nil {
		return "", f.orgErr
	}
	p, ok := f.orgs[organizationID]
	if !ok {
		return "", apperr.NotFound("organization not found")
	}
	return p, nil
}

func TestResolvePhonePrefersUserPhone(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	dir := &fakeDirectory{
		users: map[uuid.UUID]ports.UserContact{userID: {UserID: userID, OrganizationID: &orgID, Phone: "(11) 98765-4321"}},
		orgs:  map[uuid.UUID]string{orgID: "+55 11 3333-4444"},
	}

	got, ok, err := NewResolver(dir, "BR").ResolvePhone(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || got != "+5511987654321" {
		t.Fatalf("expected user phone in E.164, got %q (ok=%v)", got, ok)
	}
}

func TestResolvePhoneFallsBackToOrganization(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	dir := &fakeDirectory{
		users: map[uuid.UUID]ports.UserContact{userID: {UserID: userID, OrganizationID: &orgID, Phone: "   "}},
		orgs:  map[uuid.UUID]string{orgID: "(11) 98765-4321"},
	}

	got, ok, err := NewResolver(dir, "BR").ResolvePhone(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || got != "+5511987654321" {
		t.Fatalf("expected organization phone, got %q (ok=%v)", got, ok)
	}
}

func TestResolvePhoneNoneWithoutOrganization(t *testing.T) {
	userID := uuid.New()
	dir := &fakeDirectory{users: map[uuid.UUID]ports.UserContact{userID: {UserID: userID}}}

	_, ok, err := NewResolver(dir, "BR").ResolvePhone(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no phone")
	}
}

func TestResolvePhoneMissingOrganizationIsNone(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	dir := &fakeDirectory{users: map[uuid.UUID]ports.UserContact{userID: {UserID: userID, OrganizationID: &orgID}}}

	_, ok, err := NewResolver(dir, "BR").ResolvePhone(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no phone when organization is gone")
	}
}

func TestResolvePhoneSurfacesStorageErrors(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	dir := &fakeDirectory{
		users:  map[uuid.UUID]ports.UserContact{userID: {UserID: userID, OrganizationID: &orgID}},
		orgErr: apperr.Storage("test", errors.New("connection reset")),
	}

	if _, _, err := NewResolver(dir, "BR").ResolvePhone(context.Background(), userID); !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestResolvePhoneUnknownUser(t *testing.T) {
	dir := &fakeDirectory{users: map[uuid.UUID]ports.UserContact{}}

	if _, _, err := NewResolver(dir, "BR").ResolvePhone(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSnapshotUsesLeadOwnerAsSender(t *testing.T) {
	owner := uuid.New()
	dir := &fakeDirectory{users: map[uuid.UUID]ports.UserContact{
		owner: {UserID: owner, Name: "Ana Broker", Email: "ana@example.com", Phone: "11987654321"},
	}}
	lead := domain.Lead{ID: uuid.New(), UserID: owner, Name: "Carlos", Phone: ""}
	property := domain.Property{ID: uuid.New(), UserID: uuid.New(), Title: "Apto Centro"}

	snapshot, err := NewResolver(dir, "BR").Snapshot(context.Background(), lead, property, 250000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.FromUserName != "Ana Broker" || snapshot.FromUserEmail != "ana@example.com" {
		t.Fatalf("unexpected sender identity: %+v", snapshot)
	}
	if snapshot.FromUserPhone == nil || *snapshot.FromUserPhone != "+5511987654321" {
		t.Fatalf("expected normalized sender phone, got %v", snapshot.FromUserPhone)
	}
	if snapshot.LeadPhone != nil {
		t.Fatal("expected nil lead phone for blank input")
	}
	if snapshot.LeadName != "Carlos" || snapshot.PropertyTitle != "Apto Centro" || snapshot.PropertyPriceCents != 250000 {
		t.Fatalf("unexpected snapshot fields: %+v", snapshot)
	}
}

func TestParsePolicyDefaultsToSnapshot(t *testing.T) {
	if ParsePolicy("") != PolicySnapshot {
		t.Fatal("expected empty policy to default to snapshot")
	}
	if ParsePolicy("SNAPSHOT_WITH_CURRENT") != PolicySnapshotWithCurrent {
		t.Fatal("expected case-insensitive policy parsing")
	}
}
