package scheduler

import (
	"testing"

	"realty_crm_backend/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayEnvelopeRestoresConcreteEvent(t *testing.T) {
	original := events.PartnershipNotificationCreated{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        uuid.New(),
		PropertyID:    uuid.New(),
		FromUserID:    uuid.New(),
		ToUserID:      uuid.New(),
		MatchType:     "RENT",
		PropertyTitle: "Apartamento Centro",
	}

	data, err := encodeEnvelope(original)
	require.NoError(t, err)

	decoded, err := decodeEnvelope(data)
	require.NoError(t, err)

	got, ok := decoded.(events.PartnershipNotificationCreated)
	require.True(t, ok, "expected concrete partnership event, got %T", decoded)
	assert.Equal(t, original.ToUserID, got.ToUserID)
	assert.Equal(t, original.PropertyTitle, got.PropertyTitle)
	assert.True(t, original.OccurredAt().Equal(got.OccurredAt()))
}

func TestRelayEnvelopeRejectsUnrelayedEvents(t *testing.T) {
	data, err := encodeEnvelope(events.LeadUpdated{BaseEvent: events.NewBaseEvent(), LeadID: uuid.New()})
	require.NoError(t, err)

	_, err = decodeEnvelope(data)
	assert.Error(t, err)
}

func TestRelayCoversEveryNotificationEvent(t *testing.T) {
	names := events.NotificationEvents()
	assert.Len(t, relayedEvents, len(names))
	for _, name := range names {
		assert.Contains(t, relayedEvents, name)
	}
}
