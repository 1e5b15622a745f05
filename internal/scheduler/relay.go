package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"realty_crm_backend/internal/events"
	"realty_crm_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

const DefaultRelayChannel = "matching:events"

type relayEnvelope struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// relayedEvents are the events a worker forwards so API instances can push
// them to connected streams.
var relayedEvents = map[string]func([]byte) (events.Event, error){
	events.LeadNotificationCreated{}.EventName():        decodeEvent[events.LeadNotificationCreated],
	events.PartnershipNotificationCreated{}.EventName(): decodeEvent[events.PartnershipNotificationCreated],
	events.NotificationsReset{}.EventName():             decodeEvent[events.NotificationsReset],
}

func decodeEvent[T events.Event](data []byte) (events.Event, error) {
	var event T
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return event, nil
}

func encodeEnvelope(event events.Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(relayEnvelope{Name: event.EventName(), Payload: payload})
}

func decodeEnvelope(data []byte) (events.Event, error) {
	var envelope relayEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	decode, ok := relayedEvents[envelope.Name]
	if !ok {
		return nil, fmt.Errorf("event %q is not relayed", envelope.Name)
	}
	return decode(envelope.Payload)
}

// EventRelay carries matching events between processes over Redis pub/sub.
type EventRelay struct {
	client  *redis.Client
	channel string
	log     *logger.Logger
}

func NewEventRelay(client *redis.Client, channel string, log *logger.Logger) *EventRelay {
	if channel == "" {
		channel = DefaultRelayChannel
	}
	return &EventRelay{client: client, channel: channel, log: log}
}

// Forward publishes every relayed event raised on bus to Redis.
func (r *EventRelay) Forward(bus events.Bus) {
	for name := range relayedEvents {
		bus.Subscribe(name, r)
	}
}

func (r *EventRelay) Handle(ctx context.Context, event events.Event) error {
	data, err := encodeEnvelope(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}

// Run republishes relayed events onto bus until ctx is done.
func (r *EventRelay) Run(ctx context.Context, bus events.Bus) {
	sub := r.client.Subscribe(ctx, r.channel)
	defer func() { _ = sub.Close() }()

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			event, err := decodeEnvelope([]byte(msg.Payload))
			if err != nil {
				r.log.Warn("dropping relayed event", "error", err)
				continue
			}
			bus.Publish(ctx, event)
		}
	}
}
