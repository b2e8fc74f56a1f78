package relay

import (
	"context"
	"encoding/json"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"feed-service/internal/models"
	"feed-service/internal/observability"
	"feed-service/internal/rabbitmq"
)

// Relay serializes mutation events into envelopes and hands them to the
// broker. It must be invoked only after the store write has committed.
// There are no retries: a lost event degrades to a missed real-time update,
// recoverable by the next page fetch.
type Relay struct {
	publisher rabbitmq.Publisher
}

// New builds a Relay over an already-connected publisher.
func New(publisher rabbitmq.Publisher) *Relay {
	return &Relay{publisher: publisher}
}

// Emit publishes one envelope. Failures are logged and swallowed so a
// live-update outage never rolls back the mutation that already succeeded.
func (r *Relay) Emit(ctx context.Context, event string, payload any, roomID string) {
	ctx, span := otel.Tracer("feed-service/relay").Start(ctx, "relay.emit")
	span.SetAttributes(attribute.String("event", event), attribute.String("room_id", roomID))
	defer span.End()

	body, err := json.Marshal(models.Envelope{Event: event, Payload: payload, RoomID: roomID})
	if err != nil {
		log.Printf("relay marshal failed event=%s room=%s: %v", event, roomID, err)
		observability.IncRelayPublishError()
		return
	}

	if err := r.publisher.Publish(ctx, body); err != nil {
		log.Printf("relay publish failed event=%s room=%s: %v", event, roomID, err)
		observability.IncRelayPublishError()
		return
	}
	observability.IncRelayEvent(event)
}
