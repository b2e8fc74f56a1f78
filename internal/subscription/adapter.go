package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"feed-service/internal/feed"
	"feed-service/internal/models"
	"feed-service/internal/observability"
)

// ChannelName returns the logical channel for a room.
func ChannelName(roomID string) string {
	return "room-" + roomID
}

// Handler consumes one decoded live event.
type Handler func(feed.LiveEvent)

// Adapter manages per-room subscriptions against the downstream push
// service. At most one subscription per room is active: re-subscribing
// first tears down the prior one to avoid duplicate delivery.
type Adapter struct {
	pushURL string
	dialer  *websocket.Dialer

	mu   sync.Mutex
	subs map[string]*Subscription
}

// NewAdapter builds an Adapter against the push service websocket endpoint.
func NewAdapter(pushURL string) *Adapter {
	return &Adapter{
		pushURL: pushURL,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		subs:    make(map[string]*Subscription),
	}
}

// Subscribe opens the room's channel and starts delivering events to
// registered handlers. Handlers run on a single goroutine per subscription,
// one event at a time, in delivery order.
func (a *Adapter) Subscribe(ctx context.Context, roomID string) (*Subscription, error) {
	ctx, span := otel.Tracer("feed-service/subscription").Start(ctx, "subscription.subscribe")
	span.SetAttributes(attribute.String("room_id", roomID))
	defer span.End()

	a.mu.Lock()
	prior := a.subs[roomID]
	delete(a.subs, roomID)
	a.mu.Unlock()
	if prior != nil {
		prior.close()
	}

	endpoint := fmt.Sprintf("%s/channels/%s", a.pushURL, url.PathEscape(ChannelName(roomID)))
	conn, resp, err := a.dialer.DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", ChannelName(roomID), err)
	}

	sub := &Subscription{
		roomID:   roomID,
		conn:     conn,
		handlers: make(map[string][]Handler),
		done:     make(chan struct{}),
	}

	a.mu.Lock()
	a.subs[roomID] = sub
	a.mu.Unlock()

	observability.IncActiveSubscriptions()
	go sub.readLoop()
	return sub, nil
}

// Unsubscribe cancels the logical interest in the room's future events.
// Publishes already queued upstream are not retracted.
func (a *Adapter) Unsubscribe(roomID string) {
	a.mu.Lock()
	sub := a.subs[roomID]
	delete(a.subs, roomID)
	a.mu.Unlock()

	if sub != nil {
		sub.close()
		observability.DecActiveSubscriptions()
	}
}

// Subscription is one room's live event stream.
type Subscription struct {
	roomID string
	conn   *websocket.Conn

	mu       sync.Mutex
	handlers map[string][]Handler

	closeOnce sync.Once
	done      chan struct{}
}

// On registers a handler for an event name.
func (s *Subscription) On(event string, handler Handler) {
	s.mu.Lock()
	s.handlers[event] = append(s.handlers[event], handler)
	s.mu.Unlock()
}

// Done is closed when the subscription stops delivering.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
	})
}

// wireEnvelope mirrors the relay's published shape with the payload left
// raw until the event name selects a type.
type wireEnvelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	RoomID  string          `json:"roomId"`
}

// readLoop is the only reader of the connection, which serializes handler
// execution for the room.
func (s *Subscription) readLoop() {
	defer close(s.done)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("subscription read error room=%s: %v", s.roomID, err)
			}
			s.close()
			return
		}

		ev, ok := decodeEvent(data, s.roomID)
		if !ok {
			continue
		}
		observability.IncLiveEvent(ev.Kind)
		s.dispatch(ev)
	}
}

func (s *Subscription) dispatch(ev feed.LiveEvent) {
	s.mu.Lock()
	handlers := make([]Handler, len(s.handlers[ev.Kind]))
	copy(handlers, s.handlers[ev.Kind])
	s.mu.Unlock()

	for _, handler := range handlers {
		handler(ev)
	}
}

// decodeEvent turns a raw frame into a live event. Malformed frames and
// frames for other rooms are dropped with a logged warning, never propagated.
func decodeEvent(data []byte, roomID string) (feed.LiveEvent, bool) {
	var envelope wireEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		log.Printf("subscription decode failed room=%s: %v", roomID, err)
		observability.IncDecodeError()
		return feed.LiveEvent{}, false
	}
	if envelope.RoomID != "" && envelope.RoomID != roomID {
		log.Printf("subscription dropped event for other room=%s on channel room=%s", envelope.RoomID, roomID)
		return feed.LiveEvent{}, false
	}

	ev := feed.LiveEvent{Kind: envelope.Event, At: time.Now()}
	var err error
	switch envelope.Event {
	case models.EventMessageCreate:
		err = json.Unmarshal(envelope.Payload, &ev.Message)
	case models.EventMessageUpdate:
		err = json.Unmarshal(envelope.Payload, &ev.Update)
	case models.EventMessageDelete:
		err = json.Unmarshal(envelope.Payload, &ev.Delete)
	default:
		log.Printf("subscription dropped unknown event %q room=%s", envelope.Event, roomID)
		return feed.LiveEvent{}, false
	}
	if err != nil {
		log.Printf("subscription payload decode failed event=%s room=%s: %v", envelope.Event, roomID, err)
		observability.IncDecodeError()
		return feed.LiveEvent{}, false
	}
	return ev, true
}
