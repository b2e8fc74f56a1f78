package relay

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"feed-service/internal/mocks"
	"feed-service/internal/models"
)

func TestEmitPublishesEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	r := New(publisher)

	var captured []byte
	publisher.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).([]byte)
	}).Return(nil).Once()

	r.Emit(context.Background(), models.EventMessageDelete, models.DeletePayload{ID: "m1"}, "room-1")

	publisher.AssertExpectations(t)

	var envelope struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
		RoomID  string          `json:"roomId"`
	}
	require.NoError(t, json.Unmarshal(captured, &envelope))
	assert.Equal(t, "message:delete", envelope.Event)
	assert.Equal(t, "room-1", envelope.RoomID)

	var payload models.DeletePayload
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "m1", payload.ID)
}

func TestEmitSwallowsPublishFailure(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	r := New(publisher)

	publisher.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	// Must not panic or propagate: the store mutation already committed.
	r.Emit(context.Background(), models.EventMessageCreate, models.Message{ID: "m1"}, "room-1")
	publisher.AssertExpectations(t)
}

func TestEmitPublishesAtMostOnce(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	r := New(publisher)

	publisher.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError)

	r.Emit(context.Background(), models.EventMessageUpdate, models.UpdatePayload{ID: "m1"}, "room-1")
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}
