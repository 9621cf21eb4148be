package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGoChannelEventPublisher(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	publisher, pubSub := NewGoChannelEventPublisher(PublisherConfig{TopicName: "exam-events", Logger: discardLogger()})
	defer publisher.Close()

	messages, err := pubSub.Subscribe(ctx, "exam-events")
	require.NoError(t, err)

	event := NewEvent(EventExamSubmitted, ExamSubmittedEvent{ResultID: "r1", Score: 33})
	require.NoError(t, publisher.Publish(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, string(EventExamSubmitted), msg.Metadata.Get("event_type"))
		assert.Equal(t, EventSource, msg.Metadata.Get("source"))

		var decoded struct {
			Type EventType          `json:"type"`
			Data ExamSubmittedEvent `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, EventExamSubmitted, decoded.Type)
		assert.Equal(t, 33, decoded.Data.Score)
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(discardLogger())

	require.NoError(t, mock.Publish(context.Background(), NewEvent(EventBankImported, BankImportedEvent{BankID: "b1"})))
	require.NoError(t, mock.Publish(context.Background(), NewEvent(EventHistoryDeleted, HistoryDeletedEvent{ResultID: "r1"})))

	assert.Len(t, mock.GetPublishedEvents(), 2)
	assert.Len(t, mock.EventsOfType(EventBankImported), 1)

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())
}
