package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message is the transport-neutral envelope used by producers and
// consumers. Value is a JSON-encoded payload.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
}

// Header keys shared by all services.
const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderSchemaVersion = "schema-version"
	HeaderSource        = "source"
	HeaderRetryCount    = "retry-count"
	HeaderOriginalTopic = "original-topic"
)

// NewEventMessage builds a message with a fresh event id and the
// standard headers. key routes the message to a partition (bookings key
// on the experience id so events per experience stay ordered).
func NewEventMessage(key, eventType, source string, payload any) (Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Key:       key,
		Value:     value,
		Timestamp: time.Now(),
		Headers: map[string]string{
			HeaderEventID:       uuid.NewString(),
			HeaderEventType:     eventType,
			HeaderSchemaVersion: "1",
			HeaderSource:        source,
		},
	}, nil
}

func (m *Message) EventID() string {
	return m.Headers[HeaderEventID]
}

func (m *Message) EventType() string {
	return m.Headers[HeaderEventType]
}

func (m *Message) RetryCount() int {
	count := 0
	if raw, ok := m.Headers[HeaderRetryCount]; ok {
		// Malformed counts reset to zero rather than poisoning the message.
		if err := json.Unmarshal([]byte(raw), &count); err != nil {
			return 0
		}
	}
	return count
}

func (m *Message) IncrementRetryCount() {
	if m.Headers == nil {
		m.Headers = make(map[string]string)
	}
	raw, _ := json.Marshal(m.RetryCount() + 1)
	m.Headers[HeaderRetryCount] = string(raw)
}
