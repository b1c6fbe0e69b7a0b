package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"auction-house/internal/metrics"
	"auction-house/internal/models"
	"auction-house/utils"

	"github.com/segmentio/kafka-go"
)

const (
	EventOutbid  = "BidderOutbid"
	writeTimeout = 5 * time.Second
)

// Envelope wraps every event published to the broker
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes outbid notices through a buffered inbox drained by
// one goroutine. A full inbox drops the notice instead of blocking the bidder.
type KafkaNotifier struct {
	w        messageWriter
	producer string
	inbox    chan kafka.Message
	done     chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewKafkaNotifier starts a producer writing to topic on brokers
func NewKafkaNotifier(brokers []string, topic, producer string, buf int) *KafkaNotifier {
	return newKafkaNotifier(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}, producer, buf)
}

func newKafkaNotifier(w messageWriter, producer string, buf int) *KafkaNotifier {
	if buf < 1 {
		buf = 1
	}
	n := &KafkaNotifier{
		w:        w,
		producer: producer,
		inbox:    make(chan kafka.Message, buf),
		done:     make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *KafkaNotifier) run() {
	defer close(n.done)
	for m := range n.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := n.w.WriteMessages(ctx, m)
		cancel()
		if err != nil {
			metrics.RecordNotification("failed")
			utils.Error("kafka notifier: write failed", map[string]any{"key": string(m.Key), "error": err.Error()})
			continue
		}
		metrics.RecordNotification("sent")
	}
	if err := n.w.Close(); err != nil {
		utils.Warn("kafka notifier: close writer", map[string]any{"error": err.Error()})
	}
}

// NotifyOutbid queues the notice keyed by auction id
func (n *KafkaNotifier) NotifyOutbid(_ context.Context, notice models.OutbidNotice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("notify: encode payload: %w", err)
	}
	value, err := json.Marshal(Envelope{
		EventID:       utils.GenerateID(),
		EventType:     EventOutbid,
		EventVersion:  1,
		OccurredAt:    notice.OccurredAt,
		Producer:      n.producer,
		CorrelationID: notice.AuctionID,
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("notify: encode envelope: %w", err)
	}
	msg := kafka.Message{Key: []byte(notice.AuctionID), Value: value, Time: notice.OccurredAt}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrClosed
	}
	select {
	case n.inbox <- msg:
		return nil
	default:
		metrics.RecordNotification("dropped")
		return ErrQueueFull
	}
}

// Close stops accepting notices, flushes the queued ones and closes the writer
func (n *KafkaNotifier) Close() error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.inbox)
	}
	n.mu.Unlock()
	<-n.done
	return nil
}
