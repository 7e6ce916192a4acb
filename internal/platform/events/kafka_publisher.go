package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ridloal/toy-store-backend/internal/platform/logger"
	"github.com/segmentio/kafka-go"
)

const writeTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher queues envelopes and writes them from one goroutine.
type KafkaPublisher struct {
	w        messageWriter
	producer string
	inbox    chan kafka.Message
	done     chan struct{}
	once     sync.Once
}

func NewKafkaPublisher(brokers []string, topic, producer string, buf int) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return newKafkaPublisher(w, producer, buf)
}

func newKafkaPublisher(w messageWriter, producer string, buf int) *KafkaPublisher {
	p := &KafkaPublisher{
		w:        w,
		producer: producer,
		inbox:    make(chan kafka.Message, buf),
		done:     make(chan struct{}),
	}
	go p.loop()
	return p
}

func (p *KafkaPublisher) loop() {
	defer close(p.done)
	for m := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := p.w.WriteMessages(ctx, m); err != nil {
			logger.Error("Failed to publish event", err, logger.Fields{"key": string(m.Key)})
		}
		cancel()
	}
}

// Publish drops the event with a warning when the queue is full.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) {
	env, err := NewEnvelope(p.producer, eventType, key, payload)
	if err != nil {
		logger.Error("Failed to encode event", err, logger.Fields{"eventType": eventType})
		return
	}
	value, err := json.Marshal(env)
	if err != nil {
		logger.Error("Failed to encode event envelope", err, logger.Fields{"eventType": eventType})
		return
	}
	msg := kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Time:    env.OccurredAt,
		Headers: []kafka.Header{{Key: "eventType", Value: []byte(eventType)}},
	}
	select {
	case p.inbox <- msg:
	default:
		logger.Warn("Event queue full, dropping event", logger.Fields{"eventType": eventType, "key": key})
	}
}

// Close flushes queued events and closes the writer. Publish must not be
// called after Close.
func (p *KafkaPublisher) Close() error {
	var err error
	p.once.Do(func() {
		close(p.inbox)
		<-p.done
		err = p.w.Close()
	})
	return err
}
