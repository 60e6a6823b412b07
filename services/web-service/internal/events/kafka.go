package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/fabclean/fabclean-web/libs/kafkax"
	otelx "github.com/fabclean/fabclean-web/libs/otel"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher queues events in memory and writes them from Run. Each event
// type is its own topic.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
	inbox  chan kafka.Message
}

type KafkaConfig struct {
	Brokers    []string
	BufferSize int
}

func NewKafkaPublisher(cfg KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return newKafkaPublisher(w, logger, cfg.BufferSize)
}

func newKafkaPublisher(w messageWriter, logger *slog.Logger, size int) *KafkaPublisher {
	if size <= 0 {
		size = 256
	}
	return &KafkaPublisher{
		writer: w,
		logger: logger,
		inbox:  make(chan kafka.Message, size),
	}
}

// Publish never blocks. When the buffer is full the event is dropped.
func (p *KafkaPublisher) Publish(_ context.Context, e Event) {
	msg := kafka.Message{
		Topic: e.Type,
		Key:   []byte(e.Key),
		Value: e.Payload,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: kafkax.HeaderEventID, Value: []byte(e.ID)},
			{Key: kafkax.HeaderEventType, Value: []byte(e.Type)},
		},
	}
	msg.Headers = kafkax.InjectTraceHeaders(otelx.ContextWithTraceContext(context.Background(), e.Traceparent, ""), msg.Headers)

	select {
	case p.inbox <- msg:
	default:
		p.logger.Warn("event dropped, publish buffer full", "event_type", e.Type, "event_id", e.ID)
	}
}

// Run writes queued events until ctx is done, then flushes what is left
// and closes the writer.
func (p *KafkaPublisher) Run(ctx context.Context) {
	defer func() {
		if err := p.writer.Close(); err != nil {
			p.logger.Error("kafka writer close failed", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			p.drain()
			return
		case msg := <-p.inbox:
			p.write(ctx, msg)
		}
	}
}

func (p *KafkaPublisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case msg := <-p.inbox:
			p.write(ctx, msg)
		default:
			return
		}
	}
}

func (p *KafkaPublisher) write(ctx context.Context, msg kafka.Message) {
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("event publish failed",
			"err", err,
			"event_type", msg.Topic,
			"event_id", kafkax.HeaderValue(msg.Headers, kafkax.HeaderEventID),
		)
	}
}
