package kafka

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/DRSN-tech/storefront-assistant/internal/cfg"
	"github.com/DRSN-tech/storefront-assistant/internal/usecase"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	headerEventID    = "event-id"
	headerOperation  = "operation"
	headerOccurredAt = "occurred-at"

	networkMode       = "tcp"
	numPartitions     = 1
	replicationFactor = 1

	batchSize    = 10
	batchTimeout = 10 * time.Millisecond
)

// Producer публикует события изменения товаров в Kafka. Ключ сообщения: идентификатор товара.
// Запись асинхронная: PublishProductChange не ждёт брокера, ошибки доставки пишутся в лог из Completion.
// Close дожидается отправки накопленных сообщений.
type Producer struct {
	writer *kafka.Writer
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are not configured")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    batchSize,
		BatchTimeout: batchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warnf("Kafka producer error: %s", err.Error())
			}
		},
	}

	return &Producer{
		writer: writer,
		logger: logger,
		cfg:    cfg,
	}, nil
}

func (p *Producer) PublishProductChange(ctx context.Context, event *usecase.ProductChangeEvent) error {
	msg, err := NewProductChangeMessage(event)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}

// EnsureTopic создаёт топик, если его ещё нет.
func (p *Producer) EnsureTopic(timeout time.Duration) error {
	conn, err := kafka.Dial(networkMode, p.cfg.Brokers[0])
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(p.cfg.Topic)
	if err == nil && len(partitions) > 0 {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.CreateTopics(kafka.TopicConfig{
			Topic:             p.cfg.Topic,
			NumPartitions:     numPartitions,
			ReplicationFactor: replicationFactor,
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to create topic %s: %w", p.cfg.Topic, err))
		}
		return nil
	case <-time.After(timeout):
		_ = conn.Close()
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("timeout: %v, topic: %s", timeout, p.cfg.Topic))
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// NewProductChangeMessage кодирует событие в google.protobuf.Struct. Метаданные дублируются в заголовках.
func NewProductChangeMessage(event *usecase.ProductChangeEvent) (kafka.Message, error) {
	payload, err := eventStruct(event)
	if err != nil {
		return kafka.Message{}, err
	}

	value, err := proto.Marshal(payload)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(event.ProductID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: headerEventID, Value: []byte(event.EventID)},
			{Key: headerOperation, Value: []byte(event.Operation)},
			{Key: headerOccurredAt, Value: []byte(strconv.FormatInt(event.OccurredAt.UnixNano(), 10))},
		},
	}, nil
}

func eventStruct(event *usecase.ProductChangeEvent) (*structpb.Struct, error) {
	changes := make([]any, 0, len(event.Changes))
	for _, c := range event.Changes {
		changes = append(changes, map[string]any{
			"field":    c.Field,
			"oldValue": c.OldValue,
			"newValue": c.NewValue,
		})
	}

	s, err := structpb.NewStruct(map[string]any{
		"eventId":    event.EventID,
		"productId":  event.ProductID,
		"operation":  event.Operation,
		"occurredAt": event.OccurredAt.UTC().Format(time.RFC3339Nano),
		"changes":    changes,
	})
	if err != nil {
		return nil, fmt.Errorf("encode product change %s: %w", event.EventID, err)
	}
	return s, nil
}

// NopPublisher используется, когда Kafka не настроена.
type NopPublisher struct{}

func (NopPublisher) PublishProductChange(context.Context, *usecase.ProductChangeEvent) error {
	return nil
}

var (
	_ usecase.EventPublisher = (*Producer)(nil)
	_ usecase.EventPublisher = NopPublisher{}
)
