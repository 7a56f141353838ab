package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/austerelabs/stockfinder/internal/models"
)

// Producer handles publishing pipeline events to Kafka. Downstream
// consumers (the dashboard, mostly) react to loads and triggered
// alerts without polling the store.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishLoadCompleted publishes an event after a loader run merges
func (p *Producer) PublishLoadCompleted(ctx context.Context, symbols, staged int, merged int64) error {
	event := models.LoadEvent{
		EventType: "LOAD_COMPLETED",
		Symbols:   symbols,
		Staged:    staged,
		Merged:    merged,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, "loader", event)
}

// PublishAlertTriggered publishes an event after a notification is sent
func (p *Producer) PublishAlertTriggered(ctx context.Context, symbol string, price decimal.Decimal, message string) error {
	event := models.AlertEvent{
		EventType: "ALERT_TRIGGERED",
		Symbol:    symbol,
		Price:     price,
		Message:   message,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, symbol, event)
}

// PublishSymbolAdded publishes a symbol added event
func (p *Producer) PublishSymbolAdded(ctx context.Context, symbol string) error {
	return p.publish(ctx, symbol, models.SymbolEvent{
		EventType: "SYMBOL_ADDED",
		Symbol:    symbol,
		Timestamp: time.Now(),
	})
}

// PublishSymbolDeactivated publishes a symbol deactivated event
func (p *Producer) PublishSymbolDeactivated(ctx context.Context, symbol string) error {
	return p.publish(ctx, symbol, models.SymbolEvent{
		EventType: "SYMBOL_DEACTIVATED",
		Symbol:    symbol,
		Timestamp: time.Now(),
	})
}

func (p *Producer) publish(ctx context.Context, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
