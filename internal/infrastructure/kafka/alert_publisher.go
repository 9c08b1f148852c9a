// Package kafka publica las señales de stock en un tópico de Kafka para el despachador de notificaciones.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-farmacia/internal/application/alert"
	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/segmentio/kafka-go"
)

const writeTimeout = 5 * time.Second

var _ alert.Notifier = (*AlertPublisher)(nil)

// messageWriter lo cumple *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AlertPublisher implementa alert.Notifier escribiendo cada señal como un mensaje JSON.
// La clave del mensaje es el producto, así las señales de un mismo producto quedan en orden en su partición.
type AlertPublisher struct {
	writer messageWriter
}

// NewAlertPublisher construye el publicador contra los brokers y el tópico dados.
func NewAlertPublisher(brokers []string, topic string) *AlertPublisher {
	return &AlertPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
	}}
}

// Notify publica la señal. Los errores llevan domain.ErrNotificationFailed.
func (p *AlertPublisher) Notify(ctx context.Context, signal alert.Signal) error {
	payload, err := json.Marshal(signal)
	if err != nil {
		return errors.Join(domain.ErrNotificationFailed, fmt.Errorf("marshal stock signal: %w", err))
	}
	msg := kafka.Message{
		Key:   []byte(signal.ProductID),
		Value: payload,
		Time:  signal.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(EventType(signal.Kind))},
			{Key: "company-id", Value: []byte(signal.CompanyID)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Join(domain.ErrNotificationFailed, fmt.Errorf("write stock signal to kafka: %w", err))
	}
	return nil
}

// Close vacía el buffer del writer.
func (p *AlertPublisher) Close() error {
	return p.writer.Close()
}

// EventType valor del header event-type: stock.low o stock.out.
func EventType(kind alert.Kind) string {
	return "stock." + string(kind)
}
