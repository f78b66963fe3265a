package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/jhoicas/materiales-api/internal/domain/event"
)

var _ event.Publisher = (*KafkaPublisher)(nil)

// KafkaPublisher publica los eventos del motor de stock en un tópico Kafka.
// Clave = material_id para que los eventos de un mismo material queden en la
// misma partición y conserven el orden de la exclusión del agregado.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher construye el publicador.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
	}
	return &KafkaPublisher{writer: writer}
}

// Publish serializa el evento a JSON y lo escribe con timeout propio para no
// colgar la operación de negocio si el broker no responde.
func (p *KafkaPublisher) Publish(ctx context.Context, ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(ev.MaterialID),
		Value: payload,
		Time:  ev.Timestamp,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("write event to kafka: %w", err)
	}
	return nil
}

// Close cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
