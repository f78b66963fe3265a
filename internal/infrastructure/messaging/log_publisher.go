package messaging

import (
	"context"

	"github.com/jhoicas/materiales-api/internal/domain/event"
	"github.com/jhoicas/materiales-api/pkg/logger"
)

var _ event.Publisher = (*LogPublisher)(nil)

// LogPublisher escribe los eventos al log estructurado. Se usa cuando no hay
// broker configurado (desarrollo y tests de integración).
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher construye el publicador de log.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish registra el evento con sus campos estructurados.
func (p *LogPublisher) Publish(_ context.Context, ev event.Event) error {
	p.log.Info().
		Str("type", string(ev.Type)).
		Str("material_id", ev.MaterialID).
		Str("reservation_id", ev.ReservationID).
		Str("owner", ev.Owner).
		Str("amount", ev.Amount.String()).
		Str("unit", ev.Unit).
		Time("timestamp", ev.Timestamp).
		Msg("evento de dominio")
	return nil
}
