package stock

import (
	"context"
	"time"

	"github.com/jhoicas/materiales-api/pkg/logger"
)

// ReservationSweeper vence reservas pasadas de fecha en todos los agregados a
// intervalo fijo. Cada material se procesa bajo su propia exclusión (la misma
// que usan reservar/consumir), así el barrido nunca corre una carrera contra
// tráfico vivo. Un fallo en un material se loguea y se salta: nunca voltea la
// pasada completa.
type ReservationSweeper struct {
	uc       *UseCase
	interval time.Duration
	log      *logger.Logger
}

// NewReservationSweeper construye el barrido. interval no positivo cae en 5m.
func NewReservationSweeper(uc *UseCase, interval time.Duration, log *logger.Logger) *ReservationSweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ReservationSweeper{uc: uc, interval: interval, log: log}
}

// Run ejecuta el barrido periódico hasta que el contexto se cancele.
func (s *ReservationSweeper) Run(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Msg("barrido de reservas iniciado")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("barrido de reservas detenido")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce recorre todos los materiales y vence sus reservas pasadas de fecha.
// Devuelve cuántas reservas venció en esta pasada.
func (s *ReservationSweeper) SweepOnce(ctx context.Context) int {
	ids, err := s.uc.MaterialIDs(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("barrido: listado de materiales fallido")
		sweepsTotal.WithLabelValues("partial").Inc()
		return 0
	}

	expired := 0
	failed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return expired
		}
		res, err := s.uc.ExpireMaterial(ctx, id)
		if err != nil {
			// Fallo parcial: se loguea y se sigue con el resto.
			failed++
			s.log.Warn().Err(err).Str("material_id", id).Msg("barrido: vencimiento fallido")
			continue
		}
		expired += len(res)
	}

	result := "ok"
	if failed > 0 {
		result = "partial"
	}
	sweepsTotal.WithLabelValues(result).Inc()

	if expired > 0 || failed > 0 {
		s.log.Info().
			Int("expired", expired).
			Int("failed_materials", failed).
			Msg("pasada de barrido completada")
	}
	return expired
}
