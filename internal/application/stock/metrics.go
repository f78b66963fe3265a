package stock

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Métricas del motor de stock, expuestas en /metrics.
var (
	reservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_reservations_total",
		Help: "Reservas intentadas, por resultado (ok, insufficient, error).",
	}, []string{"result"})

	consumptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_consumptions_total",
		Help: "Consumos intentados, por resultado (ok, insufficient, error).",
	}, []string{"result"})

	receiptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_receipts_total",
		Help: "Recepciones de material registradas.",
	})

	expiredReservationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_expired_reservations_total",
		Help: "Reservas vencidas por el barrido.",
	})

	concurrencyConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_concurrency_conflicts_total",
		Help: "Conflictos de concurrencia optimista al persistir agregados.",
	})

	sweepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_sweeps_total",
		Help: "Pasadas del barrido de reservas, por resultado (ok, partial).",
	}, []string{"result"})
)
