package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/jhoicas/materiales-api/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUC *stock.UseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Métricas Prometheus del motor de stock
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")
	handler := NewStockHandler(deps.StockUC)

	materials := api.Group("/materials")
	materials.Post("/", handler.RegisterMaterial)
	materials.Get("/:id/availability", handler.CheckAvailability)
	materials.Get("/:id/movements", handler.Movements)
	materials.Post("/:id/reservations", handler.Reserve)
	materials.Delete("/:id/reservations/:reservationID", handler.CancelReservation)
	materials.Patch("/:id/reservations/:reservationID", handler.ExtendReservation)
	materials.Post("/:id/consume", handler.Consume)
	materials.Post("/:id/receive", handler.Receive)
	materials.Post("/:id/adjust", handler.Adjust)

	reports := api.Group("/reports")
	reports.Get("/low-stock", handler.LowStockReport)
}
