package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/materiales-api/internal/application/stock"
	"github.com/jhoicas/materiales-api/internal/domain/event"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
	"github.com/jhoicas/materiales-api/internal/infrastructure/memory"
	"github.com/jhoicas/materiales-api/internal/infrastructure/messaging"
	"github.com/jhoicas/materiales-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/materiales-api/internal/interfaces/http"
	"github.com/jhoicas/materiales-api/pkg/config"
	"github.com/jhoicas/materiales-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()

	var repo repository.MaterialStockRepository
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		repo = postgres.NewMaterialStockRepository(pool)
	} else {
		log.Warn().Msg("sin base de datos configurada: repositorio en memoria")
		repo = memory.NewMaterialStockRepository()
	}

	var publisher event.Publisher
	if cfg.Kafka.Enabled() {
		kafkaPub := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() { _ = kafkaPub.Close() }()
		publisher = kafkaPub
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("eventos vía Kafka")
	} else {
		publisher = messaging.NewLogPublisher(log)
	}

	stockUC := stock.NewUseCase(repo, publisher, stock.SystemClock(), log, cfg.Stock.ReservationTTL)

	sweeper := stock.NewReservationSweeper(stockUC, cfg.Stock.SweepInterval, log)
	go sweeper.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockUC: stockUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
