package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	_ "github.com/jhoicas/tienda-pos/docs"
	"github.com/jhoicas/tienda-pos/internal/application/projection"
	"github.com/jhoicas/tienda-pos/internal/application/sales"
	"github.com/jhoicas/tienda-pos/internal/application/stock"
	"github.com/jhoicas/tienda-pos/internal/application/usecase"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/kafka"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/memory"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/tienda-pos/internal/infrastructure/pdf"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/tienda-pos/internal/interfaces/http"
	"github.com/jhoicas/tienda-pos/pkg/config"
	"github.com/jhoicas/tienda-pos/pkg/logger"
)

// repositories accesos de lectura/escritura fuera de transacción.
type repositories interface {
	Products() repository.ProductRepository
	Customers() repository.CustomerRepository
	Suppliers() repository.SupplierRepository
	Inflows() repository.InflowRepository
	Outflows() repository.OutflowRepository
	Sales() repository.SaleRepository
}

// @title                       Tienda POS API
// @version                     1.0
// @description                 Catálogo, stock y venta rápida de la tienda.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Str("stock_mode", cfg.Sales.StockMode).
		Msg("iniciando aplicación")

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var (
		runner stock.TxRunner
		repos  repositories
	)
	switch cfg.Store.Driver {
	case "memory":
		store := memory.New()
		runner, repos = store, store
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.RunMigrations(ctx, pool, log.Component("migrations")); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		runner, repos = postgres.NewTxRunner(pool), postgres.NewStore(pool)
	}

	collector := metrics.New()
	engine := stock.NewEngine(runner, log.Component("stock"), stock.WithMetrics(collector))
	projector := projection.NewProjector(engine, log.Component("projection"))
	worker := projection.NewWorker(projector, cfg.Projection.Workers, collector, log.Component("projection"),
		projection.WithFailureRecorder(repos.Sales()))

	// Transporte de tareas de proyección: canal en proceso o Kafka.
	var (
		queue      projection.Queue
		background sync.WaitGroup
	)
	switch cfg.Projection.Transport {
	case config.TransportKafka:
		publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log.Component("kafka"))
		if err != nil {
			log.Fatal().Err(err).Msg("productor kafka")
		}
		defer publisher.Close()
		consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, worker, log.Component("kafka"))
		if err != nil {
			log.Fatal().Err(err).Msg("consumidor kafka")
		}
		defer consumer.Close()
		queue = publisher
		background.Add(1)
		go func() {
			defer background.Done()
			consumer.Run(ctx)
		}()
	default:
		ch := projection.NewChannelQueue(cfg.Projection.Buffer)
		queue = ch
		background.Add(1)
		go func() {
			defer background.Done()
			worker.Run(ctx, ch.Tasks())
		}()
	}

	sweeper := projection.NewSweeper(repos.Sales(), queue, cfg.Projection.SweepInterval, cfg.Projection.Grace, log.Component("sweeper"))
	background.Add(1)
	go func() {
		defer background.Done()
		sweeper.Run(ctx)
	}()

	quickSaleUC := sales.NewQuickSaleUseCase(
		engine, repos.Products(), repos.Customers(), repos.Sales(), repos.Outflows(),
		queue, infrapdf.NewReceiptGenerator(), sales.StockMode(cfg.Sales.StockMode), log.Component("sales"),
		sales.WithMetrics(collector), sales.WithStoreName(cfg.App.StoreName),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(collector.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tienda POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:  usecase.NewProductUseCase(repos.Products()),
		CustomerUC: usecase.NewCustomerUseCase(repos.Customers()),
		LedgerUC:   usecase.NewLedgerUseCase(repos.Inflows(), repos.Outflows()),
		Sales:      quickSaleUC,
		Engine:     engine,
		JWTSecret:  cfg.JWT.Secret,
		Metrics:    collector.Handler(),
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Las ventas que queden sin proyectar las recupera el barrido del próximo arranque.
	stop()
	background.Wait()

	log.Info().Msg("aplicación detenida")
}
