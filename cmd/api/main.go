package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Inventario-farmacia/internal/application/alert"
	"github.com/jhoicas/Inventario-farmacia/internal/application/inventory"
	"github.com/jhoicas/Inventario-farmacia/internal/application/purchasing"
	"github.com/jhoicas/Inventario-farmacia/internal/application/usecase"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/repository"
	"github.com/jhoicas/Inventario-farmacia/internal/infrastructure/kafka"
	"github.com/jhoicas/Inventario-farmacia/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Inventario-farmacia/internal/infrastructure/pdf"
	"github.com/jhoicas/Inventario-farmacia/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Inventario-farmacia/internal/interfaces/http"
	"github.com/jhoicas/Inventario-farmacia/pkg/config"
	"github.com/jhoicas/Inventario-farmacia/pkg/logger"
)

// storage repositorios fuera de transacción más el runner de unidades de trabajo.
type storage struct {
	txRunner     inventory.TxRunner
	products     repository.ProductRepository
	batches      repository.BatchRepository
	transactions repository.TransactionRepository
	orders       repository.PurchaseOrderRepository
	warehouses   repository.WarehouseRepository
	suppliers    repository.SupplierRepository
	close        func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		store := memory.NewStore()
		return &storage{
			txRunner:     store,
			products:     store.Products(),
			batches:      store.Batches(),
			transactions: store.Transactions(),
			orders:       store.PurchaseOrders(),
			warehouses:   store.Warehouses(),
			suppliers:    store.Suppliers(),
			close:        func() {},
		}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		txRunner:     postgres.NewTxRunner(pool),
		products:     postgres.NewProductRepository(pool),
		batches:      postgres.NewBatchRepository(pool),
		transactions: postgres.NewTransactionRepository(pool),
		orders:       postgres.NewPurchaseOrderRepository(pool),
		warehouses:   postgres.NewWarehouseRepository(pool),
		suppliers:    postgres.NewSupplierRepository(pool),
		close:        pool.Close,
	}, nil
}

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
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer st.close()

	// Alertas de stock: Kafka si está habilitado, si no solo log.
	var notifier alert.Notifier = alert.NewLogNotifier(log.Component("alerts"))
	var publisher *kafka.AlertPublisher
	if cfg.Kafka.Enabled {
		publisher = kafka.NewAlertPublisher(cfg.Kafka.Brokers, cfg.Kafka.AlertTopic)
		notifier = publisher
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.AlertTopic).Msg("alertas vía Kafka")
	}
	emitter := alert.NewEmitter(notifier, log.Component("alerts"), cfg.Inventory.AlertBuffer)

	productUC := usecase.NewProductUseCase(st.products)
	warehouseUC := usecase.NewWarehouseUseCase(st.warehouses)
	supplierUC := usecase.NewSupplierUseCase(st.suppliers)
	adjustmentUC := inventory.NewAdjustmentUseCase(
		st.txRunner, st.warehouses, st.transactions, emitter, cfg.Inventory.MaxRetries,
	)
	stockUC := inventory.NewStockUseCase(
		st.txRunner, st.products, st.batches, st.transactions, emitter, cfg.Inventory.MaxRetries,
	)
	purchaseOrderUC := purchasing.NewPurchaseOrderUseCase(purchasing.Deps{
		TxRunner:      st.txRunner,
		OrderRepo:     st.orders,
		ProductRepo:   st.products,
		SupplierRepo:  st.suppliers,
		WarehouseRepo: st.warehouses,
		Events:        emitter,
		PDF:           infrapdf.NewMarotoPDFGenerator(),
		Log:           log.Component("purchasing"),
		MaxRetries:    cfg.Inventory.MaxRetries,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Inventario Farmacia API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:       productUC,
		WarehouseUC:     warehouseUC,
		SupplierUC:      supplierUC,
		AdjustmentUC:    adjustmentUC,
		StockUC:         stockUC,
		PurchaseOrderUC: purchaseOrderUC,
		JWTSecret:       cfg.JWT.Secret,
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

	// las mutaciones ya terminaron: vaciar la cola de alertas antes de cerrar el broker
	emitter.Close()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar publicador Kafka")
		}
	}

	log.Info().Msg("aplicación detenida")
}
