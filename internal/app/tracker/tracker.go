package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/installment-tracker/internal/cache"
	"github.com/magabrotheeeer/installment-tracker/internal/config"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/installment-tracker/internal/migrations"
	cardservice "github.com/magabrotheeeer/installment-tracker/internal/services/card"
	"github.com/magabrotheeeer/installment-tracker/internal/services/dispatch"
	"github.com/magabrotheeeer/installment-tracker/internal/services/generator"
	"github.com/magabrotheeeer/installment-tracker/internal/services/installment"
	"github.com/magabrotheeeer/installment-tracker/internal/storage/bolt"
	"github.com/magabrotheeeer/installment-tracker/internal/storage/repository"
)

const (
	// DriverPostgres и DriverBolt — допустимые значения storage.driver.
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"

	shutdownTimeout = 15 * time.Second
)

// store объединяет хранилище рассрочек и карт.
type store interface {
	installment.Repository
	cardservice.Repository
	Close() error
}

// App процесс API: HTTP-сервер и планировщик проводки взносов.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        store
	cache     *cache.Cache
	conn      *amqp.Connection
	ch        *amqp.Channel
	generator *generator.Generator
	interval  time.Duration
}

// New собирает зависимости процесса. Ошибка загрузки леджера фатальна:
// иначе первая мутация перезапишет хранилище пустой коллекцией.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.tracker.New"

	db, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{
		logger:   logger,
		db:       db,
		interval: cfg.Interval,
	}

	var cardCache cardservice.Cache
	if cfg.AddressRedis != "" {
		app.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.closeResources()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		cardCache = app.cache
	} else {
		logger.Info("redis address is empty, card cache disabled")
	}

	app.conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app.ch, err = rabbitmq.SetupChannel(app.conn, rabbitmq.GetLedgerQueues())
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cards := cardservice.NewService(db, cardCache, logger)
	ledger := installment.New(db, cards, logger)
	ledger.SetLocation(cfg.Location())
	if err = ledger.Load(ctx); err != nil {
		app.closeResources()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dispatcher := dispatch.New(app.ch, logger)
	app.generator = generator.New(ledger, cards, dispatcher, dispatcher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, Routes{
		Log:      logger,
		Ledger:   ledger,
		Cards:    cards,
		Tokens:   jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		Location: cfg.Location(),
		Limiter:  rate.NewLimiter(5, 10),
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func openStore(ctx context.Context, cfg config.Storage) (store, error) {
	switch cfg.Driver {
	case DriverPostgres:
		db, err := repository.New(cfg.StorageConnectionString)
		if err != nil {
			return nil, err
		}
		if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
			_ = db.Close()
			return nil, err
		}
		if err = repository.CheckDatabaseReady(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	case DriverBolt:
		return bolt.New(cfg.BoltPath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Run запускает планировщик и HTTP-сервер и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	genDone := make(chan struct{})
	go func() {
		defer close(genDone)
		a.generator.Start(ctx, a.interval)
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.closeResources()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		<-genDone
		a.closeResources()
		return err
	}
}

func (a *App) closeResources() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close storage", sl.Err(err))
		}
	}
}
