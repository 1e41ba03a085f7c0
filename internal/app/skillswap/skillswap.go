// Package skillswap собирает приложение: хранилище, кеш, брокер
// уведомлений, внешних клиентов, сервисы и HTTP-сервер с websocket-хабом.
package skillswap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/skillswap/internal/cache"
	"github.com/magabrotheeeer/skillswap/internal/config"
	"github.com/magabrotheeeer/skillswap/internal/lib/jwt"
	"github.com/magabrotheeeer/skillswap/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/skillswap/internal/migrations"
	"github.com/magabrotheeeer/skillswap/internal/paymentprovider"
	"github.com/magabrotheeeer/skillswap/internal/quizgen"
	authservice "github.com/magabrotheeeer/skillswap/internal/services/auth"
	chatservice "github.com/magabrotheeeer/skillswap/internal/services/chat"
	ledgerservice "github.com/magabrotheeeer/skillswap/internal/services/ledger"
	matchservice "github.com/magabrotheeeer/skillswap/internal/services/match"
	paymentservice "github.com/magabrotheeeer/skillswap/internal/services/payment"
	requestservice "github.com/magabrotheeeer/skillswap/internal/services/request"
	skillsservice "github.com/magabrotheeeer/skillswap/internal/services/skills"
	verificationservice "github.com/magabrotheeeer/skillswap/internal/services/verification"
	"github.com/magabrotheeeer/skillswap/internal/storage/repository"
	"github.com/magabrotheeeer/skillswap/internal/ws"
)

// App приложение сервиса обмена навыками.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	amqpConn *amqp.Connection
	hub      *ws.Hub
}

// New инициализирует зависимости и собирает приложение.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	amqpConn, err := rabbitmq.Connect(cfg.AmqpConnectionString, cfg.ConnectRetries, cfg.ConnectDelay)
	if err != nil {
		return nil, err
	}
	amqpCh, err := rabbitmq.SetupChannel(amqpConn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(amqpCh)

	maker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	providerClient := paymentprovider.NewClient(cfg.ProviderAppID, cfg.ProviderSecretKey, cfg.ProviderAPIURL)
	quizClient := quizgen.NewClient(cfg.QuizAPIURL, cfg.QuizAPIKey)

	authSvc := authservice.New(db, maker, logger)
	matchSvc := matchservice.New(db, cacheRedis, logger)
	ledgerSvc := ledgerservice.New(db, logger)
	skillsSvc := skillsservice.New(db, matchSvc, logger)
	requestSvc := requestservice.New(db, publisher, logger)
	chatSvc := chatservice.New(db, publisher, logger)
	verificationSvc := verificationservice.New(db, quizClient, logger)
	paymentSvc := paymentservice.New(db, providerClient, logger)

	hub := ws.NewHub(chatSvc, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:         authSvc,
		Match:        matchSvc,
		Ledger:       ledgerSvc,
		Skills:       skillsSvc,
		Request:      requestSvc,
		Chat:         chatSvc,
		Verification: verificationSvc,
		Payment:      paymentSvc,
		Storage:      db,
		Maker:        maker,
		Hub:          hub,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: amqpConn,
		hub:      hub,
	}, nil
}

// Run запускает websocket-хаб и HTTP-сервер, останавливает их по отмене ctx.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Run(ctx)

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
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.amqpConn.Close()
		a.db.DB.Close()
		return err
	}
}
