package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nurbek-a/driver-dispatch/config"
	"github.com/nurbek-a/driver-dispatch/internal/adapter/http/handler"
	"github.com/nurbek-a/driver-dispatch/internal/adapter/http/server"
	repo "github.com/nurbek-a/driver-dispatch/internal/adapter/postgres"
	producer "github.com/nurbek-a/driver-dispatch/internal/adapter/rabbit"
	redisadapter "github.com/nurbek-a/driver-dispatch/internal/adapter/redis"
	"github.com/nurbek-a/driver-dispatch/internal/service/beacon"
	"github.com/nurbek-a/driver-dispatch/internal/service/dispatch"
	"github.com/nurbek-a/driver-dispatch/internal/service/tracking"
	"github.com/nurbek-a/driver-dispatch/pkg/logger"
	"github.com/nurbek-a/driver-dispatch/pkg/postgres"
	"github.com/nurbek-a/driver-dispatch/pkg/rabbit"
	"github.com/nurbek-a/driver-dispatch/pkg/redis"
	"github.com/nurbek-a/driver-dispatch/pkg/trm"
	"github.com/nurbek-a/driver-dispatch/pkg/wsgate"
)

// App wires every adapter and service of the dispatch process and owns
// their lifecycle.
type App struct {
	postgresDB  *postgres.PostgreDB
	redisClient *goredis.Client
	rabbitMQ    *rabbit.RabbitMQ
	gate        *wsgate.Gate
	httpServer  *server.API

	cfg config.Config
	log logger.Logger
}

func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	postgresDB, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "failed to setup database", err)
		return nil, err
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error(ctx, "failed to setup redis", err)
		postgresDB.Pool.Close()
		return nil, err
	}

	rabbitMQ, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Error(ctx, "failed to setup rabbitmq", err)
		postgresDB.Pool.Close()
		redisClient.Close()
		return nil, err
	}

	events := producer.NewDispatchProducer(rabbitMQ)
	if err := events.Setup(); err != nil {
		log.Error(ctx, "failed to declare exchange", err)
		postgresDB.Pool.Close()
		redisClient.Close()
		rabbitMQ.Close(ctx)
		return nil, err
	}

	// Adapters
	userRepo := repo.NewUserRepo(postgresDB.Pool)
	workLogRepo := repo.NewWorkLogRepo(postgresDB.Pool)
	availabilityRepo := repo.NewAvailabilityRepo(postgresDB.Pool)
	geoIndex := redisadapter.NewGeoIndex(redisClient)
	cache := redisadapter.NewCache(redisClient)
	gate := wsgate.New(log)
	txManager := trm.New(postgresDB.Pool)

	// Services
	beaconService := beacon.New(userRepo, workLogRepo, geoIndex, events, txManager, cfg.Dispatch.SocketServerURL, log)
	dispatchService := dispatch.New(geoIndex, availabilityRepo, cache, gate, log)
	trackingService := tracking.New(cache, geoIndex, availabilityRepo, gate, events, cfg.Dispatch.Mode(), log)

	stream := handler.NewDriverStream(trackingService, gate, log)

	httpServer, err := server.New(cfg, beaconService, dispatchService, stream, log)
	if err != nil {
		log.Error(ctx, "failed to setup http server", err)
		postgresDB.Pool.Close()
		redisClient.Close()
		rabbitMQ.Close(ctx)
		return nil, err
	}

	return &App{
		postgresDB:  postgresDB,
		redisClient: redisClient,
		rabbitMQ:    rabbitMQ,
		gate:        gate,
		httpServer:  httpServer,
		cfg:         cfg,
		log:         log,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.httpServer.Run(ctx, errCh)
	defer func() {
		a.close(ctx)
		a.log.Info(ctx, "dispatch service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	a.log.Info(ctx, "dispatch service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		a.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

func (a *App) close(ctx context.Context) {
	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	if a.gate != nil {
		a.gate.Close()
	}

	if a.rabbitMQ != nil {
		if err := a.rabbitMQ.Close(ctx); err != nil {
			a.log.Warn(ctx, "failed to close rabbitmq connection", "error", err.Error())
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn(ctx, "failed to close redis client", "error", err.Error())
		}
	}

	if a.postgresDB != nil && a.postgresDB.Pool != nil {
		a.postgresDB.Pool.Close()
	}
}
