package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nurbek-a/driver-dispatch/config"
	"github.com/nurbek-a/driver-dispatch/internal/adapter/http/handler"
	"github.com/nurbek-a/driver-dispatch/internal/adapter/http/middleware"
	"github.com/nurbek-a/driver-dispatch/pkg/logger"
	wrap "github.com/nurbek-a/driver-dispatch/pkg/logger/wrapper"
)

const serviceName = "dispatch"

const serverIPAddress = "%s:%s"

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	beacon   *handler.Beacon
	dispatch *handler.Dispatch
	stream   *handler.DriverStream
	health   *handler.Health
}

func New(
	cfg config.Config,
	beaconService handler.BeaconService,
	dispatchService handler.DispatchService,
	stream *handler.DriverStream,
	log logger.Logger,
) (*API, error) {
	if beaconService == nil || dispatchService == nil || stream == nil {
		return nil, errors.New("all services are required")
	}

	routes := &handlers{
		beacon:   handler.NewBeacon(beaconService, log),
		dispatch: handler.NewDispatch(dispatchService, log),
		stream:   stream,
		health:   handler.NewHealth(serviceName, log),
	}

	mid := middleware.NewMiddleware(cfg.Auth.JWTSecret, log)
	addr := fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.HTTP.Port)

	api := &API{
		mux:    http.NewServeMux(),
		routes: routes,
		m:      mid,
		addr:   addr,
		cfg:    cfg,
		log:    log,
	}

	setupRoutes(api.mux, api.routes, api.m)

	api.server = &http.Server{
		Addr:    api.addr,
		Handler: api.withMiddleware(),
	}

	return api, nil
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Logging(a.m.Metrics(serviceName)(a.m.Auth(a.mux)))))
}
