package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/conf"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

// ShutdownTimeout bounds how long a graceful server shutdown may take.
const ShutdownTimeout = 5 * time.Second

// Endpoint serves /metrics and /healthz when metrics are enabled.
type Endpoint struct {
	echo   *echo.Echo
	listen string
	log    logger.Logger
}

// NewEndpoint builds the HTTP endpoint for the given registry. Returns an
// error when metrics are disabled so callers do not start it by accident.
func NewEndpoint(cfg conf.MetricsSettings, registry *prometheus.Registry, log logger.Logger) (*Endpoint, error) {
	if !cfg.Enabled {
		return nil, errors.New("metrics endpoint not enabled in settings")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return &Endpoint{
		echo:   e,
		listen: cfg.Listen,
		log:    log.Module("metrics"),
	}, nil
}

// Start runs the server in its own goroutine.
func (e *Endpoint) Start() {
	go func() {
		e.log.Info("metrics endpoint starting", logger.String("address", e.listen))
		if err := e.echo.Start(e.listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Error("metrics server error", logger.Error(err))
		}
	}()
}

// Shutdown stops the server gracefully.
func (e *Endpoint) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := e.echo.Shutdown(ctx); err != nil {
		e.log.Error("metrics server shutdown error", logger.Error(err))
	}
}
