package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fmd/internal/controllers"
	"fmd/internal/providers"
	"fmd/internal/services"
	"fmd/internal/store/interfaces"
	"fmd/internal/structures"
)

type App struct {
	WebServer *http.Server
}

func NewApp(healthController *controllers.HealthController, streamController *controllers.StreamController, scheduler interfaces.SchedulerInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface, devices services.DeviceServiceInterface, auth services.AuthServiceInterface) (*App, error) {
	// Inner mux: API routes
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	// Wrap API routes with metrics middleware
	instrumentedAPI := providers.MetricsMiddleware(metrics, apiMux)

	// Outer mux: infrastructure + instrumented API
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	// The websocket upgrade hijacks the connection, so it stays outside the
	// instrumented mux.
	mux.HandleFunc("/watch", streamController.Watch)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(conf.Uploads.Dir))))
	mux.Handle("/", instrumentedAPI)

	metrics.RegisterGauge("fmd_devices_total", "Registered devices", func() float64 {
		return float64(devices.CountDevices())
	})
	metrics.RegisterGauge("fmd_devices_active", "Devices with a sample inside the recency window", func() float64 {
		return float64(devices.CountActiveDevices(time.Now()))
	})
	metrics.RegisterGauge("fmd_users_total", "Registered accounts", func() float64 {
		return float64(auth.CountUsers())
	})
	metrics.RegisterGauge("fmd_warnings_unresolved", "Open divergence warnings across all devices", func() float64 {
		return float64(devices.CountUnresolvedWarnings())
	})

	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)
	err := scheduler.Restore()
	if err != nil {
		logger.Errorf(providers.TypeApp, "Restore error: %s", err)
	}

	app := &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	scheduler.Init()

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", conf.WebServer.Host, conf.WebServer.Port)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		return nil, fmt.Errorf("server error: %w", err)
	}

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = app.WebServer.Shutdown(ctx); err != nil {
		return nil, err
	}
	err = scheduler.Persist()
	if err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApp, "gracefully stopped")
	logger.Close()
	return app, nil
}
