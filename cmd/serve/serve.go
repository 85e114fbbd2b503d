package serve

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/nully0x/bitcoin-regtest-tui/cmd/common"
	_ "github.com/nully0x/bitcoin-regtest-tui/docs" // swagger docs
	"github.com/nully0x/bitcoin-regtest-tui/pkg/audit"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/automine"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/metrics"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/monitoring"
	monitoringhttp "github.com/nully0x/bitcoin-regtest-tui/pkg/monitoring/http"
	networkshttp "github.com/nully0x/bitcoin-regtest-tui/pkg/networks/http"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
)

const shutdownTimeout = 15 * time.Second

type serveCmd struct {
	port     int
	autoMine bool
	monitor  bool
	opts     *common.Options
}

// @title regtest-tui API
// @version 1.0
// @description Creates and drives Bitcoin and Lightning regtest networks running in Docker

// @host localhost:8100
// @BasePath /api/v1
// @schemes http

// setupServer configures and returns the HTTP router
func setupServer(app *common.App, scheduler *automine.Scheduler, monitor *monitoring.Service) *chi.Mux {
	networksHandler := networkshttp.NewHandler(app.Networks, app.Logger,
		networkshttp.WithHistory(app.Journal),
		networkshttp.WithAutoMiner(scheduler),
	)
	historyHandler := audit.NewHandler(app.Journal, app.Logger)
	metricsHandler := metrics.NewHandler(app.Metrics, app.Logger)
	monitoringHandler := monitoringhttp.NewHandler(monitor, app.Logger)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.Config.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		networksHandler.RegisterRoutes(r)
		historyHandler.RegisterRoutes(r)
		monitoringHandler.RegisterRoutes(r)
	})
	metricsHandler.RegisterRoutes(r)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}

// newMonitor builds the node health monitor from the monitor config
func newMonitor(app *common.App) *monitoring.Service {
	return monitoring.NewService(monitoring.Config{
		CheckInterval:    app.Config.Monitor.Interval,
		Timeout:          app.Config.Monitor.Timeout,
		FailureThreshold: app.Config.Monitor.FailureThreshold,
	}, app.Networks, app.Logger,
		monitoring.WithJournal(app.Journal),
		monitoring.WithObserver(app.Metrics),
	)
}

// scheduleRunning enables auto-mining on every network that is running now
func scheduleRunning(ctx context.Context, app *common.App, scheduler *automine.Scheduler) error {
	networks, err := app.Networks.ListNetworks(ctx)
	if err != nil {
		return err
	}
	for _, n := range networks {
		if n.Status != types.NetworkStatusRunning {
			continue
		}
		if _, err := scheduler.Enable(n.Name, app.Config.AutoMine.Schedule, app.Config.AutoMine.Blocks); err != nil {
			return err
		}
	}
	return nil
}

func (c *serveCmd) run(cmd *cobra.Command) error {
	return common.Run(cmd, c.opts, func(ctx context.Context, app *common.App) error {
		port := c.port
		if port == 0 {
			port = app.Config.Server.Port
		}

		scheduler := automine.NewScheduler(app.Networks, app.Logger)
		scheduler.Start()
		defer scheduler.Stop()

		if c.autoMine {
			if err := scheduleRunning(ctx, app, scheduler); err != nil {
				return err
			}
		}

		monitor := newMonitor(app)
		if c.monitor {
			monitor.Start(ctx)
			defer monitor.Stop()
		}

		httpServer := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           setupServer(app, scheduler, monitor),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			app.Logger.Info("HTTP server listening", "port", port, "autoMine", c.autoMine, "monitor", c.monitor)
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("failed to start HTTP server: %w", err)
			}
			return nil
		case <-ctx.Done():
			app.Logger.Info("Shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		}
	})
}

// Command returns the serve command
func Command(opts *common.Options) *cobra.Command {
	c := &serveCmd{opts: opts}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server exposing every network operation under /api/v1
and Prometheus metrics under /metrics. Running nodes are health-checked in
the background; down and recovered nodes show up in the history.
For example:
  regtest-tui serve --port 8100 --auto-mine`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd)
		},
	}

	serveCmd.Flags().IntVarP(&c.port, "port", "p", 0, "Port to run the HTTP server on (default: server.port from the config)")
	serveCmd.Flags().BoolVar(&c.autoMine, "auto-mine", false, "Mine blocks periodically on running networks using the auto_mine config")
	serveCmd.Flags().BoolVar(&c.monitor, "monitor", true, "Health-check running nodes in the background using the monitor config")

	return serveCmd
}
