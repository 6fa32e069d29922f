package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/occultation-planner/catalog"
	"github.com/signalsfoundry/occultation-planner/internal/api"
	"github.com/signalsfoundry/occultation-planner/internal/logging"
	"github.com/signalsfoundry/occultation-planner/internal/observability"
	"github.com/signalsfoundry/occultation-planner/internal/plan"
)

func main() {
	addr := flag.String("addr", ":8080", "TCP address the HTTP API listens on")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	catalogPath := flag.String("catalog", "configs/catalog.json", "Path to a JSON catalog of stars, cameras, bodies and scenarios")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	collector, err := observability.NewPlannerCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	surveyCollector, err := observability.NewSurveyCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise survey metrics", logging.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	cat := catalog.New(catalog.WithMetricsRecorder(collector))
	loadCatalog(log, cat, *catalogPath)

	planner := plan.New(cat,
		plan.WithLogger(log),
		plan.WithMetrics(collector),
		plan.WithSurveyMetrics(surveyCollector),
	)

	server := api.NewServer(api.Config{
		Addr:      *addr,
		Planner:   planner,
		Catalog:   cat,
		Logger:    log,
		Collector: collector,
	})

	log.Info(ctx, "starting HTTP API server", logging.String("addr", *addr))
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "HTTP server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.HTTPServer().Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func serveMetrics(addr string, collector *observability.PlannerCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

func loadCatalog(log logging.Logger, cat *catalog.Catalog, path string) {
	if path == "" {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		log.Warn(context.Background(), "skipping catalog load", logging.String("path", path), logging.String("error", err.Error()))
		return
	}
	defer f.Close()

	summary, err := catalog.Load(cat, f)
	if err != nil {
		log.Warn(context.Background(), "failed to load catalog", logging.String("path", path), logging.String("error", err.Error()))
		return
	}

	log.Info(context.Background(), "loaded catalog",
		logging.String("path", path),
		logging.Int("stars", len(summary.StarIDs)),
		logging.Int("cameras", len(summary.CameraIDs)),
		logging.Int("bodies", len(summary.BodyIDs)),
		logging.Int("scenarios", len(summary.ScenarioIDs)),
	)
}
