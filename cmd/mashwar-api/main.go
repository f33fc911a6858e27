// README: Entry point; loads config, wires services, starts HTTP server and background jobs.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"mashwar/internal/config"
	"mashwar/internal/dispatch"
	httptransport "mashwar/internal/http"
	"mashwar/internal/infra"
	"mashwar/internal/jobs"
	"mashwar/internal/logging"
	"mashwar/internal/maps"
	"mashwar/internal/modules/location"
	"mashwar/internal/modules/offer"
	"mashwar/internal/modules/order"
	"mashwar/internal/modules/pricing"
	"mashwar/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	graph, err := location.Load(cfg.Locations.Path)
	if err != nil {
		log.Fatalf("location graph: %v", err)
	}
	pricer, err := pricing.NewService(cfg.Pricing)
	if err != nil {
		log.Fatalf("pricing table: %v", err)
	}
	oracle, err := buildOracle(cfg)
	if err != nil {
		log.Fatalf("distance oracle: %v", err)
	}

	var closers []func()

	var (
		orderStore order.Store
		offerStore offer.Store
	)
	if cfg.DB.DSN != "" {
		db, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		closers = append(closers, db.Close)

		var rdb *redis.Client
		if cfg.Redis.Addr != "" {
			rdb, err = infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password)
			if err != nil {
				log.Fatalf("redis: %v", err)
			}
			closers = append(closers, func() { _ = rdb.Close() })
		}
		orderStore = order.NewPGStore(db, rdb, cfg.Store.OpTimeout)
		offerStore = offer.NewPGStore(db, rdb, cfg.Store.OpTimeout)
	} else {
		logger.Warn("no database configured, using in-memory stores")
		orderStore = order.NewMemoryStore()
		offerStore = offer.NewMemoryStore()
	}

	notifier, notifierClosers, err := buildNotifier(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("notifier: %v", err)
	}
	closers = append(closers, notifierClosers...)

	pharmacy := types.Point{Lat: cfg.Locations.PharmacyLat, Lng: cfg.Locations.PharmacyLng}
	orderSvc := order.NewService(orderStore, graph, pricer, oracle, notifier, pharmacy, logger)
	offerSvc := offer.NewService(offerStore, orderSvc, logger)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Orders: orderSvc,
		Offers: offerSvc,
		Graph:  graph,
		Logger: logger,
	})
	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	var purgeJob *jobs.OfferPurgeJob
	if cfg.Jobs.Enabled {
		purgeJob = jobs.NewOfferPurgeJob(offerSvc, cfg.Jobs.OfferPurgeSpec, logger)
		if err := purgeJob.Start(); err != nil {
			log.Fatalf("offer purge job: %v", err)
		}
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if purgeJob != nil {
		purgeJob.Stop()
	}
	for _, closeFn := range closers {
		closeFn()
	}
	logger.Info("stopped")
}

func buildOracle(cfg config.Config) (maps.Oracle, error) {
	var oracle maps.Oracle
	switch cfg.Maps.Provider {
	case "google":
		g, err := maps.NewGoogleOracle(cfg.Maps.GoogleAPIKey)
		if err != nil {
			return nil, err
		}
		oracle = g
	case "osrm":
		oracle = maps.NewOSRMOracle(cfg.Maps.OSRMEndpoint, cfg.Maps.Timeout)
	case "haversine":
		oracle = maps.NewHaversineOracle()
	default:
		return nil, fmt.Errorf("unknown maps provider %q", cfg.Maps.Provider)
	}
	if cfg.Maps.CacheTTL > 0 {
		oracle = maps.NewCached(oracle, cfg.Maps.CacheTTL)
	}
	return oracle, nil
}

// buildNotifier assembles every configured operator sink behind one fan-out.
// The log sink is always present so summaries land somewhere in dev.
func buildNotifier(ctx context.Context, cfg config.Config, logger *slog.Logger) (dispatch.Notifier, []func(), error) {
	sinks := []dispatch.Notifier{dispatch.NewLogNotifier(logger)}
	var closers []func()

	if cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, dispatch.NewWebhookNotifier(cfg.Notify.WebhookURL))
	}
	if len(cfg.Notify.KafkaBrokers) > 0 {
		k := dispatch.NewKafkaNotifier(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic)
		sinks = append(sinks, k)
		closers = append(closers, func() { _ = k.Close() })
	}
	if cfg.Notify.AMQPURL != "" {
		a, err := dispatch.NewAMQPNotifier(cfg.Notify.AMQPURL, cfg.Notify.AMQPExchange, cfg.Notify.AMQPRoutingKey)
		if err != nil {
			return nil, nil, fmt.Errorf("amqp notifier: %w", err)
		}
		sinks = append(sinks, a)
		closers = append(closers, a.Close)
	}
	if cfg.Notify.FCMCredentials != "" {
		client, err := infra.NewMessaging(ctx, cfg.Notify.FCMCredentials)
		if err != nil {
			return nil, nil, fmt.Errorf("fcm init: %w", err)
		}
		sinks = append(sinks, dispatch.NewFCMNotifier(client, cfg.Notify.FCMTopic))
	}
	return dispatch.Multi(sinks...), closers, nil
}
