// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"healthledger/internal/audit"
	audithandler "healthledger/internal/audit/handler"
	auditkafka "healthledger/internal/audit/kafka"
	"healthledger/internal/consent"
	consenthandler "healthledger/internal/consent/handler"
	"healthledger/internal/platform/config"
	"healthledger/internal/platform/httpserver"
	"healthledger/internal/platform/logger"
	"healthledger/internal/platform/metrics"
	platformredis "healthledger/internal/platform/redis"
	"healthledger/internal/records"
	recordshandler "healthledger/internal/records/handler"
	httptransport "healthledger/internal/transport/http"
	"healthledger/pkg/clock"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	clk := clock.System()

	stores, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.close()

	dispatcher := audit.NewDispatcher(cfg.AuditBuffer, stores.auditStore, log,
		audit.WithEmitHook(m.AuditEmitted.Inc),
		audit.WithDropHook(m.AuditDropped.Inc),
	)

	sink := audit.Sink(dispatcher)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := auditkafka.NewSink(ctx, cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sink = audit.MultiSink{dispatcher, kafkaSink}
		log.Info("kafka audit sink enabled", "topic", cfg.AuditTopic)
	}

	recordsSvc := records.NewService(stores.recordStore, clk, sink)
	consentSvc := consent.NewService(stores.grantStore, clk, sink)

	router := httptransport.NewRouter(
		recordshandler.New(recordsSvc, consentSvc, log, m),
		consenthandler.New(consentSvc, log, m),
		audithandler.New(stores.auditStore, log),
		log, m,
	)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dispatcher.Run(ctx)
	})

	g.Go(func() error {
		log.Info("starting healthledger", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// stores bundles the chosen persistence backends so run stays readable.
type stores struct {
	recordStore records.Store
	grantStore  consent.Store
	auditStore  audit.Store

	db    *sql.DB
	redis *platformredis.Client
}

func (s *stores) close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}

// buildStores picks postgres-backed stores when DATABASE_URL is set, and a
// redis-backed grant store when REDIS_URL is set; everything else falls back
// to in-memory.
func buildStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*stores, error) {
	s := &stores{
		recordStore: records.NewInMemoryStore(),
		grantStore:  consent.NewInMemoryStore(),
		auditStore:  audit.NewInMemoryStore(),
	}

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, err
		}
		s.db = db

		recordStore := records.NewPostgresStore(db)
		grantStore := consent.NewPostgresStore(db)
		auditStore := audit.NewPostgresStore(db)
		for _, ensure := range []func(context.Context) error{
			recordStore.EnsureSchema, grantStore.EnsureSchema, auditStore.EnsureSchema,
		} {
			if err := ensure(ctx); err != nil {
				db.Close()
				return nil, err
			}
		}
		s.recordStore = recordStore
		s.grantStore = grantStore
		s.auditStore = auditStore
		log.Info("postgres stores enabled")
	}

	if cfg.RedisURL != "" {
		client, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			s.close()
			return nil, err
		}
		s.redis = client
		s.grantStore = consent.NewRedisStore(client.Client)
		log.Info("redis grant store enabled")
	}

	return s, nil
}
