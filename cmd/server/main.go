package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"vaxledger/internal/audit"
	hospitalhandler "vaxledger/internal/hospital/handler"
	hospitalmetrics "vaxledger/internal/hospital/metrics"
	hospitalservice "vaxledger/internal/hospital/service"
	hospitalstore "vaxledger/internal/hospital/store"
	jwttoken "vaxledger/internal/jwt_token"
	"vaxledger/internal/platform/config"
	"vaxledger/internal/platform/httpserver"
	"vaxledger/internal/platform/logger"
	"vaxledger/internal/platform/metrics"
	"vaxledger/internal/platform/postgres"
	platformredis "vaxledger/internal/platform/redis"
	recordhandler "vaxledger/internal/record/handler"
	recordmetrics "vaxledger/internal/record/metrics"
	recordservice "vaxledger/internal/record/service"
	recordstore "vaxledger/internal/record/store"
	transporthttp "vaxledger/internal/transport/http"
)

const (
	tokenTTL        = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

// main wires the ledger's dependencies and owns the process lifecycle.
// Business logic lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	log := logger.New()
	slog.SetDefault(log)

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var auditStore audit.Store
	var hospitals hospitalstore.Store
	var records recordstore.Store
	if db != nil {
		auditStore = audit.NewPostgres(db)
		hospitals = hospitalstore.NewPostgres(db)
		records = recordstore.NewPostgres(db)
	} else {
		auditStore = audit.NewInMemoryStore()
		hospitals = hospitalstore.NewInMemoryStore()
		records = recordstore.NewInMemoryStore()
		log.Warn("POSTGRES_DSN not set, ledger state is in-memory only")
	}

	var authSet hospitalstore.AuthorizationSet
	if redisClient != nil {
		authSet = hospitalstore.NewRedisAuthorizationSet(redisClient)
	} else {
		authSet = hospitalstore.NewInMemoryAuthorizationSet()
	}

	publisher := audit.NewPublisher(auditStore, audit.WithLogger(log))

	hospitalSvc := hospitalservice.New(hospitals, authSet, cfg.AuthorityID, publisher,
		hospitalservice.WithMetrics(hospitalmetrics.New()),
		hospitalservice.WithLogger(log),
	)
	recordSvc := recordservice.New(records, hospitalSvc, publisher,
		recordservice.WithMetrics(recordmetrics.New()),
		recordservice.WithLogger(log),
	)

	tokens := jwttoken.New(cfg.JWTSigningKey, tokenTTL)

	var checks []transporthttp.HealthCheck
	if db != nil {
		checks = append(checks, transporthttp.HealthCheck{Name: "postgres", Check: db.PingContext})
	}
	if redisClient != nil {
		checks = append(checks, transporthttp.HealthCheck{Name: "redis", Check: redisClient.Health})
	}

	router := transporthttp.NewRouter(transporthttp.Deps{
		Logger:      log,
		Validator:   tokens,
		HTTPMetrics: metrics.NewHTTP(),
		Hospital:    hospitalhandler.New(hospitalSvc, log),
		Record:      recordhandler.New(recordSvc, log),
		Checks:      checks,
	})
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	broadcaster, err := audit.NewKafkaBroadcaster(cfg.Kafka, log)
	if err != nil {
		return err
	}
	if broadcaster != nil {
		defer broadcaster.Close()
		worker := audit.NewWorker(publisher.Outbox(), broadcaster, log)
		g.Go(func() error {
			if err := worker.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		log.Info("starting vaxledger", "addr", cfg.Addr, "authority", cfg.AuthorityID.String())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
