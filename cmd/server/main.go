package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"janseva/internal/application"
	"janseva/internal/identity"
	identityhandler "janseva/internal/identity/handler"
	identityservice "janseva/internal/identity/service"
	"janseva/internal/jwttoken"
	"janseva/internal/platform/config"
	"janseva/internal/platform/httpserver"
	"janseva/internal/platform/logger"
	"janseva/internal/platform/metrics"
	"janseva/internal/platform/middleware"
	platformredis "janseva/internal/platform/redis"
	reviewhandler "janseva/internal/review/handler"
	reviewmetrics "janseva/internal/review/metrics"
	reviewservice "janseva/internal/review/service"
	"janseva/internal/scheme"
	schemehandler "janseva/internal/scheme/handler"
	audit "janseva/pkg/platform/audit"
	auditmemory "janseva/pkg/platform/audit/store/memory"
	auditpostgres "janseva/pkg/platform/audit/store/postgres"
	auditworker "janseva/pkg/platform/audit/worker"
	txcontext "janseva/pkg/platform/tx"
)

// main wires storage, audit, and the HTTP surface; business rules live in
// the internal packages. With no Postgres DSN configured everything runs on
// in-memory stores with a seeded catalog, which is the local dev mode.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		identityStore identity.Store
		appStore      application.Store
		schemeStore   scheme.Store
		auditStore    audit.Store
		db            *sql.DB
	)
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("failed to ping postgres", "error", err)
			os.Exit(1)
		}
		identityStore = identity.NewPostgres(db)
		appStore = application.NewPostgres(db)
		schemeStore = scheme.NewPostgres(db)
		auditStore = auditpostgres.New(db)
		log.Info("using postgres storage")
	} else {
		identityStore = identity.NewInMemoryStore()
		appStore = application.NewInMemoryStore()
		schemeStore = scheme.NewInMemoryStore()
		auditStore = auditmemory.NewInMemoryStore()
		log.Info("using in-memory storage")
	}

	// On postgres the whole catalog lands in one transaction so a crash
	// mid-seed cannot leave a partial catalog behind.
	seedCatalog := func(ctx context.Context) error {
		return scheme.SeedCatalog(ctx, schemeStore)
	}
	if db != nil {
		seedCatalog = func(ctx context.Context) error {
			return txcontext.Within(ctx, db, func(ctx context.Context) error {
				return scheme.SeedCatalog(ctx, schemeStore)
			})
		}
	}
	if err := seedCatalog(ctx); err != nil {
		log.Error("failed to seed scheme catalog", "error", err)
		os.Exit(1)
	}

	// Scheme reference data is read-heavy and changes rarely; a Redis
	// read-through cache in front of the store is optional and degrades to
	// direct reads when unconfigured.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		schemeStore = scheme.NewCachedStore(schemeStore, redisClient.Client, config.SchemeCacheTTL, log)
		log.Info("scheme cache enabled")
	}

	recorder := audit.NewRecorder(cfg.AuditBuffer, log)
	worker := auditworker.NewWorker(auditStore, recorder.Inbox(), log)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "janseva", "janseva-portal")
	validator := jwtValidatorAdapter{inner: jwtService}

	sharedMetrics := metrics.New()
	identitySvc := identityservice.NewService(identityStore, jwtService, recorder, cfg.TokenTTL, cfg.AdminBootstrapToken)
	reviewSvc := reviewservice.NewService(appStore, schemeStore, recorder, reviewmetrics.New(), log)

	router := chi.NewRouter()
	identityhandler.New(identitySvc, log, sharedMetrics, validator).Register(router)
	schemehandler.New(schemeStore, log, sharedMetrics).Register(router)
	reviewhandler.New(reviewSvc, log, sharedMetrics, validator).Register(router)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return worker.Run(groupCtx)
	})
	group.Go(func() error {
		log.Info("starting janseva portal", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// jwtValidatorAdapter narrows the token service to the claim shape the auth
// middleware consumes.
type jwtValidatorAdapter struct {
	inner *jwttoken.JWTService
}

func (a jwtValidatorAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.inner.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{
		UserID: claims.Subject,
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
