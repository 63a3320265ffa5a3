package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/erindhoxha/mern-stack-site/config"
	"github.com/erindhoxha/mern-stack-site/internal/api/handlers"
	"github.com/erindhoxha/mern-stack-site/internal/api/middleware"
	"github.com/erindhoxha/mern-stack-site/internal/api/routes"
	"github.com/erindhoxha/mern-stack-site/internal/cache"
	"github.com/erindhoxha/mern-stack-site/internal/logger"
	"github.com/erindhoxha/mern-stack-site/internal/providers/github"
	mongorepo "github.com/erindhoxha/mern-stack-site/internal/repositories/mongo"
	pgrepo "github.com/erindhoxha/mern-stack-site/internal/repositories/postgres"
	"github.com/erindhoxha/mern-stack-site/internal/services"
	"github.com/erindhoxha/mern-stack-site/internal/workers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logger.New(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := config.NewMongo(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("MongoDB init error")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	if err := config.EnsureMongoIndexes(ctx, db); err != nil {
		log.WithError(err).Fatal("MongoDB index error")
	}
	log.WithField("db", cfg.MongoDB).Info("MongoDB connected")

	var (
		rdb       *redis.Client
		c         cache.Cache             = cache.Nop{}
		publisher services.EventPublisher = services.NopEventPublisher{}
		recorder  services.AuditRecorder  = services.NopAuditRecorder{}
		audits    pgrepo.AuditRepository
	)

	if cfg.RedisURL != "" {
		rdb, err = config.NewRedis(ctx, cfg)
		if err != nil {
			log.WithError(err).Fatal("Redis init error")
		}
		defer rdb.Close()
		c = cache.NewRedisCache(rdb, "devconnector:")
		publisher = services.NewRedisEventPublisher(rdb, log)
		log.Info("Redis connected")
	} else {
		log.Warn("REDIS_URL not set: GitHub cache, post stream and audit trail disabled")
	}

	if cfg.PostgresURI != "" {
		gdb, err := config.NewPostgres(cfg)
		if err != nil {
			log.WithError(err).Fatal("PostgreSQL init error")
		}
		audits = pgrepo.NewAuditRepo(gdb)
		log.Info("PostgreSQL connected")
	}

	if rdb != nil && audits != nil {
		recorder = services.NewStreamAuditRecorder(rdb, log)
		pool := &workers.AuditWorkerPool{
			Redis:      rdb,
			Audits:     audits,
			NumWorkers: cfg.AuditWorkers,
			Logger:     log,
		}
		if err := pool.Start(ctx); err != nil {
			log.WithError(err).Fatal("audit workers")
		}
	}

	users := mongorepo.NewUserRepo(db)
	profiles := mongorepo.NewProfileRepo(db)
	posts := mongorepo.NewPostRepo(db)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	authSvc := services.NewAuthService(users, tokens, recorder)
	profileSvc := services.NewProfileService(profiles, users, recorder)
	postSvc := services.NewPostService(posts, users, publisher, recorder)
	accountSvc := services.NewAccountService(users, profiles, posts, audits, recorder)
	githubSvc := services.NewGithubService(github.NewClient(cfg.GithubAPIURL, cfg.GithubToken), c, log)

	metrics := middleware.NewMetrics("devconnector")

	var stream *handlers.StreamHandler
	if rdb != nil {
		stream = handlers.NewStreamHandler(rdb, services.PostEventsChannel, metrics.StreamClients, cfg.CORSOrigins, log)
	}

	r := gin.New()
	routes.RegisterRoutes(r, routes.Deps{
		Logger:      log,
		Tokens:      tokens,
		Metrics:     metrics,
		CORSOrigins: cfg.CORSOrigins,
		Auth:        handlers.NewAuthHandler(authSvc),
		Account:     handlers.NewAccountHandler(accountSvc),
		Profile:     handlers.NewProfileHandler(profileSvc, githubSvc),
		Post:        handlers.NewPostHandler(postSvc),
		Stream:      stream,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
