package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-reservation/internal/config"
	"github.com/iliyamo/room-reservation/internal/database"
	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/logger"
	"github.com/iliyamo/room-reservation/internal/metrics"
	"github.com/iliyamo/room-reservation/internal/middleware"
	"github.com/iliyamo/room-reservation/internal/policy"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/reservation"
	"github.com/iliyamo/room-reservation/internal/router"
)

func main() {
	// A missing .env is normal in containers; real env vars still apply.
	_ = godotenv.Load()

	log := logger.New(config.LoadLogConfig())

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config")
	}

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		LockWait: cfg.LockWait,
	})
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	opts := []reservation.Option{reservation.WithMetrics(m)}

	amqpCfg := config.LoadAMQPConfig()
	if amqpCfg.PublishEnabled {
		pub := queue.NewPublisher(amqpCfg.URL, amqpCfg.Queue, log)
		defer pub.Close()
		opts = append(opts, reservation.WithEvents(pub))
	}
	if amqpCfg.ConsumerEnabled {
		go runAudit(ctx, amqpCfg, log)
	}

	rooms := repository.NewRoomRepo(db)
	slots := repository.NewTimeslotRepo(db)
	users := repository.NewUserRepo(db)
	svc := reservation.New(repository.NewReservationStore(db, cfg.LockWait), log, opts...)
	pol := policy.New(cfg.StudentMaxCapacity)

	rdb := config.NewRedisClient(config.LoadRedisConfig(), log)
	if rdb != nil {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()
	invalidate := func(ctx context.Context) error { return middleware.InvalidateCache(ctx, cacheCfg, rdb) }

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLog(log, m))

	deps := map[string]handler.Pinger{"mysql": db.PingContext, "redis": nil}
	if rdb != nil {
		deps["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	router.RegisterRoutes(e, m, handler.Ready(deps))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, log))
	router.RegisterUser(e, cfg.JWTSecret,
		handler.NewCatalogHandler(rooms, slots, pol, log),
		handler.NewReservationHandler(svc, rooms, slots, pol, log),
		middleware.NewRedisCache(cacheCfg, rdb),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
	)
	router.RegisterAdmin(e, cfg.JWTSecret,
		handler.NewAdminReservationHandler(svc, log),
		handler.NewAdminCatalogHandler(rooms, slots, invalidate, log),
		handler.NewAdminUserHandler(users, cfg.BcryptCost, log),
	)

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	}
	log.Info("bye")
}

// runAudit appends every reservation event to the rotating audit file
// until ctx is cancelled.
func runAudit(ctx context.Context, cfg config.AMQPConfig, log logrus.FieldLogger) {
	w := logger.RotatingFile(cfg.AuditLogPath, 50, 5, 90)
	defer w.Close()
	c := queue.NewAuditConsumer(cfg.URL, cfg.Queue, w, log.WithField("component", "audit"))
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("audit consumer stopped")
	}
}
