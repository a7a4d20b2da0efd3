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

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"eventhub/config"
	"eventhub/db"
	"eventhub/middlewares"
	"eventhub/models"
	"eventhub/roles"
	"eventhub/routes"
	"eventhub/session"
	"eventhub/utils"
	"eventhub/views"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Postgres: users, roles, registrations
	sqldb, err := db.OpenPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres", "err", err)
		os.Exit(1)
	}
	defer sqldb.Close()

	// Mongo: event catalog
	mg, eventsCol, err := db.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Error("mongo", "err", err)
		os.Exit(1)
	}
	defer func() { _ = mg.Disconnect(context.Background()) }()

	// Redis: response cache, quota, revoked sessions
	rdb, err := db.OpenRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Error("redis", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	users := models.NewSQLUserRepository(sqldb)
	regs := models.NewSQLRegistrationRepository(sqldb)
	events := models.NewMongoEventRepository(eventsCol)
	resolver := roles.NewResolver(models.NewSQLRoleRepository(sqldb), log)

	hub := session.NewHub()
	provider := session.NewProvider(cfg.JWTSecret, cfg.TokenTTL, session.NewRedisDenylist(rdb), hub)

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()
	server.Use(gin.Recovery(), middlewares.RequestLogger(log))

	stop := routes.RegisterRoutes(server, routes.Deps{
		Users:        users,
		Events:       events,
		Regs:         regs,
		Roles:        resolver,
		Sessions:     provider,
		Views:        views.NewRenderer(events, regs, resolver),
		Redis:        rdb,
		Inv:          utils.NewCacheInvalidator(rdb),
		CacheTTL:     cfg.CacheTTL,
		DailyQuota:   cfg.DailyQuota,
		PreviewLimit: cfg.PreviewLimit,
		Limits:       routes.DefaultLimits(),
		Log:          log,
	})
	defer stop()

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Cache", "X-Quota-Used", "Retry-After"},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	// websocket feeds are hijacked connections Shutdown does not wait for
	hub.Close()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("forced shutdown", "err", err)
	}
	log.Info("server exited")
}
