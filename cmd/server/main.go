package main // Entry point package

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os/signal"
    "syscall"
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/iliyamo/store-rating/internal/config"
    "github.com/iliyamo/store-rating/internal/database"
    "github.com/iliyamo/store-rating/internal/handler"
    "github.com/iliyamo/store-rating/internal/middleware"
    "github.com/iliyamo/store-rating/internal/queue"
    "github.com/iliyamo/store-rating/internal/repository"
    "github.com/iliyamo/store-rating/internal/router"
    "github.com/iliyamo/store-rating/internal/service"
)

func main() {
    cfg := config.Load()
    cacheCfg := config.LoadCacheConfig()
    rlCfg := config.LoadRateLimitConfig()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    if cfg.DBAutoMigrate {
        if err := database.Migrate(db, "up"); err != nil {
            log.Fatalf("migrate: %v", err)
        }
    }

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable: dashboard cache off, rate limiting in-process")
    } else {
        defer rdb.Close()
    }
    invalidate := func(ctx context.Context) {
        if err := middleware.InvalidateCache(ctx, rdb, cacheCfg.Prefix); err != nil {
            log.Printf("cache: invalidate failed: %v", err)
        }
    }

    // Repositories and services are built once and shared by every request.
    storeRepo := repository.NewStoreRepo(db)
    ratingRepo := repository.NewRatingRepo(db)
    userRepo := repository.NewUserRepo(db)
    tokenRepo := repository.NewTokenRepo(db)

    var events service.RatingEventPublisher
    if cfg.EventsEnabled {
        events = queue.NewPublisher(cfg.AMQPURL)
    }
    // With events on, the consumer invalidates after each rating.
    var ratingInvalidate handler.Invalidator = invalidate
    if cfg.EventsEnabled {
        ratingInvalidate = nil
    }
    storeSvc := service.NewStoreService(storeRepo, ratingRepo, userRepo, events)
    userSvc := service.NewUserService(userRepo, storeRepo, ratingRepo, cfg.BcryptCost)
    authSvc := service.NewAuthService(userRepo, tokenRepo, service.AuthConfig{
        JWTSecret:      cfg.JWTSecret,
        AccessTTLMin:   cfg.AccessTTLMin,
        RefreshTTLDays: cfg.RefreshTTLDays,
        BcryptCost:     cfg.BcryptCost,
    })
    statsSvc := service.NewStatsService(userRepo, storeRepo, ratingRepo)

    e := echo.New()
    e.HideBanner = true
    e.Validator = handler.NewValidator()
    e.Use(echomw.Recover())
    e.Use(middleware.RequestID())
    e.Use(echomw.Logger())
    e.Use(middleware.NewTokenBucket(rlCfg, rdb))

    router.RegisterRoutes(e, router.Handlers{
        Health: &handler.HealthHandler{DB: db},
        Auth:   handler.NewAuthHandler(authSvc, userSvc, cfg.JWTSecret, invalidate),
        Stores: handler.NewStoreHandler(storeSvc, ratingInvalidate),
        Owner:  handler.NewOwnerHandler(storeSvc),
        Admin:  handler.NewAdminHandler(storeSvc, userSvc, statsSvc, invalidate),
    }, router.Options{
        JWTSecret:      cfg.JWTSecret,
        DashboardCache: middleware.NewRedisCache(cacheCfg, rdb),
    })

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    if cfg.EventsEnabled {
        consumer := &queue.Consumer{
            URL:       cfg.AMQPURL,
            AuditPath: cfg.AuditLogPath,
            OnEvent:   func(ctx context.Context, _ queue.RatingSubmittedEvent) { invalidate(ctx) },
        }
        go func() {
            if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
                log.Printf("rating-consumer stopped: %v", err)
            }
        }()
    }

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    go func() {
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Fatal(err)
        }
    }()

    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        log.Printf("shutdown: %v", err)
    }
}
