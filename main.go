package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"civicsync-web/config"
	"civicsync-web/controllers"
	"civicsync-web/listing"
	"civicsync-web/middlewares"
	"civicsync-web/models"
	"civicsync-web/routes"
	"civicsync-web/services"
	"civicsync-web/session"
	"civicsync-web/views"
)

const (
	sessionCookie = "civicsync_session"
	geocodeTTL    = 30 * 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var redisClient *redis.Client
	if cfg.SessionBackend != config.SessionBackendMemory {
		client, err := config.ConnectRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		redisClient = client
		logger.Info("Redis connection established", zap.String("address", cfg.RedisAddress))
	}

	store, closeStore, err := sessionStore(ctx, cfg, redisClient, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	renderer, err := views.New(logger)
	if err != nil {
		return err
	}

	api := services.NewClient(cfg.APIBaseURL, cfg.APITimeout)
	authService := services.NewAuthService(api)
	lists := listing.NewRegistry[[]models.Report](cfg.SessionTTL)
	sessions := session.NewManager(store, authService, cfg.SessionTTL, logger.Named("session"),
		session.WithVerifyTimeout(cfg.APITimeout),
		session.OnSessionEnd(lists.Forget),
	)

	var geocoder services.AddressResolver = services.NoopResolver{}
	if cfg.MapboxToken != "" {
		var cache services.AddressCache
		if redisClient != nil {
			cache = services.NewRedisAddressCache(redisClient, geocodeTTL, logger)
		}
		geocoder = services.NewMapboxGeocoder(cfg.MapboxBaseURL, cfg.MapboxToken, cfg.GeocodeRPS, cache, logger.Named("geocoder"))
	}

	cookies := middlewares.CookieSettings{
		Name:   sessionCookie,
		Domain: cfg.CookieDomain,
		Secure: cfg.IsProduction(),
		MaxAge: int(cfg.SessionTTL.Seconds()),
	}

	var limiter gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if redisClient != nil {
		limiter = middlewares.ReportRateLimiter(redisClient, cfg.ReportLimitPrefix, cfg.ReportDailyLimit, logger)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestID(), middlewares.AccessLog(logger.Named("http")))
	if len(cfg.CORSOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORSOrigins
		corsCfg.AllowCredentials = true
		corsCfg.AddExposeHeaders(middlewares.RequestIDHeader)
		r.Use(cors.New(corsCfg))
	}

	routes.Register(r, routes.Handlers{
		Guard:      middlewares.AuthMiddleware(sessions, cookies, false),
		AdminGuard: middlewares.AuthMiddleware(sessions, cookies, true),
		Limiter:    limiter,
		Auth:       controllers.NewAuthController(sessions, authService, cookies, renderer, logger),
		User:       controllers.NewUserController(sessions, renderer, logger),
		Reports: controllers.NewReportController(
			services.NewReportService(api),
			services.NewCommentService(api),
			geocoder,
			lists,
			cfg.MapboxToken,
			renderer,
			logger,
		),
		Admin: controllers.NewAdminController(services.NewAdminService(api), services.NewReportService(api), renderer, logger),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sessionStore opens the configured session backend and returns a function
// that releases it.
func sessionStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) (session.Store, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionBackendMongo:
		client, db, err := config.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store := session.NewMongoStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		logger.Info("MongoDB connection established successfully!", zap.String("database", cfg.MongoDatabase))
		return store, func() { disconnect(client, logger) }, nil
	case config.SessionBackendMemory:
		logger.Warn("using in-memory sessions; they are lost on restart")
		return session.NewMemoryStore(), func() {}, nil
	default:
		return session.NewRedisStore(redisClient), func() {}, nil
	}
}

func disconnect(client *mongo.Client, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Warn("mongo disconnect failed", zap.Error(err))
	}
}
