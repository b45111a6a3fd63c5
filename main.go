package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookingbot/config"
	"bookingbot/database"
	bookingRepo "bookingbot/database/repository/booking"
	"bookingbot/handlers"
	"bookingbot/middleware"
	"bookingbot/routes"
	"bookingbot/services/booking"
	"bookingbot/services/dialogue"
	ai "bookingbot/services/intelligence"
	"bookingbot/services/media"
	"bookingbot/services/notification"
	"bookingbot/services/session"
	"bookingbot/services/speech"
	"bookingbot/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("main: failed to read .env: %v", err)
	}
	config.LoadConfig()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	var closers []func() error

	// Session storage.
	var (
		sessions     session.Store
		sessionCount handlers.SessionCounter
		redisClient  *redis.Client
	)
	switch cfg.SessionStore {
	case "redis":
		rdb, err := utils.GetSessionCacheClient()
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize session cache: %v", err)
		}
		redisClient = rdb
		closers = append(closers, rdb.Close)
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
	default:
		mem := session.NewMemoryStore()
		sessions = mem
		sessionCount = mem
	}

	// Booking storage.
	var (
		bookings    bookingRepo.BookingRepository
		mongoClient *mongo.Client
	)
	switch cfg.BookingStore {
	case "mongo":
		if err := database.InitDB(); err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		mongoClient = database.MongoClient
		if err := bookingRepo.EnsureIndexes(rootCtx, mongoClient, cfg.MongoDatabase); err != nil {
			logger.Sugar().Warnf("main: failed to ensure booking indexes: %v", err)
		}
		closers = append(closers, func() error { return mongoClient.Disconnect(context.Background()) })
		bookings = bookingRepo.NewMongoBookingRepo(mongoClient, cfg.MongoDatabase)
	default:
		repo, err := bookingRepo.NewSQLiteBookingRepo(cfg.SQLitePath)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to open booking database: %v", err)
		}
		closers = append(closers, repo.Close)
		bookings = repo
	}

	// Language model. The bot runs on rules alone without a key.
	var generator ai.Generator
	if config.LLMEnabled() {
		gc, err := ai.NewGeminiClient(rootCtx, cfg.GeminiAPIKey, cfg.GenModel)
		if err != nil {
			logger.Sugar().Warnf("main: language model disabled: %v", err)
		} else {
			generator = gc
			closers = append(closers, gc.Close)
		}
	}
	limiter := ai.NewRateLimiter(cfg.LLMPerMinute, time.Minute)
	rules := ai.DefaultRules()
	classifier := ai.NewClassifier(rules, generator, limiter, cfg.IntentCacheTTL, logger)
	composer := ai.NewComposer(generator, limiter, cfg.RewriteTimeout, logger)

	// Notifications.
	var notifier notification.Sender = notification.NewLogSender(logger)
	if cfg.FirebaseCredentialsFile != "" {
		fcm, err := utils.FirebaseMessaging(rootCtx)
		if err != nil {
			logger.Sugar().Warnf("main: push notifications disabled: %v", err)
		} else {
			notifier = notification.NewFCMSender(fcm, logger)
		}
	}

	// QR images go to Cloudinary when configured, otherwise they are served from memory.
	var (
		uploader     media.Uploader
		imageHandler gin.HandlerFunc
	)
	if utils.CloudinaryConfigured() {
		cld, err := utils.Cloudinary()
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
		}
		uploader = media.NewCloudinaryUploader(cld, cfg.QRFolder)
	} else {
		baseURL := cfg.PublicBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:" + cfg.AppPort
		}
		mem := media.NewMemoryUploader(baseURL, cfg.QRCacheSize)
		uploader = mem
		imageHandler = handlers.QRImageHandler(mem)
	}

	// Speech to text is optional.
	var transcriber speech.Transcriber
	gt, err := speech.NewGoogleTranscriber(rootCtx, cfg.GoogleServiceAccountFile, cfg.STTLanguage)
	if err != nil {
		logger.Sugar().Warnf("main: speech to text disabled: %v", err)
	} else {
		transcriber = gt
		closers = append(closers, gt.Close)
	}

	engine, err := dialogue.NewEngine(dialogue.Deps{
		Sessions:      sessions,
		Interpreter:   classifier,
		SmallTalk:     rules,
		Composer:      composer,
		Pricing:       booking.DefaultPriceBook(cfg.FXUSDToINR, cfg.CurrencySymbol),
		Bookings:      bookings,
		Notifier:      notifier,
		QR:            media.NewUPIQRGenerator(cfg.UPIID, cfg.UPIPayeeName, uploader),
		Catalog:       media.StaticCatalog{URL: cfg.CatalogURL},
		Location:      media.StaticLocation{MapLink: cfg.MapLink, Address: cfg.OfficeAddress},
		Transcriber:   transcriber,
		Validator:     dialogue.NewDateParserValidator(),
		AssistantName: cfg.AssistantName,
		OwnerTopic:    cfg.OwnerTopic,
		Logger:        logger,
	})
	if err != nil {
		logger.Sugar().Fatalf("main: failed to build conversation engine: %v", err)
	}

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	report := handlers.HealthReport{Sessions: sessionCount}
	if generator != nil {
		report.LLMQuota = limiter
	}
	chatHandler := handlers.NewChatHandler(engine)
	handlerBundle := &handlers.HandlerBundle{
		TextHandler:    chatHandler.HandleText,
		VoiceHandler:   chatHandler.HandleVoice,
		QRImageHandler: imageHandler,
		HealthHandler:  handlers.HealthHandler(report),
	}
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(rootCtx, redisClient, mongoClient)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Sugar().Warnf("main: close: %v", err)
		}
	}

	logger.Sugar().Info("main: server stopped gracefully")
	_ = logger.Sync()
}
