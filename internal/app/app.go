package app

import (
	"fmt"

	"apexsports_backend/database"
	"apexsports_backend/internal/config"
	"apexsports_backend/internal/handlers"
	"apexsports_backend/internal/logger"
	"apexsports_backend/internal/middleware"
	"apexsports_backend/internal/notifications"
	"apexsports_backend/internal/payments"
	"apexsports_backend/internal/repositories"
	"apexsports_backend/internal/routes"
	"apexsports_backend/internal/services"
	"apexsports_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	// 1. Инициализируем сервисы
	serviceContainer := initializeServices(cfg)

	// 2. Инициализируем хэндлеры
	appHandlers := initializeHandlers(serviceContainer)

	// 3. Инициализируем Gin
	ginRouter := initializeGinRouter(gormDB)

	// 4. Регистрация маршрутов делегирована пакету 'routes'
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

func initializeServices(cfg *config.Config) *services.ServiceContainer {
	// Платежный шлюз. Без ключа Stripe платные брони отклоняются еще
	// в сервисе, поэтому пустые креды здесь допустимы.
	gateway := payments.NewStripeGateway(cfg.Payments.StripeSecretKey, cfg.Payments.StripeWebhookSecret)
	if !cfg.StripeEnabled() {
		logger.Warn("Stripe is not configured, bookings will proceed without payment holds")
	}

	var dispatcher notifications.Dispatcher
	if cfg.Notifications.SendEmails {
		dispatcher = notifications.NewMailDispatcher(cfg)
	} else {
		logger.Warn("Email notifications disabled")
		dispatcher = notifications.NewNoopDispatcher()
	}

	// --- Инициализация репозиториев ---
	userRepo := repositories.NewUserRepository()
	coachRepo := repositories.NewCoachProfileRepository()
	availRepo := repositories.NewAvailabilityRepository()
	bookingRepo := repositories.NewBookingRepository()
	reviewRepo := repositories.NewReviewRepository()

	// --- Инициализация сервисов ---
	authService := services.NewAuthService(userRepo)
	coachService := services.NewCoachService(coachRepo, userRepo, availRepo, reviewRepo, gateway, cfg)
	bookingService := services.NewBookingService(bookingRepo, availRepo, userRepo, reviewRepo, gateway, dispatcher, cfg)
	availabilityService := services.NewAvailabilityService(availRepo, bookingRepo, bookingService)
	webhookService := services.NewWebhookService(bookingRepo, gateway, cfg)

	return &services.ServiceContainer{
		AuthService:         authService,
		CoachService:        coachService,
		AvailabilityService: availabilityService,
		BookingService:      bookingService,
		WebhookService:      webhookService,
	}
}

func initializeHandlers(services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:    handlers.NewAuthHandler(baseHandler, services.AuthService),
		CoachHandler:   handlers.NewCoachHandler(baseHandler, services.CoachService, services.AvailabilityService),
		BookingHandler: handlers.NewBookingHandler(baseHandler, services.BookingService),
		WebhookHandler: handlers.NewWebhookHandler(baseHandler, services.WebhookService),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}
