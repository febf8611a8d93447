package routes

import (
	"log"
	"os"
	"strings"
	"time"

	_ "receitamed/docs" // swag-generated documentation
	"receitamed/internal/adapter/http/handlers"
	"receitamed/internal/adapter/persistence/repository"
	"receitamed/internal/infrastructure/collaborators"
	"receitamed/internal/infrastructure/database"
	"receitamed/internal/infrastructure/notifications"
	"receitamed/internal/infrastructure/payments"
	"receitamed/internal/usecase"
	"receitamed/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

var router = gin.Default()

// Run will start the server
func Run() {
	logger := newLogger()
	defer logger.Sync()

	setMiddlewares(logger)

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	getRoutes(logger)

	if err := router.Run(":" + getenvDefault("PORT", "8080")); err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes(logger *zap.Logger) {
	ddb := database.ConnectDynamoDB()

	requestRepo := repository.NewRequestDynamoRepository(ddb)
	paymentRepo := repository.NewPaymentDynamoRepository(ddb)
	attemptRepo := repository.NewPaymentAttemptDynamoRepository(ddb)
	webhookRepo := repository.NewWebhookEventDynamoRepository(ddb)

	priceClient := collaborators.NewPriceClient(os.Getenv("CATALOG_SERVICE_URL"), os.Getenv("CATALOG_SERVICE_API_KEY"))
	priceCache := usecase.NewPriceCache(priceClient, parseDurationEnv("PRICE_CACHE_TTL"))
	profileClient := collaborators.NewProfileClient(os.Getenv("PROFILE_SERVICE_URL"), os.Getenv("PROFILE_SERVICE_API_KEY"))
	rendererClient := collaborators.NewDocumentClient(os.Getenv("RENDERER_SERVICE_URL"), os.Getenv("RENDERER_SERVICE_API_KEY"))
	signerClient := collaborators.NewDocumentClient(os.Getenv("SIGNER_SERVICE_URL"), os.Getenv("SIGNER_SERVICE_API_KEY"))

	var aiReader interfaces.IAIReader
	if url := os.Getenv("AI_READER_URL"); url != "" {
		aiReader = collaborators.NewAIReaderClient(url, os.Getenv("AI_READER_API_KEY"))
	}

	var notifier interfaces.INotificationSender = notifications.NopSender{}
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		sender, err := notifications.NewRabbitMQSender(url, os.Getenv("NOTIFICATIONS_QUEUE"), logger)
		if err != nil {
			logger.Warn("notification broker unavailable, notifications disabled", zap.Error(err))
		} else {
			notifier = sender
		}
	}

	// The gateway is injected even when misconfigured: its nil receiver answers
	// every call with ErrMercadoPagoGatewayNotConfigured instead of panicking.
	mpGateway, err := payments.NewMercadoPagoGateway(os.Getenv("MERCADOPAGO_ACCESS_TOKEN"), logger)
	if err != nil {
		logger.Warn("mercado pago gateway not configured, provider calls will fail", zap.Error(err))
	}
	var paymentGateway interfaces.IPaymentGateway = mpGateway

	requestUseCase := usecase.NewRequestUseCase(requestRepo, priceCache, aiReader, notifier, logger)
	paymentUseCase := usecase.NewPaymentUseCase(paymentRepo, requestRepo, attemptRepo, paymentGateway, logger)
	reconciliationUseCase := usecase.NewReconciliationUseCase(paymentRepo, requestRepo, paymentGateway, notifier, logger)
	webhookUseCase := usecase.NewWebhookUseCase(webhookRepo, reconciliationUseCase, usecase.WebhookConfig{
		Secret:      os.Getenv("MERCADOPAGO_WEBHOOK_SECRET"),
		SandboxMode: isEnabled(os.Getenv("WEBHOOK_SANDBOX_MODE")),
	}, logger)
	signatureUseCase := usecase.NewSignatureUseCase(requestRepo, profileClient, profileClient, rendererClient, signerClient, notifier, logger)

	requestHandler := handlers.NewRequestHandler(requestUseCase)
	paymentHandler := handlers.NewPaymentHandler(paymentUseCase, reconciliationUseCase)
	webhookHandler := handlers.NewWebhookHandler(webhookUseCase)
	signatureHandler := handlers.NewSignatureHandler(signatureUseCase)

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addMedicalRoutes(v1, requestHandler, paymentHandler, signatureHandler)
	addWebhookRoutes(v1, webhookHandler)
}

func setMiddlewares(logger *zap.Logger) {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("recovered from panic", zap.Any("panic", recovered))
		c.AbortWithStatus(500)
	}))
}

func newLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if strings.EqualFold(os.Getenv("APP_ENV"), "development") {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	return logger
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseDurationEnv reads a duration from the environment. Empty or malformed
// values come back as zero so the consumer applies its own default.
func parseDurationEnv(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("ignoring invalid %s value %q: %v", key, v, err)
		return 0
	}
	return d
}

func isEnabled(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
