package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"roicalculator/clients/http_client"
	kafka_client "roicalculator/clients/kafka"
	mongo_client "roicalculator/clients/mongo"
	rabbitmq_client "roicalculator/clients/rabbitmq"
	"roicalculator/config"
	"roicalculator/middleware"
	"roicalculator/routes"
	"roicalculator/services"
	"roicalculator/types"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// GracefulShutdown handles graceful shutdown of the server, the reloader and the clients
func GracefulShutdown(server *http.Server, benchmarkReloader *time.Ticker) {
	stopper := make(chan os.Signal, 1)
	// Listen for interrupt and SIGTERM signals
	signal.Notify(stopper, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-stopper
		zap.L().Info("Shutting down gracefully...")

		benchmarkReloader.Stop()
		// Create a context with a timeout for shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Shut down the server
		if err := server.Shutdown(ctx); err != nil {
			zap.L().Error("Server shutdown failed", zap.Error(err))
			return
		}
		kafka_client.Close()
		rabbitmq_client.Close()
		mongo_client.Close(ctx)
		sentry.Flush(2 * time.Second)
		zap.L().Info("Server exited gracefully")
	}()
}

func setupLogger(level string) {
	zapConfig := zap.NewProductionConfig()
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		atomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = atomicLevel
	logger, _ := zapConfig.Build()
	zap.ReplaceGlobals(logger)
}

func setupSentry(cfg *config.Config) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:           cfg.SentryDSN,
		Environment:   cfg.Environment,
		EnableTracing: true,
		// Set TracesSampleRate to 1.0 to capture 100%
		// of transactions for tracing.
		TracesSampleRate: cfg.SentrySampleRate, // 1.0 by default if ENV SENTRY_SAMPLE_RATE not set
	}); err != nil {
		zap.L().Error("Sentry initialization failed: ", zap.Any("error", err.Error()))
	}
}

func newDataSource(cfg *config.Config) services.DataSource {
	if cfg.DataSource == "page" {
		zap.L().Info("Using company page data source", zap.String("url", cfg.CompanyURL))
		return http_client.NewPageSource(cfg.CompanyURL)
	}
	zap.L().Info("Using fundamentals API data source", zap.String("url", cfg.FundamentalsURL))
	return http_client.NewFundamentalsClient(cfg.FundamentalsURL, cfg.FundamentalsAPIKey,
		http_client.WithRateLimit(cfg.FundamentalsRateLimit))
}

// connectClients initialises every configured broker and store and returns the
// event publishers that came up.
func connectClients(ctx context.Context, cfg *config.Config) []services.EventPublisher {
	var publishers []services.EventPublisher

	if cfg.MongoURI != "" {
		if err := mongo_client.Init(ctx, cfg.MongoURI); err != nil {
			zap.L().Error("MongoDB unavailable, using benchmark file only", zap.Error(err))
		}
	}
	if cfg.KafkaBootstrapServers != "" && cfg.KafkaTopic != "" {
		if err := kafka_client.Init(cfg.KafkaBootstrapServers, cfg.KafkaTopic); err != nil {
			zap.L().Error("Kafka unavailable", zap.Error(err))
		} else {
			publishers = append(publishers, kafka_client.Publisher{})
		}
	}
	if cfg.RabbitMQServer != "" {
		if err := rabbitmq_client.Init(cfg.RabbitMQServer, cfg.RabbitMQPort, cfg.RabbitMQUser, cfg.RabbitMQPass); err != nil {
			zap.L().Error("RabbitMQ unavailable", zap.Error(err))
		} else {
			publishers = append(publishers, rabbitmq_client.Publisher{})
		}
	}
	return publishers
}

func main() {
	cfg := config.LoadConfig()
	setupLogger(cfg.LogLevel)
	setupSentry(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	publishers := connectClients(ctx, cfg)

	var remote services.BenchmarkLoader
	if mongo_client.Client != nil && cfg.Database != "" {
		remote = func(ctx context.Context) (types.BenchmarkConfig, error) {
			return mongo_client.LoadBenchmarks(ctx, cfg.Database, cfg.BenchmarkCollection)
		}
	}
	benchmarks, err := services.NewBenchmarkService(ctx, cfg.BenchmarksFile, remote)
	cancel()
	if err != nil {
		log.Fatalf("Error loading benchmarks: %v", err)
	}
	services.BenchmarkService = benchmarks
	services.ValuationService = services.NewValuationService(newDataSource(cfg), benchmarks, cfg.HistoryYears, publishers...)

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())

	router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(CORSMiddleware())

	benchmarkReloader := startBenchmarkReloader(cfg.BenchmarkReloadInterval)
	routes.Routes(router)

	// Create a server instance using gin engine as handler
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	GracefulShutdown(server, benchmarkReloader)

	zap.L().Info("Starting server", zap.String("port", cfg.Port), zap.String("dataSource", cfg.DataSource))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Error starting server: %v", err)
	}
}

func startBenchmarkReloader(interval time.Duration) *time.Ticker {
	ticker := time.NewTicker(interval)

	go func() {
		for t := range ticker.C {
			zap.L().Info("Benchmark reloader tick at: ", zap.String("time", t.String()))
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if err := services.BenchmarkService.Reload(ctx); err != nil {
				zap.L().Error("Benchmark reload failed, keeping previous benchmarks", zap.Error(err))
			}
			cancel()
		}
	}()
	return ticker
}
