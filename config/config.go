package config

import (
	"fmt"
	"os"
	"path/filepath"
	"roicalculator/types"
	"roicalculator/utils/constants"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is read once at startup from the environment (and an optional .env file).
type Config struct {
	Port             string
	Environment      string
	LogLevel         string
	SentryDSN        string
	SentrySampleRate float64

	DataSource            string
	FundamentalsURL       string
	FundamentalsAPIKey    string
	FundamentalsRateLimit int
	CompanyURL            string
	HistoryYears          int

	BenchmarksFile          string
	MongoURI                string
	Database                string
	BenchmarkCollection     string
	BenchmarkReloadInterval time.Duration

	KafkaBootstrapServers string
	KafkaTopic            string
	RabbitMQServer        string
	RabbitMQPort          string
	RabbitMQUser          string
	RabbitMQPass          string
}

// GetEnv retrieves the environment variable with a default value if not set.
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(GetEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(GetEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

// LoadConfig loads .env (if present) and reads every setting from the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		zap.L().Warn("Could not load .env file", zap.Error(err))
	}

	interval, err := time.ParseDuration(GetEnv("BENCHMARK_RELOAD_INTERVAL", constants.DefaultReloadInterval))
	if err != nil || interval <= 0 {
		interval = 24 * time.Hour
	}

	return &Config{
		Port:             GetEnv("PORT", constants.DefaultPort),
		Environment:      GetEnv("ENVIRONMENT", "development"),
		LogLevel:         GetEnv("LOG_LEVEL", "info"),
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentrySampleRate: getEnvFloat("SENTRY_SAMPLE_RATE", 1.0),

		DataSource:            strings.ToLower(GetEnv("DATA_SOURCE", "api")),
		FundamentalsURL:       os.Getenv("FUNDAMENTALS_URL"),
		FundamentalsAPIKey:    os.Getenv("FUNDAMENTALS_API_KEY"),
		FundamentalsRateLimit: getEnvInt("FUNDAMENTALS_RATE_LIMIT", constants.DefaultRateLimit),
		CompanyURL:            os.Getenv("COMPANY_URL"),
		HistoryYears:          getEnvInt("HISTORY_YEARS", constants.DefaultHistoryYears),

		BenchmarksFile:          GetEnv("BENCHMARKS_FILE", constants.DefaultBenchmarksFile),
		MongoURI:                os.Getenv("MONGO_URI"),
		Database:                os.Getenv("DATABASE"),
		BenchmarkCollection:     GetEnv("BENCHMARK_COLLECTION", "benchmarks"),
		BenchmarkReloadInterval: interval,

		KafkaBootstrapServers: os.Getenv("KAFKA_BOOTSTRAPSERVERS"),
		KafkaTopic:            os.Getenv("KAFKA_TOPIC"),
		RabbitMQServer:        os.Getenv("RABBITMQ_SERVER"),
		RabbitMQPort:          GetEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:          GetEnv("RABBITMQ_USER", "guest"),
		RabbitMQPass:          GetEnv("RABBITMQ_PASS", "guest"),
	}
}

// LoadBenchmarks reads a benchmark file, YAML or TOML by extension, and validates it.
func LoadBenchmarks(path string) (types.BenchmarkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := types.BenchmarkConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("unsupported benchmark file %q", path)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}

	if err := ValidateBenchmarks(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateBenchmarks rejects negative weights and thresholds that do not run from best
// to worst: ascending for lower-is-better ratios, descending for higher-is-better ones.
// Keys without a known direction only need to be monotonic.
func ValidateBenchmarks(cfg types.BenchmarkConfig) error {
	if len(cfg) == 0 {
		return fmt.Errorf("benchmark config is empty")
	}
	for name, bm := range cfg {
		if bm.Weight < 0 {
			return fmt.Errorf("benchmark %s: negative weight %v", name, bm.Weight)
		}
		t := bm.Thresholds()
		ascending, descending := true, true
		for i := 1; i < len(t); i++ {
			if t[i] < t[i-1] {
				ascending = false
			}
			if t[i] > t[i-1] {
				descending = false
			}
		}
		switch {
		case constants.LowerIsBetterRatios[name] && !ascending:
			return fmt.Errorf("benchmark %s: thresholds %v are not ordered ascending", name, t)
		case constants.HigherIsBetterRatios[name] && !descending:
			return fmt.Errorf("benchmark %s: thresholds %v are not ordered descending", name, t)
		case !ascending && !descending:
			return fmt.Errorf("benchmark %s: thresholds %v are not ordered", name, t)
		}
	}
	return nil
}
