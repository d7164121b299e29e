package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/epicast-dev/epicast-go/internal/models"
)

type Config struct {
	Environment  string             `mapstructure:"environment"`
	LogLevel     string             `mapstructure:"log_level"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Collector    CollectorConfig    `mapstructure:"collector"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
	Epidemiology models.DiseaseRates `mapstructure:"epidemiology"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CollectorConfig drives the background region-statistics collector.
type CollectorConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	SourceURL     string `mapstructure:"source_url"`
	FetchInterval string `mapstructure:"fetch_interval"`
	FetchTimeout  string `mapstructure:"fetch_timeout"`
	MaxErrors     int    `mapstructure:"max_errors"`
	CacheTTL      string `mapstructure:"cache_ttl"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

func Load() (*Config, error) {
	// Optional .env for local development; ignore if absent.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	config.Environment = strings.ToLower(config.Environment)

	// Rate parameters are immutable once loaded, so bad bounds must fail
	// startup instead of the first projection.
	if err := config.Epidemiology.Validate(); err != nil {
		return nil, fmt.Errorf("invalid epidemiology configuration: %w", err)
	}

	for key, value := range map[string]string{
		"collector.fetch_interval": config.Collector.FetchInterval,
		"collector.fetch_timeout":  config.Collector.FetchTimeout,
		"collector.cache_ttl":      config.Collector.CacheTTL,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return nil, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
	}

	return &config, nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "epicast")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Collector
	viper.SetDefault("collector.enabled", true)
	viper.SetDefault("collector.source_url", "https://coronadatascraper.com/timeseries-byLocation.json")
	viper.SetDefault("collector.fetch_interval", "1h")
	viper.SetDefault("collector.fetch_timeout", "30s")
	viper.SetDefault("collector.max_errors", 5)
	viper.SetDefault("collector.cache_ttl", "2h")

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.service_name", "epicast-api")
	viper.SetDefault("telemetry.otlp_endpoint", "localhost:4318")

	// Epidemiology. Estimates gathered from positively peer-reviewed
	// parameter ranges for the 2019 novel coronavirus.
	rates := models.DefaultDiseaseRates()
	setRateDefaults("epidemiology.transmission", rates.Transmission)
	setRateDefaults("epidemiology.daily_contacts", rates.DailyContacts)
	setRateDefaults("epidemiology.removal", rates.Removal)
	setRateDefaults("epidemiology.ascertainment", rates.Ascertainment)
	setRateDefaults("epidemiology.mortality", rates.Mortality)
	setRateDefaults("epidemiology.hospitalization", rates.Hospitalization)
	setRateDefaults("epidemiology.ventilation", rates.Ventilation)
}

func setRateDefaults(prefix string, p models.RateParameter) {
	viper.SetDefault(prefix+".min", p.Min)
	viper.SetDefault(prefix+".default", p.Default)
	viper.SetDefault(prefix+".max", p.Max)
}
