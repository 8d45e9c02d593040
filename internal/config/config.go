// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/plannink/forecast-api/internal/domain"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Archive  ArchiveConfig
	Planning PlanningConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled              bool
	RedisURL             string
	RedisHost            string
	RedisPort            string
	RedisPassword        string
	RedisDB              int
	ProjectionTTLSeconds int
}

// ArchiveConfig points at the S3-compatible bucket where uploaded
// spreadsheets are archived. Archiving is skipped when Endpoint is empty.
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

// PlanningConfig holds the default calculation parameters applied to
// products that carry no per-product configuration.
type PlanningConfig struct {
	SafetyStockDays      int
	ReorderPointDays     int
	StockAlarmDays       int
	LeadTimeDays         int
	MaxReplenishmentDays int
	WorkingDaysPerMonth  int
	HorizonMonths        int
	ModelVersion         string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "plannink")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_PROJECTION_TTL_SECONDS", 300)
		viper.SetDefault("ARCHIVE_ENDPOINT", "")
		viper.SetDefault("ARCHIVE_BUCKET", "")
		viper.SetDefault("ARCHIVE_REGION", "")
		viper.SetDefault("ARCHIVE_USE_SSL", true)
		viper.SetDefault("ARCHIVE_PREFIX", "uploads")
		viper.SetDefault("PLANNING_SAFETY_STOCK_DAYS", 15)
		viper.SetDefault("PLANNING_REORDER_POINT_DAYS", 44)
		viper.SetDefault("PLANNING_STOCK_ALARM_DAYS", 7)
		viper.SetDefault("PLANNING_LEAD_TIME_DAYS", 15)
		viper.SetDefault("PLANNING_MAX_REPLENISHMENT_DAYS", 30)
		viper.SetDefault("PLANNING_WORKING_DAYS_PER_MONTH", 22)
		viper.SetDefault("PLANNING_HORIZON_MONTHS", 6)
		viper.SetDefault("PLANNING_MODEL_VERSION", "v2")

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:              viper.GetBool("CACHE_ENABLED"),
				RedisURL:             viper.GetString("REDIS_URL"),
				RedisHost:            viper.GetString("REDIS_HOST"),
				RedisPort:            viper.GetString("REDIS_PORT"),
				RedisPassword:        viper.GetString("REDIS_PASSWORD"),
				RedisDB:              viper.GetInt("REDIS_DB"),
				ProjectionTTLSeconds: viper.GetInt("CACHE_PROJECTION_TTL_SECONDS"),
			},
			Archive: ArchiveConfig{
				Endpoint:  viper.GetString("ARCHIVE_ENDPOINT"),
				AccessKey: viper.GetString("ARCHIVE_ACCESS_KEY"),
				SecretKey: viper.GetString("ARCHIVE_SECRET_KEY"),
				Bucket:    viper.GetString("ARCHIVE_BUCKET"),
				Region:    viper.GetString("ARCHIVE_REGION"),
				UseSSL:    viper.GetBool("ARCHIVE_USE_SSL"),
				Prefix:    viper.GetString("ARCHIVE_PREFIX"),
			},
			Planning: PlanningConfig{
				SafetyStockDays:      viper.GetInt("PLANNING_SAFETY_STOCK_DAYS"),
				ReorderPointDays:     viper.GetInt("PLANNING_REORDER_POINT_DAYS"),
				StockAlarmDays:       viper.GetInt("PLANNING_STOCK_ALARM_DAYS"),
				LeadTimeDays:         viper.GetInt("PLANNING_LEAD_TIME_DAYS"),
				MaxReplenishmentDays: viper.GetInt("PLANNING_MAX_REPLENISHMENT_DAYS"),
				WorkingDaysPerMonth:  viper.GetInt("PLANNING_WORKING_DAYS_PER_MONTH"),
				HorizonMonths:        viper.GetInt("PLANNING_HORIZON_MONTHS"),
				ModelVersion:         viper.GetString("PLANNING_MODEL_VERSION"),
			},
		}
	})

	return instance
}

// DomainPlanning converts the configured defaults into the calculation
// parameter set used by the projection engine.
func (c *Config) DomainPlanning() domain.PlanningConfig {
	return domain.PlanningConfig{
		SafetyStockDays:      c.Planning.SafetyStockDays,
		ReorderPointDays:     c.Planning.ReorderPointDays,
		StockAlarmDays:       c.Planning.StockAlarmDays,
		LeadTimeDays:         c.Planning.LeadTimeDays,
		MaxReplenishmentDays: c.Planning.MaxReplenishmentDays,
		WorkingDaysPerMonth:  c.Planning.WorkingDaysPerMonth,
		HorizonMonths:        c.Planning.HorizonMonths,
		ModelVersion:         c.Planning.ModelVersion,
	}
}
