package config

import (
	"strings"
	"time"

	"go-inventory-tracker/pkg/database"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	DB database.Config

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	CORSAllowedOrigins string
	LoginRateLimit     int

	AdminEmail    string
	AdminPassword string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "3000")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_DRIVER", database.DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "inventory")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("JWT_SECRET", "your-super-secret-key-change-in-production")
	v.SetDefault("JWT_TTL", "24h")

	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "60s")

	v.SetDefault("KAFKA_TOPIC", "inventory.stock")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOGIN_RATE_LIMIT", 10)

	v.SetDefault("ADMIN_EMAIL", "admin@example.com")
	v.SetDefault("ADMIN_PASSWORD", "Admin123")
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on system env")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// FromViper maps an already populated viper instance onto Config.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		AppEnv:   v.GetString("APP_ENV"),
		Port:     v.GetString("PORT"),
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),

		DB: database.Config{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
		},

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		CacheTTL:      v.GetDuration("CACHE_TTL"),

		KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:   v.GetString("KAFKA_TOPIC"),

		CORSAllowedOrigins: v.GetString("CORS_ALLOWED_ORIGINS"),
		LoginRateLimit:     v.GetInt("LOGIN_RATE_LIMIT"),

		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
