package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr   string
	KafkaBroker string

	JWTSecret         string
	JWTExpiryDuration time.Duration

	RBACModelPath string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxLetterSizeBytes int64
}

// Load reads configuration from environment variables, with a .env file as
// optional local override source.
func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.SetDefault("PORT", "3000")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_NAME", "payledger")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("KAFKA_BROKER", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_EXPIRY_DURATION", "8h")
	viper.SetDefault("RBAC_MODEL_PATH", "internal/rbac/infra/model.conf")
	viper.SetDefault("READ_TIMEOUT", "5s")
	viper.SetDefault("WRITE_TIMEOUT", "10s")
	viper.SetDefault("IDLE_TIMEOUT", "60s")
	viper.SetDefault("MAX_LETTER_SIZE_BYTES", int64(5*1024*1024))

	viper.AutomaticEnv()

	cfg := &Config{
		Port:               viper.GetString("PORT"),
		DBHost:             viper.GetString("DB_HOST"),
		DBUser:             viper.GetString("DB_USER"),
		DBPassword:         viper.GetString("DB_PASSWORD"),
		DBName:             viper.GetString("DB_NAME"),
		DBPort:             viper.GetString("DB_PORT"),
		DBSSLMode:          viper.GetString("DB_SSLMODE"),
		RedisAddr:          viper.GetString("REDIS_ADDR"),
		KafkaBroker:        viper.GetString("KAFKA_BROKER"),
		JWTSecret:          viper.GetString("JWT_SECRET"),
		JWTExpiryDuration:  viper.GetDuration("JWT_EXPIRY_DURATION"),
		RBACModelPath:      viper.GetString("RBAC_MODEL_PATH"),
		ReadTimeout:        viper.GetDuration("READ_TIMEOUT"),
		WriteTimeout:       viper.GetDuration("WRITE_TIMEOUT"),
		IdleTimeout:        viper.GetDuration("IDLE_TIMEOUT"),
		MaxLetterSizeBytes: viper.GetInt64("MAX_LETTER_SIZE_BYTES"),
	}

	return cfg, nil
}
