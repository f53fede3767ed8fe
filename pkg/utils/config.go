package utils

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	AMQP      AMQPConfig
	Payment   PaymentConfig
	Hold      HoldConfig
	Reconcile ReconcileConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AMQPConfig struct {
	URL string
}

type PaymentConfig struct {
	Provider   string // "stripe" or "stub"
	APIKey     string
	APIBaseURL string
	WebhookKey string
}

type HoldConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type ReconcileConfig struct {
	MaxAttempts int
	Interval    time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PAYMENT_PROVIDER", "stub")
	viper.SetDefault("PAYMENT_API_BASE_URL", "https://api.stripe.com/v1")
	viper.SetDefault("HOLD_TTL_MINUTES", 2)
	viper.SetDefault("HOLD_SWEEP_SECONDS", 15)
	viper.SetDefault("RECONCILE_MAX_ATTEMPTS", 5)
	viper.SetDefault("RECONCILE_INTERVAL_SECONDS", 2)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		AMQP: AMQPConfig{
			URL: viper.GetString("RABBITMQ_URL"),
		},
		Payment: PaymentConfig{
			Provider:   viper.GetString("PAYMENT_PROVIDER"),
			APIKey:     viper.GetString("PAYMENT_API_KEY"),
			APIBaseURL: viper.GetString("PAYMENT_API_BASE_URL"),
			WebhookKey: viper.GetString("PAYMENT_WEBHOOK_KEY"),
		},
		Hold: HoldConfig{
			TTL:           time.Duration(viper.GetInt("HOLD_TTL_MINUTES")) * time.Minute,
			SweepInterval: time.Duration(viper.GetInt("HOLD_SWEEP_SECONDS")) * time.Second,
		},
		Reconcile: ReconcileConfig{
			MaxAttempts: viper.GetInt("RECONCILE_MAX_ATTEMPTS"),
			Interval:    time.Duration(viper.GetInt("RECONCILE_INTERVAL_SECONDS")) * time.Second,
		},
	}

	return config, nil
}
