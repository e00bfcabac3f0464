package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all the configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	OTP      OTPConfig
	SMTP     SMTPConfig
	Google   GoogleConfig
	Storage  StorageConfig
	Cache    CacheConfig
}

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds the Redis configuration.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// JWTConfig holds the token signing secret and lifetimes.
type JWTConfig struct {
	Secret            string `mapstructure:"secret"`
	AccessTTLMinutes  int    `mapstructure:"accessttlminutes"`
	RefreshTTLMinutes int    `mapstructure:"refreshttlminutes"`
}

// OTPConfig controls one-time passcode issuance.
type OTPConfig struct {
	TTLMinutes int `mapstructure:"ttlminutes"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"clientid"`
	ClientSecret string `mapstructure:"clientsecret"`
	RedirectURL  string `mapstructure:"redirecturl"`
}

// StorageConfig holds the local blob storage configuration.
type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

// CacheConfig controls cache-aside TTLs.
type CacheConfig struct {
	CategoryTTLSeconds int `mapstructure:"categoryttlseconds"`
}

// Load creates a new Config object from a .env file and environment variables.
func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Load .env into the process environment so BindEnv sees file-based values too.
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ godotenv could not load .env: %v", err)
	}

	// Bind structured keys to environment variables.
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("database.url", "DATABASE_URL")
	_ = viper.BindEnv("redis.url", "REDIS_URL")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.accessttlminutes", "JWT_ACCESS_TTL_MINUTES")
	_ = viper.BindEnv("jwt.refreshttlminutes", "JWT_REFRESH_TTL_MINUTES")
	_ = viper.BindEnv("otp.ttlminutes", "OTP_TTL_MINUTES")
	_ = viper.BindEnv("smtp.host", "SMTP_HOST")
	_ = viper.BindEnv("smtp.port", "SMTP_PORT")
	_ = viper.BindEnv("smtp.username", "SMTP_USERNAME")
	_ = viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	_ = viper.BindEnv("smtp.from", "SMTP_FROM")
	_ = viper.BindEnv("google.clientid", "GOOGLE_CLIENT_ID")
	_ = viper.BindEnv("google.clientsecret", "GOOGLE_CLIENT_SECRET")
	_ = viper.BindEnv("google.redirecturl", "GOOGLE_REDIRECT_URL")
	_ = viper.BindEnv("storage.dir", "STORAGE_DIR")
	_ = viper.BindEnv("cache.categoryttlseconds", "CACHE_CATEGORY_TTL_SECONDS")

	if err := viper.ReadInConfig(); err != nil {
		// Missing .env is fine; everything can come from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("❌ Error reading config file: %s", err)
		} else {
			log.Printf("⚠️ .env file not found, relying on environment variables")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("❌ Unable to decode config into struct: %v", err)
	}

	// --- Set default values ---
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.JWT.AccessTTLMinutes <= 0 {
		cfg.JWT.AccessTTLMinutes = 15
	}
	if cfg.JWT.RefreshTTLMinutes <= 0 {
		cfg.JWT.RefreshTTLMinutes = 7 * 24 * 60
	}
	if cfg.OTP.TTLMinutes <= 0 {
		cfg.OTP.TTLMinutes = 2
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "static/profile_images"
	}
	if cfg.Cache.CategoryTTLSeconds <= 0 {
		cfg.Cache.CategoryTTLSeconds = 300
	}

	if cfg.JWT.Secret == "" {
		log.Fatal("❌ JWT_SECRET environment variable is not set")
	}

	log.Println("✅ Configuration loaded successfully")
	return &cfg
}
