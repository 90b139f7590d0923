package config

import (
	"time" // Durations for TTLs

	"github.com/joho/godotenv" // For loading .env files
	"github.com/spf13/viper"   // Environment binding with defaults
)

// Database holds the connection settings for the ledger store
type Database struct {
	Driver       string // mysql, postgres or sqlite
	User         string // Database user
	Password     string // Database password
	Host         string // Database host
	Port         string // Database port
	Name         string // Database name
	Path         string // SQLite file or DSN (sqlite only)
	MaxOpenConns int    // Connection pool size, 0 means driver default
	LogSQL       bool   // Log every SQL statement
}

// Config holds the application configuration
type Config struct {
	AppPort   string        // Application port
	DB        Database      // Database settings
	JWTSecret string        // JWT secret key
	JWTTTL    time.Duration // Access token lifetime
	RedisAddr string        // Redis server address
	RedisPass string        // Redis password
	RedisDB   int           // Redis database number
	CacheNS   string        // Redis key namespace for the query cache
	CacheTTL  time.Duration // TTL of every cached read
	LogLevel  string        // logrus level name
	LogFormat string        // text or json
	IsProd    bool          // Is production environment
}

// defaults mirrors the values the service runs with when nothing is set
var defaults = map[string]any{
	"APP_PORT":          "8080",
	"DB_DRIVER":         "mysql",
	"DB_HOST":           "127.0.0.1",
	"DB_PORT":           "3306",
	"DB_NAME":           "moneybase",
	"DB_PATH":           "moneybase.db",
	"DB_MAX_OPEN_CONNS": 0,
	"DB_LOG":            false,
	"JWT_TTL":           "24h",
	"REDIS_ADDR":        "127.0.0.1:6379",
	"REDIS_DB":          0,
	"CACHE_NAMESPACE":   "moneybase",
	"CACHE_TTL":         "120s",
	"LOG_LEVEL":         "info",
	"LOG_FORMAT":        "text",
	"IS_PROD":           false,
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val) // Register default so AutomaticEnv can see the key
	}
	v.AutomaticEnv() // Environment always wins over defaults
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppPort: v.GetString("APP_PORT"), // Application port
		DB: Database{
			Driver:       v.GetString("DB_DRIVER"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			Name:         v.GetString("DB_NAME"),
			Path:         v.GetString("DB_PATH"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			LogSQL:       v.GetBool("DB_LOG"),
		},
		JWTSecret: v.GetString("JWT_SECRET"),      // JWT secret key
		JWTTTL:    v.GetDuration("JWT_TTL"),       // Token lifetime
		RedisAddr: v.GetString("REDIS_ADDR"),      // Redis server address
		RedisPass: v.GetString("REDIS_PASS"),      // Redis password
		RedisDB:   v.GetInt("REDIS_DB"),           // Redis database number
		CacheNS:   v.GetString("CACHE_NAMESPACE"), // Cache namespace
		CacheTTL:  v.GetDuration("CACHE_TTL"),     // Cached read TTL
		LogLevel:  v.GetString("LOG_LEVEL"),       // Log level
		LogFormat: v.GetString("LOG_FORMAT"),      // Log format
		IsProd:    v.GetBool("IS_PROD"),           // Is production environment
	}
}
