package config

import (
	"fmt"     // DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For list parsing
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the application configuration
type Config struct {
	AppPort        string        // Application port
	IsProd         bool          // Is production environment
	DBDriver       string        // mysql, postgres or memory
	DBUser         string        // Database user
	DBPassword     string        // Database password
	DBHost         string        // Database host
	DBPort         string        // Database port
	DBName         string        // Database name
	DBSSLMode      string        // Postgres sslmode
	JWTSecret      string        // JWT secret key
	JWTTTL         time.Duration // Token lifetime for issued tokens
	RedisAddr      string        // Redis server address, empty disables caching
	RedisPass      string        // Redis password
	RedisDB        int           // Redis database number
	CacheTTL       time.Duration // Lifetime of cached responses
	AMQPURL        string        // RabbitMQ URL, empty logs notifications instead
	AMQPExchange   string        // Exchange account events are published to
	AllowedOrigins []string      // CORS origins
	TrustedProxies []string      // Proxies gin trusts for client IPs
	LogLevel       string        // logrus level
	LogFormat      string        // text or json
	LogOutput      string        // stdout, file or both
	LogFile        string        // Log file path
	LogMaxSizeMB   int           // Rotate after this many megabytes
	LogMaxBackups  int           // Rotated files to keep
	LogMaxAgeDays  int           // Days to keep rotated files
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:        getEnv("APP_PORT", "8080"),                        // Application port
		IsProd:         os.Getenv("IS_PROD") == "true",                    // Is production environment
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)), // Database driver
		DBUser:         os.Getenv("DB_USER"),                              // Database user
		DBPassword:     os.Getenv("DB_PASSWORD"),                          // Database password
		DBHost:         getEnv("DB_HOST", "localhost"),                    // Database host
		DBPort:         os.Getenv("DB_PORT"),                              // Database port
		DBName:         os.Getenv("DB_NAME"),                              // Database name
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),                   // Postgres sslmode
		JWTSecret:      os.Getenv("JWT_SECRET"),                           // JWT secret key
		JWTTTL:         getDuration("JWT_TTL", 24*time.Hour),              // Token lifetime
		RedisAddr:      os.Getenv("REDIS_ADDR"),                           // Redis server address
		RedisPass:      os.Getenv("REDIS_PASS"),                           // Redis password
		RedisDB:        getInt("REDIS_DB", 0),                             // Redis database number
		CacheTTL:       getDuration("CACHE_TTL", 60*time.Second),          // Cache lifetime
		AMQPURL:        os.Getenv("AMQP_URL"),                             // RabbitMQ URL
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "battlezone.events"),      // Event exchange
		AllowedOrigins: getList("ALLOWED_ORIGINS", []string{"*"}),         // CORS origins
		TrustedProxies: getList("TRUSTED_PROXIES", []string{"127.0.0.1"}), // Trusted proxies
		LogLevel:       getEnv("LOG_LEVEL", "info"),                       // Log level
		LogFormat:      getEnv("LOG_FORMAT", "text"),                      // Log format
		LogOutput:      getEnv("LOG_OUTPUT", "stdout"),                    // Log output
		LogFile:        getEnv("LOG_FILE", "logs/battlezone.log"),         // Log file
		LogMaxSizeMB:   getInt("LOG_MAX_SIZE_MB", 100),                    // Log rotation size
		LogMaxBackups:  getInt("LOG_MAX_BACKUPS", 5),                      // Rotated files kept
		LogMaxAgeDays:  getInt("LOG_MAX_AGE_DAYS", 30),                    // Rotated file age
	}
}

// DSN builds the connection string for the configured SQL driver
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, port, c.DBSSLMode)
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true&loc=UTC"
	}
}

// Validate reports settings the server cannot start without
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
