package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"NetIntelAPI/internal/logger"

	"github.com/joho/godotenv"
)

const defaultSecretKey = "dev-secret-key-change-in-production"

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Embedding EmbeddingConfig
	Guidance  GuidanceConfig
	MQTT      MQTTConfig
	Security  SecurityConfig
	Monitor   MonitorConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	Environment     string
	SecretKey       string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxHeaderBytes  int
}

// DatabaseConfig is optional: an empty URL disables the durable store.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

type RedisConfig struct {
	URL         string
	DialTimeout time.Duration
}

type EmbeddingConfig struct {
	URL           string
	APIKey        string
	Model         string
	Dimensions    int
	CacheSize     int
	Timeout       time.Duration
	MinSimilarity float64
	// Sent as input_type on every embeddings call; empty omits it.
	InputType     string
}

func (e EmbeddingConfig) Enabled() bool { return e.URL != "" && e.APIKey != "" }

type GuidanceConfig struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func (g GuidanceConfig) Enabled() bool { return g.URL != "" && g.APIKey != "" }

type MQTTConfig struct {
	Broker         string
	Port           int
	ClientID       string
	Username       string
	Password       string
	TrafficTopic   string
	AlertTopic     string
	QoS            byte
	RetainMessages bool
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	AutoReconnect  bool
}

func (m MQTTConfig) Enabled() bool { return m.Broker != "" }

func (m MQTTConfig) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", m.Broker, m.Port)
}

type SecurityConfig struct {
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	RateLimitPerMinute int
	EnableRateLimit    bool
	// X-Forwarded-For is only honoured on requests arriving from these IPs or CIDRs.
	TrustedProxies     []string
}

type MonitorConfig struct {
	BackgroundInterval time.Duration
	AlertStaleAfter    time.Duration
}

type LoggingConfig struct {
	Level     logger.Level
	Mode      logger.Mode
	FilePath  string
	UseColors bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server:    loadServerConfig(),
		Database:  loadDatabaseConfig(),
		Redis:     loadRedisConfig(),
		Embedding: loadEmbeddingConfig(),
		Guidance:  loadGuidanceConfig(),
		MQTT:      loadMQTTConfig(),
		Security:  loadSecurityConfig(),
		Monitor:   loadMonitorConfig(),
		Logging:   loadLoggingConfig(),
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		Port:            getEnvAsInt("PORT", 5000),
		Environment:     getEnv("ENVIRONMENT", "development"),
		SecretKey:       getEnv("SECRET_KEY", defaultSecretKey),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", "15s"),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", "15s"),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", "60s"),
		MaxHeaderBytes:  getEnvAsInt("MAX_HEADER_BYTES", 1048576),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:             getEnv("DATABASE_URL", ""),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", "5m"),
		ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", "5m"),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		URL:         getEnv("REDIS_URL", "redis://localhost:6379"),
		DialTimeout: getEnvAsDuration("REDIS_DIAL_TIMEOUT", "2s"),
	}
}

func loadEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		URL:           getEnv("COHERE_URL", ""),
		APIKey:        getEnv("COHERE_KEY", ""),
		Model:         getEnv("COHERE_MODEL_ID", "cohere-embed-multilingual"),
		Dimensions:    getEnvAsInt("EMBEDDING_DIMENSIONS", 1024),
		CacheSize:     getEnvAsInt("EMBEDDING_CACHE_SIZE", 256),
		Timeout:       getEnvAsDuration("EMBEDDING_TIMEOUT", "30s"),
		MinSimilarity: getEnvAsFloat("EMBEDDING_MIN_SIMILARITY", 0.7),
		InputType:     getEnv("EMBEDDING_INPUT_TYPE", "search_document"),
	}
}

func loadGuidanceConfig() GuidanceConfig {
	return GuidanceConfig{
		URL:     getEnv("INFERENCE_URL", ""),
		APIKey:  getEnv("INFERENCE_KEY", ""),
		Model:   getEnv("INFERENCE_MODEL_ID", "claude-3-5-sonnet"),
		Timeout: getEnvAsDuration("GUIDANCE_TIMEOUT", "30s"),
	}
}

func loadMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Broker:         getEnv("MQTT_BROKER", ""),
		Port:           getEnvAsInt("MQTT_PORT", 1883),
		ClientID:       getEnv("MQTT_CLIENT_ID", "netintel-backend"),
		Username:       getEnv("MQTT_USERNAME", ""),
		Password:       getEnv("MQTT_PASSWORD", ""),
		TrafficTopic:   getEnv("MQTT_TRAFFIC_TOPIC", "netintel/traffic"),
		AlertTopic:     getEnv("MQTT_ALERT_TOPIC", "netintel/alerts"),
		QoS:            byte(getEnvAsInt("MQTT_QOS", 1)),
		RetainMessages: getEnvAsBool("MQTT_RETAIN", false),
		KeepAlive:      getEnvAsDuration("MQTT_KEEP_ALIVE", "60s"),
		ConnectTimeout: getEnvAsDuration("MQTT_CONNECT_TIMEOUT", "10s"),
		AutoReconnect:  getEnvAsBool("MQTT_AUTO_RECONNECT", true),
	}
}

func loadSecurityConfig() SecurityConfig {
	origins := getEnv("CORS_ALLOWED_ORIGINS", "*")
	methods := getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")

	return SecurityConfig{
		CORSAllowedOrigins: splitList(origins),
		CORSAllowedMethods: splitList(methods),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		EnableRateLimit:    getEnvAsBool("ENABLE_RATE_LIMIT", true),
		TrustedProxies:     splitList(getEnv("TRUSTED_PROXIES", "")),
	}
}

func loadMonitorConfig() MonitorConfig {
	return MonitorConfig{
		BackgroundInterval: getEnvAsDuration("BACKGROUND_INTERVAL", "60s"),
		AlertStaleAfter:    getEnvAsDuration("ALERT_STALE_AFTER", "24h"),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:     logger.ParseLevel(getEnv("LOG_LEVEL", "info")),
		Mode:      logger.ParseMode(getEnv("LOG_MODE", "normal")),
		FilePath:  getEnv("LOG_FILE_PATH", ""),
		UseColors: getEnvAsBool("LOG_USE_COLORS", true),
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

func (c *Config) Validate() error {
	var errors []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}

	if c.IsProduction() && (c.Server.SecretKey == "" || c.Server.SecretKey == defaultSecretKey) {
		errors = append(errors, "SECRET_KEY must be set in production")
	}

	if c.Redis.URL == "" {
		errors = append(errors, "REDIS_URL cannot be empty")
	}

	if c.Embedding.Dimensions < 1 {
		errors = append(errors, "EMBEDDING_DIMENSIONS must be positive")
	}

	if c.Embedding.CacheSize < 0 {
		errors = append(errors, "EMBEDDING_CACHE_SIZE cannot be negative")
	}

	if c.Embedding.MinSimilarity < -1 || c.Embedding.MinSimilarity > 1 {
		errors = append(errors, "EMBEDDING_MIN_SIMILARITY must be between -1 and 1")
	}

	if c.MQTT.Enabled() && (c.MQTT.Port < 1 || c.MQTT.Port > 65535) {
		errors = append(errors, "MQTT_PORT must be between 1 and 65535")
	}

	if c.Monitor.BackgroundInterval <= 0 {
		errors = append(errors, "BACKGROUND_INTERVAL must be positive")
	}

	if c.Security.EnableRateLimit && c.Security.RateLimitPerMinute < 1 {
		errors = append(errors, "RATE_LIMIT_PER_MINUTE must be positive when rate limiting is enabled")
	}

	for _, proxy := range c.Security.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				errors = append(errors, fmt.Sprintf("TRUSTED_PROXIES entry %q is not an IP or CIDR", proxy))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func (c *Config) Print() {
	fmt.Println("╔══════════════════════════════════════════════════════════╗")
	fmt.Println("║        Network Intelligence API - Configuration          ║")
	fmt.Println("╚══════════════════════════════════════════════════════════╝")
	fmt.Printf("Environment:     %s\n", c.Server.Environment)
	fmt.Printf("Server:          %s:%d\n", c.Server.Host, c.Server.Port)
	fmt.Printf("Database:        %s\n", enabledLabel(c.Database.Enabled()))
	fmt.Printf("Redis:           %s\n", redactURL(c.Redis.URL))
	fmt.Printf("Embeddings:      %s (%s, %d dims)\n", enabledLabel(c.Embedding.Enabled()), c.Embedding.Model, c.Embedding.Dimensions)
	fmt.Printf("Guidance:        %s (%s)\n", enabledLabel(c.Guidance.Enabled()), c.Guidance.Model)
	if c.MQTT.Enabled() {
		fmt.Printf("MQTT Broker:     %s\n", c.MQTT.BrokerURL())
	} else {
		fmt.Printf("MQTT Broker:     disabled\n")
	}
	fmt.Println("──────────────────────────────────────────────────────────")
}

func enabledLabel(ok bool) string {
	if ok {
		return "enabled"
	}
	return "disabled"
}

// redactURL hides credentials embedded in a connection URL.
func redactURL(raw string) string {
	at := strings.LastIndex(raw, "@")
	scheme := strings.Index(raw, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return raw
	}
	return raw[:scheme+3] + "***" + raw[at:]
}
