package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, gateway secret), security settings
// - default: Values common across all environments (timezone, timeout, retry counts), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server      ServerConfig
	DB          DBConfig
	CORS        CORSConfig
	Log         LogConfig
	JWT         JWTConfig
	Identity    IdentityConfig
	Gateway     GatewayConfig
	Fulfillment FulfillmentConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
}

type ServerConfig struct {
	Port          string `envconfig:"PORT" required:"true"`
	WebhookSecret string `envconfig:"WEBHOOK_SECRET" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Seoul"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,Retry-After"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Seoul"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"32400"` // 9*60*60
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

type IdentityConfig struct {
	AccessTokenCookie string `envconfig:"ACCESS_TOKEN_COOKIE" default:"access_token"`
	AuthSessionCookie string `envconfig:"AUTH_SESSION_COOKIE" default:"authjs.session-token"`
}

type GatewayConfig struct {
	BaseURL    string        `envconfig:"GATEWAY_BASE_URL" required:"true"`
	APISecret  string        `envconfig:"GATEWAY_API_SECRET" required:"true"`
	AuthScheme string        `envconfig:"GATEWAY_AUTH_SCHEME" default:"PortOne"`
	Timeout    time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"5s"`
	MaxRetries uint64        `envconfig:"GATEWAY_MAX_RETRIES" default:"3"`
}

type FulfillmentConfig struct {
	BatchVolumeML  string        `envconfig:"BATCH_VOLUME_ML" default:"50"`
	ShippingFee    int64         `envconfig:"SHIPPING_FEE" default:"3000"`
	DurableTimeout time.Duration `envconfig:"DURABLE_WRITE_TIMEOUT" default:"2m"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	PoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"10"`
}

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"fulfillment-notifications"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

// BatchVolume parses BATCH_VOLUME_ML as an exact decimal.
func (c *FulfillmentConfig) BatchVolume() (decimal.Decimal, error) {
	v, err := decimal.NewFromString(c.BatchVolumeML)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid BATCH_VOLUME_ML %q: %w", c.BatchVolumeML, err)
	}
	if !v.IsPositive() {
		return decimal.Zero, fmt.Errorf("BATCH_VOLUME_ML must be positive, got %s", v)
	}
	return v, nil
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:          "8889", // Test port
			WebhookSecret: "test-webhook-secret",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Seoul",
			MaxConns: 10,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Seoul",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 32400,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		Identity: IdentityConfig{
			AccessTokenCookie: "access_token",
			AuthSessionCookie: "authjs.session-token",
		},
		Gateway: GatewayConfig{
			BaseURL:    "http://127.0.0.1:1",
			APISecret:  "test-gateway-secret",
			AuthScheme: "PortOne",
			Timeout:    time.Second,
			MaxRetries: 1,
		},
		Fulfillment: FulfillmentConfig{
			BatchVolumeML:  "50",
			ShippingFee:    3000,
			DurableTimeout: 5 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic: "fulfillment-notifications-test",
		},
	}
}
