package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
	defaultRequestTimeout     = 15 * time.Second
	defaultCartTTL            = 7 * 24 * time.Hour
	defaultTokenTTL           = 7 * 24 * time.Hour
	defaultCurrency           = "INR"
	defaultLockTimeout        = 3 * time.Second
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int           `json:"port" yaml:"port"`
		MaxRequestBodySize string        `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		RequestTimeout     time.Duration `json:"requestTimeout" yaml:"requestTimeout"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Migrations *MigrationsConfig `json:"migrations" yaml:"migrations"`

	// Database tunes how the storefront uses the Postgres pool.
	Database *DatabaseConfig `json:"database" yaml:"database"`

	Mongo *MongoConfig `json:"mongo" yaml:"mongo"`

	// Redis backs the product read cache; an empty address disables it.
	Redis *RedisConfig `json:"redis" yaml:"redis"`

	SecretKey struct {
		Access string `json:"access" yaml:"access"`
	} `json:"secretKey" yaml:"secretKey"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	PasswordStrength *PasswordStrengthConfig `json:"passwordStrength" yaml:"passwordStrength"`

	Payment *PaymentConfig `json:"payment" yaml:"payment"`

	TextGen *TextGenConfig `json:"textGen" yaml:"textGen"`

	// Events configures the outbox relay and the worker that consumes it
	Events *EventsConfig `json:"events" yaml:"events"`

	// QRCode configuration for order receipt QR codes
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`

	// Admin is the account seeded by cmd/createadmin
	Admin *AdminConfig `json:"admin" yaml:"admin"`
}

type MigrationsConfig struct {
	AutoMigrate bool `json:"autoMigrate" yaml:"autoMigrate"`
}

// DatabaseConfig bounds lock waits inside transactions and controls the pool
// wait monitor.
type DatabaseConfig struct {
	// LockTimeout caps how long a transaction waits on a row lock, such as
	// the checkout row during fulfilment. Zero disables the cap.
	LockTimeout         time.Duration `json:"lockTimeout" yaml:"lockTimeout"`
	PoolMonitorInterval time.Duration `json:"poolMonitorInterval" yaml:"poolMonitorInterval"`
	PoolWaitWarn        time.Duration `json:"poolWaitWarn" yaml:"poolWaitWarn"`
}

type MongoConfig struct {
	URI            string        `json:"uri" yaml:"uri"`
	Database       string        `json:"database" yaml:"database"`
	CartCollection string        `json:"cartCollection" yaml:"cartCollection"`
	CartTTL        time.Duration `json:"cartTTL" yaml:"cartTTL"`
}

type RedisConfig struct {
	Addr       string        `json:"addr" yaml:"addr"`
	Password   string        `json:"password" yaml:"password"`
	DB         int           `json:"db" yaml:"db"`
	ProductTTL time.Duration `json:"productTTL" yaml:"productTTL"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost     int                  `json:"bcryptCost" yaml:"bcryptCost"`
	TokenTTL       time.Duration        `json:"tokenTTL" yaml:"tokenTTL"`
	LoginRateLimit LoginRateLimitConfig `json:"loginRateLimit" yaml:"loginRateLimit"`
}

// LoginRateLimitConfig bounds login attempts per client IP.
type LoginRateLimitConfig struct {
	Requests int           `json:"requests" yaml:"requests"`
	Window   time.Duration `json:"window" yaml:"window"`
}

// PasswordStrengthConfig defines password strength requirements
type PasswordStrengthConfig struct {
	MinLength        int  `json:"minLength" yaml:"minLength"`
	RequireUppercase bool `json:"requireUppercase" yaml:"requireUppercase"`
	RequireLowercase bool `json:"requireLowercase" yaml:"requireLowercase"`
	RequireNumbers   bool `json:"requireNumbers" yaml:"requireNumbers"`
	RequireSpecial   bool `json:"requireSpecial" yaml:"requireSpecial"`
	MaxLength        int  `json:"maxLength" yaml:"maxLength"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// PaymentConfig selects and configures the payment gateways.
type PaymentConfig struct {
	// DefaultProvider is used when a checkout request does not name one: "razorpay" or "cashfree"
	DefaultProvider string          `json:"defaultProvider" yaml:"defaultProvider"`
	Currency        string          `json:"currency" yaml:"currency"`
	Razorpay        *RazorpayConfig `json:"razorpay" yaml:"razorpay"`
	Cashfree        *CashfreeConfig `json:"cashfree" yaml:"cashfree"`
}

type RazorpayConfig struct {
	KeyID         string `json:"keyId" yaml:"keyId"`
	KeySecret     string `json:"keySecret" yaml:"keySecret"`
	WebhookSecret string `json:"webhookSecret" yaml:"webhookSecret"`
}

type CashfreeConfig struct {
	AppID      string        `json:"appId" yaml:"appId"`
	SecretKey  string        `json:"secretKey" yaml:"secretKey"`
	BaseURL    string        `json:"baseUrl" yaml:"baseUrl"`
	APIVersion string        `json:"apiVersion" yaml:"apiVersion"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
}

// TextGenConfig configures the chat completion backend used for generated text.
type TextGenConfig struct {
	APIKey    string        `json:"apiKey" yaml:"apiKey"`
	BaseURL   string        `json:"baseUrl" yaml:"baseUrl"`
	Model     string        `json:"model" yaml:"model"`
	MaxTokens int           `json:"maxTokens" yaml:"maxTokens"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
	Breaker   BreakerConfig `json:"breaker" yaml:"breaker"`
}

// BreakerConfig maps onto gobreaker settings.
type BreakerConfig struct {
	MaxRequests         uint32        `json:"maxRequests" yaml:"maxRequests"`
	Interval            time.Duration `json:"interval" yaml:"interval"`
	Timeout             time.Duration `json:"timeout" yaml:"timeout"`
	ConsecutiveFailures uint32        `json:"consecutiveFailures" yaml:"consecutiveFailures"`
}

// EventsConfig defines event publishing configuration
type EventsConfig struct {
	// Provider type: "" (disabled), "local", "google" or "kafka"
	Provider string `json:"provider" yaml:"provider"`

	// Local HTTP endpoint of the worker push handler (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`

	// Google Cloud project and topic (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`
	TopicID   string `json:"topicId" yaml:"topicId"`

	// Kafka brokers, topic and consumer group (for kafka provider)
	KafkaBrokers []string `json:"kafkaBrokers" yaml:"kafkaBrokers"`
	KafkaTopic   string   `json:"kafkaTopic" yaml:"kafkaTopic"`
	KafkaGroupID string   `json:"kafkaGroupId" yaml:"kafkaGroupId"`

	// Relay polling
	PollInterval time.Duration `json:"pollInterval" yaml:"pollInterval"`
	BatchSize    int           `json:"batchSize" yaml:"batchSize"`

	// WorkerPort is the port the worker push server listens on
	WorkerPort int `json:"workerPort" yaml:"workerPort"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

type AdminConfig struct {
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password" yaml:"password"`
	Name     string `json:"name" yaml:"name"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	// Build replicas from environment variables (POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, etc.)
	cfg.Postgres.Replicas = buildReplicasFromEnv()

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Postgres == nil {
		cfg.Postgres = &postgres.DBConn{}
	}
	if cfg.Database == nil {
		cfg.Database = &DatabaseConfig{LockTimeout: defaultLockTimeout}
	}
	if cfg.Database.PoolMonitorInterval <= 0 {
		cfg.Database.PoolMonitorInterval = 5 * time.Second
	}
	if cfg.Database.PoolWaitWarn <= 0 {
		cfg.Database.PoolWaitWarn = 50 * time.Millisecond
	}
	if cfg.Mongo == nil {
		cfg.Mongo = &MongoConfig{}
	}
	if cfg.Mongo.CartTTL <= 0 {
		cfg.Mongo.CartTTL = defaultCartTTL
	}
	if cfg.Mongo.CartCollection == "" {
		cfg.Mongo.CartCollection = "carts"
	}
	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = defaultTokenTTL
	}
	if cfg.Auth.LoginRateLimit.Requests <= 0 {
		cfg.Auth.LoginRateLimit.Requests = 5
	}
	if cfg.Auth.LoginRateLimit.Window <= 0 {
		cfg.Auth.LoginRateLimit.Window = 15 * time.Minute
	}
	if cfg.Payment == nil {
		cfg.Payment = &PaymentConfig{}
	}
	if cfg.Payment.Currency == "" {
		cfg.Payment.Currency = defaultCurrency
	}
	if cfg.Events == nil {
		cfg.Events = &EventsConfig{}
	}
	if cfg.Events.PollInterval <= 0 {
		cfg.Events.PollInterval = 2 * time.Second
	}
	if cfg.Events.BatchSize <= 0 {
		cfg.Events.BatchSize = 100
	}
	if cfg.Events.KafkaTopic == "" {
		cfg.Events.KafkaTopic = "storefront-events"
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: POSTGRES_REPLICAS_{index}_{field}
// Example: POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, POSTGRES_REPLICAS_0_USERNAME, POSTGRES_REPLICAS_0_PASSWORD
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			// No more replicas or incomplete configuration.
			break
		}

		replica := postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		}

		replicas = append(replicas, replica)
	}

	return replicas
}
