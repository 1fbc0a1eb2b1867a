// AngelaMos | 2026
// config.go

package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App           AppConfig       `koanf:"app"`
	Server        ServerConfig    `koanf:"server"`
	Database      DatabaseConfig  `koanf:"database"`
	Redis         RedisConfig     `koanf:"redis"`
	JWT           JWTConfig       `koanf:"jwt"`
	OTP           OTPConfig       `koanf:"otp"`
	Mail          MailConfig      `koanf:"mail"`
	SMS           SMSConfig       `koanf:"sms"`
	Notify        NotifyConfig    `koanf:"notify"`
	RateLimit     RateLimitConfig `koanf:"rate_limit"`
	AuthRateLimit RateLimitConfig `koanf:"auth_rate_limit"`
	CORS          CORSConfig      `koanf:"cors"`
	Log           LogConfig       `koanf:"log"`
	Otel          OtelConfig      `koanf:"otel"`
	Metrics       MetricsConfig   `koanf:"metrics"`

	// GeneratedSecrets names the secrets that were filled with random
	// per-process values because none were configured.
	GeneratedSecrets []string `koanf:"-"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	AccessSecret       string        `koanf:"access_secret"`
	RefreshSecret      string        `koanf:"refresh_secret"`
	AccessTokenExpire  time.Duration `koanf:"access_token_expire"`
	RefreshTokenExpire time.Duration `koanf:"refresh_token_expire"`
	Issuer             string        `koanf:"issuer"`
	Audience           string        `koanf:"audience"`
}

type OTPConfig struct {
	EmailSecret    string        `koanf:"email_secret"`
	PhoneSecret    string        `koanf:"phone_secret"`
	Period         time.Duration `koanf:"period"`
	Digits         int           `koanf:"digits"`
	Skew           uint          `koanf:"skew"`
	ResendCooldown time.Duration `koanf:"resend_cooldown"`
}

type MailConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

// Enabled reports whether SMTP credentials are present.
func (m *MailConfig) Enabled() bool {
	return m.Host != "" && m.Username != "" && m.Password != ""
}

type SMSConfig struct {
	Provider string       `koanf:"provider"`
	Eskiz    EskizConfig  `koanf:"eskiz"`
	Twilio   TwilioConfig `koanf:"twilio"`
}

type EskizConfig struct {
	BaseURL string        `koanf:"base_url"`
	Token   string        `koanf:"token"`
	From    string        `koanf:"from"`
	Timeout time.Duration `koanf:"timeout"`
}

type TwilioConfig struct {
	AccountSID string `koanf:"account_sid"`
	AuthToken  string `koanf:"auth_token"`
	From       string `koanf:"from"`
}

type NotifyConfig struct {
	MaxRetries      uint64        `koanf:"max_retries"`
	Backoff         time.Duration `koanf:"backoff"`
	// RegisterTimeout bounds the activation mail sent during registration.
	RegisterTimeout time.Duration `koanf:"register_timeout"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

const (
	SMSProviderEskiz  = "eskiz"
	SMSProviderTwilio = "twilio"
	SMSProviderLog    = "log"
)

var (
	cfg  *Config
	once sync.Once
)

func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		cfg, loadErr = load(configPath)
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	c.SMS.Provider = strings.ToLower(strings.TrimSpace(c.SMS.Provider))

	if err := fillSecrets(c); err != nil {
		return nil, fmt.Errorf("resolve secrets: %w", err)
	}

	if err := validate(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Shop Backend",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"database.auto_migrate":       true,

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"jwt.access_token_expire":  "15m",
		"jwt.refresh_token_expire": "168h",
		"jwt.issuer":               "shop-backend",
		"jwt.audience":             "shop-backend-api",

		"otp.period":          "30m",
		"otp.digits":          6,
		"otp.skew":            1,
		"otp.resend_cooldown": "60s",

		"mail.host": "smtp.gmail.com",
		"mail.port": 587,

		"sms.provider":       SMSProviderLog,
		"sms.eskiz.base_url": "https://notify.eskiz.uz/api",
		"sms.eskiz.from":     "4546",
		"sms.eskiz.timeout":  "10s",

		"notify.max_retries":      3,
		"notify.backoff":          "500ms",
		"notify.register_timeout": "3s",

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"auth_rate_limit.requests": 10,
		"auth_rate_limit.window":   "1m",
		"auth_rate_limit.burst":    5,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "shop-backend",

		"metrics.enabled": true,
		"metrics.path":    "/metrics",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"DATABASE_AUTO_MIGRATE":       "database.auto_migrate",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"ACCESS_KEY":                  "jwt.access_secret",
	"REFRESH_KEY":                 "jwt.refresh_secret",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_REFRESH_TOKEN_EXPIRE":    "jwt.refresh_token_expire",
	"JWT_ISSUER":                  "jwt.issuer",
	"JWT_AUDIENCE":                "jwt.audience",
	"SECRET_KEY":                  "otp.email_secret",
	"ESKIZ_KEY":                   "otp.phone_secret",
	"OTP_PERIOD":                  "otp.period",
	"OTP_RESEND_COOLDOWN":         "otp.resend_cooldown",
	"SMTP_HOST":                   "mail.host",
	"SMTP_PORT":                   "mail.port",
	"EMAIL_USER":                  "mail.username",
	"EMAIL_PASS":                  "mail.password",
	"EMAIL_FROM":                  "mail.from",
	"SMS_PROVIDER":                "sms.provider",
	"ESKIZ_BASE_URL":              "sms.eskiz.base_url",
	"ESKIZ_TOKEN":                 "sms.eskiz.token",
	"ESKIZ_FROM":                  "sms.eskiz.from",
	"TWILIO_ACCOUNT_SID":          "sms.twilio.account_sid",
	"TWILIO_AUTH_TOKEN":           "sms.twilio.auth_token",
	"TWILIO_FROM":                 "sms.twilio.from",
	"NOTIFY_MAX_RETRIES":          "notify.max_retries",
	"NOTIFY_BACKOFF":              "notify.backoff",
	"NOTIFY_REGISTER_TIMEOUT":     "notify.register_timeout",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"AUTH_RATE_LIMIT_REQUESTS":    "auth_rate_limit.requests",
	"AUTH_RATE_LIMIT_BURST":       "auth_rate_limit.burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"METRICS_ENABLED":             "metrics.enabled",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func fillSecrets(c *Config) error {
	secrets := []struct {
		name  string
		value *string
	}{
		{"ACCESS_KEY", &c.JWT.AccessSecret},
		{"REFRESH_KEY", &c.JWT.RefreshSecret},
		{"SECRET_KEY", &c.OTP.EmailSecret},
		{"ESKIZ_KEY", &c.OTP.PhoneSecret},
	}

	for _, s := range secrets {
		if *s.value != "" {
			continue
		}

		if c.IsProduction() {
			return fmt.Errorf("%s is required in production", s.name)
		}

		generated, err := randomSecret()
		if err != nil {
			return fmt.Errorf("generate %s: %w", s.name, err)
		}
		*s.value = generated
		c.GeneratedSecrets = append(c.GeneratedSecrets, s.name)
	}

	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return fmt.Errorf("ACCESS_KEY and REFRESH_KEY must differ")
	}

	if c.JWT.AccessTokenExpire <= 0 || c.JWT.RefreshTokenExpire <= 0 {
		return fmt.Errorf("jwt token lifetimes must be positive")
	}

	if c.OTP.Period < time.Second {
		return fmt.Errorf("otp.period must be at least one second")
	}

	if c.OTP.Digits != 6 && c.OTP.Digits != 8 {
		return fmt.Errorf("otp.digits must be 6 or 8")
	}

	switch c.SMS.Provider {
	case SMSProviderLog:
	case SMSProviderEskiz:
		if c.SMS.Eskiz.Token == "" {
			return fmt.Errorf("ESKIZ_TOKEN is required for the eskiz sms provider")
		}
	case SMSProviderTwilio:
		if c.SMS.Twilio.AccountSID == "" || c.SMS.Twilio.AuthToken == "" {
			return fmt.Errorf("twilio credentials are required for the twilio sms provider")
		}
	default:
		return fmt.Errorf("unknown sms provider %q", c.SMS.Provider)
	}

	if c.IsProduction() && c.SMS.Provider == SMSProviderLog {
		return fmt.Errorf("sms provider %q is not allowed in production", SMSProviderLog)
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.IsProduction() {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
