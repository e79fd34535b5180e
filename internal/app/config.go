package app

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Режимы шлюза заказов.
const (
	GatewayModeMemory = "memory"
	GatewayModeHTTP   = "http"
)

// Config описывает настройки запуска приложения.
type Config struct {
	// HTTPAddr — адрес операционного HTTP-сервера (/metrics, /healthz).
	HTTPAddr string
	// GatewayMode — memory для локальной разработки, http для боевого API.
	GatewayMode    string
	GatewayBaseURL string
	GatewayToken   string
	// PollInterval — период фонового обновления снапшота.
	PollInterval time.Duration
	// SuppressionWindow — окно подавления опроса после действия оператора.
	SuppressionWindow time.Duration
	// NotificationTTL — время жизни всплывающего уведомления.
	NotificationTTL time.Duration
	// PageSize — размер страницы списка заказов по умолчанию.
	PageSize int
	// Actor — имя оператора, передаваемое сервису при аннулировании.
	Actor    string
	LogLevel string
}

// DefaultConfig возвращает настройки по умолчанию.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:          ":9090",
		GatewayMode:       GatewayModeMemory,
		PollInterval:      30 * time.Second,
		SuppressionWindow: 10 * time.Second,
		NotificationTTL:   3 * time.Second,
		PageSize:          10,
		Actor:             "admin",
		LogLevel:          "info",
	}
}

// LoadConfig читает конфигурацию из .env и переменных окружения поверх
// значений по умолчанию.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetConfigType("env")
	v.SetConfigName(".env")
	v.AddConfigPath(".")

	defaults := DefaultConfig()
	v.SetDefault("PARTSDESK_HTTP_ADDR", defaults.HTTPAddr)
	v.SetDefault("PARTSDESK_GATEWAY_MODE", defaults.GatewayMode)
	v.SetDefault("PARTSDESK_GATEWAY_BASE_URL", "")
	v.SetDefault("PARTSDESK_GATEWAY_TOKEN", "")
	v.SetDefault("PARTSDESK_POLL_INTERVAL", defaults.PollInterval.String())
	v.SetDefault("PARTSDESK_SUPPRESSION_WINDOW", defaults.SuppressionWindow.String())
	v.SetDefault("PARTSDESK_NOTIFICATION_TTL", defaults.NotificationTTL.String())
	v.SetDefault("PARTSDESK_PAGE_SIZE", defaults.PageSize)
	v.SetDefault("PARTSDESK_ACTOR", defaults.Actor)
	v.SetDefault("PARTSDESK_LOG_LEVEL", defaults.LogLevel)

	v.AutomaticEnv()

	// .env опционален: без него работаем на переменных окружения.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		HTTPAddr:          v.GetString("PARTSDESK_HTTP_ADDR"),
		GatewayMode:       v.GetString("PARTSDESK_GATEWAY_MODE"),
		GatewayBaseURL:    v.GetString("PARTSDESK_GATEWAY_BASE_URL"),
		GatewayToken:      v.GetString("PARTSDESK_GATEWAY_TOKEN"),
		PollInterval:      durationOrDefault(v, "PARTSDESK_POLL_INTERVAL", defaults.PollInterval),
		SuppressionWindow: durationOrDefault(v, "PARTSDESK_SUPPRESSION_WINDOW", defaults.SuppressionWindow),
		NotificationTTL:   durationOrDefault(v, "PARTSDESK_NOTIFICATION_TTL", defaults.NotificationTTL),
		PageSize:          v.GetInt("PARTSDESK_PAGE_SIZE"),
		Actor:             v.GetString("PARTSDESK_ACTOR"),
		LogLevel:          v.GetString("PARTSDESK_LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность полей конфигурации.
func (c Config) Validate() error {
	if c.GatewayMode != GatewayModeMemory && c.GatewayMode != GatewayModeHTTP {
		return fmt.Errorf("unknown gateway mode %q", c.GatewayMode)
	}
	if c.GatewayMode == GatewayModeHTTP && c.GatewayBaseURL == "" {
		return fmt.Errorf("gateway base url is required for http mode")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.SuppressionWindow < 0 {
		return fmt.Errorf("suppression window must be non-negative")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	return nil
}

// durationOrDefault парсит duration из строки, откатываясь к дефолту при мусоре.
func durationOrDefault(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
