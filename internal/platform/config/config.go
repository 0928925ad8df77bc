package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	// PublicBaseURL is the externally reachable origin used when building
	// shareable links. HomeURL is the marketing-site fallback for the
	// click resolver.
	PublicBaseURL string
	HomeURL       string

	CronSecret   string
	CronTimezone string
	CronLockTTL  time.Duration

	NotificationChannels []string

	CommerceTimeout         time.Duration
	DiscountPercent         int
	ClickRateLimitPerMinute int
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "magnolia"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	timezone := os.Getenv("CRON_TIMEZONE")
	if timezone == "" {
		timezone = "Europe/Berlin"
	}

	homeURL := os.Getenv("HOME_URL")
	if homeURL == "" {
		homeURL = "https://magnolia.example.com"
	}

	channels := envList("NOTIFICATION_CHANNELS")
	if len(channels) == 0 {
		channels = []string{"email"}
	}

	return Config{
		ServiceName:   service,
		HTTPPort:      port,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),
		HomeURL:       homeURL,

		CronSecret:   os.Getenv("CRON_SECRET"),
		CronTimezone: timezone,
		CronLockTTL:  envDuration("CRON_LOCK_TTL", 10*time.Minute),

		NotificationChannels: channels,

		CommerceTimeout:         envDuration("COMMERCE_TIMEOUT", 8*time.Second),
		DiscountPercent:         envInt("DISCOUNT_PERCENT", 10),
		ClickRateLimitPerMinute: envInt("CLICK_RATE_LIMIT_PER_MINUTE", 120),
	}, nil
}

func envList(name string) []string {
	var values []string
	for _, value := range strings.Split(os.Getenv(name), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			values = append(values, value)
		}
	}
	return values
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
