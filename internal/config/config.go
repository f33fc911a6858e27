// README: Config loader with env defaults for HTTP, stores, maps, pricing, and notifiers.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// PricingConfig is the full constant surface of the fare table. Values are
// validated by pricing.NewService; a table that fails validation aborts startup.
type PricingConfig struct {
	BasePrice             float64
	PricePerKm            float64
	MinPrice              float64
	SameVillagePrice      float64
	DeliveryBasePrice     float64
	FoodOutsidePricePerKm float64
	Multipliers           map[string]float64
	Currency              string
}

type Config struct {
	HTTP struct {
		Addr            string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}
	Log struct {
		Level string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr     string
		Password string
	}
	Store struct {
		OpTimeout time.Duration
	}
	Maps struct {
		Provider     string
		GoogleAPIKey string
		OSRMEndpoint string
		Timeout      time.Duration
		CacheTTL     time.Duration
	}
	Pricing   PricingConfig
	Locations struct {
		Path        string
		PharmacyLat float64
		PharmacyLng float64
	}
	Notify struct {
		WebhookURL     string
		KafkaBrokers   []string
		KafkaTopic     string
		AMQPURL        string
		AMQPExchange   string
		AMQPRoutingKey string
		FCMCredentials string
		FCMTopic       string
	}
	Jobs struct {
		Enabled        bool
		OfferPurgeSpec string
	}
}

// Load reads configuration from the environment, with an optional .env file.
// Pricing values that are present but non-numeric are reported as errors
// rather than silently defaulted; the binary must not start with a fare
// table the operator did not intend.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	var errs []error

	cfg.HTTP.Addr = envOrDefault("MASHWAR_HTTP_ADDR", ":8080")
	cfg.HTTP.ReadTimeout = envOrDefaultDuration("MASHWAR_HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTP.WriteTimeout = envOrDefaultDuration("MASHWAR_HTTP_WRITE_TIMEOUT", 15*time.Second)
	cfg.HTTP.ShutdownTimeout = envOrDefaultDuration("MASHWAR_HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)

	cfg.Log.Level = envOrDefault("MASHWAR_LOG_LEVEL", "info")

	// Empty DSN selects the in-memory stores (local development default).
	cfg.DB.DSN = envOrDefault("MASHWAR_DB_DSN", "")
	cfg.Redis.Addr = envOrDefault("MASHWAR_REDIS_ADDR", "")
	cfg.Redis.Password = envOrDefault("MASHWAR_REDIS_PASSWORD", "")

	cfg.Store.OpTimeout = envOrDefaultDuration("MASHWAR_STORE_OP_TIMEOUT", 5*time.Second)

	cfg.Maps.Provider = envOrDefault("MASHWAR_MAPS_PROVIDER", "haversine")
	cfg.Maps.GoogleAPIKey = envOrDefault("MASHWAR_GOOGLE_MAPS_KEY", "")
	cfg.Maps.OSRMEndpoint = envOrDefault("MASHWAR_OSRM_ENDPOINT", "http://localhost:5000")
	cfg.Maps.Timeout = envOrDefaultDuration("MASHWAR_MAPS_TIMEOUT", 2*time.Second)
	cfg.Maps.CacheTTL = envOrDefaultDuration("MASHWAR_MAPS_CACHE_TTL", 5*time.Minute)

	cfg.Pricing.BasePrice = envFloatStrict("MASHWAR_PRICE_BASE", 10, &errs)
	cfg.Pricing.PricePerKm = envFloatStrict("MASHWAR_PRICE_PER_KM", 3, &errs)
	cfg.Pricing.MinPrice = envFloatStrict("MASHWAR_PRICE_MIN", 15, &errs)
	cfg.Pricing.SameVillagePrice = envFloatStrict("MASHWAR_PRICE_SAME_VILLAGE", 20, &errs)
	cfg.Pricing.DeliveryBasePrice = envFloatStrict("MASHWAR_PRICE_DELIVERY_BASE", 20, &errs)
	cfg.Pricing.FoodOutsidePricePerKm = envFloatStrict("MASHWAR_PRICE_FOOD_PER_KM", 5, &errs)
	cfg.Pricing.Multipliers = map[string]float64{
		"motorcycle": envFloatStrict("MASHWAR_PRICE_MULT_MOTORCYCLE", 1.0, &errs),
		"toktok":     envFloatStrict("MASHWAR_PRICE_MULT_TOKTOK", 1.0, &errs),
		"car":        envFloatStrict("MASHWAR_PRICE_MULT_CAR", 1.2, &errs),
	}
	cfg.Pricing.Currency = envOrDefault("MASHWAR_CURRENCY", "EGP")

	cfg.Locations.Path = envOrDefault("MASHWAR_LOCATIONS_PATH", "config/locations.json")
	cfg.Locations.PharmacyLat = envFloatStrict("MASHWAR_PHARMACY_LAT", 30.7167, &errs)
	cfg.Locations.PharmacyLng = envFloatStrict("MASHWAR_PHARMACY_LNG", 31.2622, &errs)

	cfg.Notify.WebhookURL = envOrDefault("MASHWAR_NOTIFY_WEBHOOK_URL", "")
	cfg.Notify.KafkaBrokers = splitCSV(envOrDefault("MASHWAR_KAFKA_BROKERS", ""))
	cfg.Notify.KafkaTopic = envOrDefault("MASHWAR_KAFKA_TOPIC", "mashwar-operator")
	cfg.Notify.AMQPURL = envOrDefault("MASHWAR_AMQP_URL", "")
	cfg.Notify.AMQPExchange = envOrDefault("MASHWAR_AMQP_EXCHANGE", "")
	cfg.Notify.AMQPRoutingKey = envOrDefault("MASHWAR_AMQP_ROUTING_KEY", "mashwar.operator")
	cfg.Notify.FCMCredentials = envOrDefault("MASHWAR_FCM_CREDENTIALS", "")
	cfg.Notify.FCMTopic = envOrDefault("MASHWAR_FCM_TOPIC", "operators")

	cfg.Jobs.Enabled = envOrDefaultBool("MASHWAR_JOBS_ENABLED", true)
	cfg.Jobs.OfferPurgeSpec = envOrDefault("MASHWAR_OFFER_PURGE_SPEC", "@every 1m")

	return cfg, errors.Join(errs...)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envFloatStrict(key string, def float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
