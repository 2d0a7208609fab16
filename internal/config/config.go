package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	JWTSecret            string
	JWTSessionTTLMinutes int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GeocoderAPIKey string

	// LegacyRecoveryResponse reproduces the historical contract: the
	// plaintext recovery code is returned in the HTTP response and the
	// stored hash is not cleared after a successful reset.
	LegacyRecoveryResponse bool

	// dev convenience seed
	SeedInstitutionDomain string
	SeedInstitutionName   string

	AllowedOrigins []string

	OtelEndpoint string

	WorkerHealthPort int
}

func Load() Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		JWTSecret:            getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTSessionTTLMinutes: getEnvInt("JWT_SESSION_TTL_MINUTES", 60*24),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		GeocoderAPIKey: getEnv("GEOCODER_API_KEY", ""),

		LegacyRecoveryResponse: getEnvBool("LEGACY_RECOVERY_RESPONSE", false),

		SeedInstitutionDomain: getEnv("SEED_INSTITUTION_DOMAIN", ""),
		SeedInstitutionName:   getEnv("SEED_INSTITUTION_NAME", ""),

		AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "")),

		OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		WorkerHealthPort: getEnvInt("WORKER_HEALTH_PORT", 8081),
	}
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "identity")
	pass := getEnv("DB_PASSWORD", "identity")
	name := getEnv("DB_NAME", "identity")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.JWTSessionTTLMinutes) * time.Minute
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return b
	}
	return fallback
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
