package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	id "vaxledger/pkg/domain"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr          string
	AuthorityID   id.Identity
	JWTSigningKey string
	Postgres      PostgresConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
}

// PostgresConfig holds connection settings for the persistent stores.
// An empty DSN selects the in-memory stores.
type PostgresConfig struct {
	DSN string
}

// RedisConfig holds connection settings for the authorization fast-lookup
// set. An empty URL selects the in-memory set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the outbound event stream. Empty brokers
// disable the Kafka fan-out; events still land in the audit store.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables. A local .env
// file is loaded first when present; real environments never carry one.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	addr := os.Getenv("VAXLEDGER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authorityRaw := os.Getenv("VAXLEDGER_AUTHORITY_ID")
	if authorityRaw == "" {
		return Server{}, fmt.Errorf("VAXLEDGER_AUTHORITY_ID is required: the authority identity is fixed at initialization")
	}
	authority, err := id.ParseIdentity(authorityRaw)
	if err != nil {
		return Server{}, fmt.Errorf("parse VAXLEDGER_AUTHORITY_ID: %w", err)
	}

	return Server{
		Addr:          addr,
		AuthorityID:   authority,
		JWTSigningKey: JWTSigningKey(),
		Postgres: PostgresConfig{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:   envString("KAFKA_AUDIT_TOPIC", "vaxledger.events"),
		},
	}, nil
}

// JWTSigningKey reads JWT_SIGNING_KEY from the environment. Falls back to a
// development default; override in any real deployment. Shared by the server
// and the token-minting CLI so both sides of the bearer-token handshake
// agree on the key.
func JWTSigningKey() string {
	return envString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production")
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
