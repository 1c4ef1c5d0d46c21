package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	LogMode string

	GeminiAPIKeys []string
	GeminiModel   string

	GatewayAPIKeys []string
	GatewayURL     string
	GatewayModel   string

	ExtractBackoff time.Duration
	ExtractTimeout time.Duration

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	TelegramBotToken string
	WebhookURL       string
}

// Load reads the environment, after an optional .env file in the working directory.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}

	geminiKeys := splitList(os.Getenv("GEMINI_API_KEYS"))
	if len(geminiKeys) == 0 {
		geminiKeys = splitList(os.Getenv("GEMINI_API_KEY"))
	}

	return &Config{
		Port:    getEnv("PORT", "8000"),
		LogMode: getEnv("LOG_MODE", "dev"),

		GeminiAPIKeys: geminiKeys,
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		GatewayAPIKeys: splitList(os.Getenv("GATEWAY_API_KEYS")),
		GatewayURL:     getEnv("GATEWAY_URL", "https://ai.gateway.lovable.dev/v1/chat/completions"),
		GatewayModel:   getEnv("GATEWAY_MODEL", "google/gemini-2.5-flash"),

		ExtractBackoff: getDuration("EXTRACT_BACKOFF", time.Second),
		ExtractTimeout: getDuration("EXTRACT_TIMEOUT", 120*time.Second),

		DatabaseURL:   resolveDSN(),
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),
		CacheTTL:      getDuration("CACHE_TTL", 24*time.Hour),

		TelegramBotToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		WebhookURL:       strings.TrimSpace(os.Getenv("WEBHOOK_URL")),
	}
}

// Candidates is the number of configured extraction credentials.
func (c *Config) Candidates() int {
	return len(c.GeminiAPIKeys) + len(c.GatewayAPIKeys)
}

func (c *Config) Validate() error {
	if c.Candidates() == 0 {
		return errors.New("no extraction credentials: set GEMINI_API_KEYS or GATEWAY_API_KEYS")
	}
	if c.ExtractBackoff < 0 {
		return fmt.Errorf("EXTRACT_BACKOFF must not be negative, got %s", c.ExtractBackoff)
	}
	return nil
}

// splitList splits a comma-separated list, trimming items and dropping empties.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: bad %s=%q, using %s", k, v, def)
		return def
	}
	return d
}

// resolveDSN prefers DATABASE_URL, then builds one from POSTGRES_*/PG* parts.
// Without PGHOST nothing is returned and the cache stays off.
func resolveDSN() string {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v
	}
	host := strings.TrimSpace(os.Getenv("PGHOST"))
	if host == "" {
		return ""
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("POSTGRES_USER", "sgpa"), os.Getenv("POSTGRES_PASSWORD")),
		Host:     net.JoinHostPort(host, getEnv("PGPORT", "5432")),
		Path:     "/" + getEnv("POSTGRES_DB", "sgpa"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SafeDSNSummary describes a DSN without its password.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host, port := u.Host, ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, user)
}
