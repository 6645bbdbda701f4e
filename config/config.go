package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the bot needs from the environment.
type Config struct {
	TelegramToken   string
	AdminChatIDs    []int64
	RequiredChannel string // optional @channel the user must join

	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Payment destination shown on invoices.
	CardNumber string
	CardHolder string

	// Shown on the main menu when set, e.g. "@shop_support".
	SupportContact string

	// Negotiation bounds.
	MaxTotalUsers int
	VolumeStepGB  int
	MaxExtraGB    int
}

const (
	defaultMaxTotalUsers = 10
	defaultVolumeStepGB  = 5
	defaultMaxExtraGB    = 500
)

// Load reads the .env file (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		RequiredChannel: strings.TrimSpace(os.Getenv("REQUIRED_CHANNEL")),
		PostgresDSN:     strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:       strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		CardNumber:      strings.TrimSpace(os.Getenv("CARD_NUMBER")),
		CardHolder:      strings.TrimSpace(os.Getenv("CARD_HOLDER")),
		SupportContact:  strings.TrimSpace(os.Getenv("SUPPORT_CONTACT")),
		MaxTotalUsers:   getEnvInt("MAX_TOTAL_USERS", defaultMaxTotalUsers),
		VolumeStepGB:    getEnvInt("VOLUME_STEP_GB", defaultVolumeStepGB),
		MaxExtraGB:      getEnvInt("MAX_EXTRA_GB", defaultMaxExtraGB),
	}

	if cfg.PostgresDSN == "" {
		cfg.PostgresDSN = buildPostgresDSNFromEnv()
	}

	admins, err := parseAdminIDs(os.Getenv("ADMIN_CHAT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_CHAT_IDS invalid: %w", err)
	}
	cfg.AdminChatIDs = admins

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is empty")
	}
	if len(cfg.AdminChatIDs) == 0 {
		return nil, fmt.Errorf("ADMIN_CHAT_IDS environment variable is empty")
	}
	if cfg.CardNumber == "" {
		return nil, fmt.Errorf("CARD_NUMBER environment variable is empty")
	}
	if cfg.MaxTotalUsers < 1 {
		return nil, fmt.Errorf("MAX_TOTAL_USERS must be at least 1")
	}
	if cfg.VolumeStepGB < 1 {
		return nil, fmt.Errorf("VOLUME_STEP_GB must be at least 1")
	}
	if cfg.MaxExtraGB < cfg.VolumeStepGB {
		return nil, fmt.Errorf("MAX_EXTRA_GB must be at least VOLUME_STEP_GB")
	}

	return cfg, nil
}

// parseAdminIDs accepts a comma-separated list: "123456, 789012".
func parseAdminIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad chat id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// buildPostgresDSNFromEnv assembles a DSN from the discrete POSTGRES_*
// variables when POSTGRES_DSN itself is not set.
func buildPostgresDSNFromEnv() string {
	host := strings.TrimSpace(os.Getenv("POSTGRES_HOST"))
	user := strings.TrimSpace(os.Getenv("POSTGRES_USER"))
	password := os.Getenv("POSTGRES_PASSWORD")
	db := strings.TrimSpace(os.Getenv("POSTGRES_DB"))
	port := strings.TrimSpace(os.Getenv("POSTGRES_PORT"))
	sslmode := strings.TrimSpace(os.Getenv("POSTGRES_SSLMODE"))

	if host == "" || user == "" || db == "" {
		return ""
	}
	if port == "" {
		port = "5432"
	}
	if sslmode == "" {
		sslmode = "disable"
	}

	db = strings.TrimPrefix(db, "/")
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + db,
	}
	if password == "" {
		u.User = url.User(user)
	} else {
		u.User = url.UserPassword(user, password)
	}
	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
