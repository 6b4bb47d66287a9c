package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every setting the api and worker binaries read from the environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Relay     RelayConfig
	Chat      ChatConfig
	Lifecycle LifecycleConfig
	Queue     QueueConfig
	Log       LogConfig
}

type ServerConfig struct {
	Addr string
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	URL string
}

// AuthConfig holds the verification side of the identity gate. Tokens are issued elsewhere.
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

// RelayConfig selects how room events reach connections held by other api nodes.
type RelayConfig struct {
	Backend string // none, redis or nats
	NatsURL string
	Channel string
}

// ChatConfig covers the conversation index and profile resolution.
type ChatConfig struct {
	ConversationIndex string // canonical or legacy
	ProfileCacheTTL   time.Duration
}

type LifecycleConfig struct {
	Cron     string
	Location *time.Location
}

type QueueConfig struct {
	Concurrency int
	Queues      map[string]int
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	RelayNone  = "none"
	RelayRedis = "redis"
	RelayNats  = "nats"

	IndexCanonical = "canonical"
	IndexLegacy    = "legacy"
)

// Load reads configuration from the environment. Callers load .env files beforehand.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}
	relay, err := loadRelayConfig()
	if err != nil {
		return nil, err
	}
	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}
	lifecycle, err := loadLifecycleConfig()
	if err != nil {
		return nil, err
	}
	queue, err := loadQueueConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Database: DatabaseConfig{URL: strings.TrimSpace(os.Getenv("DB_URL"))},
		Redis:    RedisConfig{URL: strings.TrimSpace(os.Getenv("REDIS_URL"))},
		Auth: AuthConfig{
			JWTSecret: strings.TrimSpace(os.Getenv("JWT_SECRET")),
			JWTIssuer: strings.TrimSpace(os.Getenv("JWT_ISSUER")),
		},
		Relay:     relay,
		Chat:      chat,
		Lifecycle: lifecycle,
		Queue:     queue,
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}, nil
}

func loadServerConfig() (ServerConfig, error) {
	port := getEnvOrDefault("PORT", "8080")
	if strings.Contains(port, ":") {
		// accepts ":8080" or "127.0.0.1:8080"
		return ServerConfig{Addr: port}, nil
	}
	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}
	return ServerConfig{Addr: ":" + port}, nil
}

func loadRelayConfig() (RelayConfig, error) {
	backend := strings.ToLower(getEnvOrDefault("RELAY_BACKEND", RelayNone))
	switch backend {
	case RelayNone, RelayRedis, RelayNats:
	default:
		return RelayConfig{}, fmt.Errorf("invalid RELAY_BACKEND value %q", backend)
	}
	return RelayConfig{
		Backend: backend,
		NatsURL: getEnvOrDefault("NATS_URL", "nats://127.0.0.1:4222"),
		Channel: getEnvOrDefault("RELAY_CHANNEL", "chat.rooms"),
	}, nil
}

func loadChatConfig() (ChatConfig, error) {
	index := strings.ToLower(getEnvOrDefault("CONVERSATION_INDEX", IndexCanonical))
	if index != IndexCanonical && index != IndexLegacy {
		return ChatConfig{}, fmt.Errorf("invalid CONVERSATION_INDEX value %q", index)
	}
	ttl, err := parseDurationEnv("PROFILE_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return ChatConfig{}, err
	}
	return ChatConfig{ConversationIndex: index, ProfileCacheTTL: ttl}, nil
}

func loadLifecycleConfig() (LifecycleConfig, error) {
	tz := getEnvOrDefault("LIFECYCLE_TZ", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return LifecycleConfig{}, fmt.Errorf("invalid LIFECYCLE_TZ value %q: %w", tz, err)
	}
	return LifecycleConfig{
		Cron:     getEnvOrDefault("LIFECYCLE_CRON", "0 0 * * *"),
		Location: loc,
	}, nil
}

func loadQueueConfig() (QueueConfig, error) {
	concurrency := 10
	if v, err := parseOptionalIntEnv("ASYNQ_CONCURRENCY"); err != nil {
		return QueueConfig{}, err
	} else if v != nil && *v > 0 {
		concurrency = *v
	}

	queues := map[string]int{"default": 1, "lifecycle": 2}
	if raw := strings.TrimSpace(os.Getenv("ASYNQ_QUEUES")); raw != "" {
		if parsed := ParseQueueWeights(raw); len(parsed) > 0 {
			queues = parsed
		}
	}
	return QueueConfig{Concurrency: concurrency, Queues: queues}, nil
}

// ParseQueueWeights parses strings like "critical=6,default=3,low=1" into a map.
func ParseQueueWeights(s string) map[string]int {
	res := make(map[string]int)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		name := strings.TrimSpace(kv[0])
		if name == "" {
			continue
		}
		w := 1
		if len(kv) == 2 {
			if i, err := strconv.Atoi(strings.TrimSpace(kv[1])); err == nil && i > 0 {
				w = i
			}
		}
		res[name] = w
	}
	return res
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil, nil
	}
	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return d, nil
}
