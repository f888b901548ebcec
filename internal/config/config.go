package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Endpoints Endpoints
	Storage   StorageConfig
	Limits    LimitsConfig
	Auth      AuthConfig
	Infra     InfraConfig
}

type AppConfig struct {
	Environment        string
	LogFilePath        string
	ChangeLogFilePath  string
	CorsAllowedOrigins string
	OtelEnabled        bool
}

type StorageConfig struct {
	NotesBasePath string
	SettingsFile  string
	// DeletePolicy decides what happens to notes referencing a deleted tag, notebook or folder.
	DeletePolicy string
}

type LimitsConfig struct {
	RateLimitMax    int
	RateLimitWindow time.Duration
	BodyLimitBytes  int
	MaxUploadBytes  int64
}

type AuthConfig struct {
	JwtSecret string
}

type InfraConfig struct {
	RedisURL       string
	NatsURL        string
	ChangesTopic   string
	ClusterChannel string
}

const (
	DeletePolicyIgnore  = "ignore"
	DeletePolicyCascade = "cascade"
	DeletePolicyBlock   = "block"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	env := ResolveEnvironment()
	endpoints, err := ResolveEndpoints(getEnv("NOET_CONFIG_FILE", "config.json"), env)
	if err != nil {
		log.Printf("[WARN] config file unusable, using fallback endpoints: %v", err)
	}

	return &Config{
		App: AppConfig{
			Environment:        env,
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			ChangeLogFilePath:  getEnv("CHANGE_LOG_FILE_PATH", "logs/changes.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Endpoints: endpoints,
		Storage: StorageConfig{
			NotesBasePath: getEnv("NOTES_BASE_PATH", "./data/notes"),
			SettingsFile:  getEnv("STORAGE_SETTINGS_FILE", "./data/storage-settings.json"),
			DeletePolicy:  normalizeDeletePolicy(getEnv("DELETE_POLICY", DeletePolicyIgnore)),
		},
		Limits: LimitsConfig{
			RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 1000),
			RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
			BodyLimitBytes:  getEnvAsInt("BODY_LIMIT_MB", 110) * 1024 * 1024,
			MaxUploadBytes:  int64(getEnvAsInt("MAX_UPLOAD_MB", 100)) * 1024 * 1024,
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("AUTH_JWT_SECRET", ""),
		},
		Infra: InfraConfig{
			RedisURL:       getEnv("REDIS_URL", ""),
			NatsURL:        getEnv("NATS_URL", ""),
			ChangesTopic:   getEnv("CHANGES_TOPIC_NAME", "NOET_CHANGES"),
			ClusterChannel: getEnv("CLUSTER_CHANNEL_NAME", "noet_cluster_events"),
		},
	}
}

// ResolveEnvironment reads GO_ENV, then NODE_ENV, defaulting to development.
func ResolveEnvironment() string {
	env := getEnv("GO_ENV", "")
	if env == "" {
		env = getEnv("NODE_ENV", "")
	}
	env = strings.ToLower(strings.TrimSpace(env))
	if env == "" {
		return EnvDevelopment
	}
	return env
}

func normalizeDeletePolicy(policy string) string {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case DeletePolicyCascade:
		return DeletePolicyCascade
	case DeletePolicyBlock:
		return DeletePolicyBlock
	default:
		return DeletePolicyIgnore
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}
