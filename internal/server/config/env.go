package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/vidmark/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays values from environment variables. A file named by
// -env-file is loaded first (missing file panics); otherwise ./.env is loaded
// when present. godotenv never overrides variables already set in the process
// environment.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	envString("ADDRESS", &config.ListenAddr)
	envString("DATABASE_URL", &config.DatabaseDSN)
	envString("SECRET_KEY", &config.SecretKey)
	envDuration("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	envDuration("REFRESH_TOKEN_TTL", &config.RefreshTokenValidityDuration)
	envString("YOUTUBE_API_KEY", &config.YouTubeAPIKey)
	envString("YOUTUBE_API_ENDPOINT", &config.YouTubeEndpoint)
	envDuration("YOUTUBE_TIMEOUT", &config.YouTubeTimeout)
	envInt("METADATA_CACHE_SIZE", &config.MetadataCacheSize)
	envDuration("METADATA_CACHE_TTL", &config.MetadataCacheTTL)
	envInt("BCRYPT_COST", &config.BcryptCost)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		config.CORSAllowedOrigins = splitList(v)
	}
	envInt("LOGIN_RATE_LIMIT", &config.LoginRateLimit)
	envString("LOG_LEVEL", &config.LogLevel)
	envBool("S3_ENABLED", &config.S3Enabled)
	envString("S3_ROOT_USER", &config.S3RootUser)
	envString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	envString("S3_BUCKET", &config.S3Bucket)
	envString("S3_REGION", &config.S3Region)
	envString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("invalid %s value: %w", key, err))
	}
	*dst = n
}

func envBool(key string, dst *bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(fmt.Errorf("invalid %s value: %w", key, err))
	}
	*dst = b
}

func envDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("invalid %s value: %w", key, err))
	}
	*dst = d
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
