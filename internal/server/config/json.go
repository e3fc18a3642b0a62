package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/vidmark/internal/flagx"
	"github.com/dmitrijs2005/vidmark/internal/timex"
)

// JsonConfig mirrors Config for decoding the optional JSON file. Durations use
// timex.Duration so both "5s" and integer nanoseconds are accepted. Pointer
// fields distinguish "absent" from a zero value.
type JsonConfig struct {
	ListenAddr                   string         `json:"listen_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	YouTubeAPIKey                string         `json:"youtube_api_key"`
	YouTubeEndpoint              string         `json:"youtube_endpoint"`
	YouTubeTimeout               timex.Duration `json:"youtube_timeout"`
	MetadataCacheSize            int            `json:"metadata_cache_size"`
	MetadataCacheTTL             timex.Duration `json:"metadata_cache_ttl"`
	BcryptCost                   int            `json:"bcrypt_cost"`
	CORSAllowedOrigins           []string       `json:"cors_allowed_origins"`
	LoginRateLimit               int            `json:"login_rate_limit"`
	LogLevel                     string         `json:"log_level"`
	S3Enabled                    *bool          `json:"s3_enabled"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file named by -c/-config. Keys missing
// from the file leave the current values alone. An unreadable file or invalid
// JSON panics: the server must not start with a half-applied configuration.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	setString(&config.ListenAddr, c.ListenAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setString(&config.YouTubeAPIKey, c.YouTubeAPIKey)
	setString(&config.YouTubeEndpoint, c.YouTubeEndpoint)
	setDuration(&config.YouTubeTimeout, c.YouTubeTimeout)
	setInt(&config.MetadataCacheSize, c.MetadataCacheSize)
	setDuration(&config.MetadataCacheTTL, c.MetadataCacheTTL)
	setInt(&config.BcryptCost, c.BcryptCost)
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	setInt(&config.LoginRateLimit, c.LoginRateLimit)
	setString(&config.LogLevel, c.LogLevel)
	if c.S3Enabled != nil {
		config.S3Enabled = *c.S3Enabled
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
