package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophdrive/internal/flagx"
	"github.com/dmitrijs2005/gophdrive/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept "1m" style strings or integer nanoseconds. Absent keys leave the
// current value untouched.
type JsonConfig struct {
	HTTPAddr                    string         `json:"http_addr"`
	PublicBaseURL               string         `json:"public_base_url"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout"`
	MetadataBackend             string         `json:"metadata_backend"`
	DatabaseDSN                 string         `json:"database_dsn"`
	BadgerDir                   string         `json:"badger_dir"`
	BlobBackend                 string         `json:"blob_backend"`
	LocalRoot                   string         `json:"local_root"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	S3PublicBaseURL             string         `json:"s3_public_base_url"`
	S3PresignTTL                timex.Duration `json:"s3_presign_ttl"`
	MaxUploadSize               int64          `json:"max_upload_size"`
	RedisAddr                   string         `json:"redis_addr"`
	RedisPassword               string         `json:"redis_password"`
	RedisDB                     int            `json:"redis_db"`
	ShareRateLimit              int            `json:"share_rate_limit"`
	JanitorInterval             timex.Duration `json:"janitor_interval"`
	ShareRetention              timex.Duration `json:"share_retention"`
	LogLevel                    string         `json:"log_level"`
	LogFile                     string         `json:"log_file"`
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// parseJson loads the file named by -c/-config, if any, into config. An
// unreadable or malformed file panics.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFileFlag(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay(&config.HTTPAddr, c.HTTPAddr)
	overlay(&config.PublicBaseURL, c.PublicBaseURL)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	overlay(&config.ShutdownTimeout, c.ShutdownTimeout.Duration)
	overlay(&config.MetadataBackend, c.MetadataBackend)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.BadgerDir, c.BadgerDir)
	overlay(&config.BlobBackend, c.BlobBackend)
	overlay(&config.LocalRoot, c.LocalRoot)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	overlay(&config.S3PresignTTL, c.S3PresignTTL.Duration)
	overlay(&config.MaxUploadSize, c.MaxUploadSize)
	overlay(&config.RedisAddr, c.RedisAddr)
	overlay(&config.RedisPassword, c.RedisPassword)
	overlay(&config.RedisDB, c.RedisDB)
	overlay(&config.ShareRateLimit, c.ShareRateLimit)
	overlay(&config.JanitorInterval, c.JanitorInterval.Duration)
	overlay(&config.ShareRetention, c.ShareRetention.Duration)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.LogFile, c.LogFile)
}
