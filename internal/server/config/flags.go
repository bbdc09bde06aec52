package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/flagx"
)

var serverFlags = []string{
	"-a", "-base-url", "-s", "-t", "-m", "-d", "-badger-dir", "-blob", "-root",
	"-u", "-p", "-b", "-g", "-e", "-s3-public-url", "-presign-ttl", "-max-upload",
	"-redis", "-redis-password", "-redis-db", "-share-rpm", "-janitor", "-retention",
	"-l", "-log-file",
}

// parseFlags populates Config fields from command-line flags.
//
// Short forms kept from earlier releases:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-u/-p       S3 root user and password
//	-b/-g/-e    S3 bucket, region and base endpoint
//	-m string   metadata backend (postgres|badger)
//	-l string   log level
//
// Everything else uses a long name; run with -h for the full list. Args are
// filtered with flagx.FilterArgs so -c/-config never reaches this parser.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.PublicBaseURL, "base-url", config.PublicBaseURL, "public base URL used in share links")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.MetadataBackend, "m", config.MetadataBackend, "metadata backend: postgres or badger")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BadgerDir, "badger-dir", config.BadgerDir, "badger data directory")

	fs.StringVar(&config.BlobBackend, "blob", config.BlobBackend, "blob backend: local or s3")
	fs.StringVar(&config.LocalRoot, "root", config.LocalRoot, "local blob root directory")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicBaseURL, "s3-public-url", config.S3PublicBaseURL, "public URL prefix of S3 objects")
	fs.DurationVar(&config.S3PresignTTL, "presign-ttl", config.S3PresignTTL, "lifetime of presigned S3 URLs, 0 disables presigning")

	fs.Int64Var(&config.MaxUploadSize, "max-upload", config.MaxUploadSize, "upload ceiling in bytes")

	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address for the share cache")
	fs.StringVar(&config.RedisPassword, "redis-password", config.RedisPassword, "redis password")
	fs.IntVar(&config.RedisDB, "redis-db", config.RedisDB, "redis database number")

	fs.IntVar(&config.ShareRateLimit, "share-rpm", config.ShareRateLimit, "share requests per minute per client, 0 disables")
	fs.DurationVar(&config.JanitorInterval, "janitor", config.JanitorInterval, "expired share purge interval, 0 disables")
	fs.DurationVar(&config.ShareRetention, "retention", config.ShareRetention, "how long expired shares are kept")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFile, "log-file", config.LogFile, "rolling log file path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}
