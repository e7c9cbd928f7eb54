package config

import (
	"fmt"
	"os"
	"strconv"
)

// lookupEnv is a seam for tests.
var lookupEnv = os.LookupEnv

// parseEnv overlays recognised environment variables onto config.
//
//	PORT                  listening port (sets HTTPAddr to ":<port>")
//	APP_ENV               development | production
//	PUBLIC_BASE_URL       base URL used in reset links
//	LOG_LEVEL             debug | info | warn | error
//	DATABASE_URL          PostgreSQL DSN
//	JWT_SECRET            token signing secret
//	JWT_EXPIRES_IN        token lifetime, seconds or Go duration ("1h")
//	SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, SMTP_FROM
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
//	MASTER_DATA_SYNC_SPEC cron spec for periodic master-data sync
//
// A malformed numeric or duration value panics.
func parseEnv(config *Config) {
	if v, ok := lookupEnv("PORT"); ok && v != "" {
		config.HTTPAddr = ":" + v
	}
	envString(&config.Environment, "APP_ENV")
	envString(&config.PublicBaseURL, "PUBLIC_BASE_URL")
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.DatabaseDSN, "DATABASE_URL")
	envString(&config.SecretKey, "JWT_SECRET")

	if v, ok := lookupEnv("JWT_EXPIRES_IN"); ok && v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			panic(fmt.Errorf("JWT_EXPIRES_IN: %w", err))
		}
		config.AccessTokenValidityDuration = d
	}

	envString(&config.SMTPHost, "SMTP_HOST")
	if v, ok := lookupEnv("SMTP_PORT"); ok && v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("SMTP_PORT: %w", err))
		}
		config.SMTPPort = p
	}
	envString(&config.SMTPUser, "SMTP_USER")
	envString(&config.SMTPPassword, "SMTP_PASS")
	envString(&config.SMTPFrom, "SMTP_FROM")

	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.MasterDataSyncSpec, "MASTER_DATA_SYNC_SPEC")
}

func envString(dst *string, key string) {
	if v, ok := lookupEnv(key); ok && v != "" {
		*dst = v
	}
}
