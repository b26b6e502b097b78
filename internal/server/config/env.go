package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv loads the given dotenv files (missing files are skipped, values
// already present in the environment win) and then overlays Config with
// every recognised variable that is set.
//
// Recognised variables:
//
//	HTTP_ADDRESS, GRPC_ADDRESS, DATABASE_DSN, JWT_SECRET,
//	ACTIVATION_TOKEN_TTL, SESSION_TOKEN_TTL, RESET_TOKEN_TTL (Go durations),
//	FRONTEND_URL, BASE_URL, CODE_LENGTH, CODE_MAX_ATTEMPTS, LOG_LEVEL, NOTIFIER,
//	EMAIL_HOST, EMAIL_PORT, EMAIL_USER, EMAIL_PASS, EMAIL_FROM, EMAIL_SECURE,
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
//
// Malformed numeric, boolean or duration values panic, as with a broken JSON file.
func parseEnv(config *Config, files ...string) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	envString(&config.EndpointAddrHTTP, "HTTP_ADDRESS")
	envString(&config.EndpointAddrGRPC, "GRPC_ADDRESS")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "JWT_SECRET")
	envDuration(&config.ActivationTokenValidityDuration, "ACTIVATION_TOKEN_TTL")
	envDuration(&config.SessionTokenValidityDuration, "SESSION_TOKEN_TTL")
	envDuration(&config.ResetTokenValidityDuration, "RESET_TOKEN_TTL")
	envString(&config.FrontendURL, "FRONTEND_URL")
	envString(&config.BaseURL, "BASE_URL")
	envInt(&config.CodeLength, "CODE_LENGTH")
	envInt(&config.CodeMaxAttempts, "CODE_MAX_ATTEMPTS")
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.Notifier, "NOTIFIER")
	envString(&config.SMTPHost, "EMAIL_HOST")
	envInt(&config.SMTPPort, "EMAIL_PORT")
	envString(&config.SMTPUser, "EMAIL_USER")
	envString(&config.SMTPPassword, "EMAIL_PASS")
	envString(&config.SMTPFrom, "EMAIL_FROM")
	envBool(&config.SMTPSecure, "EMAIL_SECURE")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = n
}

func envBool(dst *bool, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(err)
	}
	*dst = b
}

func envDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
