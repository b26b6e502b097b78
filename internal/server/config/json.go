package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/linkkeeper/internal/flagx"
	"github.com/dmitrijs2005/linkkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON configuration file. Duration
// fields accept "10m"-style strings or integer nanoseconds. Only fields that
// are present (non-zero, or non-null for smtp_secure) override the current Config.
type JsonConfig struct {
	EndpointAddrHTTP                string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC                string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                     string         `json:"database_dsn"`
	SecretKey                       string         `json:"secret_key"`
	ActivationTokenValidityDuration timex.Duration `json:"activation_token_validity_duration"`
	SessionTokenValidityDuration    timex.Duration `json:"session_token_validity_duration"`
	ResetTokenValidityDuration      timex.Duration `json:"reset_token_validity_duration"`
	FrontendURL                     string         `json:"frontend_url"`
	BaseURL                         string         `json:"base_url"`
	CodeLength                      int            `json:"code_length"`
	CodeMaxAttempts                 int            `json:"code_max_attempts"`
	PasswordHashCost                int            `json:"password_hash_cost"`
	LogLevel                        string         `json:"log_level"`
	Notifier                        string         `json:"notifier"`
	SMTPHost                        string         `json:"smtp_host"`
	SMTPPort                        int            `json:"smtp_port"`
	SMTPUser                        string         `json:"smtp_user"`
	SMTPPassword                    string         `json:"smtp_password"`
	SMTPFrom                        string         `json:"smtp_from"`
	SMTPSecure                      *bool          `json:"smtp_secure"`
	S3RootUser                      string         `json:"s3_root_user"`
	S3RootPassword                  string         `json:"s3_root_password"`
	S3Bucket                        string         `json:"s3_bucket"`
	S3Region                        string         `json:"s3_region"`
	S3BaseEndpoint                  string         `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c / -config in args (if any) and
// overlays it onto config. An unreadable file or invalid JSON panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.ActivationTokenValidityDuration.Duration != 0 {
		config.ActivationTokenValidityDuration = c.ActivationTokenValidityDuration.Duration
	}
	if c.SessionTokenValidityDuration.Duration != 0 {
		config.SessionTokenValidityDuration = c.SessionTokenValidityDuration.Duration
	}
	if c.ResetTokenValidityDuration.Duration != 0 {
		config.ResetTokenValidityDuration = c.ResetTokenValidityDuration.Duration
	}
	setString(&config.FrontendURL, c.FrontendURL)
	setString(&config.BaseURL, c.BaseURL)
	setInt(&config.CodeLength, c.CodeLength)
	setInt(&config.CodeMaxAttempts, c.CodeMaxAttempts)
	setInt(&config.PasswordHashCost, c.PasswordHashCost)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.Notifier, c.Notifier)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	if c.SMTPSecure != nil {
		config.SMTPSecure = *c.SMTPSecure
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
