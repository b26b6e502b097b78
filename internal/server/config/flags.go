package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC management bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-v int      activation token validity, minutes
//	-t int      session token validity, minutes
//	-r int      reset token validity, minutes
//	-f string   frontend URL used in emailed links
//	-b string   public base URL of short links
//	-l int      short code length
//	-n string   notifier: smtp | s3 | log
//	-smtp-secure bool  implicit TLS for the smtp notifier (use -smtp-secure=false to turn off)
//	-log string log level
//
// Only the flags above are taken from args (see flagx.FilterArgs), so the
// -c/-config flag of the JSON loader does not collide. A parse error panics.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run the gRPC health endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	activation := fs.Int("v", int(config.ActivationTokenValidityDuration.Minutes()), "activation token validity (in minutes)")
	session := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")
	reset := fs.Int("r", int(config.ResetTokenValidityDuration.Minutes()), "reset token validity (in minutes)")

	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend URL for emailed links")
	fs.StringVar(&config.BaseURL, "b", config.BaseURL, "public base URL of short links")
	fs.IntVar(&config.CodeLength, "l", config.CodeLength, "short code length")
	fs.StringVar(&config.Notifier, "n", config.Notifier, "notifier: smtp, s3 or log")
	fs.BoolVar(&config.SMTPSecure, "smtp-secure", config.SMTPSecure, "implicit TLS to the mail server")
	fs.StringVar(&config.LogLevel, "log", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, flagx.Names(fs))); err != nil {
		panic(err)
	}

	config.ActivationTokenValidityDuration = time.Duration(*activation) * time.Minute
	config.SessionTokenValidityDuration = time.Duration(*session) * time.Minute
	config.ResetTokenValidityDuration = time.Duration(*reset) * time.Minute
}
