package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/healthtracker/internal/flagx"
)

var ownFlags = []string{
	"-a", "-grpc", "-d", "-s", "-rs", "-t", "-r",
	"-u", "-p", "-b", "-g", "-e", "-l", "-env",
}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     REST API bind address (e.g., ":8000")
//	-grpc string  gRPC health service bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN
//	-s string     access token HMAC secret
//	-rs string    refresh token HMAC secret
//	-t int        access token validity, minutes
//	-r int        refresh token validity, minutes
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket name
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string     log level (debug, info, warn, error)
//	-env string   environment name ("development" enables text logs)
//
// Duration flags are integers in minutes. Arguments not listed above are
// filtered out with flagx.FilterArgs before parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], ownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to serve the REST API on")
	fs.StringVar(&config.EndpointAddrGRPC, "grpc", config.EndpointAddrGRPC, "address and port to serve gRPC health on")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AccessSecretKey, "s", config.AccessSecretKey, "access token secret key")
	fs.StringVar(&config.RefreshSecretKey, "rs", config.RefreshSecretKey, "refresh token secret key")

	accessTTL := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTTL := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.Environment, "env", config.Environment, "environment name")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTTL) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTTL) * time.Minute
}
