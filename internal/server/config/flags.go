package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/fe/internal/flagx"
)

var (
	stringFlags = []string{
		"-a", "-grpc", "-db", "-d", "-s", "-t", "-l", "-m", "-rate", "-burst",
		"-n", "-np", "-u", "-p", "-b", "-g", "-e",
	}
	boolFlags = []string{"-fc", "-rp", "-archive"}
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":26834")
//	-grpc string  gRPC health bind address
//	-db string    database driver: sqlite or pgx
//	-d string     database DSN or SQLite file path
//	-s string     server secret key
//	-t int        admin token validity, minutes
//	-l string     log level
//	-m int        max request body, bytes
//	-fc           fetch includes payload content
//	-rp           read requires the caller to be sender or receiver
//	-rate float   per-user requests per second, 0 disables
//	-burst int    per-user burst
//	-n string     NATS URL
//	-np string    NATS subject prefix
//	-archive      archive file payloads to S3
//	-u, -p, -b, -g, -e  S3 user, password, bucket, region, endpoint
func parseFlags(config *Config) {
	allowed := append(append([]string{}, stringFlags...), boolFlags...)
	args, _ := flagx.SplitArgs(os.Args[1:], allowed, boolFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "grpc", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDriver, "db", config.DatabaseDriver, "database driver (sqlite|pgx)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	adminTokenValidity := fs.Int("t", int(config.AdminTokenValidityDuration.Minutes()), "admin_token_validity_duration (in minutes)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug|info|warn|error)")
	fs.Int64Var(&config.MaxBodyBytes, "m", config.MaxBodyBytes, "max request body in bytes")
	fs.BoolVar(&config.FetchIncludesContent, "fc", config.FetchIncludesContent, "fetch includes payload content")
	fs.BoolVar(&config.ReadRequiresParticipant, "rp", config.ReadRequiresParticipant, "read requires sender or receiver")
	fs.Float64Var(&config.RateLimit, "rate", config.RateLimit, "per-user requests per second (0 disables)")
	fs.IntVar(&config.RateBurst, "burst", config.RateBurst, "per-user burst")
	fs.StringVar(&config.NATSURL, "n", config.NATSURL, "NATS URL")
	fs.StringVar(&config.NATSSubjectPrefix, "np", config.NATSSubjectPrefix, "NATS subject prefix")
	fs.BoolVar(&config.S3ArchiveEnabled, "archive", config.S3ArchiveEnabled, "archive file payloads to S3")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AdminTokenValidityDuration = time.Duration(*adminTokenValidity) * time.Minute
}
