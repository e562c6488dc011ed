// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/fe/internal/common"
)

// Config holds runtime settings for the Fe server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the message API.
//   - EndpointAddrGRPC: bind address for the gRPC health service.
//   - DatabaseDriver / DatabaseDSN: "sqlite" with a file path, or "pgx" with a PostgreSQL DSN.
//   - SecretKey: seals user secrets at rest and signs admin tokens (HS256).
//   - AdminTokenValidityDuration: lifetime of tokens minted by cmd/admintoken.
//   - FetchIncludesContent: whether fetch returns payload bodies.
//   - ReadRequiresParticipant: restrict read to the message's sender and receiver.
//   - RateLimit / RateBurst: per-user request budget; 0 disables throttling.
//   - NATSURL / NATSSubjectPrefix: new-message notifications; empty URL disables.
//   - S3*: optional archive of file payloads in an S3-compatible bucket.
type Config struct {
	EndpointAddrHTTP           string
	EndpointAddrGRPC           string
	DatabaseDriver             string
	DatabaseDSN                string
	SecretKey                  string
	AdminTokenValidityDuration time.Duration
	LogLevel                   string
	MaxBodyBytes               int64
	FetchIncludesContent       bool
	ReadRequiresParticipant    bool
	RateLimit                  float64
	RateBurst                  int
	NATSURL                    string
	NATSSubjectPrefix          string
	S3ArchiveEnabled           bool
	S3RootUser                 string
	S3RootPassword             string
	S3Bucket                   string
	S3Region                   string
	S3BaseEndpoint             string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = fmt.Sprintf(":%d", common.DefaultServerPort)
	c.EndpointAddrGRPC = fmt.Sprintf(":%d", common.DefaultServerPort+1)
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "fe_data.db"
	c.SecretKey = "secretKey"
	c.AdminTokenValidityDuration = 60 * time.Minute
	c.LogLevel = "info"
	c.MaxBodyBytes = 32 << 20
	c.FetchIncludesContent = true
	c.ReadRequiresParticipant = false
	c.RateLimit = 10
	c.RateBurst = 20
	c.NATSURL = ""
	c.NATSSubjectPrefix = "fe.messages"
	c.S3ArchiveEnabled = false
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "fe-archive"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
