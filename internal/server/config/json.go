package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/fe/internal/flagx"
	"github.com/dmitrijs2005/fe/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Absent
// keys leave the current value alone, so booleans and numbers are
// pointers.
type JsonConfig struct {
	EndpointAddrHTTP           string          `json:"endpoint_addr_http"`
	EndpointAddrGRPC           string          `json:"endpoint_addr_grpc"`
	DatabaseDriver             string          `json:"database_driver"`
	DatabaseDSN                string          `json:"database_dsn"`
	SecretKey                  string          `json:"secret_key"`
	AdminTokenValidityDuration *timex.Duration `json:"admin_token_validity_duration"`
	LogLevel                   string          `json:"log_level"`
	MaxBodyBytes               *int64          `json:"max_body_bytes"`
	FetchIncludesContent       *bool           `json:"fetch_includes_content"`
	ReadRequiresParticipant    *bool           `json:"read_requires_participant"`
	RateLimit                  *float64        `json:"rate_limit"`
	RateBurst                  *int            `json:"rate_burst"`
	NATSURL                    string          `json:"nats_url"`
	NATSSubjectPrefix          string          `json:"nats_subject_prefix"`
	S3ArchiveEnabled           *bool           `json:"s3_archive_enabled"`
	S3RootUser                 string          `json:"s3_root_user"`
	S3RootPassword             string          `json:"s3_root_password"`
	S3Bucket                   string          `json:"s3_bucket"`
	S3Region                   string          `json:"s3_region"`
	S3BaseEndpoint             string          `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file named by -c/-config or
// $FE_CONFIG. No file means no changes; an unreadable or invalid file
// panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
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

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AdminTokenValidityDuration != nil {
		config.AdminTokenValidityDuration = c.AdminTokenValidityDuration.Duration
	}
	setString(&config.LogLevel, c.LogLevel)
	setValue(&config.MaxBodyBytes, c.MaxBodyBytes)
	setValue(&config.FetchIncludesContent, c.FetchIncludesContent)
	setValue(&config.ReadRequiresParticipant, c.ReadRequiresParticipant)
	setValue(&config.RateLimit, c.RateLimit)
	setValue(&config.RateBurst, c.RateBurst)
	setString(&config.NATSURL, c.NATSURL)
	setString(&config.NATSSubjectPrefix, c.NATSSubjectPrefix)
	setValue(&config.S3ArchiveEnabled, c.S3ArchiveEnabled)
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

func setValue[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
