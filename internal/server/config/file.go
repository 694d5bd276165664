package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/healthtracker/internal/flagx"
	"github.com/dmitrijs2005/healthtracker/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of a config file. Durations use
// timex.Duration, so both "30m" strings and integer nanoseconds are accepted.
//
// It is only a DTO: after decoding, non-zero fields are copied into the
// runtime Config.
type FileConfig struct {
	Environment                  string         `json:"environment" yaml:"environment"`
	LogLevel                     string         `json:"log_level" yaml:"log_level"`
	EndpointAddrHTTP             string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	APIPrefix                    string         `json:"api_prefix" yaml:"api_prefix"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	DatabaseMaxOpenConns         int            `json:"database_max_open_conns" yaml:"database_max_open_conns"`
	AccessSecretKey              string         `json:"access_secret_key" yaml:"access_secret_key"`
	RefreshSecretKey             string         `json:"refresh_secret_key" yaml:"refresh_secret_key"`
	SigningAlgorithm             string         `json:"signing_algorithm" yaml:"signing_algorithm"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	CodePepper                   string         `json:"code_pepper" yaml:"code_pepper"`
	PhoneRegion                  string         `json:"phone_region" yaml:"phone_region"`
	SmsRuAPIURL                  string         `json:"smsru_api_url" yaml:"smsru_api_url"`
	SmsRuAPIID                   string         `json:"smsru_api_id" yaml:"smsru_api_id"`
	SmsRuTimeout                 timex.Duration `json:"smsru_timeout" yaml:"smsru_timeout"`
	S3RootUser                   string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                     string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3PresignExpiry              timex.Duration `json:"s3_presign_expiry" yaml:"s3_presign_expiry"`
	PurgeSchedule                string         `json:"purge_schedule" yaml:"purge_schedule"`
	OTLPEndpoint                 string         `json:"otlp_endpoint" yaml:"otlp_endpoint"`
}

// parseFile loads values from the config file passed with -c or -config.
//
// Files ending in .yaml or .yml are decoded as YAML, anything else as JSON.
// Without the flag nothing is loaded. An unreadable or invalid file panics.
// Only non-zero values override what config already holds.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.Environment, c.Environment)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.APIPrefix, c.APIPrefix)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	if c.DatabaseMaxOpenConns > 0 {
		config.DatabaseMaxOpenConns = c.DatabaseMaxOpenConns
	}
	setString(&config.AccessSecretKey, c.AccessSecretKey)
	setString(&config.RefreshSecretKey, c.RefreshSecretKey)
	setString(&config.SigningAlgorithm, c.SigningAlgorithm)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setString(&config.CodePepper, c.CodePepper)
	setString(&config.PhoneRegion, c.PhoneRegion)
	setString(&config.SmsRuAPIURL, c.SmsRuAPIURL)
	setString(&config.SmsRuAPIID, c.SmsRuAPIID)
	setDuration(&config.SmsRuTimeout, c.SmsRuTimeout)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.S3PresignExpiry, c.S3PresignExpiry)
	setString(&config.PurgeSchedule, c.PurgeSchedule)
	setString(&config.OTLPEndpoint, c.OTLPEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
