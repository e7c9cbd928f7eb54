package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/punit-mobi/RBAC-project/internal/flagx"
)

// duration accepts either a Go duration string ("15m") or a number of seconds.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		d.Duration = v
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	d.Duration = time.Duration(n * float64(time.Second))
	return nil
}

// JsonConfig is the on-disk shape of the config file. Pointer fields let an
// absent key keep the value already in Config.
type JsonConfig struct {
	HTTPAddr                    *string   `json:"http_addr"`
	Environment                 *string   `json:"environment"`
	PublicBaseURL               *string   `json:"public_base_url"`
	LogLevel                    *string   `json:"log_level"`
	DatabaseDSN                 *string   `json:"database_dsn"`
	SecretKey                   *string   `json:"secret_key"`
	AccessTokenValidityDuration *duration `json:"access_token_validity_duration"`
	ResetTokenValidityDuration  *duration `json:"reset_token_validity_duration"`
	ShutdownTimeout             *duration `json:"shutdown_timeout"`
	SeedOnStart                 *bool     `json:"seed_on_start"`
	SMTPHost                    *string   `json:"smtp_host"`
	SMTPPort                    *int      `json:"smtp_port"`
	SMTPUser                    *string   `json:"smtp_user"`
	SMTPPassword                *string   `json:"smtp_password"`
	SMTPFrom                    *string   `json:"smtp_from"`
	SMTPSkipVerify              *bool     `json:"smtp_skip_verify"`
	S3RootUser                  *string   `json:"s3_root_user"`
	S3RootPassword              *string   `json:"s3_root_password"`
	S3Bucket                    *string   `json:"s3_bucket"`
	S3Region                    *string   `json:"s3_region"`
	S3BaseEndpoint              *string   `json:"s3_base_endpoint"`
	MasterDataSyncSpec          *string   `json:"master_data_sync_spec"`
}

// parseJson overlays the JSON file named by -c/-config (or $CONFIG_FILE)
// onto config. Without a path it does nothing. An unreadable or invalid
// file panics, as a misconfigured server must not start.
func parseJson(config *Config) {
	path := flagx.ConfigFile(os.Args[1:])
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

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.Environment, c.Environment)
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.ResetTokenValidityDuration, c.ResetTokenValidityDuration)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
	if c.SeedOnStart != nil {
		config.SeedOnStart = *c.SeedOnStart
	}
	setString(&config.SMTPHost, c.SMTPHost)
	if c.SMTPPort != nil {
		config.SMTPPort = *c.SMTPPort
	}
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	if c.SMTPSkipVerify != nil {
		config.SMTPSkipVerify = *c.SMTPSkipVerify
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.MasterDataSyncSpec, c.MasterDataSyncSpec)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *duration) {
	if v != nil {
		*dst = v.Duration
	}
}

// parseSeconds reads "3600" as seconds and anything else as a Go duration.
func parseSeconds(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}
