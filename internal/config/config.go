package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variable names
const (
	EnvPort            = "PORT"
	EnvBucketName      = "R2_BUCKET_NAME"
	EnvEndpointURL     = "R2_ENDPOINT_URL"
	EnvAccessKeyID     = "R2_ACCESS_KEY_ID"
	EnvSecretAccessKey = "R2_SECRET_ACCESS_KEY"
	EnvPublicURL       = "R2_PUBLIC_URL"
	EnvRegion          = "R2_REGION"
	EnvChartValidation = "CHART_VALIDATION"
	EnvChartWidth      = "CHART_WIDTH"
	EnvChartHeight     = "CHART_HEIGHT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFormat       = "LOG_FORMAT"
)

// Chart validation modes
const (
	// ValidationStrict requires type and data on every chart request.
	ValidationStrict = "strict"
	// ValidationPassthrough forwards the body to the renderer unchecked.
	ValidationPassthrough = "passthrough"
)

// MissingStorageMessage is returned to clients when storage settings are absent.
const MissingStorageMessage = "Missing required R2 configuration. Please set R2_BUCKET_NAME, R2_ENDPOINT_URL, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, and R2_PUBLIC_URL environment variables."

// Config holds the application configuration
type Config struct {
	Port            string
	Storage         StorageConfig
	ChartValidation string
	ChartWidth      int
	ChartHeight     int
	LogLevel        string
	LogFormat       string
}

// StorageConfig holds the object storage settings. Every field except Region
// may be empty; handlers check them per request.
type StorageConfig struct {
	BucketName      string
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
	Region          string
}

// MissingSettingsError reports which storage variables are unset.
type MissingSettingsError struct {
	Vars []string
}

func (e *MissingSettingsError) Error() string {
	return MissingStorageMessage
}

// Missing lists the environment variables of the unset storage settings.
func (s StorageConfig) Missing() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{EnvBucketName, s.BucketName},
		{EnvEndpointURL, s.EndpointURL},
		{EnvAccessKeyID, s.AccessKeyID},
		{EnvSecretAccessKey, s.SecretAccessKey},
		{EnvPublicURL, s.PublicURL},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Check returns a *MissingSettingsError if any required setting is unset.
func (s StorageConfig) Check() error {
	if missing := s.Missing(); len(missing) > 0 {
		return &MissingSettingsError{Vars: missing}
	}
	return nil
}

// ObjectURL joins the public base URL and an object key.
func (s StorageConfig) ObjectURL(key string) string {
	return strings.TrimSuffix(s.PublicURL, "/") + "/" + key
}

// Load reads configuration from the given .env files (".env" when none are
// given) and the process environment. Variables already set in the
// environment win over .env entries. Missing .env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	v := viper.New()
	v.SetDefault(EnvPort, "3000")
	v.SetDefault(EnvRegion, "auto")
	v.SetDefault(EnvChartValidation, ValidationStrict)
	v.SetDefault(EnvChartWidth, 800)
	v.SetDefault(EnvChartHeight, 600)
	v.SetDefault(EnvLogLevel, "info")
	v.SetDefault(EnvLogFormat, "logfmt")
	v.AutomaticEnv()

	cfg := &Config{
		Port: v.GetString(EnvPort),
		Storage: StorageConfig{
			BucketName:      v.GetString(EnvBucketName),
			EndpointURL:     v.GetString(EnvEndpointURL),
			AccessKeyID:     v.GetString(EnvAccessKeyID),
			SecretAccessKey: v.GetString(EnvSecretAccessKey),
			PublicURL:       v.GetString(EnvPublicURL),
			Region:          v.GetString(EnvRegion),
		},
		ChartValidation: strings.ToLower(v.GetString(EnvChartValidation)),
		ChartWidth:      v.GetInt(EnvChartWidth),
		ChartHeight:     v.GetInt(EnvChartHeight),
		LogLevel:        strings.ToLower(v.GetString(EnvLogLevel)),
		LogFormat:       strings.ToLower(v.GetString(EnvLogFormat)),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that must be sound at startup. Storage
// settings are not checked here.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%s must not be empty", EnvPort)
	}
	switch c.ChartValidation {
	case ValidationStrict, ValidationPassthrough:
	default:
		return fmt.Errorf("invalid %s %q: want %q or %q", EnvChartValidation, c.ChartValidation, ValidationStrict, ValidationPassthrough)
	}
	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		return fmt.Errorf("invalid chart size %dx%d", c.ChartWidth, c.ChartHeight)
	}
	switch c.LogFormat {
	case "logfmt", "json":
	default:
		return fmt.Errorf("invalid %s %q", EnvLogFormat, c.LogFormat)
	}
	return nil
}
