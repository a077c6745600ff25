package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/cesargomez89/shamzam/internal/constants"
)

// Config holds all application configuration
type Config struct {
	CatalogPort         string
	GatewayPort         string
	DBPath              string
	AudioDir            string
	CatalogURL          string
	RecognitionURL      string
	RecognitionProvider string
	APIKey              string
	LogLevel            string
	LogFormat           string
	RecognitionTimeout  time.Duration
	CatalogTimeout      time.Duration
	RecognitionRate     float64
	MaxSampleBytes      int64

	parseErrors []string
}

// fileConfig mirrors the optional TOML file. Zero values leave the
// defaults untouched.
type fileConfig struct {
	Catalog struct {
		Port   string `toml:"port"`
		DBPath string `toml:"db_path"`
	} `toml:"catalog"`
	Gateway struct {
		Port           string `toml:"port"`
		AudioDir       string `toml:"audio_dir"`
		CatalogURL     string `toml:"catalog_url"`
		CatalogTimeout string `toml:"catalog_timeout"`
		MaxSampleBytes int64  `toml:"max_sample_bytes"`
	} `toml:"gateway"`
	Recognition struct {
		Provider string  `toml:"provider"`
		URL      string  `toml:"url"`
		APIKey   string  `toml:"api_key"`
		Timeout  string  `toml:"timeout"`
		Rate     float64 `toml:"rate"`
	} `toml:"recognition"`
	Logging struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"logging"`
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	cfg := defaults()
	cfg.applyEnv()
	return cfg
}

// LoadFile loads a .env file from the working directory if one exists, then
// layers the TOML file at path (if any) over the defaults and finally the
// environment over both.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(constants.DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", constants.DefaultEnvFile, err)
	}

	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		var fc fileConfig
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		cfg.applyFile(&fc)
	}
	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	audioDir, err := os.Getwd()
	if err != nil {
		audioDir = "."
	}
	return &Config{
		CatalogPort:         constants.DefaultCatalogPort,
		GatewayPort:         constants.DefaultGatewayPort,
		DBPath:              constants.DefaultDBPath,
		AudioDir:            audioDir,
		CatalogURL:          constants.DefaultCatalogURL,
		RecognitionURL:      constants.DefaultRecognitionURL,
		RecognitionProvider: constants.ProviderAudD,
		LogLevel:            "info",
		LogFormat:           "text",
		RecognitionTimeout:  constants.DefaultRecognitionTimeout,
		CatalogTimeout:      constants.DefaultCatalogTimeout,
		RecognitionRate:     constants.DefaultRecognitionRate,
		MaxSampleBytes:      constants.DefaultMaxSampleBytes,
	}
}

func (c *Config) applyFile(fc *fileConfig) {
	setString(&c.CatalogPort, fc.Catalog.Port)
	setString(&c.DBPath, fc.Catalog.DBPath)
	setString(&c.GatewayPort, fc.Gateway.Port)
	setString(&c.AudioDir, fc.Gateway.AudioDir)
	setString(&c.CatalogURL, fc.Gateway.CatalogURL)
	setString(&c.RecognitionProvider, fc.Recognition.Provider)
	setString(&c.RecognitionURL, fc.Recognition.URL)
	setString(&c.APIKey, fc.Recognition.APIKey)
	setString(&c.LogLevel, fc.Logging.Level)
	setString(&c.LogFormat, fc.Logging.Format)

	if fc.Gateway.CatalogTimeout != "" {
		c.CatalogTimeout = c.parseDuration("gateway.catalog_timeout", fc.Gateway.CatalogTimeout, c.CatalogTimeout)
	}
	if fc.Recognition.Timeout != "" {
		c.RecognitionTimeout = c.parseDuration("recognition.timeout", fc.Recognition.Timeout, c.RecognitionTimeout)
	}
	if fc.Recognition.Rate != 0 {
		c.RecognitionRate = fc.Recognition.Rate
	}
	if fc.Gateway.MaxSampleBytes != 0 {
		c.MaxSampleBytes = fc.Gateway.MaxSampleBytes
	}
}

func (c *Config) applyEnv() {
	c.CatalogPort = getEnv("CATALOG_PORT", c.CatalogPort)
	c.GatewayPort = getEnv("GATEWAY_PORT", c.GatewayPort)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.AudioDir = getEnv("AUDIO_DIR", c.AudioDir)
	c.CatalogURL = getEnv("CATALOG_URL", c.CatalogURL)
	c.RecognitionURL = getEnv("RECOGNITION_URL", c.RecognitionURL)
	c.RecognitionProvider = getEnv("RECOGNITION_PROVIDER", c.RecognitionProvider)
	c.APIKey = getEnv("API_KEY", c.APIKey)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	if v, ok := os.LookupEnv("RECOGNITION_TIMEOUT"); ok {
		c.RecognitionTimeout = c.parseDuration("RECOGNITION_TIMEOUT", v, c.RecognitionTimeout)
	}
	if v, ok := os.LookupEnv("CATALOG_TIMEOUT"); ok {
		c.CatalogTimeout = c.parseDuration("CATALOG_TIMEOUT", v, c.CatalogTimeout)
	}
	if v, ok := os.LookupEnv("RECOGNITION_RATE"); ok {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.parseErrors = append(c.parseErrors, fmt.Sprintf("RECOGNITION_RATE must be a number, got: %s", v))
		} else {
			c.RecognitionRate = rate
		}
	}
	if v, ok := os.LookupEnv("MAX_SAMPLE_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.parseErrors = append(c.parseErrors, fmt.Sprintf("MAX_SAMPLE_BYTES must be an integer, got: %s", v))
		} else {
			c.MaxSampleBytes = n
		}
	}
}

func (c *Config) parseDuration(key, value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		c.parseErrors = append(c.parseErrors, fmt.Sprintf("%s must be a duration like 30s, got: %s", key, value))
		return fallback
	}
	return d
}

// ValidateCatalog validates the settings the catalog service needs.
func (c *Config) ValidateCatalog() error {
	errs := c.validateCommon()
	errs = append(errs, validatePort("CATALOG_PORT", c.CatalogPort)...)

	if c.DBPath == "" {
		errs = append(errs, "DB_PATH cannot be empty")
	}

	return joinErrors(errs)
}

// ValidateGateway validates the settings the recognition gateway needs.
func (c *Config) ValidateGateway() error {
	errs := c.validateCommon()
	errs = append(errs, validatePort("GATEWAY_PORT", c.GatewayPort)...)
	errs = append(errs, validateURL("CATALOG_URL", c.CatalogURL)...)

	if c.AudioDir == "" {
		errs = append(errs, "AUDIO_DIR cannot be empty")
	}

	switch c.RecognitionProvider {
	case constants.ProviderAudD:
		errs = append(errs, validateURL("RECOGNITION_URL", c.RecognitionURL)...)
		if c.APIKey == "" {
			errs = append(errs, "API_KEY cannot be empty")
		}
	case constants.ProviderMock:
	default:
		errs = append(errs, fmt.Sprintf("RECOGNITION_PROVIDER must be one of: audd, mock, got: %s", c.RecognitionProvider))
	}

	if c.RecognitionTimeout <= 0 {
		errs = append(errs, "RECOGNITION_TIMEOUT must be positive")
	}
	if c.CatalogTimeout <= 0 {
		errs = append(errs, "CATALOG_TIMEOUT must be positive")
	}
	if c.RecognitionRate <= 0 {
		errs = append(errs, "RECOGNITION_RATE must be positive")
	}
	if c.MaxSampleBytes <= 0 {
		errs = append(errs, "MAX_SAMPLE_BYTES must be positive")
	}

	return joinErrors(errs)
}

func (c *Config) validateCommon() []string {
	errs := append([]string(nil), c.parseErrors...)

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}
	return errs
}

func validatePort(key, value string) []string {
	if value == "" {
		return []string{key + " cannot be empty"}
	}
	port, err := strconv.Atoi(value)
	if err != nil {
		return []string{fmt.Sprintf("%s must be a valid number, got: %s", key, value)}
	}
	if port < 1 || port > 65535 {
		return []string{fmt.Sprintf("%s must be between 1 and 65535, got: %d", key, port)}
	}
	return nil
}

func validateURL(key, value string) []string {
	if value == "" {
		return []string{key + " cannot be empty"}
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return []string{fmt.Sprintf("%s is not a valid URL: %s", key, value)}
	}
	return nil
}

func joinErrors(errs []string) error {
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
