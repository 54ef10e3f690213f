// Package config loads the client configuration. Values are layered as
// defaults < JSON config file < environment (including .env) < command line flags,
// then validated.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every setting of the client, the CLI and the fake API server.
type Config struct {
	APIBaseURL      string        `env:"API_BASE_URL" json:"api_base_url" validate:"url"`
	LogLevel        string        `env:"LOG_LEVEL" json:"log_level" validate:"loglevel"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" json:"request_timeout"`
	CredentialsFile string        `env:"CREDENTIALS_FILE" json:"credentials_file" validate:"filepath"`
	FakeAPIAddr     string        `env:"FAKE_API_ADDRESS" json:"fake_api_address" validate:"hostname_port"`
	TokenSigningKey string        `env:"TOKEN_SIGNING_KEY" json:"token_signing_key" validate:"required"`
	ConfigFile      string        `env:"CONFIG" json:"-"`
}

var defaultConfig = Config{
	APIBaseURL:      "https://hack-or-snooze-v3.herokuapp.com",
	LogLevel:        "info",
	RequestTimeout:  30 * time.Second,
	CredentialsFile: defaultCredentialsFile(),
	FakeAPIAddr:     "localhost:8080",
	TokenSigningKey: "hack-or-snooze-dev-signing-key",
}

func defaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hackorsnooze/credentials.json"
	}

	return filepath.Join(home, ".hackorsnooze", "credentials.json")
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warn":    true,
		"warning": true,
		"error":   true,
		"fatal":   true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption customizes New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	flagSet             *flag.FlagSet
	args                []string
}

// WithDisableFlagsParsing skips command line flags, e.g. in tests or when
// another flag parser owns os.Args.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs parses args instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

func applyDefaults(values *Config, defaults Config) {
	if values.APIBaseURL == "" {
		values.APIBaseURL = defaults.APIBaseURL
	}
	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}
	if values.RequestTimeout == 0 {
		values.RequestTimeout = defaults.RequestTimeout
	}
	if values.CredentialsFile == "" {
		values.CredentialsFile = defaults.CredentialsFile
	}
	if values.FakeAPIAddr == "" {
		values.FakeAPIAddr = defaults.FakeAPIAddr
	}
	if values.TokenSigningKey == "" {
		values.TokenSigningKey = defaults.TokenSigningKey
	}
}

// override copies the non-zero fields of src over dst.
func override(dst *Config, src Config) {
	if src.APIBaseURL != "" {
		dst.APIBaseURL = src.APIBaseURL
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.RequestTimeout != 0 {
		dst.RequestTimeout = src.RequestTimeout
	}
	if src.CredentialsFile != "" {
		dst.CredentialsFile = src.CredentialsFile
	}
	if src.FakeAPIAddr != "" {
		dst.FakeAPIAddr = src.FakeAPIAddr
	}
	if src.TokenSigningKey != "" {
		dst.TokenSigningKey = src.TokenSigningKey
	}
	if src.ConfigFile != "" {
		dst.ConfigFile = src.ConfigFile
	}
}

func loadJSON(fileName string) (Config, error) {
	var values Config

	data, err := os.ReadFile(fileName)
	if err != nil {
		return values, fmt.Errorf("reading config file %s: %w", fileName, err)
	}

	var raw struct {
		Config
		RequestTimeout string `json:"request_timeout"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return values, fmt.Errorf("parsing config file %s: %w", fileName, err)
	}

	values = raw.Config
	if raw.RequestTimeout != "" {
		values.RequestTimeout, err = time.ParseDuration(raw.RequestTimeout)
		if err != nil {
			return values, fmt.Errorf("parsing request_timeout: %w", err)
		}
	}

	return values, nil
}

func parseFlags(options *initOptions) (Config, error) {
	var values Config

	fs := flag.NewFlagSet(filepath.Base(os.Args[0]), flag.ContinueOnError)
	fs.StringVar(&values.APIBaseURL, "b", "", "base URL of the news API")
	fs.StringVar(&values.LogLevel, "l", "", "logger level")
	fs.DurationVar(&values.RequestTimeout, "t", 0, "timeout of a single API request")
	fs.StringVar(&values.CredentialsFile, "f", "", "file keeping the login token between runs")
	fs.StringVar(&values.FakeAPIAddr, "a", "", "address and port of the fake API server")
	fs.StringVar(&values.ConfigFile, "c", "", "JSON config file")

	args := options.args
	if args == nil {
		args = os.Args[1:]
	}

	return values, fs.Parse(args)
}

// New builds a validated Config.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	var valuesFromEnv Config
	if err := env.Parse(&valuesFromEnv); err != nil {
		return nil, err
	}

	var valuesFromFlags Config
	if !options.disableFlagsParsing {
		valuesFromFlags, err = parseFlags(options)
		if err != nil {
			return nil, err
		}
	}

	configFile := valuesFromEnv.ConfigFile
	if valuesFromFlags.ConfigFile != "" {
		configFile = valuesFromFlags.ConfigFile
	}

	values := &Config{}
	if configFile != "" {
		valuesFromJSON, err := loadJSON(configFile)
		if err != nil {
			return nil, err
		}
		override(values, valuesFromJSON)
		values.ConfigFile = configFile
	}
	override(values, valuesFromEnv)
	override(values, valuesFromFlags)
	applyDefaults(values, defaultConfig)

	values.APIBaseURL = strings.TrimRight(values.APIBaseURL, "/")
	values.LogLevel = strings.ToLower(values.LogLevel)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
