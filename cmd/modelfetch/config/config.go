package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/loykin/modelfetch/internal/common"
	"github.com/loykin/modelfetch/internal/constants"
	"github.com/loykin/modelfetch/internal/fetch"
	"github.com/loykin/modelfetch/internal/httpc"
	"github.com/loykin/modelfetch/internal/util"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type EndpointConfig struct {
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	Version  string `mapstructure:"version" yaml:"version"`
	Resource string `mapstructure:"resource" yaml:"resource"`
	KeyParam string `mapstructure:"key_param" yaml:"key_param"`
	// Key is a literal access key. Prefer KeyFromEnv.
	Key string `mapstructure:"key" yaml:"key"`
	// KeyFromEnv names the environment variable holding the key.
	KeyFromEnv string `mapstructure:"key_from_env" yaml:"key_from_env"`
}

type OutputConfig struct {
	Path   string `mapstructure:"path" yaml:"path"`
	Indent string `mapstructure:"indent" yaml:"indent"`
}

type ClientConfig struct {
	Timeout       string `mapstructure:"timeout" yaml:"timeout"` // duration string, empty = none
	Insecure      bool   `mapstructure:"insecure" yaml:"insecure"`
	MinTLSVersion string `mapstructure:"min_tls_version" yaml:"min_tls_version"`
	MaxTLSVersion string `mapstructure:"max_tls_version" yaml:"max_tls_version"`
	UserAgent     string `mapstructure:"user_agent" yaml:"user_agent"`
}

type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`                   // error, warn, info, debug
	Format        string `mapstructure:"format" yaml:"format"`                 // text, json, color
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive"` // enable/disable sensitive data masking
	Color         *bool  `mapstructure:"color" yaml:"color"`                   // enable/disable colorized output
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
	Table   string `mapstructure:"table" yaml:"table"`
}

type ConfigDoc struct {
	Endpoint EndpointConfig `mapstructure:"endpoint" yaml:"endpoint"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Client   ClientConfig   `mapstructure:"client" yaml:"client"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	History  HistoryConfig  `mapstructure:"history" yaml:"history"`
}

// Default returns the built-in configuration.
func Default() ConfigDoc {
	return ConfigDoc{
		Endpoint: EndpointConfig{
			BaseURL:    constants.DefaultBaseURL,
			Version:    constants.DefaultAPIVersion,
			Resource:   constants.DefaultResource,
			KeyParam:   constants.DefaultKeyParam,
			KeyFromEnv: constants.DefaultKeyEnvVar,
		},
		Output: OutputConfig{
			Path:   constants.DefaultOutputPath,
			Indent: constants.DefaultIndent,
		},
		History: HistoryConfig{
			Path:  constants.DefaultHistoryPath,
			Table: constants.DefaultHistoryTable,
		},
	}
}

// Load decodes the YAML file at path over the current values.
func (c *ConfigDoc) Load(path string) error {
	clean := filepath.Clean(path)
	// Ensure path points to a regular file to avoid opening directories/special files
	if info, statErr := os.Stat(clean); statErr != nil || !info.Mode().IsRegular() {
		if statErr != nil {
			return statErr
		}
		return fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- config path is provided intentionally by the user
	f, err := os.Open(clean)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("invalid config %s: %w", clean, err)
	}
	return nil
}

// ApplyOverrides copies flag and MODELFETCH_* environment values that were set
// on top of the file values.
func (c *ConfigDoc) ApplyOverrides(v *viper.Viper) {
	if v == nil {
		return
	}
	set := func(key string, dst *string) {
		if s, ok := util.TrimEmptyCheck(v.GetString(key)); ok {
			*dst = s
		}
	}
	set("api_key", &c.Endpoint.Key)
	set("base_url", &c.Endpoint.BaseURL)
	set("output", &c.Output.Path)
	set("timeout", &c.Client.Timeout)
	set("log_level", &c.Logging.Level)
	set("log_format", &c.Logging.Format)
	set("history_path", &c.History.Path)
	if v.IsSet("history") {
		c.History.Enabled = v.GetBool("history")
	}
	if v.IsSet("insecure") {
		c.Client.Insecure = v.GetBool("insecure")
	}
}

// ResolveKey returns the access key: the literal key if set, otherwise the
// value of the KeyFromEnv variable.
func (c *ConfigDoc) ResolveKey() string {
	name := strings.TrimSpace(c.Endpoint.KeyFromEnv)
	var fromEnv string
	if name != "" {
		fromEnv = os.Getenv(name)
	}
	key := util.FirstNonEmpty(c.Endpoint.Key, fromEnv)
	if key == "" && name != "" {
		common.LogWarn("key environment variable is empty or not set", "env_var", name)
	}
	return key
}

// Timeout parses client.timeout. Empty means no timeout.
func (c *ConfigDoc) Timeout() (time.Duration, error) {
	s, ok := util.TrimEmptyCheck(c.Client.Timeout)
	if !ok {
		return constants.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid client.timeout %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid client.timeout %q: must not be negative", s)
	}
	return d, nil
}

// FetchOptions builds the options for one fetch run.
func (c *ConfigDoc) FetchOptions() (fetch.Options, error) {
	timeout, err := c.Timeout()
	if err != nil {
		return fetch.Options{}, err
	}
	return fetch.Options{
		Endpoint: fetch.Endpoint{
			BaseURL:  c.Endpoint.BaseURL,
			Version:  c.Endpoint.Version,
			Resource: c.Endpoint.Resource,
			KeyParam: c.Endpoint.KeyParam,
			Key:      c.ResolveKey(),
		},
		OutputPath: util.TrimWithDefault(c.Output.Path, constants.DefaultOutputPath),
		Indent:     c.Output.Indent,
		Client: httpc.Config{
			Insecure:      c.Client.Insecure,
			MinTLSVersion: c.Client.MinTLSVersion,
			MaxTLSVersion: c.Client.MaxTLSVersion,
			Timeout:       timeout,
			UserAgent:     c.Client.UserAgent,
		},
	}, nil
}

// SetupLogging configures the global logger based on config settings
func (c *ConfigDoc) SetupLogging() error {
	level, err := common.ParseLogLevel(c.Logging.Level)
	if err != nil {
		return err
	}

	format := util.TrimAndLower(c.Logging.Format)
	useColor := format == "color" || format == "colour"
	if c.Logging.Color != nil {
		useColor = *c.Logging.Color
	}

	var logger *common.Logger
	switch format {
	case "json":
		logger = common.NewJSONLogger(level)
	case "color", "colour", "text", "":
		if useColor {
			logger = common.NewColorLogger(level)
		} else {
			logger = common.NewLogger(level)
		}
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json, color)", c.Logging.Format)
	}
	// An explicit color setting wins over terminal detection.
	if h, ok := logger.Handler().(*common.ColorHandler); ok && c.Logging.Color != nil {
		h.SetColorEnabled(*c.Logging.Color)
	}

	maskingEnabled := true
	if c.Logging.MaskSensitive != nil {
		maskingEnabled = *c.Logging.MaskSensitive
	}
	common.EnableMasking(maskingEnabled)
	common.SetDefaultLogger(logger)

	logger.Debug("logging configured",
		"level", level.String(),
		"format", util.TrimWithDefault(format, "text"),
		"color", useColor,
		"mask_sensitive", maskingEnabled)
	return nil
}
