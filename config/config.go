// Package config loads registro settings from flags, environment, an
// optional YAML file and a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"registro/registration"
)

const EnvPrefix = "REGISTRO"

type Config struct {
	Endpoint  string   `mapstructure:"endpoint"`
	Fields    []string `mapstructure:"fields"`
	Debug     bool     `mapstructure:"debug"`
	Level     string   `mapstructure:"log_level"`
	LogFile   string   `mapstructure:"log_file"`
	LogFormat string   `mapstructure:"log_format"`
}

// Defaults mirrors the fields of the registration serializer.
func Defaults() Config {
	return Config{
		Endpoint:  registration.DefaultEndpoint,
		Fields:    []string{"username", "email", "password", "ruc", "direccion", "telefono"},
		Level:     "info",
		LogFormat: "text",
	}
}

// LoadDotEnv loads environment variables from path. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration into v and decodes it. With an empty
// cfgFile, registro.yaml is looked up in the working directory and may be
// absent.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	defaults := Defaults()
	v.SetDefault("endpoint", defaults.Endpoint)
	v.SetDefault("fields", defaults.Fields)
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("log_level", defaults.Level)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("log_format", defaults.LogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("registro")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: expected an http or https URL", c.Endpoint)
	}
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: expected debug, info, warn or error", c.Level)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q: expected text or json", c.LogFormat)
	}
	if len(c.Fields) == 0 {
		return errors.New("no form fields configured")
	}
	seen := make(map[string]bool, len(c.Fields))
	for _, name := range c.Fields {
		if strings.TrimSpace(name) == "" {
			return errors.New("form field names must not be blank")
		}
		if seen[name] {
			return fmt.Errorf("form field %q listed twice", name)
		}
		seen[name] = true
	}
	return nil
}

// LogLevel returns the slog level name. --debug overrides log_level.
func (c Config) LogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.Level
}
