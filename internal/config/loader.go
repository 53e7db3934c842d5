package config

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key when read from the environment.
const EnvPrefix = "ITEMSERVICE"

// ConfigFileEnv names the variable pointing at an optional YAML/JSON/TOML config file.
const ConfigFileEnv = EnvPrefix + "_CONFIG_FILE"

// Config captures environment driven configuration values for the item service.
type Config struct {
	HTTPPort      int    `env:"ITEMSERVICE_HTTP_PORT" validate:"min=1,max=65535"`
	SQLiteDSN     string `env:"ITEMSERVICE_SQLITE_DSN" validate:"required"`
	DefaultLocale string `env:"ITEMSERVICE_DEFAULT_LOCALE" validate:"required,oneof=en ko"`
	MessagesFile  string `env:"ITEMSERVICE_MESSAGES_FILE" validate:"omitempty,file"`
	LogLevel      string `env:"ITEMSERVICE_LOG_LEVEL" validate:"required,oneof=debug info warn error"`
	SeedData      bool   `env:"ITEMSERVICE_SEED_DATA"`
}

var defaults = map[string]any{
	"http_port":      8080,
	"sqlite_dsn":     "items.db",
	"default_locale": "ko",
	"messages_file":  "",
	"log_level":      "info",
	"seed_data":      true,
}

// Load parses configuration values from the current process environment and,
// when ITEMSERVICE_CONFIG_FILE is set, from that file. Environment variables
// win over the file, the file wins over defaults.
//
// Missing required values are reported before invalid ones, each as a single
// error listing every offending variable.
func Load() (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString("config_file")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	invalid := make([]string, 0, 2)

	cfg := Config{
		SQLiteDSN:     strings.TrimSpace(v.GetString("sqlite_dsn")),
		DefaultLocale: strings.ToLower(strings.TrimSpace(v.GetString("default_locale"))),
		MessagesFile:  strings.TrimSpace(v.GetString("messages_file")),
		LogLevel:      strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
	}

	port, err := cast.ToIntE(strings.TrimSpace(cast.ToString(v.Get("http_port"))))
	if err != nil {
		invalid = append(invalid, envName("http_port"))
	} else {
		cfg.HTTPPort = port
	}

	seed, err := cast.ToBoolE(v.Get("seed_data"))
	if err != nil {
		invalid = append(invalid, envName("seed_data"))
	} else {
		cfg.SeedData = seed
	}

	missing, failed := validate(cfg)
	invalid = lo.Uniq(append(invalid, failed...))

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// SlogLevel converts LogLevel for a slog handler.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("env"); name != "" {
			return name
		}
		return field.Name
	})
	return validate
}

// validate splits struct validation failures into missing and invalid variables.
func validate(cfg Config) (missing, invalid []string) {
	err := structValidator.Struct(cfg)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, []string{err.Error()}
	}

	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
			continue
		}
		invalid = append(invalid, fe.Field())
	}
	return missing, invalid
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}
