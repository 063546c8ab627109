// config/config.go
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes every environment variable, e.g. AUDIENCEKIT_HTTP_PORT.
const EnvPrefix = "AUDIENCEKIT"

// HTTPConfig groups listener settings and server timeouts.
type HTTPConfig struct {
	HTTPPort        int           `mapstructure:"http_port" json:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout"`
}

// CORSConfig controls cross-origin access for spreadsheet add-ons that call
// the API from the browser.
type CORSConfig struct {
	EnableCORS         bool     `mapstructure:"enable_cors" json:"enable_cors"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins" json:"cors_allowed_origins"`
	CORSAllowedMethods []string `mapstructure:"cors_allowed_methods" json:"cors_allowed_methods"`
	CORSAllowedHeaders []string `mapstructure:"cors_allowed_headers" json:"cors_allowed_headers"`
	CORSMaxAge         int      `mapstructure:"cors_max_age" json:"cors_max_age"`
}

// CoreConfig is the configuration of the audiencekit HTTP service.
type CoreConfig struct {
	Env      string `mapstructure:"env" json:"env"`             // "dev" | "prod"
	LogLevel string `mapstructure:"log_level" json:"log_level"` // debug, info, warn, error …

	HTTP HTTPConfig `mapstructure:",squash" json:"http"`
	CORS CORSConfig `mapstructure:",squash" json:"cors"`

	MaxRequestBodyBytes int64 `mapstructure:"max_request_body_bytes" json:"max_request_body_bytes"`
	EnableMetrics       bool  `mapstructure:"enable_metrics" json:"enable_metrics"`

	// APIKey, when set, is required on every /v1 request.
	APIKey string `mapstructure:"api_key" json:"api_key"`

	// Per-client limit on /v1 requests. 0 disables.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" json:"rate_limit_burst"`
}

// Dump returns the config as indented JSON with secrets redacted.
func (c CoreConfig) Dump() string {
	cp := c
	if cp.APIKey != "" {
		cp.APIKey = "[redacted]"
	}
	b, _ := json.MarshalIndent(cp, "", "  ")
	return string(b)
}

var durationKeys = []struct {
	name string
	def  time.Duration
}{
	{"read_timeout", 15 * time.Second},
	{"write_timeout", 30 * time.Second},
	{"idle_timeout", 60 * time.Second},
	{"shutdown_timeout", 15 * time.Second},
}

var listKeys = []string{"cors_allowed_origins", "cors_allowed_methods", "cors_allowed_headers"}

// Load merges defaults → config file → env vars → explicit flags into one
// CoreConfig. Final precedence (highest wins): flags > env > file > defaults.
//
// args are the serve command's arguments. The config file is the one named
// by --config, or the first audiencekit.{yaml,yml,json,toml} found in the
// working directory. A .env file is loaded first if present; real
// environment variables still win over it.
func Load(logger *zap.Logger, args []string) (*CoreConfig, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := godotenv.Load(); err == nil {
		logger.Info("loaded .env file")
	}

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range allKeys() {
		_ = v.BindEnv(k)
	}

	configFile, _ := fs.GetString("config")
	if err := mergeConfigFile(logger, v, configFile); err != nil {
		return nil, err
	}

	setDefaults(v)

	// Only explicitly set flags override env and file values.
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed && f.Name != "config" {
			_ = v.BindPFlag(f.Name, f)
		}
	})

	if err := normalizeListKeys(logger, v, listKeys...); err != nil {
		return nil, err
	}

	// Durations accept "90s" as well as plain seconds; normalize them before
	// viper's own string→duration hook sees them.
	var durErrs []string
	for _, k := range durationKeys {
		d, err := parseDuration(v.Get(k.name), k.def)
		if err != nil {
			durErrs = append(durErrs, fmt.Sprintf("%s: %v", k.name, err))
		}
		v.Set(k.name, d)
	}
	if len(durErrs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(durErrs, ", "))
	}

	var cfg CoreConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.String("config", "", "Path to a config file (yaml|yml|json|toml)")
	fs.String("env", "dev", `Runtime environment "dev"|"prod"`)
	fs.String("log_level", "info", "Log level")
	fs.Int("http_port", 8080, "HTTP port")
	fs.String("read_timeout", "15s", "HTTP read timeout")
	fs.String("write_timeout", "30s", "HTTP write timeout")
	fs.String("idle_timeout", "60s", "HTTP idle timeout")
	fs.String("shutdown_timeout", "15s", "Graceful shutdown window")
	fs.Int64("max_request_body_bytes", 1<<20, "Max request body size in bytes (0 = unlimited)")
	fs.Bool("enable_metrics", true, "Expose Prometheus metrics on /metrics")
	fs.String("api_key", "", "API key required on /v1 routes (empty disables)")
	fs.Float64("rate_limit_rps", 0, "Per-client requests per second on /v1 (0 disables)")
	fs.Int("rate_limit_burst", 20, "Per-client burst on /v1")
	fs.Bool("enable_cors", false, "Enable CORS")
	fs.String("cors_allowed_origins", "", `JSON array of origins, e.g. '["https://docs.google.com"]'`)
	fs.String("cors_allowed_methods", "", `JSON array of methods, e.g. '["POST"]'`)
	fs.String("cors_allowed_headers", "", `JSON array of headers, e.g. '["Content-Type","X-API-Key"]'`)
	fs.Int("cors_max_age", 0, "CORS: max age seconds (0 disables cache)")
	return fs
}

func allKeys() []string {
	return []string{
		"env", "log_level",
		"http_port", "read_timeout", "write_timeout", "idle_timeout", "shutdown_timeout",
		"max_request_body_bytes", "enable_metrics", "api_key",
		"rate_limit_rps", "rate_limit_burst",
		"enable_cors", "cors_allowed_origins", "cors_allowed_methods", "cors_allowed_headers", "cors_max_age",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_port", 8080)
	for _, k := range durationKeys {
		v.SetDefault(k.name, k.def.String())
	}
	v.SetDefault("max_request_body_bytes", int64(1<<20))
	v.SetDefault("enable_metrics", true)
	v.SetDefault("api_key", "")
	v.SetDefault("rate_limit_rps", 0.0)
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("enable_cors", false)
	v.SetDefault("cors_allowed_origins", []string{})
	v.SetDefault("cors_allowed_methods", []string{})
	v.SetDefault("cors_allowed_headers", []string{})
	v.SetDefault("cors_max_age", 0)
}

// mergeConfigFile merges the explicit file, or the first default file found.
// A missing explicit file is an error; unreadable default files are skipped.
func mergeConfigFile(logger *zap.Logger, v *viper.Viper, explicit string) error {
	if explicit != "" {
		return mergeFile(v, explicit, configType(explicit))
	}
	for _, ext := range [...]string{"yaml", "yml", "json", "toml"} {
		file := "audiencekit." + ext
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := mergeFile(v, file, ext); err != nil {
			logger.Warn("cannot load config file", zap.String("file", file), zap.Error(err))
			continue
		}
		logger.Info("loaded config file", zap.String("file", file))
		return nil
	}
	return nil
}

func mergeFile(v *viper.Viper, file, typ string) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	v.SetConfigType(typ)
	if err := v.MergeConfig(bytes.NewReader(b)); err != nil {
		return fmt.Errorf("decode config file %s: %w", file, err)
	}
	return nil
}

func configType(file string) string {
	i := strings.LastIndexByte(file, '.')
	if i < 0 {
		return "yaml"
	}
	return strings.ToLower(file[i+1:])
}

// normalizeListKeys coerces JSON-string values into []string for the given keys.
func normalizeListKeys(logger *zap.Logger, v *viper.Viper, keys ...string) error {
	for _, key := range keys {
		switch t := v.Get(key).(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				v.Set(key, []string{})
				continue
			}
			var arr []string
			if err := json.Unmarshal([]byte(s), &arr); err != nil {
				return fmt.Errorf("config key %q expects a JSON array string, got %q: %w", key, s, err)
			}
			v.Set(key, arr)
		case []any:
			arr := make([]string, 0, len(t))
			for _, e := range t {
				arr = append(arr, fmt.Sprint(e))
			}
			v.Set(key, arr)
		case []string, nil:
		default:
			logger.Warn("unexpected type for list key; expected JSON array/string",
				zap.String("key", key), zap.Any("value", t))
		}
	}
	return nil
}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks cfg and reports every problem at once.
func Validate(cfg CoreConfig) error {
	var missing, invalid []string

	if cfg.Env != "dev" && cfg.Env != "prod" {
		invalid = append(invalid, `env must be "dev" or "prod"`)
	}
	if !validLogLevel(cfg.LogLevel) {
		invalid = append(invalid, "log_level must be one of "+strings.Join(ValidLogLevels, ", "))
	}
	if cfg.HTTP.HTTPPort <= 0 || cfg.HTTP.HTTPPort > 65535 {
		invalid = append(invalid, "http_port must be in 1..65535")
	}
	if cfg.MaxRequestBodyBytes < 0 {
		invalid = append(invalid, "max_request_body_bytes must be >= 0")
	}
	if cfg.RateLimitRPS < 0 {
		invalid = append(invalid, "rate_limit_rps must be >= 0")
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst < 1 {
		invalid = append(invalid, "rate_limit_burst must be >= 1 when rate_limit_rps > 0")
	}
	if cfg.Env == "prod" && cfg.APIKey == "" {
		missing = append(missing, EnvPrefix+"_API_KEY (or --api_key) in prod")
	}

	if cfg.CORS.EnableCORS {
		if len(cfg.CORS.CORSAllowedOrigins) == 0 {
			missing = append(missing, "CORS: cors_allowed_origins (JSON array) required when enable_cors=true")
		}
		if len(cfg.CORS.CORSAllowedMethods) == 0 {
			missing = append(missing, "CORS: cors_allowed_methods (JSON array) required when enable_cors=true")
		}
		if cfg.CORS.CORSMaxAge < 0 {
			invalid = append(invalid, "CORS: cors_max_age must be >= 0")
		}
	}

	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(invalid, ", "))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(parts, " | "))
}

// ValidLogLevels lists the zap levels accepted by log_level.
var ValidLogLevels = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

func validLogLevel(level string) bool {
	for _, l := range ValidLogLevels {
		if level == l {
			return true
		}
	}
	return false
}
