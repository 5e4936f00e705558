package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. AITT_APPIUM_URL.
const EnvPrefix = "AITT"

// Config is the complete runtime configuration.
type Config struct {
	Appium     AppiumConfig     `mapstructure:"appium"     yaml:"appium"`
	Model      ModelConfig      `mapstructure:"model"      yaml:"model"`
	Screenshot ScreenshotConfig `mapstructure:"screenshot" yaml:"screenshot"`
	Reports    ReportsConfig    `mapstructure:"reports"    yaml:"reports"`
	Run        RunConfig        `mapstructure:"run"        yaml:"run"`
	Logger     LoggerConfig     `mapstructure:"logger"     yaml:"logger"`
}

// AppiumConfig describes the automation server and session behavior.
type AppiumConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
	// Capabilities is a JSON or YAML file of desired capabilities. Empty
	// selects the built-in Android defaults.
	Capabilities      string        `mapstructure:"capabilities"       yaml:"capabilities"`
	ImplicitWait      time.Duration `mapstructure:"implicit_wait"      yaml:"implicit_wait"`
	KeepAliveInterval time.Duration `mapstructure:"keepalive_interval" yaml:"keepalive_interval"`
	SettleDelay       time.Duration `mapstructure:"settle_delay"       yaml:"settle_delay"`
}

// ModelConfig selects the decision model.
type ModelConfig struct {
	Provider  string        `mapstructure:"provider"   yaml:"provider"`
	Name      string        `mapstructure:"name"       yaml:"name"`
	MaxTokens int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	APIKey    string        `mapstructure:"api_key"    yaml:"-"`
	BaseURL   string        `mapstructure:"base_url"   yaml:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"    yaml:"timeout"`
}

// ScreenshotConfig bounds the image sent with each request.
type ScreenshotConfig struct {
	MaxLong  int `mapstructure:"max_long"  yaml:"max_long"`
	MaxShort int `mapstructure:"max_short" yaml:"max_short"`
	Quality  int `mapstructure:"quality"   yaml:"quality"`
	GridSize int `mapstructure:"grid_size" yaml:"grid_size"`
}

type ReportsConfig struct {
	Dir         string `mapstructure:"dir"          yaml:"dir"`
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`
}

type RunConfig struct {
	Debug    bool `mapstructure:"debug"     yaml:"debug"`
	MaxSteps int  `mapstructure:"max_steps" yaml:"max_steps"`
}

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level"        yaml:"level"`
	Format      string      `mapstructure:"format"       yaml:"format"`
	AddSource   bool        `mapstructure:"add_source"   yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file"     yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size"     yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups"  yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age"      yaml:"max_age"`
	Compress    bool        `mapstructure:"compress"     yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors"       yaml:"colors"`
}

// ColorConfig maps log levels to terminal color names.
type ColorConfig struct {
	Debug  string `mapstructure:"debug"  yaml:"debug"`
	Info   string `mapstructure:"info"   yaml:"info"`
	Warn   string `mapstructure:"warn"   yaml:"warn"`
	Error  string `mapstructure:"error"  yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic"  yaml:"panic"`
	Fatal  string `mapstructure:"fatal"  yaml:"fatal"`
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	// -- Appium --
	v.SetDefault("appium.url", "http://localhost:4723")
	v.SetDefault("appium.capabilities", "")
	v.SetDefault("appium.implicit_wait", "200ms")
	v.SetDefault("appium.keepalive_interval", "10s")
	v.SetDefault("appium.settle_delay", "1s")

	// -- Model --
	v.SetDefault("model.provider", "openai")
	v.SetDefault("model.name", "gpt-4-turbo")
	v.SetDefault("model.max_tokens", 200)
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.base_url", "")
	v.SetDefault("model.timeout", "2m")

	// -- Screenshot --
	v.SetDefault("screenshot.max_long", 2048)
	v.SetDefault("screenshot.max_short", 768)
	v.SetDefault("screenshot.quality", 85)
	v.SetDefault("screenshot.grid_size", 0)

	// -- Reports --
	v.SetDefault("reports.dir", "./reports")
	v.SetDefault("reports.metrics_file", "")

	// -- Run --
	v.SetDefault("run.debug", false)
	v.SetDefault("run.max_steps", 0)

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "ai-testing-tool")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")
}

// NewDefaultConfig returns the configuration with only defaults applied.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load prepares v (defaults, .env, environment, optional config file) and
// returns the validated configuration.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("ai-testing-tool")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper unmarshals and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	_ = v.BindEnv("model.api_key", EnvPrefix+"_MODEL_API_KEY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Model.APIKey == "" {
		cfg.Model.APIKey = providerAPIKey(cfg.Model.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// providerAPIKey reads the key under the provider's conventional variable.
func providerAPIKey(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "gemini":
		if k := os.Getenv("GEMINI_API_KEY"); k != "" {
			return k
		}
		return os.Getenv("GOOGLE_API_KEY")
	}
	return ""
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Appium.URL == "" {
		return fmt.Errorf("appium.url is required")
	}
	switch c.Model.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("model.provider must be openai or gemini, got %q", c.Model.Provider)
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("model.max_tokens must be a positive integer")
	}
	if c.Screenshot.MaxLong <= 0 || c.Screenshot.MaxShort <= 0 {
		return fmt.Errorf("screenshot.max_long and screenshot.max_short must be positive")
	}
	if c.Screenshot.Quality < 1 || c.Screenshot.Quality > 100 {
		return fmt.Errorf("screenshot.quality must be between 1 and 100")
	}
	if c.Screenshot.GridSize < 0 {
		return fmt.Errorf("screenshot.grid_size must not be negative")
	}
	if c.Reports.Dir == "" {
		return fmt.Errorf("reports.dir is required")
	}
	if c.Run.MaxSteps < 0 {
		return fmt.Errorf("run.max_steps must not be negative")
	}
	return nil
}

// LoadCapabilities reads a capabilities file. JSON files parse as YAML.
func LoadCapabilities(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capabilities: %w", err)
	}
	var caps map[string]interface{}
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return nil, fmt.Errorf("parse capabilities %s: %w", path, err)
	}
	if len(caps) == 0 {
		return nil, fmt.Errorf("capabilities file %s is empty", path)
	}
	return caps, nil
}
