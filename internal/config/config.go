package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jinhak-lab/admitscan/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Source    SourceConfig    `yaml:"source" mapstructure:"source"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Estimator EstimatorConfig `yaml:"estimator" mapstructure:"estimator"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`

	Universities []model.University `yaml:"universities" mapstructure:"universities"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SourceConfig holds the admission-data source endpoint and the
// operator-refreshed session credentials. The CSRF token and cookie expire;
// refreshing them is a manual step, not automated here.
type SourceConfig struct {
	Endpoint    string `yaml:"endpoint" mapstructure:"endpoint"`
	CSRFToken   string `yaml:"csrf_token" mapstructure:"csrf_token"`
	Cookie      string `yaml:"cookie" mapstructure:"cookie"`
	CycleParam  string `yaml:"cycle_param" mapstructure:"cycle_param"`
	TrackParam  string `yaml:"track_param" mapstructure:"track_param"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the source request timeout as a duration.
func (c SourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// AnthropicConfig holds Anthropic API settings for the LLM fallback parser.
type AnthropicConfig struct {
	Key            string `yaml:"key" mapstructure:"key"`
	Model          string `yaml:"model" mapstructure:"model"`
	MaxTokens      int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxRetries     int    `yaml:"max_retries" mapstructure:"max_retries"`
	RetryDelaySecs int    `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs"`
	ChunkWorkers   int    `yaml:"chunk_workers" mapstructure:"chunk_workers"`
	MinChunkBytes  int    `yaml:"min_chunk_bytes" mapstructure:"min_chunk_bytes"`
}

// FetchConfig configures the per-university fetch loop and the rule-parser
// quality gate that triggers the LLM fallback.
type FetchConfig struct {
	Year               int     `yaml:"year" mapstructure:"year"`
	DelaySecs          int     `yaml:"delay_secs" mapstructure:"delay_secs"`
	EmptyTypeThreshold float64 `yaml:"empty_type_threshold" mapstructure:"empty_type_threshold"`
	MinRecords         int     `yaml:"min_records" mapstructure:"min_records"`
}

// Delay returns the inter-request courtesy delay as a duration.
func (c FetchConfig) Delay() time.Duration {
	return time.Duration(c.DelaySecs) * time.Second
}

// EstimatorConfig holds the cut100 extrapolation parameters. These are
// hand-tuned constants with no validation against historical outcomes;
// they are configuration rather than hard-coded so they can be recalibrated
// without a rebuild.
type EstimatorConfig struct {
	BaseSpreadMul float64 `yaml:"base_spread_mul" mapstructure:"base_spread_mul"`
	WaitlistCoef  float64 `yaml:"waitlist_coef" mapstructure:"waitlist_coef"`
	WaitlistCap   float64 `yaml:"waitlist_cap" mapstructure:"waitlist_cap"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ADMITSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("source.timeout_secs", 30)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 8192)
	v.SetDefault("anthropic.max_retries", 3)
	v.SetDefault("anthropic.retry_delay_secs", 5)
	v.SetDefault("anthropic.chunk_workers", 3)
	v.SetDefault("anthropic.min_chunk_bytes", 200)
	v.SetDefault("fetch.year", 2025)
	v.SetDefault("fetch.delay_secs", 2)
	v.SetDefault("fetch.empty_type_threshold", 0.3)
	v.SetDefault("fetch.min_records", 3)
	v.SetDefault("estimator.base_spread_mul", 0.8)
	v.SetDefault("estimator.waitlist_coef", 0.1)
	v.SetDefault("estimator.waitlist_cap", 3.0)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
