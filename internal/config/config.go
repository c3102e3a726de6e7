package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Bocha     BochaConfig     `yaml:"bocha" mapstructure:"bocha"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Cost      CostConfig      `yaml:"cost" mapstructure:"cost"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings. Models maps an agent
// role name to the model serving it; unlisted roles use DefaultModel.
type AnthropicConfig struct {
	Key          string            `yaml:"key" mapstructure:"key"`
	DefaultModel string            `yaml:"default_model" mapstructure:"default_model"`
	Models       map[string]string `yaml:"models" mapstructure:"models"`
	MaxTokens    int64             `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SearchConfig selects and throttles the web search provider.
type SearchConfig struct {
	Provider string  `yaml:"provider" mapstructure:"provider"`
	QPS      float64 `yaml:"qps" mapstructure:"qps"`
}

// BochaConfig holds Bocha web search API settings.
type BochaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// JinaConfig holds Jina AI Reader and Search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// DepthPreset bounds the search effort of one run.
type DepthPreset struct {
	SearchTasks int `yaml:"search_tasks" mapstructure:"search_tasks"`
	MinLeads    int `yaml:"min_leads" mapstructure:"min_leads"`
	MaxLeads    int `yaml:"max_leads" mapstructure:"max_leads"`
}

// PipelineConfig configures pipeline behavior per search depth.
type PipelineConfig struct {
	DepthPresets map[string]DepthPreset `yaml:"depth_presets" mapstructure:"depth_presets"`
}

// Preset returns the preset for the named depth, falling back to the
// standard preset when the name is unknown.
func (p PipelineConfig) Preset(depth string) DepthPreset {
	if preset, ok := p.DepthPresets[depth]; ok {
		return preset
	}
	return DepthPreset{SearchTasks: 30, MinLeads: 100, MaxLeads: 350}
}

// OutputConfig configures report artifact generation.
type OutputConfig struct {
	Dir  string `yaml:"dir" mapstructure:"dir"`
	XLSX bool   `yaml:"xlsx" mapstructure:"xlsx"`
}

// CostConfig configures spend estimation.
type CostConfig struct {
	// RatesFile optionally points at a YAML file overriding the
	// built-in model pricing.
	RatesFile string `yaml:"rates_file" mapstructure:"rates_file"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leadscout.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.default_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("search.provider", "jina")
	v.SetDefault("search.qps", 1.0)
	v.SetDefault("bocha.base_url", "https://api.bocha.cn")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("output.dir", "outputs/sales_leads")
	v.SetDefault("output.xlsx", true)
	v.SetDefault("cost.rates_file", "")
	v.SetDefault("pipeline.depth_presets.quick.search_tasks", 10)
	v.SetDefault("pipeline.depth_presets.quick.min_leads", 30)
	v.SetDefault("pipeline.depth_presets.quick.max_leads", 100)
	v.SetDefault("pipeline.depth_presets.standard.search_tasks", 30)
	v.SetDefault("pipeline.depth_presets.standard.min_leads", 100)
	v.SetDefault("pipeline.depth_presets.standard.max_leads", 350)
	v.SetDefault("pipeline.depth_presets.deep.search_tasks", 60)
	v.SetDefault("pipeline.depth_presets.deep.min_leads", 200)
	v.SetDefault("pipeline.depth_presets.deep.max_leads", 600)

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
