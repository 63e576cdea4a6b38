package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	frgerror "github.com/msto63/frege/foundation/core/error"
)

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Lang    LangConfig    `toml:"lang" yaml:"lang"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	REPL    REPLConfig    `toml:"repl" yaml:"repl"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name" yaml:"name"`
	Environment string `toml:"environment" yaml:"environment"`
	DataDir     string `toml:"data_dir" yaml:"data_dir"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	LogFormat   string `toml:"log_format" yaml:"log_format"`
}

// LangConfig holds parser and solver limits
type LangConfig struct {
	MaxDepth           int      `toml:"max_depth" yaml:"max_depth"`
	MaxCallDepth       int      `toml:"max_call_depth" yaml:"max_call_depth"`
	MaxSourceBytes     int      `toml:"max_source_bytes" yaml:"max_source_bytes"`
	SeparateNamespaces bool     `toml:"separate_namespaces" yaml:"separate_namespaces"`
	SkipCheck          bool     `toml:"skip_check" yaml:"skip_check"`
	EvalTimeout        Duration `toml:"eval_timeout" yaml:"eval_timeout"`
}

// HistoryConfig holds run history settings
type HistoryConfig struct {
	Enabled       bool   `toml:"enabled" yaml:"enabled"`
	Path          string `toml:"path" yaml:"path"`
	RetentionDays int    `toml:"retention_days" yaml:"retention_days"`
}

// ServerConfig holds the gRPC and WebSocket endpoints
type ServerConfig struct {
	Host          string   `toml:"host" yaml:"host"`
	GRPCPort      int      `toml:"grpc_port" yaml:"grpc_port"`
	HTTPPort      int      `toml:"http_port" yaml:"http_port"`
	MaxRecvSize   int      `toml:"max_recv_size" yaml:"max_recv_size"`
	ReadTimeout   Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout  Duration `toml:"write_timeout" yaml:"write_timeout"`
	CacheTTL      Duration `toml:"cache_ttl" yaml:"cache_ttl"`
	CacheCleanup  Duration `toml:"cache_cleanup" yaml:"cache_cleanup"`
	EnableReflect bool     `toml:"enable_reflection" yaml:"enable_reflection"`
}

// REPLConfig holds interactive session settings
type REPLConfig struct {
	Prompt  string `toml:"prompt" yaml:"prompt"`
	ShowAST bool   `toml:"show_ast" yaml:"show_ast"`
	Record  bool   `toml:"record" yaml:"record"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// MarshalYAML formats the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, frgerror.Newf("config file not found: %s", path).
			WithCode(frgerror.CodeNotFound).
			WithDetail("path", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, frgerror.Wrap(err, "failed to read config").WithCode(frgerror.CodeConfigError)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, frgerror.Wrap(err, "failed to parse config").
				WithCode(frgerror.CodeInvalidConfig).
				WithDetail("path", path)
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, frgerror.Wrap(err, "failed to parse config").
				WithCode(frgerror.CodeInvalidConfig).
				WithDetail("path", path)
		}
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from the FREGE_CONFIG environment
// variable or the first default location that exists. Without any file the
// defaults are returned.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("FREGE_CONFIG")
	if path == "" {
		// Try default locations
		defaultPaths := []string{
			"./configs/config.toml",
			"./frege.toml",
			"./frege.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/frege/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return Default(), nil
	}

	return Load(path)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "frege"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "console"
	}

	// Lang
	if c.Lang.MaxDepth == 0 {
		c.Lang.MaxDepth = 256
	}
	if c.Lang.MaxCallDepth == 0 {
		c.Lang.MaxCallDepth = 200
	}
	if c.Lang.MaxSourceBytes == 0 {
		c.Lang.MaxSourceBytes = 1 << 20
	}
	if c.Lang.EvalTimeout.Duration == 0 {
		c.Lang.EvalTimeout.Duration = 5 * time.Second
	}

	// History
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.General.DataDir, "history.db")
	}
	if c.History.RetentionDays == 0 {
		c.History.RetentionDays = 30
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = 9310
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 9311
	}
	if c.Server.MaxRecvSize == 0 {
		c.Server.MaxRecvSize = 4 * 1024 * 1024
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 30 * time.Second
	}
	if c.Server.CacheTTL.Duration == 0 {
		c.Server.CacheTTL.Duration = 10 * time.Minute
	}
	if c.Server.CacheCleanup.Duration == 0 {
		c.Server.CacheCleanup.Duration = time.Minute
	}

	// REPL
	if c.REPL.Prompt == "" {
		c.REPL.Prompt = "» "
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.History.Path = os.ExpandEnv(c.History.Path)
}

// Validate rejects values that cannot work
func (c *Config) Validate() error {
	if c.Lang.MaxDepth < 0 || c.Lang.MaxCallDepth < 0 || c.Lang.MaxSourceBytes < 0 {
		return frgerror.New("lang limits must not be negative").WithCode(frgerror.CodeInvalidConfig)
	}
	for name, port := range map[string]int{"grpc_port": c.Server.GRPCPort, "http_port": c.Server.HTTPPort} {
		if port < 0 || port > 65535 {
			return frgerror.Newf("server.%s out of range: %d", name, port).
				WithCode(frgerror.CodeInvalidConfig).
				WithDetail("field", name)
		}
	}
	return nil
}

// GRPCAddress returns host:port of the gRPC listener
func (c *Config) GRPCAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.GRPCPort))
}

// HTTPAddress returns host:port of the WebSocket listener
func (c *Config) HTTPAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}
