// Package config loads process configuration from the environment.
//
// Values are read once at startup. A .env file in the working directory, when
// present, seeds variables that are not already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v7"
	"github.com/joho/godotenv"
	"github.com/petasbytes/redis-mcp/store"
)

// Transports accepted by MCP_TRANSPORT.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Config is the MCP server configuration.
type Config struct {
	Store       store.Config
	Transport   string `env:"MCP_TRANSPORT"    envDefault:"stdio"`
	Addr        string `env:"MCP_ADDR"         envDefault:":8000"`
	LogLevel    string `env:"MCP_LOG_LEVEL"    envDefault:"info"`
	MetricsAddr string `env:"MCP_METRICS_ADDR"`
	EventsPath  string `env:"MCP_EVENTS_PATH"`

	// PoolSize caps pooled Redis connections; zero keeps the client default.
	PoolSize int `env:"REDIS_POOL_SIZE" envDefault:"0"`
}

// Agent configures the local agent binary.
type Agent struct {
	Store           store.Config
	APIKey          string `env:"ANTHROPIC_API_KEY"`
	Model           string `env:"AGENT_MODEL"            envDefault:"claude-3-7-sonnet-latest"`
	MaxTokens       int64  `env:"AGENT_MAX_TOKENS"       envDefault:"1024"`
	ConversationKey string `env:"AGENT_CONVERSATION_KEY" envDefault:"agent:conversation"`
	TokenBudget     int    `env:"AGENT_TOKEN_BUDGET"     envDefault:"0"`
	LogLevel        string `env:"MCP_LOG_LEVEL"          envDefault:"warn"`
	EventsPath      string `env:"MCP_EVENTS_PATH"`
}

// Options tune parsing. Environment replaces the process environment when
// set; dotenv files then only extend that map. Only the first Options value
// is used.
type Options struct {
	Environment map[string]string
	DotEnvFiles []string
}

// Load parses a Config.
func Load(opts ...Options) (Config, error) {
	var cfg Config
	if err := parse(&cfg, opts...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportSSE, TransportHTTP:
		return nil
	default:
		return fmt.Errorf("invalid transport %q: want %s, %s or %s", c.Transport, TransportStdio, TransportSSE, TransportHTTP)
	}
}

// LoadAgent parses an Agent configuration.
func LoadAgent(opts ...Options) (Agent, error) {
	var cfg Agent
	if err := parse(&cfg, opts...); err != nil {
		return Agent{}, err
	}
	return cfg, nil
}

func parse(v any, opts ...Options) error {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	var envOpts env.Options
	if o.Environment != nil {
		environ, err := readDotEnv(o.Environment, o.DotEnvFiles...)
		if err != nil {
			return err
		}
		envOpts.Environment = environ
	} else if err := loadDotEnv(o.DotEnvFiles...); err != nil {
		return err
	}

	if err := env.Parse(v, envOpts); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// loadDotEnv loads the given files (default .env) into the process
// environment; missing files are skipped.
func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// readDotEnv returns a copy of environ extended with values from files
// (default .env). Keys already in environ win; the process environment is
// left alone.
func readDotEnv(environ map[string]string, files ...string) (map[string]string, error) {
	out := make(map[string]string, len(environ))
	for k, v := range environ {
		out[k] = v
	}
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range vals {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out, nil
}
