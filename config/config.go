// Package config loads and validates mapping definition files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/artpar/fieldmap/domain/template"
	"github.com/artpar/fieldmap/pkg/ordered"
)

// Config is the root of a mapping definition file.
type Config struct {
	Client     ClientConfig      `yaml:"client"`
	Server     ServerConfig      `yaml:"server"`
	Logging    LoggingConfig     `yaml:"logging"`
	Metrics    MetricsConfig     `yaml:"metrics"`
	Attrs      map[string]any    `yaml:"attrs"`
	Templates  []TemplateConfig  `yaml:"templates"`
	Containers []ContainerConfig `yaml:"containers"`
	Endpoints  []EndpointConfig  `yaml:"endpoints"`
}

// ClientConfig configures the upstream HTTP client.
type ClientConfig struct {
	BaseURL         string            `yaml:"base_url"`
	Timeout         time.Duration     `yaml:"timeout"`
	Headers         map[string]string `yaml:"headers"`
	MaxIdleConns    int               `yaml:"max_idle_conns"`
	IdleConnTimeout time.Duration     `yaml:"idle_conn_timeout"`
}

// ServerConfig configures the mock server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures the Prometheus endpoint of the mock server.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // default: /metrics
}

// TemplateConfig declares a reusable field mapping. Name may carry an
// extends clause: "paged extends [base]".
type TemplateConfig struct {
	Name   string    `yaml:"name"`
	Fields FieldList `yaml:"fields"`
}

// ContainerConfig declares a container. Name may carry an extends
// clause, and Data seeds the container's source document.
type ContainerConfig struct {
	Name   string    `yaml:"name"`
	Fields FieldList `yaml:"fields"`
	Data   any       `yaml:"data"`
}

// EndpointConfig binds a container to an upstream operation. BaseURL
// overrides client.base_url for this endpoint only.
type EndpointConfig struct {
	Name      string            `yaml:"name"`
	Container string            `yaml:"container"`
	Method    string            `yaml:"method"`
	Path      string            `yaml:"path"`
	BaseURL   string            `yaml:"base_url"`
	Headers   map[string]string `yaml:"headers"`
	Into      string            `yaml:"into"`
}

// FieldList is a field mapping that keeps the file's declaration order.
// The order decides both extraction output order and template merge
// precedence, so decoding through a Go map would corrupt it.
type FieldList struct {
	Fields *ordered.Map
}

// UnmarshalYAML decodes a YAML mapping node pair by pair.
func (f *FieldList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: fields must be a mapping", node.Line)
	}
	f.Fields = ordered.NewMap()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		var v any
		if err := valNode.Decode(&v); err != nil {
			return fmt.Errorf("line %d: field %q: %w", valNode.Line, keyNode.Value, err)
		}
		f.Fields.Set(keyNode.Value, v)
	}
	return nil
}

// Default returns a config carrying only the defaults.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load reads a definition file from a YAML path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides applies FIELDMAP_* environment variables.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FIELDMAP_BASE_URL"); v != "" {
		cfg.Client.BaseURL = v
	}
	if v := os.Getenv("FIELDMAP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Client.Timeout = d
		}
	}
	if v := os.Getenv("FIELDMAP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FIELDMAP_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Client.Timeout == 0 {
		cfg.Client.Timeout = 30 * time.Second
	}
	if cfg.Client.MaxIdleConns == 0 {
		cfg.Client.MaxIdleConns = 100
	}
	if cfg.Client.IdleConnTimeout == 0 {
		cfg.Client.IdleConnTimeout = 90 * time.Second
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

// Validate checks the definition file as a whole and reports every
// problem at once.
func Validate(cfg *Config) error {
	var errs []string

	containers := make(map[string]bool, len(cfg.Containers))
	for i, c := range cfg.Containers {
		decl := template.ParseDeclaration(c.Name)
		if decl.Name == "" {
			errs = append(errs, fmt.Sprintf("containers[%d].name is required", i))
			continue
		}
		if containers[decl.Name] {
			errs = append(errs, fmt.Sprintf("containers[%d]: duplicate container %q", i, decl.Name))
		}
		containers[decl.Name] = true
	}

	templates := make(map[string]bool, len(cfg.Templates))
	for i, tpl := range cfg.Templates {
		decl := template.ParseDeclaration(tpl.Name)
		if decl.Name == "" {
			errs = append(errs, fmt.Sprintf("templates[%d].name is required", i))
			continue
		}
		if templates[decl.Name] {
			errs = append(errs, fmt.Sprintf("templates[%d]: duplicate template %q", i, decl.Name))
		}
		templates[decl.Name] = true
	}

	endpoints := make(map[string]bool, len(cfg.Endpoints))
	needsBaseURL := false
	for i, ep := range cfg.Endpoints {
		if ep.Name == "" {
			errs = append(errs, fmt.Sprintf("endpoints[%d].name is required", i))
		} else if endpoints[ep.Name] {
			errs = append(errs, fmt.Sprintf("endpoints[%d]: duplicate endpoint %q", i, ep.Name))
		}
		endpoints[ep.Name] = true

		if ep.Container == "" {
			errs = append(errs, fmt.Sprintf("endpoints[%d].container is required", i))
		} else if !containers[ep.Container] {
			errs = append(errs, fmt.Sprintf("endpoints[%d]: unknown container %q", i, ep.Container))
		}
		if ep.Into != "" && !containers[ep.Into] {
			errs = append(errs, fmt.Sprintf("endpoints[%d]: unknown into container %q", i, ep.Into))
		}
		if ep.BaseURL == "" {
			needsBaseURL = true
		}
	}

	if needsBaseURL && cfg.Client.BaseURL == "" {
		errs = append(errs, "client.base_url is required when an endpoint has no base_url of its own")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
