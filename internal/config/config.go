// Package config provides centralized configuration management using Viper.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/syntax-syndicate/chatshell/internal/schema"
)

// Config holds all configuration values for chatshell.
type Config struct {
	Workspace      string `mapstructure:"workspace" yaml:"workspace" json:"workspace" jsonschema:"title=Workspace,description=Active workspace name,default=default"`
	DataDir        string `mapstructure:"data_dir" yaml:"data_dir" json:"data_dir" jsonschema:"title=Data directory,description=Where workspaces and transcripts are stored,default=.chatshell"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level" json:"log_level" jsonschema:"title=Log level,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	LogFile        string `mapstructure:"log_file" yaml:"log_file" json:"log_file" jsonschema:"title=Log file,description=Optional log file path"`
	MaxSuggestions int    `mapstructure:"max_suggestions" yaml:"max_suggestions" json:"max_suggestions" jsonschema:"title=Max suggestions,minimum=1,maximum=50,default=10"`
	ArrayDelimiter string `mapstructure:"array_delimiter" yaml:"array_delimiter" json:"array_delimiter" jsonschema:"title=Array delimiter,minLength=1,maxLength=3"`
	Triggers       string `mapstructure:"triggers" yaml:"triggers" json:"triggers" jsonschema:"title=Completion triggers,description=Characters that open a completion context,default=/@:#"`
	CacheSize      int    `mapstructure:"cache_size" yaml:"cache_size" json:"cache_size" jsonschema:"title=Completion cache size,minimum=0,default=128"`
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("chatshell")

	v.SetDefault("workspace", "default")
	v.SetDefault("data_dir", ".chatshell")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("max_suggestions", 10)
	v.SetDefault("array_delimiter", ",")
	v.SetDefault("triggers", "/@:#")
	v.SetDefault("cache_size", 128)

	// Setup ENV binding with CHATSHELL_ prefix
	v.SetEnvPrefix("CHATSHELL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings for better int parsing
	for _, key := range []string{"workspace", "data_dir", "log_level", "log_file", "max_suggestions", "array_delimiter", "triggers", "cache_size"} {
		env := "CHATSHELL_" + strings.ToUpper(key)
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config over it (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// GlobalPath returns the XDG global config path.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "chatshell", "chatshell.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "chatshell", "chatshell.yml")
}

// ProjectPath returns the project-local config path.
// Returns ./chatshell.yml in the current working directory.
func ProjectPath() string {
	return "chatshell.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	path := ProjectPath()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// YAML renders the config the way WriteProject would persist it. The
// settings dialog diffs this against the edited copy before saving.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	return string(data), nil
}

// FormSchema derives the settings form model from the Config struct itself,
// so the schema wizard that drives every other dialog also drives the
// settings dialog. Reflection happens through invopop/jsonschema; the
// resulting JSON is fed to schema.Parse like any hand-written schema.
func FormSchema() (*schema.Model, error) {
	r := jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	js := r.Reflect(&Config{})

	raw, err := json.Marshal(js)
	if err != nil {
		return nil, fmt.Errorf("marshaling reflected schema: %w", err)
	}
	m, err := schema.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing reflected schema: %w", err)
	}
	return m, nil
}

// Values returns the config as a map keyed by schema field names, used to
// seed the settings wizard.
func (c *Config) Values() map[string]any {
	return map[string]any{
		"workspace":       c.Workspace,
		"data_dir":        c.DataDir,
		"log_level":       c.LogLevel,
		"log_file":        c.LogFile,
		"max_suggestions": c.MaxSuggestions,
		"array_delimiter": c.ArrayDelimiter,
		"triggers":        c.Triggers,
		"cache_size":      c.CacheSize,
	}
}

// ApplyValues writes wizard output back onto the config. Unknown keys are
// ignored; numeric values may arrive as int64 from coercion.
func (c *Config) ApplyValues(values map[string]any) {
	for key, v := range values {
		switch key {
		case "workspace":
			c.Workspace = asString(v)
		case "data_dir":
			c.DataDir = asString(v)
		case "log_level":
			c.LogLevel = asString(v)
		case "log_file":
			c.LogFile = asString(v)
		case "max_suggestions":
			c.MaxSuggestions = asInt(v, c.MaxSuggestions)
		case "array_delimiter":
			c.ArrayDelimiter = asString(v)
		case "triggers":
			c.Triggers = asString(v)
		case "cache_size":
			c.CacheSize = asInt(v, c.CacheSize)
		}
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func asInt(v any, fallback int) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	default:
		return fallback
	}
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
