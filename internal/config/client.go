package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const appName = "content-planner"

// ClientConfig configures the planner client.
type ClientConfig struct {
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	Token     string        `yaml:"token" mapstructure:"token"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	WeekStart string        `yaml:"week_start" mapstructure:"week_start"`
	Color     bool          `yaml:"color" mapstructure:"color"`
	Google    GoogleConfig  `yaml:"google" mapstructure:"google"`
}

// GoogleConfig configures the Google Calendar mirror.
type GoogleConfig struct {
	Calendar        string `yaml:"calendar" mapstructure:"calendar"`
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
	TokenFile       string `yaml:"token_file" mapstructure:"token_file"`
}

// DefaultClientConfig returns the built-in client defaults.
func DefaultClientConfig() *ClientConfig {
	dir := Dir()
	return &ClientConfig{
		BaseURL:   "http://localhost:8080",
		Timeout:   15 * time.Second,
		WeekStart: "sunday",
		Color:     true,
		Google: GoogleConfig{
			Calendar:        "Content",
			CredentialsFile: filepath.Join(dir, "credentials.json"),
			TokenFile:       filepath.Join(dir, "token.json"),
		},
	}
}

// Dir is the per-user configuration directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, ".config", appName)
}

// ClientConfigPath returns the default client config file path.
func ClientConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// LoadClient merges defaults, the YAML file at path (if it exists) and
// PLANNER_* environment variables, in that order. An empty path means
// ClientConfigPath.
func LoadClient(path string) (*ClientConfig, error) {
	if path == "" {
		path = ClientConfigPath()
	}
	def := DefaultClientConfig()

	v := viper.New()
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("token", def.Token)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("week_start", def.WeekStart)
	v.SetDefault("color", def.Color)
	v.SetDefault("google.calendar", def.Google.Calendar)
	v.SetDefault("google.credentials_file", def.Google.CredentialsFile)
	v.SetDefault("google.token_file", def.Google.TokenFile)

	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	cfg := &ClientConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return cfg, nil
}

// WriteClientDefault writes the default client configuration to path,
// creating parent directories as needed. Existing files are not overwritten.
func WriteClientDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	body, err := yaml.Marshal(DefaultClientConfig())
	if err != nil {
		return err
	}

	header := `# content-planner client configuration
#
# base_url   Remote Task API, e.g. https://planner.example.com
# token      bearer token when the API runs with AUTH_SECRET
# week_start sunday | monday
#
# Every key can be overridden with PLANNER_<KEY>, e.g. PLANNER_BASE_URL.
`
	return os.WriteFile(path, append([]byte(header), body...), 0o600)
}
