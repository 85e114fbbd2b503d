// Package config loads application settings from a YAML file and REGTEST_
// environment variables.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/utils"
)

// AppName names the config and data directories
const AppName = "regtest-tui"

// EnvPrefix is prepended to every environment override, e.g. REGTEST_DATA_DIR
const EnvPrefix = "REGTEST"

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ReadinessConfig bounds how long the engine waits for a daemon to answer
type ReadinessConfig struct {
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

type AutoMineConfig struct {
	// Schedule is a cron spec; descriptors such as "@every 30s" work too
	Schedule string `yaml:"schedule" mapstructure:"schedule"`
	Blocks   int    `yaml:"blocks" mapstructure:"blocks"`
}

// MonitorConfig drives the node health checks run by serve
type MonitorConfig struct {
	Interval         time.Duration `yaml:"interval" mapstructure:"interval"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout"`
	FailureThreshold int           `yaml:"failure_threshold" mapstructure:"failure_threshold"`
}

type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// Config is the application configuration
type Config struct {
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
	// DockerSocket overrides the daemon address from the environment
	DockerSocket string          `yaml:"docker_socket,omitempty" mapstructure:"docker_socket"`
	Log          LogConfig       `yaml:"log" mapstructure:"log"`
	Readiness    ReadinessConfig `yaml:"readiness" mapstructure:"readiness"`
	AutoMine     AutoMineConfig  `yaml:"auto_mine" mapstructure:"auto_mine"`
	Monitor      MonitorConfig   `yaml:"monitor" mapstructure:"monitor"`
	Server       ServerConfig    `yaml:"server" mapstructure:"server"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	dataDir, err := userDataDir()
	if err != nil {
		dataDir = "." + AppName
	} else {
		dataDir = filepath.Join(dataDir, AppName)
	}
	return &Config{
		DataDir: dataDir,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Readiness: ReadinessConfig{
			Timeout:  utils.DefaultPollConfig.Timeout,
			Interval: utils.DefaultPollConfig.Interval,
		},
		AutoMine: AutoMineConfig{
			Schedule: "@every 30s",
			Blocks:   1,
		},
		Monitor: MonitorConfig{
			Interval:         15 * time.Second,
			Timeout:          10 * time.Second,
			FailureThreshold: 3,
		},
		Server: ServerConfig{
			Port:        8100,
			CORSOrigins: []string{"*"},
		},
	}
}

// DefaultPath is <user config dir>/regtest-tui/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.NewInternalError("could not determine config directory", err, nil)
	}
	return filepath.Join(dir, AppName, "config.yaml"), nil
}

// userDataDir follows XDG_DATA_HOME on unix and the platform convention
// elsewhere.
func userDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("AppData"); dir != "" {
			return dir, nil
		}
		return os.UserConfigDir()
	case "darwin", "ios":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

// Load reads the config file at path, or the default path when empty. A
// missing file is created from the defaults. REGTEST_* variables override
// values from the file.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	defaults := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := defaults.Save(path); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, defaults)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.NewValidationError("failed to read config file", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewValidationError("invalid config file", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides apply to keys
// absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("docker_socket", d.DockerSocket)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("readiness.timeout", d.Readiness.Timeout)
	v.SetDefault("readiness.interval", d.Readiness.Interval)
	v.SetDefault("auto_mine.schedule", d.AutoMine.Schedule)
	v.SetDefault("auto_mine.blocks", d.AutoMine.Blocks)
	v.SetDefault("monitor.interval", d.Monitor.Interval)
	v.SetDefault("monitor.timeout", d.Monitor.Timeout)
	v.SetDefault("monitor.failure_threshold", d.Monitor.FailureThreshold)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
}

// Save writes the configuration as YAML, creating parent directories
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewPersistenceError("failed to create config directory", err, map[string]interface{}{"path": path})
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.NewInternalError("failed to encode config", err, nil)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewPersistenceError("failed to write config file", err, map[string]interface{}{"path": path})
	}
	return nil
}

// Validate checks values that would otherwise fail far from where they were set
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.NewValidationError("data_dir must not be empty", nil)
	}
	if c.Readiness.Timeout <= 0 || c.Readiness.Interval <= 0 {
		return errors.NewValidationError("readiness timeout and interval must be positive", map[string]interface{}{
			"timeout":  c.Readiness.Timeout.String(),
			"interval": c.Readiness.Interval.String(),
		})
	}
	if c.AutoMine.Blocks <= 0 {
		return errors.NewValidationError("auto_mine.blocks must be positive", map[string]interface{}{"blocks": c.AutoMine.Blocks})
	}
	if c.Monitor.Interval <= 0 || c.Monitor.Timeout <= 0 || c.Monitor.FailureThreshold <= 0 {
		return errors.NewValidationError("monitor interval, timeout and failure_threshold must be positive", map[string]interface{}{
			"interval":         c.Monitor.Interval.String(),
			"timeout":          c.Monitor.Timeout.String(),
			"failureThreshold": c.Monitor.FailureThreshold,
		})
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.NewValidationError("server.port is out of range", map[string]interface{}{"port": c.Server.Port})
	}
	return nil
}

// DatabasePath is the sqlite file holding the activity journal
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "regtest.db")
}

// Poll converts the readiness settings for the engine
func (c *Config) Poll() utils.PollConfig {
	return utils.PollConfig{
		Interval: c.Readiness.Interval,
		Timeout:  c.Readiness.Timeout,
	}
}
