// Package config holds the per-run configuration. Flags are the primary
// interface; an optional YAML file supplies defaults plus the upload-target
// section that has no flag equivalent.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"wpback/internal/domain"
)

type Config struct {
	SSHHost string `mapstructure:"ssh_host"`
	SSHUser string `mapstructure:"ssh_user"`
	SSHKey  string `mapstructure:"ssh_key"`
	SSHPort int    `mapstructure:"ssh_port"`
	WPPath  string `mapstructure:"wp_path"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	Database DatabaseConfig `mapstructure:"database"`
	Backup   BackupConfig   `mapstructure:"backup"`
}

// DatabaseConfig carries operator-supplied credentials. They are only used
// when Override is set; otherwise credentials come from wp-config.php.
type DatabaseConfig struct {
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Override bool   `mapstructure:"override"`
}

type BackupConfig struct {
	UploadTargets []UploadTarget `mapstructure:"upload_targets"`
}

type UploadTarget struct {
	Type    string `mapstructure:"type"`
	Enabled bool   `mapstructure:"enabled"`

	// Google Drive
	CredentialsFile string `mapstructure:"credentials_file"`
	FolderID        string `mapstructure:"folder_id"`

	// AWS S3
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`

	// Telegram
	BotToken   string `mapstructure:"bot_token"`
	ChatID     string `mapstructure:"chat_id"`
	SendFile   bool   `mapstructure:"send_file"`
	NotifyOnly bool   `mapstructure:"notify_only"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		SSHUser:  "root",
		SSHPort:  22,
		LogLevel: "info",
	}
}

// Load reads a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("ssh_user", "root")
	v.SetDefault("ssh_port", 22)
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the fields every action needs. Flag-level requirements
// (like restore's input file) are enforced by the commands themselves.
func (c *Config) Validate() error {
	if c.SSHHost == "" {
		return fmt.Errorf("%w: ssh host is required", domain.ErrPrecondition)
	}
	if c.SSHKey == "" {
		return fmt.Errorf("%w: ssh key path is required", domain.ErrPrecondition)
	}
	if c.WPPath == "" {
		return fmt.Errorf("%w: wordpress path is required", domain.ErrPrecondition)
	}
	if c.SSHPort <= 0 || c.SSHPort > 65535 {
		return fmt.Errorf("%w: invalid ssh port %d", domain.ErrPrecondition, c.SSHPort)
	}
	return nil
}

// Profile builds the immutable connection profile for this run.
func (c *Config) Profile() domain.Profile {
	return domain.Profile{
		Host:       c.SSHHost,
		User:       c.SSHUser,
		KeyPath:    c.SSHKey,
		Port:       c.SSHPort,
		RemotePath: c.WPPath,
	}
}

// Override returns the operator-supplied credentials, or nil when credential
// discovery should run normally.
func (c *Config) Override() *domain.Credentials {
	if !c.Database.Override {
		return nil
	}
	return &domain.Credentials{
		Name:     c.Database.Name,
		User:     c.Database.User,
		Password: c.Database.Password,
		Host:     c.Database.Host,
	}
}

// EnabledUploadTargets filters the configured targets down to active ones.
func (c *Config) EnabledUploadTargets() []UploadTarget {
	var enabled []UploadTarget
	for _, target := range c.Backup.UploadTargets {
		if target.Enabled {
			enabled = append(enabled, target)
		}
	}
	return enabled
}
