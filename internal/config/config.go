package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "DBOPS"

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Source SourceConfig `mapstructure:"source"`
	Client ClientConfig `mapstructure:"client"`
	Backup BackupConfig `mapstructure:"backup"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// SourceConfig locates the application env file holding the connection string.
type SourceConfig struct {
	EnvFile string `mapstructure:"env_file"`
	EnvKey  string `mapstructure:"env_key"`
}

type ClientConfig struct {
	MySQL     string `mapstructure:"mysql"`
	MySQLDump string `mapstructure:"mysqldump"`
}

type BackupConfig struct {
	Compress      bool           `mapstructure:"compress"`
	UploadTargets []UploadTarget `mapstructure:"upload_targets"`
}

type UploadTarget struct {
	Type    string `mapstructure:"type"`
	Enabled bool   `mapstructure:"enabled"`

	// Local mirror
	Path string `mapstructure:"path"`

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

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"env-file":  "source.env_file",
	"env-key":   "source.env_key",
	"mysql":     "client.mysql",
	"mysqldump": "client.mysqldump",
	"log-level": "app.log_level",
	"log-file":  "app.log_file",
}

// Load reads the optional YAML file at path, then DBOPS_* environment
// variables, then any flags in fs that were set explicitly.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.name", "dbops")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_file", "")
	v.SetDefault("source.env_file", "/www/miaoji/server/.env")
	v.SetDefault("source.env_key", "DATABASE_URL")
	v.SetDefault("client.mysql", "mysql")
	v.SetDefault("client.mysqldump", "mysqldump")
	v.SetDefault("backup.compress", true)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Source.EnvFile == "" {
		return fmt.Errorf("source.env_file is required")
	}
	if c.Source.EnvKey == "" {
		return fmt.Errorf("source.env_key is required")
	}
	if c.Client.MySQL == "" {
		return fmt.Errorf("client.mysql is required")
	}
	if c.Client.MySQLDump == "" {
		return fmt.Errorf("client.mysqldump is required")
	}

	for i, target := range c.GetEnabledUploadTargets() {
		if err := target.validate(); err != nil {
			return fmt.Errorf("backup.upload_targets[%d]: %w", i, err)
		}
	}

	return nil
}

func (t UploadTarget) validate() error {
	switch t.Type {
	case "local":
		if t.Path == "" {
			return fmt.Errorf("path is required for local")
		}
	case "s3":
		if t.Bucket == "" || t.Region == "" {
			return fmt.Errorf("bucket and region are required for s3")
		}
	case "gdrive":
		if t.CredentialsFile == "" || t.FolderID == "" {
			return fmt.Errorf("credentials_file and folder_id are required for gdrive")
		}
	case "telegram":
		if t.BotToken == "" || t.ChatID == "" {
			return fmt.Errorf("bot_token and chat_id are required for telegram")
		}
	default:
		return fmt.Errorf("unknown type %q", t.Type)
	}
	return nil
}

func (c *Config) GetEnabledUploadTargets() []UploadTarget {
	var enabled []UploadTarget
	for _, target := range c.Backup.UploadTargets {
		if target.Enabled {
			enabled = append(enabled, target)
		}
	}
	return enabled
}
