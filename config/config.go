package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Textract TextractConfig `yaml:"textract"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Users    []User         `yaml:"users"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type TextractConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Resolution controls the size and density of rasterized page images.
type Resolution struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	Density int `yaml:"density"`
}

type PipelineConfig struct {
	BatchSize          int        `yaml:"batch_size"`           // images extracted per sequential batch
	ImageBatchSize     int        `yaml:"image_batch_size"`     // pages rasterized per rasterizer pass
	CallTimeoutSeconds int        `yaml:"call_timeout_seconds"` // per extraction call; a hang becomes a failed page
	MaxInFlight        int64      `yaml:"max_in_flight"`        // total concurrent extraction calls across documents, 0 = unbounded
	Resolution         Resolution `yaml:"resolution"`
}

// CallTimeout returns the per-call extraction timeout as a duration.
func (c *PipelineConfig) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.Pipeline.BatchSize <= 0 {
		cfg.Pipeline.BatchSize = 10
	}
	if cfg.Pipeline.ImageBatchSize <= 0 {
		cfg.Pipeline.ImageBatchSize = 50
	}
	if cfg.Pipeline.CallTimeoutSeconds <= 0 {
		cfg.Pipeline.CallTimeoutSeconds = 60
	}
	if cfg.Pipeline.Resolution.Width == 0 {
		cfg.Pipeline.Resolution.Width = 595
	}
	if cfg.Pipeline.Resolution.Height == 0 {
		cfg.Pipeline.Resolution.Height = 892
	}
	if cfg.Pipeline.Resolution.Density == 0 {
		cfg.Pipeline.Resolution.Density = 330
	}

	// Credentials may come from the environment instead of the config file
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Textract.Region = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		cfg.Textract.AccessKey = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.Textract.SecretKey = v
	}
	if cfg.Textract.Region == "" {
		cfg.Textract.Region = "us-east-1"
	}

	GlobalConfig = &cfg
	return &cfg, nil
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
