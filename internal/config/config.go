package config

import (
	"time"

	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port                string `mapstructure:"port"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
	Development         bool   `mapstructure:"development"`
}

type MongoCfg struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type KafkaCfg struct {
	Brokers      []string `mapstructure:"brokers"`
	MessageTopic string   `mapstructure:"message_topic"`
	ChatTopic    string   `mapstructure:"chat_topic"`
}

type S3Cfg struct {
	Region               string `mapstructure:"region"`
	Bucket               string `mapstructure:"bucket"`
	UploadTimeoutSeconds int    `mapstructure:"upload_timeout_seconds"`
}

type JwtCfg struct {
	Secret       string `mapstructure:"secret"`
	TTLDays      int    `mapstructure:"ttl_days"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
}

type Config struct {
	Server ServerCfg `mapstructure:"server"`
	Mongo  MongoCfg  `mapstructure:"mongo"`
	Redis  RedisCfg  `mapstructure:"redis"`
	Kafka  KafkaCfg  `mapstructure:"kafka"`
	S3     S3Cfg     `mapstructure:"s3"`
	JWT    JwtCfg    `mapstructure:"jwt"`
	// Derived
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	UploadTimeout time.Duration
	TokenTTL      time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "3000"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 15
	}
	if cfg.S3.UploadTimeoutSeconds == 0 {
		cfg.S3.UploadTimeoutSeconds = 30
	}
	if cfg.JWT.TTLDays == 0 {
		cfg.JWT.TTLDays = 15
	}
	cfg.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	cfg.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	cfg.UploadTimeout = time.Duration(cfg.S3.UploadTimeoutSeconds) * time.Second
	cfg.TokenTTL = time.Duration(cfg.JWT.TTLDays) * 24 * time.Hour
	return &cfg, nil
}
