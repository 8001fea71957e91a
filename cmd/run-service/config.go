package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"runoj/internal/common/cache"
	"runoj/pkg/utils/logger"
)

const (
	defaultHTTPAddr        = "0.0.0.0:8088"
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second

	defaultJudgeTimeout   = 10 * time.Second
	defaultGradingTimeout = 15 * time.Second
	defaultPollInterval   = time.Second
	defaultRunTimeout     = 30 * time.Second
	defaultSnapshotTTL    = 24 * time.Hour
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// JudgeConfig holds judge engine settings.
type JudgeConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// GradingConfig holds grading backend settings.
type GradingConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// RunConfig holds run execution settings.
type RunConfig struct {
	PollInterval time.Duration `yaml:"pollInterval"`
	Timeout      time.Duration `yaml:"timeout"`
	SnapshotTTL  time.Duration `yaml:"snapshotTTL"`
}

// AppConfig holds run-service configuration.
type AppConfig struct {
	Server    ServerConfig      `yaml:"server"`
	Logger    logger.Config     `yaml:"logger"`
	Redis     cache.RedisConfig `yaml:"redis"`
	Judge     JudgeConfig       `yaml:"judge"`
	Grading   GradingConfig     `yaml:"grading"`
	Run       RunConfig         `yaml:"run"`
	Languages map[int]string    `yaml:"languages"`
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

func loadAppConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}

	if cfg.Judge.BaseURL == "" {
		return nil, fmt.Errorf("judge base url is required")
	}
	if cfg.Judge.Timeout == 0 {
		cfg.Judge.Timeout = defaultJudgeTimeout
	}
	if cfg.Grading.Timeout == 0 {
		cfg.Grading.Timeout = defaultGradingTimeout
	}

	if cfg.Run.PollInterval == 0 {
		cfg.Run.PollInterval = defaultPollInterval
	}
	if cfg.Run.Timeout == 0 {
		cfg.Run.Timeout = defaultRunTimeout
	}
	if cfg.Run.SnapshotTTL == 0 {
		cfg.Run.SnapshotTTL = defaultSnapshotTTL
	}

	return &cfg, nil
}
