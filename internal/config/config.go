package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Theme string `toml:"theme"`

	MeerkatURL string `toml:"meerkat_url" validate:"omitempty,url"`

	IcingaURL         string  `toml:"icinga_url" validate:"omitempty,url"`
	IcingaCredential  string  `toml:"icinga_credential"`
	IcingaInsecureTLS bool    `toml:"icinga_insecure_tls"`
	IcingaRateLimit   float64 `toml:"icinga_rate_limit" validate:"gte=0"`

	RequestTimeout    time.Duration `toml:"-" validate:"gte=1s"`
	RequestTimeoutStr string        `toml:"request_timeout"`
	MinInterval       time.Duration `toml:"-" validate:"gte=100ms"`
	MinIntervalStr    string        `toml:"min_interval"`
	RetryInterval     time.Duration `toml:"-" validate:"gtefield=MinInterval"`
	RetryIntervalStr  string        `toml:"retry_interval"`
	RefreshLag        float64       `toml:"refresh_lag" validate:"gte=0,lte=10"`
	MaxHistory        int           `toml:"max_history" validate:"gte=1"`

	SoundCommand string `toml:"sound_command"`

	LogLevel    string `toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFile     string `toml:"log_file"`
	MetricsAddr string `toml:"metrics_addr" validate:"omitempty,hostname_port"`
}

func DefaultConfig() *Config {
	return &Config{
		Theme:             "solarized-dark",
		MeerkatURL:        "http://localhost:8585",
		IcingaInsecureTLS: false,
		IcingaRateLimit:   20,
		RequestTimeout:    10 * time.Second,
		RequestTimeoutStr: "10s",
		MinInterval:       time.Second,
		MinIntervalStr:    "1s",
		RetryInterval:     15 * time.Second,
		RetryIntervalStr:  "15s",
		RefreshLag:        0.1,
		MaxHistory:        120,
		LogLevel:          "info",
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	durations := []struct {
		name string
		str  string
		dst  *time.Duration
	}{
		{"request_timeout", cfg.RequestTimeoutStr, &cfg.RequestTimeout},
		{"min_interval", cfg.MinIntervalStr, &cfg.MinInterval},
		{"retry_interval", cfg.RetryIntervalStr, &cfg.RetryInterval},
	}
	for _, d := range durations {
		if d.str == "" {
			continue
		}
		v, err := time.ParseDuration(d.str)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = v
	}
	return cfg, nil
}

func SaveConfig(cfg *Config, path string) error {
	cfg.RequestTimeoutStr = cfg.RequestTimeout.String()
	cfg.MinIntervalStr = cfg.MinInterval.String()
	cfg.RetryIntervalStr = cfg.RetryInterval.String()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and formats.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
	}
	return errors.New("invalid config: " + strings.Join(msgs, "; "))
}
