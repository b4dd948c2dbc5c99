// Package config resolves liftlog's settings from defaults, an optional
// YAML file, LIFTLOG_* environment variables and values saved in the UI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/taskstate"
)

var ErrInvalid = errors.New("config: invalid value")

// Keys shared by the config file, the environment and the settings table.
const (
	KeyTimezone  = "timezone"
	KeyPolicy    = "policy"
	KeyHorizon   = "horizon"
	KeyRetention = "retention"
	KeyPlanFile  = "plan_file"
	KeyDBPath    = "db_path"
	KeyLogFile   = "log_file"
	KeyListen    = "listen"
)

type Config struct {
	// Timezone is an IANA zone name; empty or "local" uses the system zone.
	Timezone  string              `mapstructure:"timezone"`
	Policy    calendar.Policy     `mapstructure:"policy"`
	Horizon   int                 `mapstructure:"horizon"`
	Retention taskstate.Retention `mapstructure:"retention"`
	// PlanFile points at a YAML plan; empty uses the built-in rotation.
	PlanFile string `mapstructure:"plan_file"`
	DBPath   string `mapstructure:"db_path"`
	LogFile  string `mapstructure:"log_file"`
	Listen   string `mapstructure:"listen"`
}

func Default() Config {
	dir := Dir()
	return Config{
		Timezone:  "local",
		Policy:    calendar.PolicyRolling,
		Horizon:   calendar.DefaultHorizon,
		Retention: taskstate.RetentionPurge,
		DBPath:    filepath.Join(dir, "liftlog.db"),
		LogFile:   filepath.Join(dir, "liftlog.log"),
		Listen:    "127.0.0.1:8088",
	}
}

// Dir is liftlog's directory under the user config dir.
func Dir() string {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return ".liftlog"
	}
	return filepath.Join(cfg, "liftlog")
}

// DefaultPath is where Load looks for a config file when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load layers defaults, the YAML file at path (or DefaultPath when path is
// empty and that file exists) and LIFTLOG_* environment variables.
func Load(path string) (Config, error) {
	def := Default()

	v := viper.New()
	v.SetDefault(KeyTimezone, def.Timezone)
	v.SetDefault(KeyPolicy, string(def.Policy))
	v.SetDefault(KeyHorizon, def.Horizon)
	v.SetDefault(KeyRetention, string(def.Retention))
	v.SetDefault(KeyPlanFile, def.PlanFile)
	v.SetDefault(KeyDBPath, def.DBPath)
	v.SetDefault(KeyLogFile, def.LogFile)
	v.SetDefault(KeyListen, def.Listen)

	v.SetEnvPrefix("LIFTLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if _, err := os.Stat(DefaultPath()); err == nil {
			path = DefaultPath()
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplySettings overlays the values saved from the settings screen. Only
// non-empty keys are applied; the result is validated.
func (c *Config) ApplySettings(kv map[string]string) error {
	next := *c
	if v := strings.TrimSpace(kv[KeyTimezone]); v != "" {
		next.Timezone = v
	}
	if v := strings.TrimSpace(kv[KeyPolicy]); v != "" {
		next.Policy = calendar.Policy(v)
	}
	if v := strings.TrimSpace(kv[KeyHorizon]); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: horizon %q", ErrInvalid, v)
		}
		next.Horizon = h
	}
	if v := strings.TrimSpace(kv[KeyRetention]); v != "" {
		next.Retention = taskstate.Retention(v)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func (c Config) Validate() error {
	if !c.Policy.IsValid() {
		return fmt.Errorf("%w: policy %q", ErrInvalid, c.Policy)
	}
	if !c.Retention.IsValid() {
		return fmt.Errorf("%w: retention %q", ErrInvalid, c.Retention)
	}
	if c.Horizon < 1 {
		return fmt.Errorf("%w: horizon %d", ErrInvalid, c.Horizon)
	}
	if _, err := calendar.LoadZone(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q", ErrInvalid, c.Timezone)
	}
	return nil
}

// Clock returns a clock in the configured zone.
func (c Config) Clock() (calendar.ZoneClock, error) {
	loc, err := calendar.LoadZone(c.Timezone)
	if err != nil {
		return calendar.ZoneClock{}, err
	}
	return calendar.ZoneClock{Location: loc}, nil
}
