// SPDX-FileCopyrightText: 2024 - 2026 deepsleep contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"time"

	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

var logger = log.NewLogger("deepsleep/config")

// DefaultPath is where LoadSafe looks when no --config flag is given.
const DefaultPath = "/etc/deepsleep/config.yaml"

const (
	defaultTotalDurationSec = 10800 // 3 hours
	defaultSettleDelaySec   = 5
	defaultJournalPath      = "/var/log/deepsleep/journal.log"
	defaultWakealarmPath    = "/sys/class/rtc/rtc0/wakealarm"
)

// Config is the on-disk configuration. Fields left out of the file keep
// their defaults; empty device paths mean sysfs discovery.
type Config struct {
	TotalDurationSec int    `yaml:"total_duration"`
	SettleDelaySec   int    `yaml:"settle_delay"`
	JournalPath      string `yaml:"journal_path"`
	WakealarmPath    string `yaml:"rtc_wakealarm_path"`
	LidStatePath     string `yaml:"lid_state_path"`
	PowerSupplyRoot  string `yaml:"power_supply_root"`
}

func Default() *Config {
	return &Config{
		TotalDurationSec: defaultTotalDurationSec,
		SettleDelaySec:   defaultSettleDelaySec,
		JournalPath:      defaultJournalPath,
		WakealarmPath:    defaultWakealarmPath,
	}
}

func load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	err = yaml.Unmarshal(content, cfg)
	if err != nil {
		return nil, xerrors.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadSafe reads the configuration file and falls back to defaults when it
// is missing or broken. A bad config file must not abort a session that was
// asked for.
func LoadSafe(path string) *Config {
	cfg, err := load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warning(err)
		}
		cfg = Default()
	}
	cfg.normalize()
	return cfg
}

func (c *Config) normalize() {
	if c.TotalDurationSec <= 0 {
		logger.Warningf("invalid total_duration %d, using default", c.TotalDurationSec)
		c.TotalDurationSec = defaultTotalDurationSec
	}
	if c.SettleDelaySec < 0 {
		c.SettleDelaySec = defaultSettleDelaySec
	}
	if c.JournalPath == "" {
		c.JournalPath = defaultJournalPath
	}
	if c.WakealarmPath == "" {
		c.WakealarmPath = defaultWakealarmPath
	}
}

func (c *Config) TotalDuration() time.Duration {
	return time.Duration(c.TotalDurationSec) * time.Second
}

func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelaySec) * time.Second
}
