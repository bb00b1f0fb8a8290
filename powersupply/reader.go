// SPDX-FileCopyrightText: 2024 - 2026 deepsleep contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package powersupply reads lid position and battery state from the host.
// Every query is a fresh read with no caching, and every failure resolves to
// a fail-safe default: an unreadable lid reports open, a missing battery
// reports full and on wall power.
package powersupply

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	dbus "github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/log"
)

var logger = log.NewLogger("deepsleep/powersupply")

const (
	defaultLidRoot         = "/proc/acpi/button/lid"
	defaultPowerSupplyRoot = "/sys/class/power_supply"

	// A battery reporting "Discharging" at or above this percentage is
	// treated as not discharging: some chargers keep a full battery
	// flapping between Discharging and Full while still on wall power.
	dischargeFullThreshold = 95
)

// Config selects where Reader looks on the host. Empty fields mean
// discovery under the usual kernel paths; tests point them into a temp dir.
type Config struct {
	LidStatePath    string
	LidRoot         string
	BatteryDir      string
	PowerSupplyRoot string
}

type Reader struct {
	lidStatePath string
	batteryDir   string
	upowerLid    *upowerLid
}

func NewReader(cfg Config) *Reader {
	if cfg.LidRoot == "" {
		cfg.LidRoot = defaultLidRoot
	}
	if cfg.PowerSupplyRoot == "" {
		cfg.PowerSupplyRoot = defaultPowerSupplyRoot
	}
	r := &Reader{
		lidStatePath: cfg.LidStatePath,
		batteryDir:   cfg.BatteryDir,
	}
	if r.lidStatePath == "" {
		r.lidStatePath = findLidStateFile(cfg.LidRoot)
	}
	if r.batteryDir == "" {
		r.batteryDir = findBattery(cfg.PowerSupplyRoot)
	}
	if r.lidStatePath == "" {
		logger.Info("no lid state file found")
	} else {
		logger.Debugf("lid state file %q", r.lidStatePath)
	}
	if r.batteryDir == "" {
		logger.Info("no battery device found, assuming wall power")
	} else {
		logger.Debugf("battery device %q", r.batteryDir)
	}
	return r
}

// SetUPowerFallback lets LidState consult UPower when no ACPI lid state file
// was found on this machine.
func (r *Reader) SetUPowerFallback(sysBus *dbus.Conn) {
	if r.lidStatePath != "" {
		return
	}
	r.upowerLid = newUPowerLid(sysBus)
}

// LidState samples the lid position. Any unreadable or malformed signal
// reports LidOpen: assuming "closed" without being able to verify it risks
// silently draining the battery instead of merely interrupting a sleep.
func (r *Reader) LidState() LidState {
	if r.lidStatePath == "" {
		return r.lidStateUPower()
	}
	content, err := os.ReadFile(r.lidStatePath)
	if err != nil {
		logger.Warning("failed to read lid state:", err)
		return LidOpen
	}
	state := parseLidState(string(content))
	if state == LidUnknown {
		logger.Warningf("malformed lid state %q", strings.TrimSpace(string(content)))
		return LidOpen
	}
	return state
}

func (r *Reader) lidStateUPower() LidState {
	if r.upowerLid == nil {
		return LidOpen
	}
	closed, err := r.upowerLid.closed()
	if err != nil {
		logger.Warning("failed to get lid state from UPower:", err)
		return LidOpen
	}
	if closed {
		return LidClosed
	}
	return LidOpen
}

// BatteryPercentage reports the charge level 0..100. A machine without a
// battery, or one whose battery cannot be read, reports 100: there is
// nothing to preserve, behave as if on wall power.
func (r *Reader) BatteryPercentage() int {
	if r.batteryDir == "" {
		return 100
	}
	content, err := os.ReadFile(filepath.Join(r.batteryDir, "capacity"))
	if err != nil {
		logger.Warning("failed to read battery capacity:", err)
		return 100
	}
	pct, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		logger.Warningf("malformed battery capacity %q", strings.TrimSpace(string(content)))
		return 100
	}
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// BatteryStatus reports the raw charge status. Missing device or attribute
// parses to StatusUnknown.
func (r *Reader) BatteryStatus() BatteryStatus {
	if r.batteryDir == "" {
		return StatusUnknown
	}
	content, err := os.ReadFile(filepath.Join(r.batteryDir, "status"))
	if err != nil {
		logger.Warning("failed to read battery status:", err)
		return StatusUnknown
	}
	return parseBatteryStatus(string(content))
}

// BatteryDischarging reports whether the machine is actually draining its
// battery, filtering out the full-but-reported-discharging charger quirk.
func (r *Reader) BatteryDischarging() bool {
	return r.BatteryStatus() == StatusDischarging &&
		r.BatteryPercentage() < dischargeFullThreshold
}
