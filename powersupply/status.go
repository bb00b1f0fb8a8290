// SPDX-FileCopyrightText: 2024 - 2026 deepsleep contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package powersupply

import (
	"strings"
)

// BatteryStatus mirrors the status strings of the kernel power_supply class.
// https://www.kernel.org/doc/Documentation/power/power_supply_class.txt
type BatteryStatus uint32

const (
	StatusUnknown BatteryStatus = iota
	StatusCharging
	StatusDischarging
	StatusNotCharging
	StatusFull
)

func (s BatteryStatus) String() string {
	switch s {
	case StatusCharging:
		return "Charging"
	case StatusDischarging:
		return "Discharging"
	case StatusNotCharging:
		return "Not charging"
	case StatusFull:
		return "Full"
	default:
		return "Unknown"
	}
}

// parseBatteryStatus maps a sysfs status value to its enum. Anything
// unrecognized becomes StatusUnknown, which no caller treats as discharging.
func parseBatteryStatus(value string) BatteryStatus {
	switch strings.TrimSpace(value) {
	case "Charging":
		return StatusCharging
	case "Discharging":
		return StatusDischarging
	case "Not charging":
		return StatusNotCharging
	case "Full":
		return StatusFull
	default:
		return StatusUnknown
	}
}
