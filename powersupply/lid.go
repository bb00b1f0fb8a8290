// SPDX-FileCopyrightText: 2024 - 2026 deepsleep contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package powersupply

import (
	"os"
	"path/filepath"
	"strings"
)

// LidState is the position of the laptop lid. LidUnknown means the signal
// could not be read or parsed; Reader.LidState resolves it to LidOpen so an
// unverifiable "closed" can never keep the sleep cycle going.
type LidState uint32

const (
	LidUnknown LidState = iota
	LidOpen
	LidClosed
)

func (s LidState) String() string {
	switch s {
	case LidOpen:
		return "open"
	case LidClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// parseLidState parses a /proc/acpi/button lid state line, e.g.
// "state:      closed". The position is the last field.
func parseLidState(content string) LidState {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return LidUnknown
	}
	switch fields[len(fields)-1] {
	case "open":
		return LidOpen
	case "closed":
		return LidClosed
	}
	return LidUnknown
}

// findLidStateFile returns the state file of the first lid button exposed
// under root, usually /proc/acpi/button/lid/LID0/state.
func findLidStateFile(root string) string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name(), "state")
		_, err := os.Stat(path)
		if err == nil {
			return path
		}
	}
	return ""
}
