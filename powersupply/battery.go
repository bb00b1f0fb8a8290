// SPDX-FileCopyrightText: 2024 - 2026 deepsleep contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package powersupply

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// findBattery returns the sysfs directory of the first system battery under
// root. Supplies advertise their kind in a "type" attribute; mains adapters
// report "Mains" and are skipped.
func findBattery(root string) string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return ""
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		dir := filepath.Join(root, name)
		content, err := os.ReadFile(filepath.Join(dir, "type"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(content)) == "Battery" {
			return dir
		}
	}
	return ""
}
