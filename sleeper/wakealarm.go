// SPDX-FileCopyrightText: 2024 - 2026 deepsleep contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sleeper

import (
	"os"
	"strconv"
	"time"
)

// setWakealarm programs the RTC to fire at the given wall-clock time through
// the sysfs wakealarm attribute. The kernel rejects a new alarm while one is
// pending, so any previous alarm is cleared first.
func setWakealarm(path string, at time.Time) error {
	err := os.WriteFile(path, []byte("0"), 0644)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.FormatInt(at.Unix(), 10)), 0644)
}

func clearWakealarm(path string) error {
	return os.WriteFile(path, []byte("0"), 0644)
}
