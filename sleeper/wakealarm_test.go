// SPDX-FileCopyrightText: 2024 - 2026 deepsleep contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sleeper

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_setWakealarm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wakealarm")
	at := time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC)

	require.NoError(t, setWakealarm(path, at))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(at.Unix(), 10), string(content))

	require.NoError(t, clearWakealarm(path))
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0", string(content))
}

func Test_setWakealarmUnwritable(t *testing.T) {
	err := setWakealarm(filepath.Join(t.TempDir(), "no", "such", "wakealarm"),
		time.Now().Add(time.Hour))
	assert.Error(t, err)
}
