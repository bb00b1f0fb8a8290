// SPDX-FileCopyrightText: 2024 - 2026 deepsleep contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package journal writes the append-only, timestamped record of every
// decision the engine takes. It is separate from diagnostic logging: the
// journal survives in a configured file so a user can reconstruct what the
// machine did while they were away.
package journal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const timeFormat = "2006-01-02 15:04:05 -0700"

type Journal struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	now    func() time.Time
}

// Open appends to the journal file at path, creating it and its directory if
// needed.
func Open(path string) (*Journal, error) {
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	j := NewWriter(f)
	j.closer = f
	return j, nil
}

// NewWriter journals to w. Used by tests, and with io.Discard as the
// fallback when the journal file cannot be opened.
func NewWriter(w io.Writer) *Journal {
	return &Journal{
		w:   w,
		now: time.Now,
	}
}

func (j *Journal) Record(format string, args ...interface{}) {
	j.mu.Lock()
	defer j.mu.Unlock()
	fmt.Fprintf(j.w, "%s %s\n", j.now().Format(timeFormat), fmt.Sprintf(format, args...))
}

func (j *Journal) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}
