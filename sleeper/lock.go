// SPDX-FileCopyrightText: 2024 - 2026 deepsleep contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sleeper

import (
	dbus "github.com/godbus/dbus/v5"
)

const (
	screenSaverServiceName = "org.freedesktop.ScreenSaver"
	screenSaverObjPath     = "/org/freedesktop/ScreenSaver"
	screenSaverIfc         = screenSaverServiceName
)

// ScreenLocker locks the session screen before the machine goes to sleep.
// Locking is best effort: a missing session bus (running from a system unit,
// no graphical session) must not block the sleep cycle.
type ScreenLocker struct {
	sessionBus *dbus.Conn
}

func NewScreenLocker() *ScreenLocker {
	bus, err := dbus.SessionBus()
	if err != nil {
		logger.Warning("session bus unavailable, screen locking disabled:", err)
		return &ScreenLocker{}
	}
	return &ScreenLocker{sessionBus: bus}
}

func (l *ScreenLocker) Lock() {
	if l.sessionBus == nil {
		return
	}
	logger.Info("lock screen")
	obj := l.sessionBus.Object(screenSaverServiceName, screenSaverObjPath)
	err := obj.Call(screenSaverIfc+".Lock", 0).Err
	if err != nil {
		logger.Warning("failed to lock screen:", err)
	}
}
