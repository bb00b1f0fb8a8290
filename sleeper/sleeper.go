// SPDX-FileCopyrightText: 2024 - 2026 deepsleep contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sleeper enters suspend and hibernate through
// org.freedesktop.login1 and blocks until the machine has resumed.
package sleeper

import (
	"os"
	"time"

	dbus "github.com/godbus/dbus/v5"
	login1 "github.com/linuxdeepin/go-dbus-factory/system/org.freedesktop.login1"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/dbusutil/proxy"
	"github.com/linuxdeepin/go-lib/log"
)

var logger = log.NewLogger("deepsleep/sleeper")

// How long to wait for login1 to announce PrepareForSleep(true) after a
// sleep request. A rejected or silently ignored request never starts a
// sleep; returning instead of waiting forever lets the caller observe the
// missing elapsed time and retry.
const sleepStartGrace = 10 * time.Second

type LoginSleeper struct {
	sysBus       *dbus.Conn
	loginManager login1.Manager
	sigLoop      *dbusutil.SignalLoop

	wakealarmPath string

	sleeping chan struct{}
	resumed  chan struct{}
}

func NewLoginSleeper(wakealarmPath string) (*LoginSleeper, error) {
	sysBus, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	s := &LoginSleeper{
		sysBus:        sysBus,
		wakealarmPath: wakealarmPath,
		sleeping:      make(chan struct{}, 1),
		resumed:       make(chan struct{}, 1),
	}
	s.loginManager = login1.NewManager(sysBus)
	s.sigLoop = dbusutil.NewSignalLoop(sysBus, 10)
	s.sigLoop.Start()
	s.loginManager.InitSignalExt(s.sigLoop, true)
	_, err = s.loginManager.ConnectPrepareForSleep(func(start bool) {
		logger.Info("PrepareForSleep", start)
		ch := s.resumed
		if start {
			ch = s.sleeping
		}
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	if err != nil {
		s.sigLoop.Stop()
		return nil, err
	}
	return s, nil
}

// SystemBus exposes the shared system bus connection for collaborators that
// need one, such as the UPower lid fallback.
func (s *LoginSleeper) SystemBus() *dbus.Conn {
	return s.sysBus
}

// Suspend requests suspend-to-RAM with an RTC wake alarm d from now, then
// blocks until resume. It can return without having slept: login1 may reject
// the request, or firmware may fail to enter the state. The caller detects
// that through its session clock, not through an error here.
func (s *LoginSleeper) Suspend(d time.Duration) error {
	if !s.canSuspend() {
		logger.Info("can not suspend")
		return nil
	}
	s.drainWakeSignals()

	wakeAt := time.Now().Add(d)
	err := setWakealarm(s.wakealarmPath, wakeAt)
	if err != nil {
		logger.Warning("failed to set RTC wake alarm:", err)
	}

	logger.Infof("suspend for %v, wake at %v", d, wakeAt)
	err = s.loginManager.Suspend(0, false)
	if err != nil {
		logger.Warning("failed to suspend:", err)
		return err
	}
	s.waitResume()

	err = clearWakealarm(s.wakealarmPath)
	if err != nil {
		logger.Debug("failed to clear RTC wake alarm:", err)
	}
	return nil
}

// Hibernate requests hibernate-to-disk and blocks until resume. On hardware
// whose hibernation silently fails the call returns almost immediately;
// that residual risk is accepted and not retried here.
func (s *LoginSleeper) Hibernate() error {
	if !s.canHibernate() {
		logger.Info("can not hibernate")
		return nil
	}
	s.drainWakeSignals()

	logger.Info("hibernate")
	err := s.loginManager.Hibernate(0, false)
	if err != nil {
		logger.Warning("failed to hibernate:", err)
		return err
	}
	s.waitResume()
	return nil
}

// waitResume blocks until the PrepareForSleep(false) resume signal. When the
// sleep-start signal never arrives the request did not take effect and a
// resume will never be announced, so give up after the grace period.
func (s *LoginSleeper) waitResume() {
	timer := time.NewTimer(sleepStartGrace)
	defer timer.Stop()
	select {
	case <-s.sleeping:
	case <-s.resumed:
		// resume won the race: the sleep signal fired before we began
		// listening
		return
	case <-timer.C:
		logger.Warning("sleep was requested but never started")
		return
	}
	<-s.resumed
}

// drainWakeSignals discards stale sleep/resume signals from a previous cycle
// so the next wait observes only its own.
func (s *LoginSleeper) drainWakeSignals() {
	for {
		select {
		case <-s.sleeping:
		case <-s.resumed:
		default:
			return
		}
	}
}

func (s *LoginSleeper) canSuspend() bool {
	_, err := os.Stat("/sys/power/mem_sleep")
	if os.IsNotExist(err) {
		return false
	}
	str, err := s.loginManager.CanSuspend(0)
	if err != nil {
		logger.Warning(err)
		return false
	}
	return str == "yes"
}

func (s *LoginSleeper) canHibernate() bool {
	str, err := s.loginManager.CanHibernate(0)
	if err != nil {
		logger.Warning(err)
		return false
	}
	return str == "yes"
}

func (s *LoginSleeper) Destroy() {
	s.loginManager.RemoveHandler(proxy.RemoveAllHandlers)
	s.sigLoop.Stop()
}
