// SPDX-FileCopyrightText: 2024 - 2026 deepsleep contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package engine drives one away session: a loop of suspend attempts over a
// fixed total duration, ending in hibernation when the battery needs it.
// Lid and battery state are sampled fresh at every decision point; nothing
// observed before a sleep is trusted after the wake.
package engine

import (
	"io"
	"time"

	"github.com/linuxdeepin/go-lib/log"

	"github.com/deepsleep-tools/deepsleep/journal"
	"github.com/deepsleep-tools/deepsleep/powersupply"
	"github.com/deepsleep-tools/deepsleep/session"
)

var logger = log.NewLogger("deepsleep/engine")

const (
	// Battery percentage below which the session starts with an immediate
	// hibernate instead of the suspend cycle.
	emergencyPercentage = 10

	// DefaultSettleDelay is slept after every wake before lid and battery
	// state are sampled; hardware reports are not reliable in the first
	// moments after resume.
	DefaultSettleDelay = 5 * time.Second
)

// StateReader reports lid and battery state. Implementations resolve read
// failures to fail-safe values (lid open, full battery on wall power)
// instead of returning errors.
type StateReader interface {
	LidState() powersupply.LidState
	BatteryPercentage() int
	BatteryDischarging() bool
}

// Sleeper blocks in Suspend and Hibernate until the machine has resumed.
// Both may return early without having slept; the engine compensates
// through its session clock.
type Sleeper interface {
	Suspend(d time.Duration) error
	Hibernate() error
}

// Locker locks the screen before a sleep entry. Best effort.
type Locker interface {
	Lock()
}

type state uint32

const (
	stateStart state = iota
	stateEmergencyHibernate
	stateInitialSuspend
	stateRetryLoop
	stateACCheck
	stateHibernateDecision
	stateEnd
)

func (s state) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateEmergencyHibernate:
		return "emergency-hibernate"
	case stateInitialSuspend:
		return "initial-suspend"
	case stateRetryLoop:
		return "retry-loop"
	case stateACCheck:
		return "ac-check"
	case stateHibernateDecision:
		return "hibernate-decision"
	case stateEnd:
		return "end"
	}
	return "unknown"
}

type Options struct {
	Session     session.Session
	Clock       session.Clock
	Reader      StateReader
	Sleeper     Sleeper
	Locker      Locker
	Journal     *journal.Journal
	SettleDelay time.Duration
}

type Engine struct {
	sess        session.Session
	clock       session.Clock
	reader      StateReader
	sleeper     Sleeper
	locker      Locker
	jnl         *journal.Journal
	settleDelay time.Duration
}

func New(opts Options) *Engine {
	if opts.Journal == nil {
		opts.Journal = journal.NewWriter(io.Discard)
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	return &Engine{
		sess:        opts.Session,
		clock:       opts.Clock,
		reader:      opts.Reader,
		sleeper:     opts.Sleeper,
		locker:      opts.Locker,
		jnl:         opts.Journal,
		settleDelay: opts.SettleDelay,
	}
}

// Run drives the session to its end. Every terminal path is a normal
// return; failures along the way resolve to fail-safe defaults, never to an
// abort.
func (e *Engine) Run() {
	e.jnl.Record("session start: total %s, deadline %s",
		e.sess.Total, e.sess.Deadline().Format("2006-01-02 15:04:05"))
	st := stateStart
	for st != stateEnd {
		next := e.step(st)
		e.jnl.Record("%s -> %s (elapsed %s)",
			st, next, e.sess.Elapsed(e.clock).Round(time.Second))
		st = next
	}
	e.jnl.Record("session end")
	logger.Info("session end")
}

func (e *Engine) step(st state) state {
	switch st {
	case stateStart:
		pct := e.reader.BatteryPercentage()
		discharging := e.reader.BatteryDischarging()
		e.jnl.Record("battery %d%%, discharging %v", pct, discharging)
		if pct < emergencyPercentage && discharging {
			return stateEmergencyHibernate
		}
		return stateInitialSuspend

	case stateEmergencyHibernate:
		// Low battery overrides the duration logic entirely. A silently
		// failed hibernate is not retried.
		e.hibernate()
		return stateEnd

	case stateInitialSuspend:
		e.suspend(e.sess.Total)
		return stateRetryLoop

	case stateRetryLoop:
		if e.sess.Over(e.clock) {
			return stateACCheck
		}
		if e.lidOpen() {
			return stateEnd
		}
		// Woke before the deadline: an external wake event, or firmware
		// that did not honor the timer. Sleep again for what is left.
		e.suspend(e.sess.Remaining(e.clock))
		return stateRetryLoop

	case stateACCheck:
		if e.reader.BatteryDischarging() {
			return stateHibernateDecision
		}
		if e.lidOpen() {
			return stateEnd
		}
		// On external power there is no battery to preserve; keep the
		// machine suspended instead of hibernating.
		e.suspend(e.sess.Total)
		return stateACCheck

	case stateHibernateDecision:
		if e.lidOpen() {
			return stateEnd
		}
		e.hibernate()
		return stateEnd
	}
	return stateEnd
}

// lidOpen samples the lid. An open lid means the user is active and ends all
// further automation.
func (e *Engine) lidOpen() bool {
	if e.reader.LidState() == powersupply.LidOpen {
		e.jnl.Record("lid open, user is active")
		return true
	}
	return false
}

func (e *Engine) suspend(d time.Duration) {
	e.jnl.Record("suspend for %s", d.Round(time.Second))
	e.locker.Lock()
	err := e.sleeper.Suspend(d)
	if err != nil {
		logger.Warning("suspend:", err)
	}
	e.jnl.Record("woke, elapsed %s of %s",
		e.sess.Elapsed(e.clock).Round(time.Second), e.sess.Total)
	e.clock.Sleep(e.settleDelay)
}

func (e *Engine) hibernate() {
	e.jnl.Record("hibernate")
	e.locker.Lock()
	err := e.sleeper.Hibernate()
	if err != nil {
		logger.Warning("hibernate:", err)
	}
	e.jnl.Record("returned from hibernate")
}
