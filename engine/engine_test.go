// SPDX-FileCopyrightText: 2024 - 2026 deepsleep contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepsleep-tools/deepsleep/journal"
	"github.com/deepsleep-tools/deepsleep/powersupply"
	"github.com/deepsleep-tools/deepsleep/session"
)

const totalDuration = 10800 * time.Second

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
}

// fakeHardware plays reader, sleeper and locker at once so a test can
// script a whole session.
type fakeHardware struct {
	clock *fakeClock

	pct int
	// consumed one value per query; the last value repeats
	lid         []powersupply.LidState
	discharging []bool

	// sleepFor[i] is the wall time the i-th Suspend actually sleeps;
	// missing entries sleep the full requested duration (the timer fired
	// on schedule).
	sleepFor []time.Duration

	suspends   []time.Duration
	hibernates int
	locks      int
	calls      []string
}

func (h *fakeHardware) LidState() powersupply.LidState {
	if len(h.lid) == 0 {
		return powersupply.LidClosed
	}
	st := h.lid[0]
	if len(h.lid) > 1 {
		h.lid = h.lid[1:]
	}
	return st
}

func (h *fakeHardware) BatteryPercentage() int {
	return h.pct
}

func (h *fakeHardware) BatteryDischarging() bool {
	if len(h.discharging) == 0 {
		return false
	}
	v := h.discharging[0]
	if len(h.discharging) > 1 {
		h.discharging = h.discharging[1:]
	}
	return v
}

func (h *fakeHardware) Suspend(d time.Duration) error {
	i := len(h.suspends)
	h.suspends = append(h.suspends, d)
	h.calls = append(h.calls, "suspend")
	actual := d
	if i < len(h.sleepFor) {
		actual = h.sleepFor[i]
	}
	h.clock.Sleep(actual)
	return nil
}

func (h *fakeHardware) Hibernate() error {
	h.hibernates++
	h.calls = append(h.calls, "hibernate")
	return nil
}

func (h *fakeHardware) Lock() {
	h.locks++
}

func newTestEngine(h *fakeHardware, settle time.Duration, jnl *journal.Journal) *Engine {
	sess := session.New(h.clock, totalDuration)
	return New(Options{
		Session:     sess,
		Clock:       h.clock,
		Reader:      h,
		Sleeper:     h,
		Locker:      h,
		Journal:     jnl,
		SettleDelay: settle,
	})
}

func newFakeHardware() *fakeHardware {
	return &fakeHardware{
		clock: &fakeClock{now: time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)},
		pct:   50,
	}
}

func Test_EmergencyHibernate(t *testing.T) {
	h := newFakeHardware()
	h.pct = 5
	h.discharging = []bool{true}

	newTestEngine(h, 0, nil).Run()

	// hibernate is the very first and only action
	require.Equal(t, []string{"hibernate"}, h.calls)
	assert.Empty(t, h.suspends)
	assert.Equal(t, 1, h.locks)
}

func Test_EmergencyNeedsDischarging(t *testing.T) {
	// 5% on wall power is not an emergency
	h := newFakeHardware()
	h.pct = 5
	h.discharging = []bool{false, false, true}

	newTestEngine(h, 0, nil).Run()

	require.NotEmpty(t, h.calls)
	assert.Equal(t, "suspend", h.calls[0])
}

func Test_NoEmergencyAtThreshold(t *testing.T) {
	// the emergency branch is strictly below 10%
	h := newFakeHardware()
	h.pct = 10
	h.discharging = []bool{true}

	newTestEngine(h, 0, nil).Run()

	require.NotEmpty(t, h.calls)
	assert.Equal(t, "suspend", h.calls[0])
}

func Test_FullSleepThenHibernate(t *testing.T) {
	// scenario: lid closed throughout, on battery, timer honored
	h := newFakeHardware()
	h.discharging = []bool{true}

	newTestEngine(h, 0, nil).Run()

	assert.Equal(t, []time.Duration{totalDuration}, h.suspends)
	assert.Equal(t, 1, h.hibernates)
	assert.Equal(t, []string{"suspend", "hibernate"}, h.calls)
	// screen locked before every sleep entry
	assert.Equal(t, 2, h.locks)
}

func Test_PrematureWakeRetries(t *testing.T) {
	// woke after 3000s of the requested 10800s; retry covers the rest
	h := newFakeHardware()
	h.discharging = []bool{true}
	h.sleepFor = []time.Duration{3000 * time.Second}

	newTestEngine(h, 0, nil).Run()

	require.Equal(t, []time.Duration{
		totalDuration,
		7800 * time.Second,
	}, h.suspends)
	assert.Equal(t, 1, h.hibernates)
	assert.True(t, h.clock.now.Sub(time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)) >= totalDuration)
}

func Test_PrematureWakeRetriesWithSettleDelay(t *testing.T) {
	h := newFakeHardware()
	h.discharging = []bool{true}
	h.sleepFor = []time.Duration{3000 * time.Second}
	settle := 5 * time.Second

	newTestEngine(h, settle, nil).Run()

	require.Len(t, h.suspends, 2)
	// the retry asks exactly for what is left, settle time included
	assert.Equal(t, totalDuration-3000*time.Second-settle, h.suspends[1])
}

func Test_RepeatedPrematureWakes(t *testing.T) {
	h := newFakeHardware()
	h.discharging = []bool{true}
	h.sleepFor = []time.Duration{
		1000 * time.Second,
		2000 * time.Second,
		3000 * time.Second,
	}

	newTestEngine(h, 0, nil).Run()

	require.Equal(t, []time.Duration{
		totalDuration,
		9800 * time.Second,
		7800 * time.Second,
		4800 * time.Second,
	}, h.suspends)
	assert.Equal(t, 1, h.hibernates)
}

func Test_LidOpenAbortsRetryLoop(t *testing.T) {
	h := newFakeHardware()
	h.discharging = []bool{true}
	h.sleepFor = []time.Duration{1000 * time.Second}
	h.lid = []powersupply.LidState{powersupply.LidOpen}

	newTestEngine(h, 0, nil).Run()

	// nothing after the lid was seen open
	assert.Equal(t, []string{"suspend"}, h.calls)
	assert.Equal(t, 0, h.hibernates)
}

func Test_ACPowerKeepsSuspending(t *testing.T) {
	// on wall power the engine re-suspends for the full duration instead
	// of hibernating, until the charger is pulled
	h := newFakeHardware()
	h.pct = 80
	h.discharging = []bool{false, false, false, true}

	newTestEngine(h, 0, nil).Run()

	assert.Equal(t, []time.Duration{
		totalDuration,
		totalDuration,
		totalDuration,
	}, h.suspends)
	assert.Equal(t, []string{"suspend", "suspend", "suspend", "hibernate"}, h.calls)
}

func Test_LidOpenInACCheckEndsWithoutHibernate(t *testing.T) {
	h := newFakeHardware()
	h.pct = 80
	h.discharging = []bool{false}
	h.lid = []powersupply.LidState{powersupply.LidOpen}

	newTestEngine(h, 0, nil).Run()

	assert.Equal(t, []string{"suspend"}, h.calls)
	assert.Equal(t, 0, h.hibernates)
}

func Test_LidOpenSkipsFinalHibernate(t *testing.T) {
	// discharging, session over, but the lid is open at the hibernate
	// decision: end without hibernating
	h := newFakeHardware()
	h.discharging = []bool{true}
	h.lid = []powersupply.LidState{powersupply.LidOpen}

	newTestEngine(h, 0, nil).Run()

	assert.Equal(t, []string{"suspend"}, h.calls)
	assert.Equal(t, 0, h.hibernates)
}

func Test_ScreenLockedBeforeEverySleep(t *testing.T) {
	h := newFakeHardware()
	h.discharging = []bool{true}
	h.sleepFor = []time.Duration{
		1000 * time.Second,
		2000 * time.Second,
	}

	newTestEngine(h, 0, nil).Run()

	assert.Equal(t, len(h.suspends)+h.hibernates, h.locks)
}

func Test_JournalRecordsSession(t *testing.T) {
	var buf bytes.Buffer
	h := newFakeHardware()
	h.pct = 5
	h.discharging = []bool{true}

	newTestEngine(h, 0, journal.NewWriter(&buf)).Run()

	out := buf.String()
	assert.Contains(t, out, "session start")
	assert.Contains(t, out, "battery 5%, discharging true")
	assert.Contains(t, out, "start -> emergency-hibernate")
	assert.Contains(t, out, "emergency-hibernate -> end")
	assert.Contains(t, out, "session end")
}

func Test_StateNames(t *testing.T) {
	assert.Equal(t, "start", stateStart.String())
	assert.Equal(t, "retry-loop", stateRetryLoop.String())
	assert.Equal(t, "end", stateEnd.String())
	assert.Equal(t, "unknown", state(99).String())
}
