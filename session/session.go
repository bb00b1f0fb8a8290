// SPDX-FileCopyrightText: 2024 - 2026 deepsleep contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"time"
)

// Clock abstracts wall-clock time so the decision engine can be driven by a
// fake clock in tests instead of real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

// Now returns the current time with its monotonic reading stripped. The
// monotonic clock does not advance while the machine is suspended, but time
// spent asleep must count as elapsed session time.
func (realClock) Now() time.Time {
	return time.Now().Round(0)
}

func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

func NewClock() Clock {
	return realClock{}
}

// Session describes one run: when it started and how long the machine should
// stay away in total. It is built once at startup and never modified.
type Session struct {
	Start time.Time
	Total time.Duration
}

func New(c Clock, total time.Duration) Session {
	return Session{
		Start: c.Now(),
		Total: total,
	}
}

// Elapsed reports wall-clock time since the session started. The clock jumps
// forward across a suspend; a clock stepped backwards clamps to zero.
func (s Session) Elapsed(c Clock) time.Duration {
	elapsed := c.Now().Sub(s.Start)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Remaining reports how much of the total duration is left, never negative.
func (s Session) Remaining(c Clock) time.Duration {
	remaining := s.Total - s.Elapsed(c)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Over reports whether the total duration has fully elapsed.
func (s Session) Over(c Clock) bool {
	return s.Elapsed(c) >= s.Total
}

// Deadline is the point in time the session is over.
func (s Session) Deadline() time.Time {
	return s.Start.Add(s.Total)
}
