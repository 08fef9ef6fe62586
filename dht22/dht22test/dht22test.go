// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dht22test is meant to be used to test code reading a DHT22 without
// the sensor.
//
// Line is a fake GPIO pin that replays a DHT22 response on a StepClock, a
// virtual clock that moves forward every time it is read. Together they let
// the busy-polling driver run deterministically.
package dht22test

import (
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// StepClock is a *clockwork.FakeClock that advances by Step on every Now()
// call. Sleep and After advance the clock by the requested duration instead
// of blocking.
type StepClock struct {
	*clockwork.FakeClock
	Step time.Duration
}

// NewStepClock returns a StepClock starting at the Unix epoch.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{FakeClock: clockwork.NewFakeClockAt(time.Unix(0, 0)), Step: step}
}

// Now implements clockwork.Clock.
func (c *StepClock) Now() time.Time {
	c.FakeClock.Advance(c.Step)
	return c.FakeClock.Now()
}

// Since implements clockwork.Clock.
func (c *StepClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Until implements clockwork.Clock.
func (c *StepClock) Until(t time.Time) time.Duration {
	return t.Sub(c.Now())
}

// Sleep implements clockwork.Clock.
func (c *StepClock) Sleep(d time.Duration) {
	c.FakeClock.Advance(d)
}

// After implements clockwork.Clock.
func (c *StepClock) After(d time.Duration) <-chan time.Time {
	ch := c.FakeClock.After(d)
	c.FakeClock.Advance(d)
	return ch
}

// Peek returns the current time without moving the clock.
func (c *StepClock) Peek() time.Time {
	return c.FakeClock.Now()
}

// Forever is a Segment duration that never ends.
const Forever = time.Duration(math.MaxInt64)

// Segment is a stretch of time the sensor holds the line at L.
type Segment struct {
	L gpio.Level
	D time.Duration
}

// Timing is the shape of the sensor response.
type Timing struct {
	// Delay is the time the sensor takes to answer once the host released
	// the line. The pull-up keeps the line high meanwhile.
	Delay   time.Duration
	AckLow  time.Duration
	AckHigh time.Duration
	// BitLow opens every bit slot.
	BitLow time.Duration
	Zero   time.Duration
	One    time.Duration
	// Tail is the low closing the last bit before the sensor lets go.
	Tail time.Duration
}

// DefaultTiming is the nominal timing from the datasheet.
var DefaultTiming = Timing{
	Delay:   20 * time.Microsecond,
	AckLow:  80 * time.Microsecond,
	AckHigh: 80 * time.Microsecond,
	BitLow:  50 * time.Microsecond,
	Zero:    26 * time.Microsecond,
	One:     70 * time.Microsecond,
	Tail:    50 * time.Microsecond,
}

// Indexes of the acknowledgment segments in a waveform.
const (
	SegDelay   = 0
	SegAckLow  = 1
	SegAckHigh = 2
)

// SegBitLow returns the index of the low opening bit i in a waveform.
func SegBitLow(i int) int {
	return 3 + 2*i
}

// SegBitHigh returns the index of the high pulse of bit i in a waveform.
func SegBitHigh(i int) int {
	return 4 + 2*i
}

// Waveform returns the response to a start signal carrying frame b, with
// DefaultTiming.
func Waveform(b [5]byte) []Segment {
	return DefaultTiming.Waveform(b)
}

// Waveform returns the response to a start signal carrying frame b.
func (t *Timing) Waveform(b [5]byte) []Segment {
	w := make([]Segment, 0, 3+2*40+1)
	w = append(w, Segment{gpio.High, t.Delay}, Segment{gpio.Low, t.AckLow}, Segment{gpio.High, t.AckHigh})
	for i := 0; i < 40; i++ {
		d := t.Zero
		if b[i/8]&(0x80>>uint(i%8)) != 0 {
			d = t.One
		}
		w = append(w, Segment{gpio.Low, t.BitLow}, Segment{gpio.High, d})
	}
	return append(w, Segment{gpio.Low, t.Tail})
}

// StuckAt returns the first n segments of w followed by the line stuck at l.
func StuckAt(w []Segment, n int, l gpio.Level) []Segment {
	out := make([]Segment, n, n+1)
	copy(out, w[:n])
	return append(out, Segment{l, Forever})
}

// Duration returns the total length of w.
func Duration(w []Segment) time.Duration {
	var d time.Duration
	for _, s := range w {
		if s.D == Forever {
			return Forever
		}
		d += s.D
	}
	return d
}

// Line is a fake DHT22 data line. It implements gpio.PinIO.
//
// Every In() call restarts Segments from the current Clock time, the way the
// sensor answers every start signal. When Segments runs out, the pull-up
// holds the line high. While the pin is an output, Read returns the driven
// level.
type Line struct {
	gpiotest.Pin
	Clock    *StepClock
	Segments []Segment

	mu     sync.Mutex
	input  bool
	start  time.Time
	driven []gpio.Level
	starts int
}

// In implements gpio.PinIn.
func (l *Line) In(pull gpio.Pull, edge gpio.Edge) error {
	if err := l.Pin.In(pull, edge); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.input = true
	l.start = l.Clock.Peek()
	l.starts++
	return nil
}

// Out implements gpio.PinOut.
func (l *Line) Out(level gpio.Level) error {
	if err := l.Pin.Out(level); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.input = false
	l.driven = append(l.driven, level)
	return nil
}

// Read implements gpio.PinIn.
func (l *Line) Read() gpio.Level {
	l.mu.Lock()
	input, start := l.input, l.start
	l.mu.Unlock()
	if !input {
		return l.Pin.Read()
	}
	elapsed := l.Clock.Peek().Sub(start)
	for _, s := range l.Segments {
		if s.D == Forever || elapsed < s.D {
			return s.L
		}
		elapsed -= s.D
	}
	return gpio.High
}

// Driven returns the levels the pin was driven to, in order.
func (l *Line) Driven() []gpio.Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]gpio.Level(nil), l.driven...)
}

// Inputs returns how many times the pin was switched to input.
func (l *Line) Inputs() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.starts
}

var _ gpio.PinIO = &Line{}
var _ clockwork.Clock = &StepClock{}
