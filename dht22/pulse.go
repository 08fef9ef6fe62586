// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"
)

var errHoldTimeout = errors.New("dht22: line held past deadline")

// hold busy-polls p for as long as it reads l and returns how long the line
// stayed there. It fails with errHoldTimeout once timeout has elapsed.
//
// The deadline is computed once. There is no sleep in the loop since a single
// scheduler wake-up is longer than the pulses being measured. A pin read takes
// around 0.2µs on a Raspberry Pi 3.
func hold(p gpio.PinIn, clk clockwork.Clock, l gpio.Level, timeout time.Duration) (time.Duration, error) {
	start := clk.Now()
	deadline := start.Add(timeout)
	for {
		if p.Read() != l {
			return clk.Now().Sub(start), nil
		}
		if clk.Now().After(deadline) {
			return 0, errHoldTimeout
		}
	}
}

// busyWait spins for d. time.Sleep is too coarse below a millisecond.
func busyWait(clk clockwork.Clock, d time.Duration) {
	end := clk.Now().Add(d)
	for clk.Now().Before(end) {
	}
}
