// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Phase is a step of the read sequence.
type Phase int

const (
	// PhaseIdle is the host start pulse: the line is driven low to wake the
	// sensor up.
	PhaseIdle Phase = iota
	// PhaseRelease drives the line high briefly, then turns the pin into an
	// input with pull-up.
	PhaseRelease
	// PhaseAwaitAck waits for the sensor to pull the line low.
	PhaseAwaitAck
	// PhaseAckLow waits through the sensor's ~80µs low acknowledgment.
	PhaseAckLow
	// PhaseAckHigh waits through the sensor's ~80µs high acknowledgment.
	PhaseAckHigh
	// PhaseBitStart waits through the ~50µs low that opens a bit slot.
	PhaseBitStart
	// PhaseBitEnd measures the high pulse that carries the bit.
	PhaseBitEnd
)

var phaseName = [...]string{"idle", "release", "await-ack", "ack-low", "ack-high", "bit-start", "bit-end"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseName) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseName[p]
}

// ack is the sensor's response, in order: the level the line sits at while
// waiting, and the phase reported if it sits there too long.
var ack = [...]struct {
	phase Phase
	level gpio.Level
}{
	{PhaseAwaitAck, gpio.High},
	{PhaseAckLow, gpio.Low},
	{PhaseAckHigh, gpio.High},
}

// readFrame runs the host start signal, the sensor acknowledgment and the
// 40 bit slots. It returns either a complete frame or an error; never a
// partial frame.
func (d *Dev) readFrame() (Frame, error) {
	if err := d.p.Out(gpio.Low); err != nil {
		return Frame{}, &pinError{phase: PhaseIdle, err: err}
	}
	d.clk.Sleep(d.opts.StartDuration)

	release := enterCritical()
	defer release()

	if err := d.p.Out(gpio.High); err != nil {
		return Frame{}, &pinError{phase: PhaseRelease, err: err}
	}
	busyWait(d.clk, d.opts.ReleaseDuration)
	if err := d.p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return Frame{}, &pinError{phase: PhaseRelease, err: err}
	}

	for _, s := range ack {
		if _, err := hold(d.p, d.clk, s.level, d.opts.HandshakeTimeout); err != nil {
			return Frame{}, &TimeoutError{Phase: s.phase, Bit: -1}
		}
	}

	var f Frame
	for i := 0; i < FrameBits; i++ {
		if _, err := hold(d.p, d.clk, gpio.Low, d.opts.BitTimeout); err != nil {
			return Frame{}, &TimeoutError{Phase: PhaseBitStart, Bit: i}
		}
		w, err := hold(d.p, d.clk, gpio.High, d.opts.BitTimeout)
		if err != nil {
			return Frame{}, &TimeoutError{Phase: PhaseBitEnd, Bit: i}
		}
		f.Push(classify(w, d.opts.Threshold))
	}
	return f, nil
}
