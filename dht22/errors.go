// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"errors"
	"fmt"
)

// Status is the outcome of a single read.
type Status int

const (
	// StatusOK means the reading is valid.
	StatusOK Status = iota
	// StatusTimeout means the line stayed at one level past its deadline, or
	// the pin could not be driven. Reading.Phase tells where.
	StatusTimeout
	// StatusChecksumMismatch means the frame was corrupted in transfer.
	StatusChecksumMismatch
	// StatusOutOfRange means the frame passed the checksum but decoded to
	// physically implausible values.
	StatusOutOfRange
)

var statusName = [...]string{"ok", "timeout", "checksum mismatch", "out of range"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusName) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusName[s]
}

// TimeoutError is returned when the sensor did not move the line in time.
type TimeoutError struct {
	Phase Phase
	// Bit is the index of the bit being read, or -1 outside the bit loop.
	Bit int
}

func (e *TimeoutError) Error() string {
	if e.Bit >= 0 {
		return fmt.Sprintf("dht22: timeout in %s of bit %d", e.Phase, e.Bit)
	}
	return fmt.Sprintf("dht22: timeout in %s", e.Phase)
}

// ChecksumError is returned when the last byte of the frame is not the sum of
// the first four.
type ChecksumError struct {
	Got  byte
	Want byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("dht22: checksum mismatch: got %#02x, want %#02x", e.Got, e.Want)
}

// RangeError is returned when a frame with a valid checksum decodes to values
// the sensor cannot produce.
type RangeError struct {
	Humidity    float64
	Temperature float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("dht22: bad data: humidity %.1f%%, temperature %.1f°C", e.Humidity, e.Temperature)
}

// errIncomplete is returned when decoding a frame that does not hold 40 bits.
var errIncomplete = errors.New("dht22: incomplete frame")

// pinError wraps a failure to drive the pin during phase.
type pinError struct {
	phase Phase
	err   error
}

func (e *pinError) Error() string {
	return fmt.Sprintf("dht22: %s: %v", e.phase, e.err)
}

func (e *pinError) Unwrap() error {
	return e.err
}

// classifyErr maps an error returned by the read sequence to the Status and
// Phase reported in Reading.
func classifyErr(err error) (Status, Phase) {
	var te *TimeoutError
	var pe *pinError
	var ce *ChecksumError
	var re *RangeError
	switch {
	case err == nil:
		return StatusOK, PhaseIdle
	case errors.As(err, &te):
		return StatusTimeout, te.Phase
	case errors.As(err, &pe):
		return StatusTimeout, pe.phase
	case errors.As(err, &ce), errors.Is(err, errIncomplete):
		return StatusChecksumMismatch, PhaseIdle
	case errors.As(err, &re):
		return StatusOutOfRange, PhaseIdle
	default:
		return StatusTimeout, PhaseIdle
	}
}
