// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"math"

	"github.com/GermanBionicSystems/dhtsense/common"
)

// FrameBits is the number of bits the sensor sends per read.
const FrameBits = 40

// Frame is the raw payload of one read.
//
// Bytes[0:2] is the humidity and Bytes[2:4] the temperature, both big endian
// in tenths. Bit 7 of Bytes[2] is the temperature sign. Bytes[4] is the sum
// of the first four bytes.
type Frame struct {
	Bytes [5]byte
	// Bits is the number of bits pushed so far.
	Bits int
}

// Encode returns the complete frame the sensor would send for the given
// humidity (%RH) and temperature (°C).
//
// Values are rounded to the nearest tenth and clamped to what the frame can
// carry.
func Encode(humidity, temperature float64) Frame {
	h := uint16(math.Min(math.Max(math.Round(humidity*10), 0), math.MaxUint16))
	t := uint16(math.Min(math.Round(math.Abs(temperature)*10), 0x7fff))
	if temperature < 0 && t != 0 {
		t |= 0x8000
	}
	f := Frame{Bits: FrameBits}
	f.Bytes[0] = byte(h >> 8)
	f.Bytes[1] = byte(h)
	f.Bytes[2] = byte(t >> 8)
	f.Bytes[3] = byte(t)
	f.Bytes[4] = f.Checksum()
	return f
}

// Push appends bit to the frame, most significant bit first within each
// byte. Bits past FrameBits are dropped.
func (f *Frame) Push(bit byte) {
	if f.Bits >= FrameBits {
		return
	}
	if bit != 0 {
		f.Bytes[f.Bits/8] |= 0x80 >> uint(f.Bits%8)
	}
	f.Bits++
}

// Complete returns true once all FrameBits bits have been pushed.
func (f *Frame) Complete() bool {
	return f.Bits == FrameBits
}

// Checksum returns the checksum the first four bytes call for.
func (f *Frame) Checksum() byte {
	return common.Sum8(f.Bytes[:4])
}

// Limits is the accepted temperature range, in °C. Humidity is always
// checked against [0, 100].
type Limits struct {
	MinTemperature float64
	MaxTemperature float64
}

// DefaultLimits is the AM2302 datasheet operating range.
var DefaultLimits = Limits{MinTemperature: -40, MaxTemperature: 80}

// Decode validates the frame and returns the humidity in %RH and temperature
// in °C.
//
// It returns a *ChecksumError when the checksum does not match and a
// *RangeError when the decoded values are outside [0, 100] %RH or l.
func (f *Frame) Decode(l Limits) (humidity, temperature float64, err error) {
	if !f.Complete() {
		return 0, 0, errIncomplete
	}
	if want := f.Checksum(); f.Bytes[4] != want {
		return 0, 0, &ChecksumError{Got: f.Bytes[4], Want: want}
	}
	humidity = float64(uint16(f.Bytes[0])<<8|uint16(f.Bytes[1])) / 10.0
	if f.Bytes[2]&0x80 != 0 {
		temperature = -float64(uint16(f.Bytes[2]&0x7f)<<8|uint16(f.Bytes[3])) / 10.0
	} else {
		temperature = float64(uint16(f.Bytes[2])<<8|uint16(f.Bytes[3])) / 10.0
	}
	if humidity < 0 || humidity > 100 || temperature < l.MinTemperature || temperature > l.MaxTemperature {
		return 0, 0, &RangeError{Humidity: humidity, Temperature: temperature}
	}
	return humidity, temperature, nil
}
