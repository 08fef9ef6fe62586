// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mq135

import (
	"errors"
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

// WarmUp is how long the heater must run before readings are meaningful.
const WarmUp = 60 * time.Second

// Opts holds the calibration of the sensor.
type Opts struct {
	// Reference is the ADC reference voltage, the top of the Range().
	Reference physic.ElectricPotential
	// LoadResistance is the divider resistor on the module, in kΩ.
	LoadResistance float64
	// RZero is the sensor resistance in clean air, in kΩ. Calibrate it per
	// sensor.
	RZero float64
	// ParA and ParB are the coefficients of ppm = ParA * (Rs/R0)^-ParB.
	ParA float64
	ParB float64
}

// DefaultOpts is the calibration of a typical module on a 3.3V ADC.
var DefaultOpts = Opts{
	Reference:      3300 * physic.MilliVolt,
	LoadResistance: 10,
	RZero:          76.63,
	ParA:           116.6020682,
	ParB:           1.41,
}

// Sample is one conversion.
type Sample struct {
	// Raw is the ADC code.
	Raw int32
	// Voltage is the divider output.
	Voltage physic.ElectricPotential
	// Resistance is Rs, in kΩ.
	Resistance float64
	// Ratio is Rs/R0.
	Ratio float64
	// PPM is the CO₂ equivalent concentration.
	PPM float64
	// AQI is Voltage scaled to 0-100 of Reference, higher being worse air.
	AQI int
}

func (s Sample) String() string {
	return fmt.Sprintf("%.0fppm AQI %d", s.PPM, s.AQI)
}

// ErrNoSignal is returned when the ADC reads 0V; the sensor is unpowered or
// disconnected.
var ErrNoSignal = errors.New("mq135: no signal")

// Dev is a handle to an MQ135 on an ADC pin.
type Dev struct {
	p    analog.PinADC
	opts Opts
	max  int32
}

// New returns a Dev reading p. The Opts can be nil.
//
// Only the positive half of the ADC range is used; differential ADCs report
// a symmetric range.
func New(p analog.PinADC, opts *Opts) (*Dev, error) {
	if p == nil {
		return nil, errors.New("mq135: invalid pin")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Reference <= 0 || opts.LoadResistance <= 0 || opts.RZero <= 0 || opts.ParA <= 0 {
		return nil, fmt.Errorf("mq135: invalid calibration %+v", *opts)
	}
	_, hi := p.Range()
	if hi.Raw <= 0 {
		return nil, fmt.Errorf("mq135: %s has no positive range", p)
	}
	return &Dev{p: p, opts: *opts, max: hi.Raw}, nil
}

// Read converts the current ADC value.
func (d *Dev) Read() (Sample, error) {
	s, err := d.p.Read()
	if err != nil {
		return Sample{}, fmt.Errorf("mq135: %w", err)
	}
	return d.convert(s)
}

// convert uses the voltage reported by the ADC when it knows it, and scales
// the raw code to Reference otherwise.
func (d *Dev) convert(a analog.Sample) (Sample, error) {
	raw := a.Raw
	if raw < 0 {
		raw = 0
	} else if raw > d.max {
		raw = d.max
	}
	v := a.V
	if v == 0 {
		v = physic.ElectricPotential(math.Round(float64(raw) / float64(d.max) * float64(d.opts.Reference)))
	}
	if v > d.opts.Reference {
		v = d.opts.Reference
	}
	s := Sample{Raw: raw, Voltage: v}
	if v > 0 {
		s.AQI = int(int64(v) * 100 / int64(d.opts.Reference))
	}
	if v <= 0 {
		return s, ErrNoSignal
	}
	// Voltage divider: Rs = RL * (Vref - V) / V.
	f := float64(v) / float64(d.opts.Reference)
	s.Resistance = d.opts.LoadResistance * (1 - f) / f
	s.Ratio = s.Resistance / d.opts.RZero
	if s.Ratio > 0 {
		s.PPM = d.opts.ParA * math.Pow(s.Ratio, -d.opts.ParB)
	} else {
		s.PPM = math.Inf(1)
	}
	return s, nil
}

// Halt implements conn.Resource. The heater is not controlled by this driver.
func (d *Dev) Halt() error {
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("mq135: %s", d.p)
}
