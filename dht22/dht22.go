// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// MinInterval is the quiet period the sensor needs between two reads.
// Reading faster returns stale or corrupted frames.
const MinInterval = 2 * time.Second

// Opts holds the configuration options for the device.
type Opts struct {
	// StartDuration is how long the host holds the line low to wake the
	// sensor up. The datasheet asks for at least 1ms; longer is more tolerant
	// of weak pull-ups.
	StartDuration time.Duration
	// ReleaseDuration is how long the host drives the line high before
	// switching to input.
	ReleaseDuration time.Duration
	// HandshakeTimeout bounds each wait of the acknowledgment.
	HandshakeTimeout time.Duration
	// BitTimeout bounds each wait inside the bit loop. Keep it tight so a
	// stuck line fails fast.
	BitTimeout time.Duration
	// Threshold is the high pulse width from which a bit is read as 1.
	Threshold time.Duration
	// Limits is the accepted temperature range. Frames outside of it are
	// rejected with a *RangeError.
	Limits Limits
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	StartDuration:    2 * time.Millisecond,
	ReleaseDuration:  30 * time.Microsecond,
	HandshakeTimeout: 100 * time.Millisecond,
	BitTimeout:       5 * time.Millisecond,
	Threshold:        DefaultThreshold,
	Limits:           DefaultLimits,
}

// Reading is the result of one read.
//
// Humidity and Temperature are only meaningful when Status is StatusOK.
type Reading struct {
	// Humidity in %RH.
	Humidity float64
	// Temperature in °C.
	Temperature float64
	Status      Status
	// Phase is where the read stopped when Status is StatusTimeout.
	Phase Phase
	// Raw is the frame as received. It is zero on StatusTimeout.
	Raw [5]byte
}

// Fahrenheit returns the temperature in °F.
func (r Reading) Fahrenheit() float64 {
	return r.Temperature*9/5 + 32
}

// Env converts the reading to periph units.
func (r Reading) Env() physic.Env {
	return physic.Env{
		Temperature: physic.Temperature(math.Round(r.Temperature*10))*(physic.Celsius/10) + physic.ZeroCelsius,
		Humidity:    physic.RelativeHumidity(math.Round(r.Humidity*10)) * physic.MilliRH,
	}
}

func (r Reading) String() string {
	switch r.Status {
	case StatusOK:
		return fmt.Sprintf("%.1f°C %.1f%%rH", r.Temperature, r.Humidity)
	case StatusTimeout:
		return fmt.Sprintf("%s (%s)", r.Status, r.Phase)
	default:
		return r.Status.String()
	}
}

// Dev is a handle to a DHT22 sensor on a GPIO pin.
type Dev struct {
	p    gpio.PinIO
	opts Opts
	clk  clockwork.Clock

	mu       sync.Mutex // serializes reads
	lastRead time.Time

	smu  sync.Mutex // guards stop
	stop chan struct{}
	wg   sync.WaitGroup
}

// New returns a Dev for the sensor connected to p. The Opts can be nil.
//
// The pin is left as an input with pull-up, which is the idle state of the
// line.
func New(p gpio.PinIO, opts *Opts) (*Dev, error) {
	return newDev(p, opts, clockwork.NewRealClock())
}

func newDev(p gpio.PinIO, opts *Opts, clk clockwork.Clock) (*Dev, error) {
	if p == nil || p == gpio.INVALID {
		return nil, errors.New("dht22: invalid pin")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("dht22: failed to set %s as input: %w", p, err)
	}
	return &Dev{p: p, opts: *opts, clk: clk}, nil
}

func (o *Opts) validate() error {
	switch {
	case o.StartDuration < time.Millisecond:
		return fmt.Errorf("dht22: invalid StartDuration %s, minimum is 1ms", o.StartDuration)
	case o.ReleaseDuration < 0:
		return fmt.Errorf("dht22: invalid ReleaseDuration %s", o.ReleaseDuration)
	case o.HandshakeTimeout <= 0:
		return fmt.Errorf("dht22: invalid HandshakeTimeout %s", o.HandshakeTimeout)
	case o.BitTimeout <= 0:
		return fmt.Errorf("dht22: invalid BitTimeout %s", o.BitTimeout)
	case o.Threshold <= 0:
		return fmt.Errorf("dht22: invalid Threshold %s", o.Threshold)
	case o.Limits.MinTemperature >= o.Limits.MaxTemperature:
		return fmt.Errorf("dht22: invalid temperature limits [%g, %g]", o.Limits.MinTemperature, o.Limits.MaxTemperature)
	}
	return nil
}

// Read polls the sensor once.
//
// The call blocks for the whole transfer, around 5ms when the sensor answers
// and at most a few handshake timeouts when it does not. The returned Reading
// always has a definite Status; err is nil only for StatusOK and is one of
// *TimeoutError, *ChecksumError or *RangeError otherwise, or a wrapped pin
// error.
//
// Read does not enforce MinInterval; the caller paces the reads.
func (d *Dev) Read() (Reading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastRead = d.clk.Now()

	f, err := d.readFrame()
	if err != nil {
		// Leave the line to the pull-up whatever state the read stopped in.
		_ = d.p.In(gpio.PullUp, gpio.NoEdge)
		return failed(Reading{}, err), err
	}
	r := Reading{Raw: f.Bytes}
	if r.Humidity, r.Temperature, err = f.Decode(d.opts.Limits); err != nil {
		return failed(r, err), err
	}
	return r, nil
}

func failed(r Reading, err error) Reading {
	r.Humidity, r.Temperature = 0, 0
	r.Status, r.Phase = classifyErr(err)
	return r
}

// Sense implements physic.SenseEnv. The pressure is not modified.
func (d *Dev) Sense(e *physic.Env) error {
	r, err := d.Read()
	if err != nil {
		return err
	}
	v := r.Env()
	e.Temperature = v.Temperature
	e.Humidity = v.Humidity
	return nil
}

// SenseContinuous implements physic.SenseEnv. It reads the sensor every
// interval, which must be at least MinInterval. Failed reads are skipped. It
// is the caller's responsibility to call Halt() when done.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < MinInterval {
		return nil, fmt.Errorf("dht22: invalid interval %s, minimum is %s", interval, MinInterval)
	}
	d.smu.Lock()
	defer d.smu.Unlock()
	if d.stop != nil {
		return nil, errors.New("dht22: sense continuous already running")
	}
	stop := make(chan struct{})
	d.stop = stop
	sensing := make(chan physic.Env, 16)
	ticker := d.clk.NewTicker(interval)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(sensing)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				var e physic.Env
				if err := d.Sense(&e); err != nil {
					continue
				}
				select {
				case sensing <- e:
				case <-stop:
					return
				}
			}
		}
	}()
	return sensing, nil
}

// Halt implements conn.Resource. It stops a running SenseContinuous() and
// waits for it to return.
func (d *Dev) Halt() error {
	d.smu.Lock()
	if d.stop == nil {
		d.smu.Unlock()
		return nil
	}
	close(d.stop)
	d.stop = nil
	d.smu.Unlock()
	d.wg.Wait()
	return nil
}

// Precision implements physic.SenseEnv.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = physic.Celsius / 10
	e.Pressure = 0
	e.Humidity = physic.MilliRH
}

func (d *Dev) String() string {
	return fmt.Sprintf("dht22: %s", d.p)
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
