// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package console prints sensor readings to a terminal.
//
// Each reading is one line. On a color terminal the humidity is drawn as a
// bar of ANSI 256 color blocks, tinted by the temperature.
package console

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/GermanBionicSystems/dhtsense/dht22"
	"github.com/GermanBionicSystems/dhtsense/mq135"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Opts represents the options available for the console.
type Opts struct {
	// W is where lines are written. nil means stdout, with colors when it is
	// a terminal.
	W io.Writer
	// Color forces colors on W. It is ignored when W is nil.
	Color bool
	// Width is the number of blocks of the humidity bar. 0 means 10.
	Width   int
	Palette *ansi256.Palette

	_ struct{}
}

// Dev writes readings to the console.
type Dev struct {
	mu      sync.Mutex
	w       io.Writer
	color   bool
	width   int
	palette ansi256.Palette
	buf     bytes.Buffer
}

// New returns a Dev. The Opts can be nil.
func New(opts *Opts) *Dev {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d := &Dev{w: opts.W, color: opts.Color, width: opts.Width, palette: *p}
	if d.w == nil {
		d.w = colorable.NewColorableStdout()
		fd := os.Stdout.Fd()
		d.color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	if d.width <= 0 {
		d.width = 10
	}
	return d
}

func (d *Dev) String() string {
	return "Console"
}

// Report writes one line for r and the optional gas sample.
func (d *Dev) Report(t time.Time, name string, r dht22.Reading, gas *mq135.Sample) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf.Reset()
	fmt.Fprintf(&d.buf, "%s %s ", t.Format("15:04:05"), name)
	if r.Status == dht22.StatusOK {
		fmt.Fprintf(&d.buf, "%5.1f°C %5.1f%%rH", r.Temperature, r.Humidity)
		if d.color {
			_ = d.buf.WriteByte(' ')
			d.bar(r)
		}
	} else {
		fmt.Fprintf(&d.buf, "%s", r)
	}
	if gas != nil {
		fmt.Fprintf(&d.buf, " CO2 %.0fppm AQI %d", gas.PPM, gas.AQI)
	}
	_ = d.buf.WriteByte('\n')
	_, err := d.buf.WriteTo(d.w)
	return err
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.color {
		return nil
	}
	_, err := io.WriteString(d.w, "\033[0m")
	return err
}

// bar draws the humidity as d.width blocks in the temperature color, the
// remainder dark.
func (d *Dev) bar(r dht22.Reading) {
	n := int(math.Round(r.Humidity / 100 * float64(d.width)))
	c := Temperature(r.Temperature)
	for i := 0; i < d.width; i++ {
		if i < n {
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		} else {
			_, _ = io.WriteString(&d.buf, d.palette.Block(color.NRGBA{0x30, 0x30, 0x30, 255}))
		}
	}
	_, _ = d.buf.WriteString("\033[0m")
}

// Temperature maps a temperature in °C to a color, from blue at 0°C and below
// through green at 20°C to red at 40°C and above.
func Temperature(c float64) color.NRGBA {
	f := math.Max(0, math.Min(1, c/40))
	if f < 0.5 {
		g := f * 2
		return color.NRGBA{0, byte(255 * g), byte(255 * (1 - g)), 255}
	}
	g := (f - 0.5) * 2
	return color.NRGBA{byte(255 * g), byte(255 * (1 - g)), 0, 255}
}

var _ fmt.Stringer = &Dev{}
