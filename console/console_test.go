// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package console

import (
	"bytes"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/GermanBionicSystems/dhtsense/dht22"
	"github.com/GermanBionicSystems/dhtsense/mq135"
	"github.com/maruel/ansi256"
)

var at = time.Date(2025, 3, 1, 13, 4, 5, 0, time.UTC)

func TestDev_Report_plain(t *testing.T) {
	var b bytes.Buffer
	d := New(&Opts{W: &b})
	r := dht22.Reading{Humidity: 65.2, Temperature: -10.5}
	if err := d.Report(at, "GPIO4", r, nil); err != nil {
		t.Fatal(err)
	}
	bad := dht22.Reading{Status: dht22.StatusTimeout, Phase: dht22.PhaseAckLow}
	if err := d.Report(at, "GPIO4", bad, &mq135.Sample{PPM: 412.4, AQI: 37}); err != nil {
		t.Fatal(err)
	}
	want := "13:04:05 GPIO4 -10.5°C  65.2%rH\n" +
		"13:04:05 GPIO4 timeout (ack-low) CO2 412ppm AQI 37\n"
	if got := b.String(); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if b.String() != want {
		t.Fatal("Halt wrote to a plain writer")
	}
}

func TestDev_Report_color(t *testing.T) {
	var b bytes.Buffer
	d := New(&Opts{W: &b, Color: true, Width: 4})
	r := dht22.Reading{Humidity: 50, Temperature: 40}
	if err := d.Report(at, "GPIO4", r, nil); err != nil {
		t.Fatal(err)
	}
	red := ansi256.Default.Block(color.NRGBA{255, 0, 0, 255})
	got := b.String()
	if !strings.HasPrefix(got, "13:04:05 GPIO4  40.0°C  50.0%rH "+red+red) {
		t.Fatalf("got %q", got)
	}
	if strings.Count(got, red) != 2 {
		t.Fatalf("got %q, want 2 red blocks", got)
	}
	if !strings.HasSuffix(got, "\033[0m\n") {
		t.Fatalf("colors not reset: %q", got)
	}
	b.Reset()
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if b.String() != "\033[0m" {
		t.Fatalf("Halt wrote %q", b.String())
	}
}

func TestTemperature(t *testing.T) {
	for _, tc := range []struct {
		c    float64
		want color.NRGBA
	}{
		{-20, color.NRGBA{0, 0, 255, 255}},
		{0, color.NRGBA{0, 0, 255, 255}},
		{20, color.NRGBA{0, 255, 0, 255}},
		{40, color.NRGBA{255, 0, 0, 255}},
		{60, color.NRGBA{255, 0, 0, 255}},
	} {
		if got := Temperature(tc.c); got != tc.want {
			t.Errorf("Temperature(%v) = %v; want %v", tc.c, got, tc.want)
		}
	}
}

func TestNew(t *testing.T) {
	d := New(nil)
	if d.width != 10 || d.w == nil {
		t.Fatalf("%+v", d)
	}
	if d.String() != "Console" {
		t.Fatal(d.String())
	}
}
