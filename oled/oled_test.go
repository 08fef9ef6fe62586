// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package oled

import (
	"image"
	"testing"

	"github.com/GermanBionicSystems/dhtsense/dht22"
	"github.com/GermanBionicSystems/dhtsense/mq135"
	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/display/displaytest"
)

func newDrawer(w, h int) *displaytest.Drawer {
	return &displaytest.Drawer{Img: image.NewNRGBA(image.Rect(0, 0, w, h))}
}

// lit returns the bounding box of the white pixels.
func lit(img *image.NRGBA) (image.Rectangle, int) {
	var box image.Rectangle
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y).R == 0 {
				continue
			}
			n++
			box = box.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return box, n
}

func TestText(t *testing.T) {
	r := dht22.Reading{Humidity: 65.2, Temperature: -10.5}
	bad := dht22.Reading{Status: dht22.StatusTimeout, Phase: dht22.PhaseAwaitAck}
	gas := &mq135.Sample{AQI: 37}
	for _, tc := range []struct {
		page Page
		r    dht22.Reading
		gas  *mq135.Sample
		want string
	}{
		{PageTemperature, r, nil, "TEMP:-10.5 C"},
		{PageHumidity, r, nil, "HUM:65.2%"},
		{PageAirQuality, r, gas, "AQI:37"},
		{PageAirQuality, r, nil, "AQI:--"},
		{PageTemperature, bad, gas, "TEMP:--"},
		{PageHumidity, bad, gas, "HUM:--"},
		{Page(7), r, nil, "Page(7)"},
	} {
		if got := Text(tc.page, tc.r, tc.gas); got != tc.want {
			t.Errorf("Text(%s) = %q; want %q", tc.page, got, tc.want)
		}
	}
}

func TestDashboard_Show(t *testing.T) {
	d := newDrawer(128, 32)
	b, err := New(d, nil)
	if err != nil {
		t.Fatal(err)
	}
	r := dht22.Reading{Humidity: 40, Temperature: 20}
	if err := b.Show(r, nil); err != nil {
		t.Fatal(err)
	}
	box, n := lit(d.Img)
	if n == 0 {
		t.Fatal("nothing drawn")
	}
	// Centered, with a few pixels of slack for the glyph side bearings.
	if c := (box.Min.X + box.Max.X) / 2; c < 56 || c > 72 {
		t.Errorf("text centered at x=%d (%s)", c, box)
	}
	if c := (box.Min.Y + box.Max.Y) / 2; c < 10 || c > 24 {
		t.Errorf("text centered at y=%d (%s)", c, box)
	}

	if err := b.Halt(); err != nil {
		t.Fatal(err)
	}
	if _, n := lit(d.Img); n != 0 {
		t.Fatalf("%d pixels left after Halt", n)
	}
}

func TestDashboard_rotation(t *testing.T) {
	b, err := New(newDrawer(128, 64), nil)
	if err != nil {
		t.Fatal(err)
	}
	r := dht22.Reading{Humidity: 40, Temperature: 20}
	var got []Page
	for i := 0; i < 4; i++ {
		got = append(got, b.Page())
		if err := b.Show(r, nil); err != nil {
			t.Fatal(err)
		}
	}
	gas := &mq135.Sample{AQI: 10}
	for i := 0; i < 4; i++ {
		if err := b.Show(r, gas); err != nil {
			t.Fatal(err)
		}
		got = append(got, b.Page())
	}
	want := []Page{
		PageTemperature, PageHumidity, PageTemperature, PageHumidity,
		PageHumidity, PageAirQuality, PageTemperature, PageHumidity,
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Fatalf("rotation difference (-got +want):\n%s", diff)
	}
}

func TestDashboard_trueType(t *testing.T) {
	face, err := LoadFace("", 16)
	if err != nil {
		t.Fatal(err)
	}
	d := newDrawer(128, 64)
	b, err := New(d, &Opts{Face: face})
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Message("HELLO"); err != nil {
		t.Fatal(err)
	}
	box, n := lit(d.Img)
	if n == 0 {
		t.Fatal("nothing drawn")
	}
	// 16pt is taller than the 13px bitmap font.
	if box.Dy() < 10 {
		t.Fatalf("text %s too small", box)
	}
	if s := b.String(); s != "oled: Drawer" {
		t.Fatal(s)
	}
}

func TestLoadFace_missing(t *testing.T) {
	if _, err := LoadFace("/nonexistent/font.ttf", 12); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Fatal("nil display")
	}
	if _, err := New(newDrawer(0, 0), nil); err == nil {
		t.Fatal("empty display")
	}
}
