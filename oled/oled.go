// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package oled shows sensor readings on a small monochrome display, one value
// at a time.
//
// Each call to Dashboard.Show draws one page and moves to the next: the
// temperature, then the humidity, then the air quality index when a gas
// sample is available.
package oled

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"os"
	"sync"

	"github.com/GermanBionicSystems/dhtsense/dht22"
	"github.com/GermanBionicSystems/dhtsense/mq135"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Page is one screen of the rotation.
type Page int

// Pages, in display order.
const (
	PageTemperature Page = iota
	PageHumidity
	PageAirQuality
	numPages
)

var pageName = [...]string{"TEMP", "HUM", "AQI"}

func (p Page) String() string {
	if p < 0 || p >= numPages {
		return fmt.Sprintf("Page(%d)", int(p))
	}
	return pageName[p]
}

// Text returns the line page p shows. Values that are not available are
// shown as "--".
func Text(p Page, r dht22.Reading, gas *mq135.Sample) string {
	ok := r.Status == dht22.StatusOK
	switch p {
	case PageTemperature:
		if !ok {
			return "TEMP:--"
		}
		return fmt.Sprintf("TEMP:%.1f C", r.Temperature)
	case PageHumidity:
		if !ok {
			return "HUM:--"
		}
		return fmt.Sprintf("HUM:%.1f%%", r.Humidity)
	case PageAirQuality:
		if gas == nil {
			return "AQI:--"
		}
		return fmt.Sprintf("AQI:%d", gas.AQI)
	default:
		return p.String()
	}
}

// Opts holds the configuration options.
type Opts struct {
	// Face is the font used. nil means basicfont.Face7x13, which fits a
	// 128x32 panel.
	Face font.Face
}

// LoadFace returns a TrueType face of the given size in points. An empty path
// selects the embedded Go Regular font.
func LoadFace(path string, points float64) (font.Face, error) {
	ttf := goregular.TTF
	if path != "" {
		var err error
		if ttf, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("oled: %w", err)
		}
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("oled: failed to parse %q: %w", path, err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: points, Hinting: font.HintingFull}), nil
}

// Dashboard renders readings on a display.
type Dashboard struct {
	mu   sync.Mutex
	d    display.Drawer
	face font.Face
	page Page
}

// New returns a Dashboard drawing on d. The Opts can be nil.
func New(d display.Drawer, opts *Opts) (*Dashboard, error) {
	if d == nil {
		return nil, errors.New("oled: no display")
	}
	if d.Bounds().Empty() {
		return nil, fmt.Errorf("oled: %s has no pixels", d)
	}
	face := font.Face(basicfont.Face7x13)
	if opts != nil && opts.Face != nil {
		face = opts.Face
	}
	return &Dashboard{d: d, face: face}, nil
}

// Page returns the page the next Show draws.
func (b *Dashboard) Page() Page {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

// Show draws the current page and advances the rotation. gas can be nil, in
// which case the air quality page is skipped.
func (b *Dashboard) Show(r dht22.Reading, gas *mq135.Sample) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page == PageAirQuality && gas == nil {
		b.page = PageTemperature
	}
	p := b.page
	b.page = (p + 1) % numPages
	if b.page == PageAirQuality && gas == nil {
		b.page = PageTemperature
	}
	return b.draw(Text(p, r, gas))
}

// Message draws s centered, outside of the rotation.
func (b *Dashboard) Message(s string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draw(s)
}

// Halt implements conn.Resource. It blanks the display.
func (b *Dashboard) Halt() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return errors.Join(b.draw(""), b.d.Halt())
}

func (b *Dashboard) String() string {
	return fmt.Sprintf("oled: %s", b.d)
}

func (b *Dashboard) draw(s string) error {
	r := b.d.Bounds()
	if err := b.d.Draw(r, render(r, b.face, s), r.Min); err != nil {
		return fmt.Errorf("oled: %w", err)
	}
	return nil
}

// render draws s white on black, centered in r.
func render(r image.Rectangle, face font.Face, s string) *image1bit.VerticalLSB {
	w, h := r.Dx(), r.Dy()
	dc := gg.NewContext(w, h)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(face)
	dc.DrawStringAnchored(s, float64(w)/2, float64(h)/2, 0.5, 0.5)
	img := image1bit.NewVerticalLSB(r)
	draw.Draw(img, r, dc.Image(), image.Point{}, draw.Src)
	return img
}

var _ fmt.Stringer = &Dashboard{}
