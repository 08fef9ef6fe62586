// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// dht22 polls a DHT22 temperature and humidity sensor and reports the
// readings on the console and optionally on an SSD1306 OLED display, along
// with the air quality measured by an MQ135 behind an ADS1115 ADC.
//
// Flag defaults can be set with environment variables, read from a .env file
// in the working directory when present:
//
//	DHT22_PIN       GPIO the sensor data line is on
//	DHT22_INTERVAL  time between two polls
//	LED_PIN         GPIO of a LED blinked on every poll
//	OLED_HEIGHT     height of the OLED panel, 0 to disable it
//	MQ135_CHANNEL   ADS1115 channel of the MQ135, -1 to disable it
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/dhtsense/console"
	"github.com/GermanBionicSystems/dhtsense/dht22"
	"github.com/GermanBionicSystems/dhtsense/i2cscan"
	"github.com/GermanBionicSystems/dhtsense/mq135"
	"github.com/GermanBionicSystems/dhtsense/oled"
	"github.com/joho/godotenv"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

var channels = [...]ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3}

// env returns the value of the environment variable key, or def.
func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := env(key, "")
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := env(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// config is the parsed command line.
type config struct {
	pin        string
	interval   time.Duration
	retries    int
	once       bool
	led        string
	i2cBus     string
	oledHeight int
	ttf        string
	fontSize   float64
	channel    int
	vref       physic.ElectricPotential
	rzero      float64
	scan       bool
	verbose    bool
}

func parseFlags(args []string) (*config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	interval, err := envDuration("DHT22_INTERVAL", 2500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	height, err := envInt("OLED_HEIGHT", 0)
	if err != nil {
		return nil, err
	}
	channel, err := envInt("MQ135_CHANNEL", -1)
	if err != nil {
		return nil, err
	}

	c := &config{vref: mq135.DefaultOpts.Reference}
	fs := flag.NewFlagSet("dht22", flag.ContinueOnError)
	fs.StringVar(&c.pin, "pin", env("DHT22_PIN", "GPIO4"), "GPIO the DHT22 data line is connected to")
	fs.DurationVar(&c.interval, "interval", interval, "time between two polls, at least "+dht22.MinInterval.String())
	fs.IntVar(&c.retries, "retries", 3, "attempts per poll")
	fs.BoolVar(&c.once, "once", false, "poll once and exit")
	fs.StringVar(&c.led, "led", env("LED_PIN", ""), "GPIO of a LED to blink on every poll")
	fs.StringVar(&c.i2cBus, "i2c", "", "I²C bus of the display and the ADC; empty for the first one")
	fs.IntVar(&c.oledHeight, "oled", height, "height of the SSD1306 panel (32 or 64); 0 to disable it")
	fs.StringVar(&c.ttf, "ttf", "", "TrueType font for the display; empty for the built-in bitmap font")
	fs.Float64Var(&c.fontSize, "font-size", 16, "font size in points when -ttf is used")
	fs.IntVar(&c.channel, "mq135", channel, "ADS1115 channel of the MQ135 (0-3); -1 to disable it")
	fs.Var(&c.vref, "mq135-vref", "supply voltage of the MQ135 divider")
	fs.Float64Var(&c.rzero, "mq135-rzero", mq135.DefaultOpts.RZero, "MQ135 resistance in clean air, in kΩ")
	fs.BoolVar(&c.scan, "scan", false, "list the devices on every I²C bus and exit")
	fs.BoolVar(&c.verbose, "v", false, "verbose mode")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	if c.interval < dht22.MinInterval {
		return nil, fmt.Errorf("-interval must be at least %s", dht22.MinInterval)
	}
	if c.channel >= len(channels) {
		return nil, fmt.Errorf("-mq135 must be between -1 and %d", len(channels)-1)
	}
	if c.oledHeight != 0 && c.oledHeight != 32 && c.oledHeight != 64 {
		return nil, errors.New("-oled must be 0, 32 or 64")
	}
	return c, nil
}

func scanAll(w io.Writer) error {
	refs := i2creg.All()
	if len(refs) == 0 {
		return errors.New("no I²C bus found")
	}
	for _, ref := range refs {
		b, err := ref.Open()
		if err != nil {
			log.Printf("%s: %v", ref.Name, err)
			continue
		}
		found := i2cscan.Scan(b)
		err = errors.Join(i2cscan.Table(w, ref.Name, found), b.Close())
		if err != nil {
			return err
		}
	}
	return nil
}

// station holds everything polled or updated on every tick.
type station struct {
	c       *config
	sensor  *dht22.Dev
	name    string
	console *console.Dev
	dash    *oled.Dashboard
	gas     *mq135.Dev
	warm    time.Time
	led     gpio.PinOut
}

func (s *station) poll(ctx context.Context) error {
	r, err := s.sensor.ReadRetry(ctx, s.c.retries)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		log.Printf("%s: %v", s.sensor, err)
	}
	var sample *mq135.Sample
	if s.gas != nil && !time.Now().Before(s.warm) {
		if v, err := s.gas.Read(); err != nil {
			log.Printf("%s: %v", s.gas, err)
		} else {
			sample = &v
		}
	}
	if err := s.console.Report(time.Now(), s.name, r, sample); err != nil {
		return err
	}
	if s.dash != nil {
		if err := s.dash.Show(r, sample); err != nil {
			log.Printf("%s: %v", s.dash, err)
		}
	}
	if s.led != nil {
		if err := s.led.Out(gpio.High); err != nil {
			return err
		}
		time.Sleep(100 * time.Millisecond)
		return s.led.Out(gpio.Low)
	}
	return nil
}

// ledOff turns the LED off on exit. A failure is only logged since the
// process is terminating anyway.
func ledOff(p gpio.PinOut) {
	if err := p.Out(gpio.Low); err != nil {
		log.Printf("%s: %v", p, err)
	}
}

func mainImpl() error {
	c, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}
	if !c.verbose {
		log.SetOutput(io.Discard)
	}
	log.SetFlags(log.Lmicroseconds)

	if _, err := host.Init(); err != nil {
		return err
	}
	if c.scan {
		return scanAll(os.Stdout)
	}

	p := gpioreg.ByName(c.pin)
	if p == nil {
		return fmt.Errorf("failed to find %s", c.pin)
	}
	sensor, err := dht22.New(p, nil)
	if err != nil {
		return err
	}
	s := &station{c: c, sensor: sensor, name: p.Name(), console: console.New(nil)}
	defer s.console.Halt()

	if c.led != "" {
		if s.led = gpioreg.ByName(c.led); s.led == nil {
			return fmt.Errorf("failed to find %s", c.led)
		}
		defer ledOff(s.led)
	}

	if c.oledHeight != 0 || c.channel >= 0 {
		b, err := i2creg.Open(c.i2cBus)
		if err != nil {
			return err
		}
		defer b.Close()
		if c.oledHeight != 0 {
			if s.dash, err = openDashboard(b, c); err != nil {
				return err
			}
			defer s.dash.Halt()
		}
		if c.channel >= 0 {
			if s.gas, err = openGas(b, c); err != nil {
				return err
			}
			defer s.gas.Halt()
			s.warm = time.Now().Add(mq135.WarmUp)
			log.Printf("%s: warming up until %s", s.gas, s.warm.Format(time.TimeOnly))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		if err := s.poll(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if c.once {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

func openDashboard(b i2c.Bus, c *config) (*oled.Dashboard, error) {
	opts := ssd1306.DefaultOpts
	opts.H = c.oledHeight
	// 0.91" 128x32 panels use the sequential COM pin layout.
	opts.Sequential = c.oledHeight == 32
	disp, err := ssd1306.NewI2C(b, &opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	var o oled.Opts
	if c.ttf != "" {
		if o.Face, err = oled.LoadFace(c.ttf, c.fontSize); err != nil {
			return nil, err
		}
	}
	dash, err := oled.New(disp, &o)
	if err != nil {
		return nil, err
	}
	return dash, dash.Message("DHT22")
}

func openGas(b i2c.Bus, c *config) (*mq135.Dev, error) {
	adc, err := ads1x15.NewADS1115(b, &ads1x15.DefaultOpts)
	if err != nil {
		return nil, err
	}
	pin, err := adc.PinForChannel(channels[c.channel], c.vref, physic.Hertz, ads1x15.BestQuality)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", adc, err)
	}
	opts := mq135.DefaultOpts
	opts.Reference = c.vref
	opts.RZero = c.rzero
	return mq135.New(pin, &opts)
}

func main() {
	if err := mainImpl(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "dht22: %s.\n", err)
		os.Exit(1)
	}
}
