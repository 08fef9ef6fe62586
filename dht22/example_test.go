// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/GermanBionicSystems/dhtsense/dht22"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	p := gpioreg.ByName("GPIO4")
	if p == nil {
		log.Fatal("failed to find GPIO4")
	}

	d, err := dht22.New(p, nil) // nil for default options or &dht22.DefaultOpts
	if err != nil {
		log.Fatalf("failed to initialize DHT22: %v", err)
	}

	r, err := d.Read()
	if err != nil {
		// r.Status and r.Phase tell what went wrong.
		log.Fatalf("%s: %v", r, err)
	}
	fmt.Printf("%.1f°C %.1f%%rH\n", r.Temperature, r.Humidity)
}

func ExampleDev_ReadRetry() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	d, err := dht22.New(gpioreg.ByName("GPIO4"), nil)
	if err != nil {
		log.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	r, err := d.ReadRetry(ctx, 5)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(r)
}

func ExampleDev_SenseContinuous() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	d, err := dht22.New(gpioreg.ByName("GPIO4"), nil)
	if err != nil {
		log.Fatal(err)
	}
	defer d.Halt()
	c, err := d.SenseContinuous(dht22.MinInterval)
	if err != nil {
		log.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		e := <-c
		fmt.Printf("%8s %9s\n", e.Temperature, e.Humidity)
	}
	var p physic.Env
	d.Precision(&p)
	fmt.Printf("precision: %s %s\n", p.Temperature, p.Humidity)
}
