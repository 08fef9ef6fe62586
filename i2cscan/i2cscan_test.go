// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cscan

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestScan(t *testing.T) {
	bus := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x3c, R: []byte{0x00}},
			{Addr: 0x76, R: []byte{0x00}},
		},
		DontPanic: true,
	}
	got := Scan(&bus)
	if diff := cmp.Diff(got, []uint16{0x3c, 0x76}); diff != "" {
		t.Fatalf("Scan() difference (-got +want):\n%s", diff)
	}
	if bus.Count != 2 {
		t.Fatalf("%d transactions played", bus.Count)
	}
}

func TestScan_empty(t *testing.T) {
	bus := i2ctest.Playback{DontPanic: true}
	if got := Scan(&bus); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestTable(t *testing.T) {
	var b bytes.Buffer
	if err := Table(&b, "I2C1", []uint16{0x3c}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(b.String(), "\n")
	want := []string{
		"I2C1",
		"    0  1  2  3  4  5  6  7  8  9  A  B  C  D  E  F ",
		"00                         -- -- -- -- -- -- -- -- ",
		"10 -- -- -- -- -- -- -- -- -- -- -- -- -- -- -- -- ",
		"20 -- -- -- -- -- -- -- -- -- -- -- -- -- -- -- -- ",
		"30 -- -- -- -- -- -- -- -- -- -- -- -- 3c -- -- -- ",
		"40 -- -- -- -- -- -- -- -- -- -- -- -- -- -- -- -- ",
		"50 -- -- -- -- -- -- -- -- -- -- -- -- -- -- -- -- ",
		"60 -- -- -- -- -- -- -- -- -- -- -- -- -- -- -- -- ",
		"70 -- -- -- -- -- -- -- --                         ",
		"1 device(s) found on I2C1",
		"",
	}
	if diff := cmp.Diff(lines, want); diff != "" {
		t.Fatalf("Table() difference (-got +want):\n%s", diff)
	}

	b.Reset()
	if err := Table(&b, "I2C1", nil); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(b.String(), "\nno device found on I2C1\n") {
		t.Fatalf("got %q", b.String())
	}
}
