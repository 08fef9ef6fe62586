// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cscan finds the devices answering on an I²C bus.
//
// It is a wiring check for the display: a panel that does not show up at
// 0x3C here will not show anything either.
package i2cscan

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/i2c"
)

// Probed address range. Addresses outside of it are reserved.
const (
	First uint16 = 0x08
	Last  uint16 = 0x77
)

// Scan returns the addresses in [First, Last] that acknowledge a one byte
// read, in ascending order.
func Scan(b i2c.Bus) []uint16 {
	var found []uint16
	var buf [1]byte
	for addr := First; addr <= Last; addr++ {
		if err := b.Tx(addr, nil, buf[:]); err == nil {
			found = append(found, addr)
		}
	}
	return found
}

// Table writes found as the classic 16 column grid, one row per 0x10
// addresses, followed by a summary line.
func Table(w io.Writer, name string, found []uint16) error {
	present := make(map[uint16]bool, len(found))
	for _, a := range found {
		present[a] = true
	}
	if _, err := fmt.Fprintf(w, "%s\n   ", name); err != nil {
		return err
	}
	for col := 0; col < 16; col++ {
		if _, err := fmt.Fprintf(w, " %X ", col); err != nil {
			return err
		}
	}
	for addr := uint16(0); addr < 0x80; addr++ {
		var err error
		if addr%16 == 0 {
			_, err = fmt.Fprintf(w, "\n%02x ", addr)
		}
		if err == nil {
			switch {
			case addr < First || addr > Last:
				_, err = io.WriteString(w, "   ")
			case present[addr]:
				_, err = fmt.Fprintf(w, "%02x ", addr)
			default:
				_, err = io.WriteString(w, "-- ")
			}
		}
		if err != nil {
			return err
		}
	}
	var err error
	if len(found) == 0 {
		_, err = fmt.Fprintf(w, "\nno device found on %s\n", name)
	} else {
		_, err = fmt.Fprintf(w, "\n%d device(s) found on %s\n", len(found), name)
	}
	return err
}
