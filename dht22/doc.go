// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dht22 reads the AOSONG DHT22 (AM2302) temperature and humidity
// sensor over a single bit-banged GPIO line.
//
// The sensor has no bus protocol. The host holds the line low to wake it up,
// releases it, and the sensor answers with an 80µs low / 80µs high
// acknowledgment followed by 40 bit slots. Each slot is a ~50µs low followed
// by a high pulse whose width encodes the bit: ~26µs for 0, ~70µs for 1. The
// driver busy-polls the pin and measures every pulse against a deadline, so
// it needs a pin with fast reads such as a memory-mapped GPIO on a Raspberry
// Pi.
//
// A pulse at least Opts.Threshold wide (40µs by default) is a 1.
//
// The 5 byte frame is humidity (2 bytes, tenths of %RH), temperature (2
// bytes, tenths of °C, sign-magnitude) and an 8-bit sum of the first 4 bytes.
//
// The sensor must be left alone for at least MinInterval between two reads.
// Read never retries by itself; see ReadRetry.
//
// # Datasheet
//
// https://cdn-shop.adafruit.com/datasheets/Digital+humidity+and+temperature+sensor+AM2302.pdf
package dht22
