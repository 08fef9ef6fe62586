// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages, such as
// frame checksums.
package common

// Sum8 returns the sum of the byte slice parameter truncated to 8 bits. It is
// the frame checksum used by the AOSONG single-wire sensors (DHT22, AM2302).
//
// The sum cannot detect corruptions that cancel each other out, for example
// one byte off by +1 and another off by -1.
func Sum8(bytes []byte) byte {
	var sum byte
	for _, val := range bytes {
		sum += val
	}
	return sum
}
