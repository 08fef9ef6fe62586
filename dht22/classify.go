// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import "time"

// DefaultThreshold splits the ~26µs high pulse of a 0 from the ~70µs pulse
// of a 1.
const DefaultThreshold = 40 * time.Microsecond

// classify returns the bit encoded by a high pulse of width w. A pulse of
// exactly threshold is a 1.
func classify(w, threshold time.Duration) byte {
	if w >= threshold {
		return 1
	}
	return 0
}
