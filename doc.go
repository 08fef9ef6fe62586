// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dhtsense is a container for the DHT22 weather station.
//
// The driver for the sensor itself is in the dht22 package. The mq135, oled,
// console and i2cscan packages support the companion hardware and outputs
// used by cmd/dht22.
package dhtsense
