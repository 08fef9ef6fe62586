// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mq135 reads an MQ135 air quality sensor through an ADC.
//
// The sensor is a tin dioxide resistor heated by an internal coil. Its analog
// output sits at the middle of a voltage divider with a load resistor, so the
// sensor resistance Rs is derived from the measured voltage. The ratio of Rs
// to the resistance in clean air, R0, maps to a CO₂ equivalent concentration
// through the power law given by the datasheet curve.
//
// The sensor needs WarmUp of heating before its readings settle.
//
// # Datasheet
//
// https://www.winsen-sensor.com/d/files/PDF/Semiconductor%20Gas%20Sensor/MQ135%20(Ver1.4)%20-%20Manual.pdf
package mq135
