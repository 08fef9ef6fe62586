// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"context"
	"errors"
	"time"
)

const (
	// retryBackoff is added to MinInterval for every consecutive failure.
	retryBackoff = 500 * time.Millisecond
	// maxRetryWait caps the wait between two attempts.
	maxRetryWait = 30 * time.Second
)

// ReadRetry calls Read until it succeeds or maxAttempts reads failed.
//
// Before each attempt it waits until MinInterval has passed since the
// previous read, plus 500ms per consecutive failure up to 30s, so a sensor
// in trouble gets more time to settle. ctx is only checked while waiting; a
// read in progress always completes.
//
// It returns the last Reading and its error. When ctx is done, the error
// matches ctx.Err() with errors.Is and still carries the last read failure.
func (d *Dev) ReadRetry(ctx context.Context, maxAttempts int) (Reading, error) {
	if maxAttempts < 1 {
		return Reading{}, errors.New("dht22: maxAttempts must be at least 1")
	}
	var r Reading
	var err error
	for failures := 0; failures < maxAttempts; failures++ {
		if w := d.retryWait(failures); w > 0 {
			select {
			case <-ctx.Done():
			case <-d.clk.After(w):
			}
		}
		if ctx.Err() != nil {
			if err == nil {
				return r, ctx.Err()
			}
			return r, errors.Join(ctx.Err(), err)
		}
		if r, err = d.Read(); err == nil {
			return r, nil
		}
	}
	return r, err
}

// retryWait returns how long to wait before the next attempt.
func (d *Dev) retryWait(failures int) time.Duration {
	w := MinInterval + time.Duration(failures)*retryBackoff
	if w > maxRetryWait {
		w = maxRetryWait
	}
	d.mu.Lock()
	last := d.lastRead
	d.mu.Unlock()
	if last.IsZero() {
		return 0
	}
	return w - d.clk.Now().Sub(last)
}
