// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// critical tracks nested critical sections across devices. The GC setting is
// process wide so only the outermost section may restore it.
var critical struct {
	sync.Mutex
	depth int
	gc    int
}

// enterCritical pins the calling goroutine to its OS thread and stops the
// garbage collector so no pause lands in the middle of a pulse. The returned
// func undoes both and must be called exactly once.
func enterCritical() (release func()) {
	runtime.LockOSThread()
	critical.Lock()
	if critical.depth == 0 {
		critical.gc = debug.SetGCPercent(-1)
	}
	critical.depth++
	critical.Unlock()
	return func() {
		critical.Lock()
		critical.depth--
		if critical.depth == 0 {
			debug.SetGCPercent(critical.gc)
		}
		critical.Unlock()
		runtime.UnlockOSThread()
	}
}
