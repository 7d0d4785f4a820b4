// Package goroutine provides helpers for launching goroutines with panic
// recovery so a misbehaving background task cannot take the process down.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"aegis/internal/shared/logger"
)

// SafeGo launches fn on a new goroutine. A panic is caught and logged with
// its stack trace instead of crashing the process.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("goroutine panicked",
					"goroutine", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn()
	}()
}
