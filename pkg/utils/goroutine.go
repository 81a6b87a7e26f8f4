package utils

import (
	"context"
	"log"
	"runtime/debug"

	"biotech-funding-tracker/pkg/logger"
)

// GoSafe runs fn in a goroutine and recovers from panics so one bad article
// or source cannot take down the whole batch.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether the context is still live, logging when it
// is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	if err := ctx.Err(); err != nil {
		log.Warn("Context canceled, stopping work", logger.ErrorField(err))
		return false
	}
	return true
}
