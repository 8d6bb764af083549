package safe

import (
	"github.com/Piyash1/AstroChat-Mobile/logger"
	"github.com/Piyash1/AstroChat-Mobile/tools/errs"

	"go.uber.org/zap"
)

// Go starts a goroutine that recovers from panics so a single bad handler
// cannot take the process down.
func Go(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("goroutine panic recovered", zap.Any("panic", r))
			}
		}()
		f()
	}()
}

// Run invokes f, converting a panic into an error. Action handlers go through
// this so one failed action never closes the connection it ran on.
func Run(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.ErrPanic(r)
		}
	}()
	return f()
}
