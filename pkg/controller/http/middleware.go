package http

import (
	"fmt"
	"net/http"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// getDetailedStackTrace returns a detailed stack trace with function names and line numbers
func getDetailedStackTrace() string {
	var buf strings.Builder
	buf.WriteString("Detailed Stack Trace:\n")

	// Get callers (skip the first few frames that are in the panic recovery code)
	callers := make([]uintptr, 64)
	n := runtime.Callers(3, callers)
	frames := runtime.CallersFrames(callers[:n])

	for {
		frame, more := frames.Next()
		buf.WriteString(fmt.Sprintf("  %s\n    %s:%d\n", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}

	return buf.String()
}

func panicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				debugStack := debug.Stack()
				detailedStack := getDetailedStackTrace()

				panicErr := goerr.New("panic recovered",
					goerr.V("panic", fmt.Sprintf("%v", err)),
					goerr.V("debug_stack", string(debugStack)),
					goerr.V("detailed_stack", detailedStack),
					goerr.V("method", r.Method),
					goerr.V("path", r.URL.Path),
				)

				handleError(w, r, panicErr)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
