package main

import (
	"os"

	"github.com/loykin/modelfetch/internal/common"
)

// ExitHandler provides a testable way to handle program termination
type ExitHandler interface {
	Exit(code int)
	LogFatalError(err error, msg string, keyvals ...any)
}

// DefaultExitHandler implements ExitHandler for production use
type DefaultExitHandler struct{}

// Exit terminates the program with the given exit code
func (DefaultExitHandler) Exit(code int) {
	os.Exit(code)
}

// LogFatalError logs a usage or configuration error and exits with status 1.
// Fetch failures never reach here: they are printed and the process exits normally.
func (h DefaultExitHandler) LogFatalError(err error, msg string, keyvals ...any) {
	allKeyvals := append([]any{"error", err}, keyvals...)
	common.GetLogger().WithComponent("main").Error(msg, allKeyvals...)
	h.Exit(1)
}

var exitHandler ExitHandler = DefaultExitHandler{}
