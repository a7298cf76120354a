package util

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/andrefdof/syncfiler/pkg/errors"
)

// Mocked for unit testing.
var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// HandleFatalError prints err and exits. If err contains a FriendlyError,
// only its message is shown, since the wrapped context is meant for
// debugging.
func HandleFatalError(err error) {
	log.WithError(err).Debug("Fatal error")

	var friendly errors.FriendlyError
	if errors.As(err, &friendly) {
		fmt.Fprintln(stderr, friendly.FriendlyMessage())
	} else {
		fmt.Fprintf(stderr, "Error: %s\n", err)
	}
	exit(1)
}

// HandlePanic logs panics before exiting. It should be deferred at the start
// of main.
func HandlePanic() {
	if r := recover(); r != nil {
		log.WithField("stack", string(debug.Stack())).Error("Unexpected panic")
		HandleFatalError(fmt.Errorf("panic: %v", r))
	}
}
