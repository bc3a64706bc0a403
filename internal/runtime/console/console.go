// Package console decides whether the process runs without an HTTP
// transport, i.e. from a command line.
package console

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	errspkg "github.com/drblury/consolemvc/internal/runtime/errors"
)

// Environment answers whether the current process is a console invocation.
type Environment interface {
	IsConsole() bool
}

// EnvironmentFunc adapts a plain function to Environment.
type EnvironmentFunc func() bool

func (f EnvironmentFunc) IsConsole() bool { return f() }

type static bool

func (s static) IsConsole() bool { return bool(s) }

// Static returns an Environment that always answers isConsole.
func Static(isConsole bool) Environment {
	return static(isConsole)
}

// CGI variables set by a web server in front of the process.
var cgiVariables = []string{"GATEWAY_INTERFACE", "SERVER_SOFTWARE", "REQUEST_METHOD"}

var (
	lookupEnv  = os.LookupEnv
	isTerminal = func(fd uintptr) bool {
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	stdoutFd = func() uintptr { return os.Stdout.Fd() }
	stdinFd  = func() uintptr { return os.Stdin.Fd() }
)

type process struct{}

// Process treats the process as a console unless a web server started it,
// which it detects by the CGI variables it sets. Redirected or piped stdio
// (cron, CI, "> log") is still a console.
func Process() Environment {
	return process{}
}

func (process) IsConsole() bool {
	for _, name := range cgiVariables {
		if _, ok := lookupEnv(name); ok {
			return false
		}
	}
	return true
}

// Interactive reports whether stdout or stdin is attached to a terminal.
// It does not decide console mode; callers use it for presentation, such as
// picking a human-readable log format.
func Interactive() bool {
	return isTerminal(stdoutFd()) || isTerminal(stdinFd())
}

// FromMode maps a configured console mode onto an Environment.
func FromMode(mode string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return Process(), nil
	case "console":
		return Static(true), nil
	case "http":
		return Static(false), nil
	}
	return nil, fmt.Errorf("%w: %q", errspkg.ErrUnknownConsoleMode, mode)
}
