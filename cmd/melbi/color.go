package main

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

type ansiColor struct {
	code  string
	reset string
}

var (
	errorColor   = ansiColor{"\033[31m", "\033[39m"}
	warningColor = ansiColor{"\033[33m", "\033[39m"}
	dimColor     = ansiColor{"\033[2m", "\033[22m"}
)

var (
	colorEnabledOnce sync.Once
	colorEnabledVal  bool
)

// colorEnabled mirrors funxy's own NO_COLOR + isatty detection: disabled
// when the NO_COLOR convention (https://no-color.org/) is set, or when
// stderr is not a real terminal (piped output, CI logs).
func colorEnabled() bool {
	colorEnabledOnce.Do(func() {
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			colorEnabledVal = false
			return
		}
		fd := os.Stderr.Fd()
		colorEnabledVal = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	})
	return colorEnabledVal
}

func colorize(c ansiColor, s string) string {
	if !colorEnabled() {
		return s
	}
	return c.code + s + c.reset
}
