// Package log provides colored terminal output for the testgen orchestrator.
// Colors are emitted only when stdout is a terminal, so redirected output
// and CI logs stay free of ANSI escape codes.
package log

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ANSI escape codes for terminal colors.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorCyan   = "\033[0;36m"
	colorWhite  = "\033[1;37m"
)

const sectionLine = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// OsExit is the function called by Fatal to terminate the process.
// It is a package-level variable so tests can replace it without subprocess overhead.
var OsExit = os.Exit

// paint wraps s in color when stdout is a terminal.
func paint(color, s string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return s
	}
	return color + s + colorReset
}

// Info prints a white [INFO] message to stdout.
func Info(msg string) {
	fmt.Printf("%s %s\n", paint(colorWhite, "[INFO]"), msg)
}

// Success prints a green [SUCCESS] message to stdout.
func Success(msg string) {
	fmt.Printf("%s %s\n", paint(colorGreen, "[SUCCESS]"), msg)
}

// Warning prints a yellow [WARNING] message to stdout.
func Warning(msg string) {
	fmt.Printf("%s %s\n", paint(colorYellow, "[WARNING]"), msg)
}

// Error prints a red [ERROR] message to stdout.
func Error(msg string) {
	fmt.Printf("%s %s\n", paint(colorRed, "[ERROR]"), msg)
}

// Fatal prints a red [ERROR] message then exits with status 1.
func Fatal(msg string) {
	Error(msg)
	OsExit(1)
}

// Section prints a cyan box-draw separator with a title.
func Section(title string) {
	fmt.Printf("\n%s\n", paint(colorCyan, sectionLine))
	fmt.Printf("%s\n", paint(colorCyan, title))
	fmt.Printf("%s\n\n", paint(colorCyan, sectionLine))
}

// Detail prints body indented under a title, keeping at most maxLines of the
// tail of body. maxLines <= 0 prints everything. Used for captured tool output.
func Detail(title, body string, maxLines int) {
	body = strings.TrimRight(body, "\n")
	if body == "" {
		return
	}
	lines := strings.Split(body, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		omitted := len(lines) - maxLines
		lines = lines[omitted:]
		title = fmt.Sprintf("%s (last %d lines, %d omitted)", title, maxLines, omitted)
	}
	fmt.Printf("  %s:\n", title)
	for _, line := range lines {
		fmt.Printf("    %s\n", line)
	}
}
