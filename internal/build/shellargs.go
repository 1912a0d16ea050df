package build

import (
	"fmt"
	"strings"
)

// splitShellArgs splits a configured toolchain command into argv. The
// commands in testgen.yaml are executed directly, never through a shell, yet
// they routinely carry arguments with spaces: a generator name
// (cmake -G "Unix Makefiles"), an install path with spaces, or a wrapper such
// as 'ccache make'. Single and double quotes group words and a backslash
// escapes the next byte outside quotes; there is no variable expansion or
// globbing.
func splitShellArgs(s string) ([]string, error) {
	var args []string
	var cur strings.Builder
	inSingle := false
	inDouble := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case inSingle:
			if ch == '\'' {
				inSingle = false
			} else {
				cur.WriteByte(ch)
			}
		case inDouble:
			if ch == '\\' && i+1 < len(s) {
				next := s[i+1]
				// Characters escapable inside double quotes per POSIX
				if next == '"' || next == '\\' || next == '$' || next == '`' || next == '\n' {
					cur.WriteByte(next)
					i++
				} else {
					cur.WriteByte(ch)
				}
			} else if ch == '"' {
				inDouble = false
			} else {
				cur.WriteByte(ch)
			}
		case ch == '\\':
			if i+1 < len(s) {
				cur.WriteByte(s[i+1])
				i++
			}
		case ch == '\'':
			inSingle = true
		case ch == '"':
			inDouble = true
		case ch == ' ' || ch == '\t':
			if cur.Len() > 0 {
				args = append(args, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(ch)
		}
	}

	if inSingle {
		return nil, fmt.Errorf("unterminated single quote")
	}
	if inDouble {
		return nil, fmt.Errorf("unterminated double quote")
	}
	if cur.Len() > 0 {
		args = append(args, cur.String())
	}

	return args, nil
}

// parseCommand tokenizes a configured command, rejecting empty ones.
func parseCommand(name, command string) ([]string, error) {
	parts, err := splitShellArgs(strings.TrimSpace(command))
	if err != nil {
		return nil, fmt.Errorf("parse %s command %q: %w", name, command, err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%s command must not be empty", name)
	}
	return parts, nil
}
