//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// SafeFileName strips path separators and leading dots so the result is
// always usable as a plain file name.
func SafeFileName(in string) string {
	bad := string(os.PathSeparator) + string(os.PathListSeparator)
	out := strings.Map(func(sym rune) rune {
		if strings.ContainsRune(bad, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(out, ".")
	if len(out) == 0 {
		return "_bad_file_name_"
	}
	return out
}

// SupportsColorOutput reports whether stream is a terminal capable of
// colorized output.
func SupportsColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
