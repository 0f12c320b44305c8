//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// CleanFileName strips path separators from a name so the result is safe
// to use as a single path element. Leading dots go too, the result is
// never a hidden file.
func CleanFileName(in string) string {
	drop := string(os.PathSeparator) + string(os.PathListSeparator)
	out := strings.Map(func(sym rune) rune {
		if strings.ContainsRune(drop, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(out, ".")
	if out == "" {
		return "_bad_file_name_"
	}
	return out
}

// EnableColorOutput reports whether stream supports colorized output.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
