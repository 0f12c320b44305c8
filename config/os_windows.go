//go:build windows

package config

import (
	"os"
	"strings"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
	"golang.org/x/term"
)

// CleanFileName strips characters NTFS and the shell do not accept so
// the result is safe to use as a single path element.
func CleanFileName(in string) string {
	drop := `<>":/\|?*` + string(os.PathSeparator) + string(os.PathListSeparator)
	out := strings.Map(func(sym rune) rune {
		if sym == 0 || strings.ContainsRune(drop, sym) {
			return -1
		}
		return sym
	}, in)
	if out == "" {
		return "_bad_file_name_"
	}
	return out
}

// EnableColorOutput reports whether stream supports colorized output,
// turning on VT100 sequence processing for the console when it does.
// Consoles before Windows 10 have no VT support at all.
func EnableColorOutput(stream *os.File) bool {
	if !windows10OrLater() {
		return false
	}
	if !term.IsTerminal(int(stream.Fd())) {
		return false
	}

	var mode uint32
	if err := windows.GetConsoleMode(windows.Handle(stream.Fd()), &mode); err != nil {
		return false
	}
	mode |= windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
	return windows.SetConsoleMode(windows.Handle(stream.Fd()), mode) == nil
}

func windows10OrLater() bool {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows NT\CurrentVersion`, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()

	v, _, err := k.GetIntegerValue("CurrentMajorVersionNumber")
	if err != nil {
		return false
	}
	return v >= 10
}
