package shell

import "runtime"

// MissingProcessPID is returned by PID before the process has been spawned.
const MissingProcessPID = -1

var isWindows = runtime.GOOS == "windows"

// defaultEncodingName returns the platform default for decoding captured
// output: the OEM code page on Windows consoles, UTF-8 everywhere else.
func defaultEncodingName() string {
	if isWindows {
		return "cp866"
	}
	return "utf-8"
}

// DefaultShell returns the command interpreter used when no executable
// override is configured.
func DefaultShell() string {
	return defaultShellPath()
}

// defaultShellPath returns the command interpreter used when no executable
// override is configured.
func defaultShellPath() string {
	if isWindows {
		return "cmd"
	}
	return "/bin/sh"
}

// shellCommandFlag returns the interpreter flag that introduces a command
// string.
func shellCommandFlag() string {
	if isWindows {
		return "/C"
	}
	return "-c"
}

// lineSeparator returns the platform line separator stripped from streamed
// lines.
func lineSeparator() string {
	if isWindows {
		return "\r\n"
	}
	return "\n"
}
