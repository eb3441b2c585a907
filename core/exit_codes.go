package core

import (
	"os"
	"syscall"
)

// Process exit codes. Signal exits follow the shell's 128+signal rule.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1   // API, I/O or configuration failure
	ExitCodeUsage   = 2   // bad flags, arguments or input tokens
	ExitCodeSIGINT  = 130 // 128 + SIGINT
	ExitCodeSIGTERM = 143 // 128 + SIGTERM
)

var exitCodeNames = map[int]string{
	ExitCodeSuccess: "success",
	ExitCodeError:   "error",
	ExitCodeUsage:   "usage",
	ExitCodeSIGINT:  "interrupted",
	ExitCodeSIGTERM: "terminated",
}

// ExitCodeName returns the name logged alongside an exit code.
func ExitCodeName(code int) string {
	if name, ok := exitCodeNames[code]; ok {
		return name
	}
	return "unknown"
}

// ExitCodeForSignal maps a received signal to its exit code.
// Anything other than SIGINT or SIGTERM is a plain error.
func ExitCodeForSignal(sig os.Signal) int {
	switch sig {
	case os.Interrupt:
		return ExitCodeSIGINT
	case syscall.SIGTERM:
		return ExitCodeSIGTERM
	}
	return ExitCodeError
}
