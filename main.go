// imgen generates and edits images with the OpenAI image API from the
// command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"imgen/core"
	"imgen/shutdown"

	"github.com/joho/godotenv"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	// Load .env file if it exists
	envErr := godotenv.Load()
	if errors.Is(envErr, fs.ErrNotExist) {
		envErr = nil
	}

	// First signal cancels the request, second exits immediately.
	signals := shutdown.NewSignalCounter(shutdown.DefaultForceAfter, func(sig os.Signal) {
		fmt.Fprintln(os.Stderr, "\nforced exit")
		os.Exit(core.ExitCodeForSignal(sig))
	})
	ctx, stop := shutdown.Watch(context.Background(), signals)
	defer stop()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	a.startupWarnings = appendIfErr(nil, envErr)

	code := a.execute(ctx, os.Args[1:])
	if sig := signals.First(); sig != nil && code != core.ExitCodeSuccess {
		return core.ExitCodeForSignal(sig)
	}
	return code
}

func appendIfErr(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}
