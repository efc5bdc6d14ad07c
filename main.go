// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"dspview/cmd"
	applog "dspview/internal/log"
	"dspview/pkg/build"
)

// main wires build information and signal handling, then hands control to
// the command tree. Every error ends the process with status 1.
func main() {
	if err := build.Initialize(); err != nil {
		applog.Debugf("build: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		applog.Fatalf("%v", err)
	}
}
