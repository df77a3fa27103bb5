// Command attention monitors a person's attention through the webcam and
// microphone.
//
// Usage:
//
//	attention [flags] <command>
//
// Commands:
//
//	run      run a monitoring session
//	watch    follow a running session's dashboard
//	version  print version information
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
