// Command algo-daw renders, plays and publishes algo-daw projects.
//
// Usage:
//
//	algo-daw [--config FILE] [--env-file FILE] <command> [flags]
//
// Examples:
//
//	algo-daw render song.yaml -o song.wav --encoding pcm24
//	algo-daw render song.yaml --upload
//	algo-daw play song.yaml --watch
//	algo-daw play --test-tone 440 --duration 3
//	algo-daw upload mix.wav stems/*.wav
//	algo-daw info
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	stop()
	a.close()

	if err != nil {
		fmt.Fprintln(os.Stderr, "algo-daw:", err)
		os.Exit(1)
	}
}
