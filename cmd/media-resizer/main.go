package main

import (
	"errors"
	"fmt"
	"os"
)

// exitInterrupted is the conventional status for a run stopped by SIGINT.
const exitInterrupted = 130

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errCancelled) {
			os.Exit(exitInterrupted)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
