package main

import (
	"os"
)

// Version is set at build time.
var Version = "dev"

// main is the entry point of the application.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
