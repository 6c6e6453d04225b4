package main

import (
	"fmt"
	"os"

	"github.com/quadglow/quadglow/cmd"
	"github.com/quadglow/quadglow/internal/usb"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(usb.ExitCode(err))
	}
}
