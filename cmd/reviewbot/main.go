package main

import (
	"fmt"
	"os"

	"github.com/soyeahso/reviewbot/internal/cli"
	"github.com/tillberg/autorestart"
)

func main() {
	if os.Getenv("REVIEWBOT_AUTORESTART") != "" {
		go autorestart.RestartOnChange()
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "reviewbot:", err)
		os.Exit(1)
	}
}
