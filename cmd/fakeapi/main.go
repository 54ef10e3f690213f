// Command fakeapi serves an in-memory copy of the news API for local development.
package main

import (
	"fmt"
	"os"

	"github.com/patric-chuzhbe/hackorsnooze/internal/app"
	"github.com/patric-chuzhbe/hackorsnooze/internal/config"
)

func run() int {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}

	server, err := app.NewFakeAPIServer(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init:", err)
		return 1
	}
	defer server.Close()

	if err := server.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "run:", err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(run())
}
