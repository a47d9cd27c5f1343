package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"dominion/internal/cli"
	"dominion/internal/log"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic recovered", "error", r, "stack", string(debug.Stack()))
			fmt.Fprintf(os.Stderr, "dominion crashed: %v\n", r)
			log.Close()
			os.Exit(1)
		}
	}()

	info := cli.BuildInfo{Version: version, Commit: commit, Date: date}
	err := cli.Execute(info, os.Args[1:], os.Stdout)
	log.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
