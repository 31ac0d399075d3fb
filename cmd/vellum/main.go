// Package main provides the vellum binary entry point. Vellum is a small
// self-hosted content-management system with Lua hooks and optional
// knowledge-graph publishing over NATS.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
