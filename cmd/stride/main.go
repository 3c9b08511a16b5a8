// ABOUTME: Entry point for the stride CLI
// ABOUTME: Runs the root cobra command and exits non-zero on error

package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
