// Command ripple runs a wireless sensor network simulation: a grid of pH
// sensors periodically reporting to a gateway over a lossy channel.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
