// Bazaar Buddy companion: watches for the game, captures frames, reads
// them and surfaces what it knows about what is on screen.
package main

import (
	"fmt"
	"os"

	"github.com/stonehenge-collective/bazaarbuddy-go/cmd"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/conf"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "command error: %v\n", err)
		os.Exit(1)
	}
}
