package cmd

import (
	"fmt"
	"log"
	"os"

	"tunedeck/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tunedeck",
	Short: "tunedeck is the admin service for the media catalog.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting tunedeck admin service...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
