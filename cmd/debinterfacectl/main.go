package main

import (
	"os"

	"debinterface-agent/cmd/debinterfacectl/commands"
)

func main() {
	rootCmd := commands.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
