package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "ops-sync",
	Short: "Cross-store consistency engine for the operations portal",
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(replicateCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(seedCmd)
}
