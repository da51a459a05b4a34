/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/skadi-tools/paramkit/pkg/hash40"
	"github.com/skadi-tools/paramkit/pkg/labels"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "paramkit",
	Short: "paramkit - binary param file toolkit",
	Long: `paramkit converts binary param (.prc) files to an editable XML form
and back, resolving Hash40 identifiers against an optional label
dictionary.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global label dictionary flag
	rootCmd.PersistentFlags().StringP("labels", "l", "", "Path to a label dictionary CSV (hash,name per line)")
}

// loadTable loads the dictionary named by the global --labels flag.
// A missing flag yields an empty table: hashes render as fallback labels.
func loadTable(cmd *cobra.Command) (hash40.MapTable, error) {
	path, _ := cmd.Flags().GetString("labels")
	if path == "" {
		return hash40.MapTable{}, nil
	}
	return labels.LoadFile(path)
}
