/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skadi-tools/paramkit/pkg/hash40"
	"github.com/skadi-tools/paramkit/pkg/labels"
)

// labelsCmd groups dictionary database operations
var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Manage the persistent label dictionary database",
	Long: `Manage a persistent label dictionary. The CSV dictionary given via
--labels can be imported into a local database for fast lookups in
both directions without re-parsing the CSV.`,
}

// labelsImportCmd represents the labels import command
var labelsImportCmd = &cobra.Command{
	Use:   "import <dictionary.csv>",
	Short: "Import a CSV dictionary into the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := labels.LoadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to load dictionary: %w", err)
		}

		dbPath, _ := cmd.Flags().GetString("db")
		store, err := labels.OpenStore(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()

		if err := store.Import(table); err != nil {
			return fmt.Errorf("failed to import: %w", err)
		}

		cmd.Printf("Imported %d labels into %s\n", len(table), dbPath)
		return nil
	},
}

// labelsLookupCmd represents the labels lookup command
var labelsLookupCmd = &cobra.Command{
	Use:   "lookup <hash-or-name>",
	Short: "Resolve a hash or name against the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")
		store, err := labels.OpenStore(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()

		h, err := hash40.ParseLabel(args[0])
		if err != nil {
			return fmt.Errorf("bad label: %w", err)
		}

		if name, ok := store.Lookup(h); ok {
			cmd.Printf("%s,%s\n", h, name)
			return nil
		}
		cmd.Printf("%s,<unknown>\n", h)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelsCmd)
	labelsCmd.AddCommand(labelsImportCmd)
	labelsCmd.AddCommand(labelsLookupCmd)
	labelsCmd.PersistentFlags().String("db", "./labels.db", "Path to the label database directory")
}
