/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skadi-tools/paramkit/pkg/paramxml"
	"github.com/skadi-tools/paramkit/pkg/prc"
)

// disasmCmd represents the disasm command
var disasmCmd = &cobra.Command{
	Use:   "disasm <file.prc>",
	Short: "Convert a binary param file to XML",
	Long: `Convert a binary param file to its XML editing form.

The output path defaults to the input path with an .xml extension.

Example:
  paramkit disasm fighter_param.prc --labels ParamLabels.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable(cmd)
		if err != nil {
			return fmt.Errorf("failed to load labels: %w", err)
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		root, err := prc.Decode(data)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", args[0], err)
		}

		doc, err := paramxml.Encode(root, table)
		if err != nil {
			return fmt.Errorf("failed to render XML: %w", err)
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = replaceExt(args[0], ".xml")
		}
		if err := os.WriteFile(out, doc, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		cmd.Printf("Wrote %s\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(disasmCmd)
	disasmCmd.Flags().StringP("output", "o", "", "Output path (default: input with .xml extension)")
}

func replaceExt(path, ext string) string {
	if i := strings.LastIndex(path, "."); i > strings.LastIndexByte(path, os.PathSeparator) {
		return path[:i] + ext
	}
	return path + ext
}
