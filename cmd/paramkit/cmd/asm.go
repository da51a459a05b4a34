/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skadi-tools/paramkit/pkg/paramxml"
	"github.com/skadi-tools/paramkit/pkg/prc"
)

// asmCmd represents the asm command
var asmCmd = &cobra.Command{
	Use:   "asm <file.xml>",
	Short: "Convert an XML document back to a binary param file",
	Long: `Convert an XML editing form back to the binary param format.

The output path defaults to the input path with a .prc extension.

Example:
  paramkit asm fighter_param.xml -o fighter_param.prc`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		root, err := paramxml.Decode(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}

		out, err := prc.Encode(root)
		if err != nil {
			return fmt.Errorf("failed to encode: %w", err)
		}

		path, _ := cmd.Flags().GetString("output")
		if path == "" {
			path = replaceExt(args[0], ".prc")
		}
		if err := os.WriteFile(path, out, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		cmd.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(asmCmd)
	asmCmd.Flags().StringP("output", "o", "", "Output path (default: input with .prc extension)")
}
