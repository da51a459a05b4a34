/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skadi-tools/paramkit/pkg/prc"
)

// roundtripCmd represents the roundtrip command
var roundtripCmd = &cobra.Command{
	Use:   "roundtrip <file.prc>...",
	Short: "Verify that files survive a decode/encode cycle byte-exactly",
	Long: `Decode each binary param file, re-encode it, and compare the result
against the original bytes. Useful for checking a corpus of files
before editing them.

Example:
  paramkit roundtrip fighter/*.prc`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			root, err := prc.Decode(data)
			if err != nil {
				cmd.Printf("FAIL %s: %v\n", path, err)
				failed++
				continue
			}

			out, err := prc.Encode(root)
			if err != nil {
				cmd.Printf("FAIL %s: %v\n", path, err)
				failed++
				continue
			}

			if !bytes.Equal(out, data) {
				cmd.Printf("FAIL %s: re-encoded output differs (%d -> %d bytes)\n", path, len(data), len(out))
				failed++
				continue
			}

			cmd.Printf("ok   %s (%d bytes)\n", path, len(data))
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d files failed round trip", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(roundtripCmd)
}
