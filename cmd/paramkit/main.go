/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/skadi-tools/paramkit/cmd/paramkit/cmd"
)

func main() {
	cmd.Execute()
}
