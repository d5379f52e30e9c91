package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/tenon/pkg/export"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported export formats",
	Run: func(cmd *cobra.Command, args []string) {
		for _, f := range export.Formats() {
			fmt.Println(f)
		}
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
