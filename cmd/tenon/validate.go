package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/tenon/pkg/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <script>",
	Short: "Evaluate a script and run the full geometric validation",
	Long: `Evaluate a Lisp model script and check the resulting document:
part naming, geometry presence, and tessellation health (degenerate or
zero-volume solids). Warnings are printed but do not fail the command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()

		doc, err := evaluateScript(eng, args[0])
		if err != nil {
			return err
		}

		report := validate.DocumentAll(doc)
		for _, w := range report.Warnings {
			fmt.Printf("warning: %s\n", w.Error())
		}
		for _, e := range report.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e.Error())
		}

		if !report.OK() {
			return fmt.Errorf("%d validation errors", len(report.Errors))
		}
		fmt.Printf("ok: %d parts, %d warnings\n", len(doc.Parts()), len(report.Warnings))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
