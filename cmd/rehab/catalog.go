// ABOUTME: CLI command listing the exercise catalog.
// ABOUTME: Shows each exercise with its unit, default weight and endurance tests.
package main

import (
	"fmt"
	"strings"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/catalog"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:         "catalog",
	Aliases:     []string{"exercises"},
	Short:       "List exercises and endurance tests",
	Annotations: map[string]string{noStorage: ""},
	Long: `List every exercise in the catalog.

Each line shows: ID  NAME  UNIT  DEFAULT WEIGHT  ENDURANCE TESTS

Endurance test ids are the keys for 'rehab init --test'. An exercise
mapped to two tests starts from the weaker result. Exercises marked x2
start at double the computed weight.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cat := catalog.Default()
		faint := color.New(color.Faint)
		bold := color.New(color.Bold)

		bold.Fprintln(out, "EXERCISES")
		for _, ex := range cat.All() {
			lo, hi := ex.RepRange()
			flags := ""
			if ex.DoubleWeight {
				flags = " x2"
			}
			fmt.Fprintf(out, "  %s %s %-6s %4g  %d-%d reps%s  %s\n",
				padRight(ex.ID, 28),
				padRight(ex.Name, 30),
				ex.Unit,
				ex.DefaultWeight,
				lo, hi,
				flags,
				faint.Sprint(strings.Join(ex.EnduranceTests, ", ")))
		}

		fmt.Fprintln(out)
		bold.Fprintln(out, "ENDURANCE TESTS")
		for _, test := range cat.Tests {
			fmt.Fprintf(out, "  %s %s\n", padRight(test.ID, 28), faint.Sprint(test.Name))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
