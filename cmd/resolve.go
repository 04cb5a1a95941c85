package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsphweid/harmondrill/theory"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:     "resolve <key> <symbol>...",
	Short:   "Prints the pitches of a progression",
	Example: "  harmondrill resolve C4 I IV V I",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, progression, err := parseProgressionArgs(args)
		if err != nil {
			return err
		}
		chords := theory.ResolveProgression(progression, key, cfg.UseSevenths)
		for i, chord := range chords {
			quality := theory.QualityFor(theory.Degree(progression[i]), cfg.UseSevenths)
			fmt.Fprintf(cmd.OutOrStdout(), "%-6s %-16s %v\n", progression[i], quality, chord)
		}
		return nil
	},
}
