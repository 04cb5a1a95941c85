package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsphweid/harmondrill/theory"
)

func init() {
	chordCmd.Flags().Duration("hold", time.Second, "how long the chord is held")
	rootCmd.AddCommand(chordCmd)
}

var chordCmd = &cobra.Command{
	Use:     "chord <key> <symbol>",
	Short:   "Sounds a single chord right away",
	Example: "  harmondrill chord G3 V --use-sevenths",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := theory.ParseKey(args[0])
		if err != nil {
			return err
		}
		hold, err := cmd.Flags().GetDuration("hold")
		if err != nil {
			return err
		}

		engine := newEngine(cfg)
		defer engine.Close()
		if err := engine.EnsureReady(cmd.Context()); err != nil {
			return err
		}

		chord := theory.ResolveChord(args[1], key, cfg.UseSevenths)
		fmt.Fprintf(cmd.OutOrStdout(), "%v: %v\n", args[1], chord)
		engine.PlaySingleChord(chord, hold)

		// let the release ring out before the output is closed
		time.Sleep(hold + engine.Release())
		return nil
	},
}
