package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsphweid/harmondrill/constants"
	"github.com/jsphweid/harmondrill/midi"
	"github.com/jsphweid/harmondrill/synth"
	"github.com/jsphweid/harmondrill/theory"
)

func init() {
	exportCmd.Flags().StringP("out", "o", "progression.mid", "MIDI file to write")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:     "export <key> <symbol>...",
	Short:   "Writes a progression to a standard MIDI file",
	Example: "  harmondrill export C4 I IV V I -o cadence.mid",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, progression, err := parseProgressionArgs(args)
		if err != nil {
			return err
		}
		path, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}

		chords := theory.ResolveProgression(progression, key, cfg.UseSevenths)
		timing := midi.Timing{Duration: cfg.ChordDuration, Gap: cfg.ChordGap}
		velocity := synth.DecibelsToGain(constants.SynthVolumeDB)
		if err := midi.WriteProgressionFile(path, chords, timing, velocity); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d chords to %v\n", len(chords), path)
		return nil
	},
}
