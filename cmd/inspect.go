package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsphweid/harmondrill/midi"
	"github.com/jsphweid/harmondrill/theory"
)

func init() {
	inspectCmd.Flags().String("key", "", "also name each chord as a numeral in this key, e.g. C4")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Lists the chords struck in a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}

		keyName, err := cmd.Flags().GetString("key")
		if err != nil {
			return err
		}
		var identify bool
		key, err := theory.ParseKey(keyName)
		if keyName != "" {
			if err != nil {
				return err
			}
			identify = true
		}

		for _, tc := range midi.Chords(s) {
			fmt.Fprintf(cmd.OutOrStdout(), "%10v  %v", tc.At, tc.Chord)
			if identify {
				if symbol, ok := theory.Identify(tc.Chord, key); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "  (%v)", symbol)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}
