package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsphweid/harmondrill/midi"
	"github.com/jsphweid/harmondrill/model"
	"github.com/jsphweid/harmondrill/theory"
)

func init() {
	listenCmd.Flags().String("in-port", "", "MIDI in port name (default first port)")
	listenCmd.Flags().Duration("settle", 80*time.Millisecond, "how long the keys must be still before a chord is named")
	rootCmd.AddCommand(listenCmd)
}

var listenCmd = &cobra.Command{
	Use:   "listen <key>",
	Short: "Names the chords you play on a MIDI keyboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := theory.ParseKey(args[0])
		if err != nil {
			return err
		}
		port, err := cmd.Flags().GetString("in-port")
		if err != nil {
			return err
		}
		settle, err := cmd.Flags().GetDuration("settle")
		if err != nil {
			return err
		}

		defer midi.CloseDriver()
		out := cmd.OutOrStdout()
		stop, err := midi.ListenChords(port, settle, func(chord model.Chord) {
			symbol, ok := theory.Identify(chord, key)
			if !ok {
				symbol = "?"
			}
			fmt.Fprintf(out, "%-6s %v\n", symbol, chord)
		})
		if err != nil {
			return err
		}
		defer stop()

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()
		fmt.Fprintf(out, "listening in %v, ctrl-c to quit\n", key)
		<-ctx.Done()
		return nil
	},
}
