package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsphweid/harmondrill/midi"
)

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "Lists MIDI ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer midi.CloseDriver()

		fmt.Fprintln(cmd.OutOrStdout(), "out:")
		for i, name := range midi.ListOutPorts() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %d: %v\n", i, name)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "in:")
		for i, name := range midi.ListInPorts() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %d: %v\n", i, name)
		}
		return nil
	},
}
