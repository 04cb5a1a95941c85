package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsphweid/harmondrill/constants"
	"github.com/jsphweid/harmondrill/model"
	"github.com/jsphweid/harmondrill/playback"
	"github.com/jsphweid/harmondrill/render"
	"github.com/jsphweid/harmondrill/synth"
	"github.com/jsphweid/harmondrill/theory"
)

func init() {
	renderCmd.Flags().StringP("out", "o", "progression.wav", "WAV file to write")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:     "render <key> <symbol>...",
	Short:   "Renders a progression to a WAV file without playing it",
	Example: "  harmondrill render A3 vi IV I V -o loop.wav",
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

		opts := render.DefaultOptions()
		notes := progressionNotes(progression, key, cfg.PlaybackOptions(), opts.Envelope)

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %v: %w", path, err)
		}
		defer f.Close()
		if err := render.WriteWav(f, notes, opts); err != nil {
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %v of audio to %v\n", render.Length(notes, opts.Envelope), path)
		return nil
	},
}

// progressionNotes lays out the notes a live Play would sound, on the
// same timeline.
func progressionNotes(progression model.Progression, key model.Key, opts playback.Options, env synth.Envelope) []render.Note {
	chords := theory.ResolveProgression(progression, key, opts.UseSevenths)
	timeline := playback.BuildTimeline(len(chords), opts.ChordDuration, opts.ChordGap, env.Release)
	velocity := synth.DecibelsToGain(constants.SynthVolumeDB)

	var notes []render.Note
	for i, chord := range chords {
		start := timeline.Starts[i]
		for _, p := range chord {
			notes = append(notes, render.Note{
				Pitch:    p,
				Velocity: velocity,
				Start:    start,
				End:      start + opts.ChordDuration,
			})
		}
	}
	return notes
}
