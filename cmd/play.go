package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jsphweid/harmondrill/model"
	"github.com/jsphweid/harmondrill/playback"
)

func init() {
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:     "play <key> <symbol>...",
	Short:   "Plays a progression",
	Example: "  harmondrill play Eb3 I vi ii V --chord-gap 200ms",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, progression, err := parseProgressionArgs(args)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		engine := newEngine(cfg)
		defer engine.Close()

		result, err := playAndWait(ctx, engine, progression, key, cfg.PlaybackOptions())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result)
		return nil
	},
}

// playAndWait plays progression and blocks until it settles. Ending ctx
// stops the playback, which then settles as cancelled.
func playAndWait(ctx context.Context, engine *playback.Engine, progression model.Progression, key model.Key, opts playback.Options) (playback.Result, error) {
	if err := engine.EnsureReady(ctx); err != nil {
		return playback.Pending, err
	}
	future, err := engine.Play(ctx, progression, key, opts)
	if err != nil {
		return playback.Pending, err
	}

	select {
	case <-future.Done():
	case <-ctx.Done():
		engine.Stop()
		<-future.Done()
	}

	err = future.Wait(context.Background())
	if err != nil && !errors.Is(err, playback.ErrCancelled) {
		return playback.Pending, err
	}
	return future.Result(), nil
}
