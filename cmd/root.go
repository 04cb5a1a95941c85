package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jsphweid/harmondrill/config"
)

var (
	cfgFile string
	cfg     config.Config
	v       *viper.Viper
	logger  = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "harmondrill",
	Short: "Ear training for diatonic chord progressions",
	Long: `harmondrill resolves roman numeral progressions to pitches, plays them
through a MIDI port or into a WAV file, and quizzes you on what you heard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, v, err = config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		level, _ := config.ParseLogLevel(cfg.LogLevel)
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default %v)", config.DefaultPath()))
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.String("output", config.OutputMIDI, "where chords sound: midi, wav or none")
	flags.String("midi-port", "", "MIDI out port name (default first port)")
	flags.Int("midi-channel", 0, "MIDI channel 0-15")
	flags.String("wav-path", "harmondrill.wav", "file written when output is wav")
	flags.Duration("chord-duration", config.Defaults().ChordDuration, "how long each chord is held")
	flags.Duration("chord-gap", config.Defaults().ChordGap, "silence between chords")
	flags.Bool("use-sevenths", false, "play seventh chords instead of triads")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
