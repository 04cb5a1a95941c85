// Package config provides configuration types, defaults and loading for harmondrill.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jsphweid/harmondrill/constants"
	"github.com/jsphweid/harmondrill/exercise"
	"github.com/jsphweid/harmondrill/playback"
)

const (
	OutputMIDI = "midi"
	OutputWAV  = "wav"
	OutputNone = "none"
)

// Config holds all configuration options for harmondrill.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	// Output selects the audio sink: "midi", "wav" or "none".
	Output   string `mapstructure:"output"`
	MIDIPort string `mapstructure:"midi_port"`
	// 0-15
	MIDIChannel int    `mapstructure:"midi_channel"`
	WavPath     string `mapstructure:"wav_path"`

	ChordDuration time.Duration `mapstructure:"chord_duration"`
	ChordGap      time.Duration `mapstructure:"chord_gap"`
	UseSevenths   bool          `mapstructure:"use_sevenths"`

	Exercise exercise.Settings `mapstructure:"exercise"`
	Serve    ServeConfig       `mapstructure:"serve"`
}

// ServeConfig holds options for the local HTTP bridge.
type ServeConfig struct {
	Addr           string        `mapstructure:"addr"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReloadDebounce time.Duration `mapstructure:"reload_debounce"`
}

func Defaults() Config {
	return Config{
		LogLevel:      "info",
		Output:        OutputMIDI,
		WavPath:       "harmondrill.wav",
		ChordDuration: constants.DefaultChordDuration,
		ChordGap:      constants.DefaultChordGap,
		Exercise:      exercise.DefaultSettings(),
		Serve: ServeConfig{
			Addr:           "127.0.0.1:8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			ReloadDebounce: 500 * time.Millisecond,
		},
	}
}

// SetDefaults registers every default with v so env vars and config
// files can override any key.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("output", d.Output)
	v.SetDefault("midi_port", d.MIDIPort)
	v.SetDefault("midi_channel", d.MIDIChannel)
	v.SetDefault("wav_path", d.WavPath)
	v.SetDefault("chord_duration", d.ChordDuration)
	v.SetDefault("chord_gap", d.ChordGap)
	v.SetDefault("use_sevenths", d.UseSevenths)
	v.SetDefault("exercise.length", d.Exercise.Length)
	v.SetDefault("exercise.start_on_root", d.Exercise.StartOnRoot)
	v.SetDefault("exercise.allowed_chords", d.Exercise.AllowedChords)
	v.SetDefault("exercise.key", d.Exercise.Key)
	v.SetDefault("exercise.octaves", d.Exercise.Octaves)
	v.SetDefault("exercise.fixed_octave", d.Exercise.FixedOctave)
	v.SetDefault("exercise.use_sevenths", d.Exercise.UseSevenths)
	v.SetDefault("exercise.play_on_click", d.Exercise.PlayOnClick)
	v.SetDefault("serve.addr", d.Serve.Addr)
	v.SetDefault("serve.allowed_origins", d.Serve.AllowedOrigins)
	v.SetDefault("serve.reload_debounce", d.Serve.ReloadDebounce)
}

// DefaultPath is where the config file lives when --config is not given.
func DefaultPath() string {
	return filepath.Join(constants.GetConfigDir(), "config.yaml")
}

// New returns a viper instance with defaults, env binding and flags
// wired up. path may be empty to use DefaultPath if it exists.
func New(path string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		// --chord-duration binds to chord_duration
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = fmt.Errorf("binding flag %v: %w", f.Name, err)
			}
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if explicit || !missing {
			return nil, fmt.Errorf("reading config %v: %w", path, err)
		}
	}
	return v, nil
}

// Unmarshal decodes and validates the current values of v.
func Unmarshal(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Load(path string, flags *pflag.FlagSet) (Config, *viper.Viper, error) {
	v, err := New(path, flags)
	if err != nil {
		return Config{}, nil, err
	}
	cfg, err := Unmarshal(v)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, v, nil
}

// Validate checks configuration for errors.
func Validate(cfg Config) error {
	switch cfg.Output {
	case OutputMIDI, OutputWAV, OutputNone:
	default:
		return fmt.Errorf("output must be one of midi, wav, none; got %q", cfg.Output)
	}
	if cfg.MIDIChannel < 0 || cfg.MIDIChannel > 15 {
		return fmt.Errorf("midi_channel must be 0-15, got %d", cfg.MIDIChannel)
	}
	if cfg.Output == OutputWAV && cfg.WavPath == "" {
		return fmt.Errorf("wav_path is required when output is wav")
	}
	if cfg.ChordDuration <= 0 {
		return fmt.Errorf("chord_duration must be positive, got %v", cfg.ChordDuration)
	}
	if cfg.ChordGap < 0 {
		return fmt.Errorf("chord_gap must not be negative, got %v", cfg.ChordGap)
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	if err := cfg.Exercise.Validate(); err != nil {
		return err
	}
	return nil
}

func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return level, nil
}

// PlaybackOptions are the timing options Play takes from this config.
func (c Config) PlaybackOptions() playback.Options {
	return playback.Options{
		ChordDuration: c.ChordDuration,
		ChordGap:      c.ChordGap,
		UseSevenths:   c.UseSevenths,
	}
}
