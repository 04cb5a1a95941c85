package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/harmondrill/exercise"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("HARMONDRILL_CONFIG_DIR", t.TempDir())

	cfg, _, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, OutputMIDI, cfg.Output)
	assert.Equal(t, time.Second, cfg.ChordDuration)
	assert.Equal(t, time.Duration(0), cfg.ChordGap)
	assert.Equal(t, exercise.DefaultSettings(), cfg.Exercise)
	assert.Equal(t, "127.0.0.1:8080", cfg.Serve.Addr)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
output: wav
wav_path: /tmp/out.wav
chord_duration: 1500ms
chord_gap: 250ms
use_sevenths: true
exercise:
  length: 6
  key: Eb
  allowed_chords: [I, IV, V]
serve:
  addr: 127.0.0.1:9999
`)

	cfg, _, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, OutputWAV, cfg.Output)
	assert.Equal(t, "/tmp/out.wav", cfg.WavPath)
	assert.Equal(t, 1500*time.Millisecond, cfg.ChordDuration)
	assert.Equal(t, 250*time.Millisecond, cfg.ChordGap)
	assert.True(t, cfg.UseSevenths)
	assert.Equal(t, 6, cfg.Exercise.Length)
	assert.Equal(t, "Eb", cfg.Exercise.Key)
	assert.Equal(t, []string{"I", "IV", "V"}, cfg.Exercise.AllowedChords)
	// untouched keys keep their defaults
	assert.True(t, cfg.Exercise.StartOnRoot)
	assert.Equal(t, "127.0.0.1:9999", cfg.Serve.Addr)

	opts := cfg.PlaybackOptions()
	assert.Equal(t, 1500*time.Millisecond, opts.ChordDuration)
	assert.True(t, opts.UseSevenths)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "output: wav\n")
	t.Setenv("HARMONDRILL_OUTPUT", "none")
	t.Setenv("HARMONDRILL_EXERCISE_LENGTH", "8")

	cfg, _, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, OutputNone, cfg.Output)
	assert.Equal(t, 8, cfg.Exercise.Length)
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "log_level: info\n")
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--log-level=debug"}))

	cfg, _, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad output", func(c *Config) { c.Output = "speaker" }},
		{"bad channel", func(c *Config) { c.MIDIChannel = 16 }},
		{"wav without path", func(c *Config) { c.Output = OutputWAV; c.WavPath = "" }},
		{"zero duration", func(c *Config) { c.ChordDuration = 0 }},
		{"negative gap", func(c *Config) { c.ChordGap = -time.Millisecond }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad exercise", func(c *Config) { c.Exercise.Length = 0 }},
		{"bad exercise key", func(c *Config) { c.Exercise.Key = "H" }},
	}

	require.NoError(t, Validate(Defaults()))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, "WARN", level.String())
}
