package cmd

import (
	"fmt"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"github.com/jsphweid/harmondrill/config"
	"github.com/jsphweid/harmondrill/midi"
	"github.com/jsphweid/harmondrill/model"
	"github.com/jsphweid/harmondrill/playback"
	"github.com/jsphweid/harmondrill/render"
	"github.com/jsphweid/harmondrill/synth"
	"github.com/jsphweid/harmondrill/theory"
)

func newOutput(c config.Config) synth.Output {
	switch c.Output {
	case config.OutputWAV:
		return render.NewWavOutput(c.WavPath, nil, render.DefaultOptions())
	case config.OutputNone:
		return synth.Discard{}
	default:
		return midi.NewPortOutput(c.MIDIPort, uint8(c.MIDIChannel), logger)
	}
}

func newEngine(c config.Config) *playback.Engine {
	return playback.NewEngine(newOutput(c), playback.WithLogger(logger))
}

// parseProgressionArgs reads "<key> <symbol>..." as given on the command line.
func parseProgressionArgs(args []string) (model.Key, model.Progression, error) {
	if len(args) < 1 {
		return model.Key{}, nil, fmt.Errorf("a key such as C4 is required")
	}
	key, err := theory.ParseKey(args[0])
	if err != nil {
		return model.Key{}, nil, err
	}
	return key, model.Progression(args[1:]), nil
}
