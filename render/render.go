// Package render synthesizes notes offline into a WAV file: a triangle
// oscillator per note shaped by the synth envelope.
package render

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jsphweid/harmondrill/constants"
	"github.com/jsphweid/harmondrill/model"
	"github.com/jsphweid/harmondrill/synth"
	"github.com/jsphweid/harmondrill/util"
)

// Note is a single sounding pitch. End is when the key was released; the
// envelope release tail sounds after it.
type Note struct {
	Pitch    model.Pitch
	Velocity float64
	Start    time.Duration
	End      time.Duration
}

type Options struct {
	SampleRate int
	Envelope   synth.Envelope
}

func DefaultOptions() Options {
	return Options{
		SampleRate: constants.SampleRate,
		Envelope:   synth.DefaultEnvelope,
	}
}

func Frequency(p model.Pitch) float64 {
	return 440 * math.Pow(2, float64(p-69)/12)
}

// triangle wave in [-1, 1] for phase in cycles
func triangle(phase float64) float64 {
	_, frac := math.Modf(phase)
	return 4*math.Abs(frac-0.5) - 1
}

// Length is the time until the last release tail has died out.
func Length(notes []Note, env synth.Envelope) time.Duration {
	var res time.Duration
	for _, n := range notes {
		res = util.Max(res, n.End+env.Release)
	}
	return res
}

// Samples mixes notes into mono samples in [-1, 1].
func Samples(notes []Note, opts Options) []float64 {
	total := int(Length(notes, opts.Envelope).Seconds() * float64(opts.SampleRate))
	res := make([]float64, total)
	rate := float64(opts.SampleRate)

	for _, n := range notes {
		freq := Frequency(n.Pitch)
		first := int(n.Start.Seconds() * rate)
		last := util.Min(int((n.End+opts.Envelope.Release).Seconds()*rate), total)
		held := n.End - n.Start
		for i := util.Max(first, 0); i < last; i++ {
			since := time.Duration(float64(i-first) / rate * float64(time.Second))
			level := opts.Envelope.Level(since, held)
			res[i] += n.Velocity * level * triangle(freq*since.Seconds())
		}
	}

	for i, v := range res {
		res[i] = util.Clamp(v, -1, 1)
	}
	return res
}

// WriteWav renders notes as 16-bit mono PCM.
func WriteWav(w io.WriteSeeker, notes []Note, opts Options) error {
	samples := Samples(notes, opts)
	maxVal := float64(int(1)<<(constants.BitDepth-1) - 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  opts.SampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: constants.BitDepth,
	}
	for i, v := range samples {
		buf.Data[i] = int(math.Round(v * maxVal))
	}

	// 1 is PCM
	encoder := wav.NewEncoder(w, opts.SampleRate, constants.BitDepth, 1, 1)
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("encoding wav: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finishing wav: %w", err)
	}
	return nil
}
