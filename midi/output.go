package midi

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/jsphweid/harmondrill/model"
)

type sendFunc func(msg gomidi.Message) error

// PortOutput plays notes on a MIDI out port. A driver has to be
// registered by importing one, e.g. drivers/rtmididrv.
type PortOutput struct {
	portName string
	channel  uint8
	log      *slog.Logger

	mu   sync.Mutex
	port drivers.Out
	send sendFunc
}

// NewPortOutput opens the first port whose name contains portName, or
// port 0 when portName is empty. Nothing is opened until Resume.
func NewPortOutput(portName string, channel uint8, log *slog.Logger) *PortOutput {
	if log == nil {
		log = slog.Default()
	}
	return &PortOutput{portName: portName, channel: channel & 0x0f, log: log}
}

func (o *PortOutput) Resume(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.send != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var port drivers.Out
	var err error
	if o.portName == "" {
		port, err = gomidi.OutPort(0)
	} else {
		port, err = gomidi.FindOutPort(o.portName)
	}
	if err != nil {
		return fmt.Errorf("finding midi out port %q: %w", o.portName, err)
	}

	send, err := gomidi.SendTo(port)
	if err != nil {
		return fmt.Errorf("opening midi out port %v: %w", port, err)
	}
	o.port = port
	o.send = send
	o.log.Info("midi output ready", "port", port.String())
	return nil
}

func (o *PortOutput) NoteOn(p model.Pitch, velocity float64) error {
	if !p.InMidiRange() {
		o.log.Debug("skipping pitch outside midi range", "pitch", int(p))
		return nil
	}
	return o.sendMsg(gomidi.NoteOn(o.channel, uint8(p), midiVelocity(velocity)))
}

func (o *PortOutput) NoteOff(p model.Pitch) error {
	if !p.InMidiRange() {
		return nil
	}
	return o.sendMsg(gomidi.NoteOff(o.channel, uint8(p)))
}

func (o *PortOutput) sendMsg(msg gomidi.Message) error {
	o.mu.Lock()
	send := o.send
	o.mu.Unlock()

	if send == nil {
		return fmt.Errorf("midi output not resumed")
	}
	return send(msg)
}

func (o *PortOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.send = nil
	if o.port == nil {
		return nil
	}
	err := o.port.Close()
	o.port = nil
	return err
}

// ListOutPorts names the out ports of the registered driver.
func ListOutPorts() []string {
	var res []string
	for _, port := range gomidi.GetOutPorts() {
		res = append(res, port.String())
	}
	return res
}

func CloseDriver() {
	gomidi.CloseDriver()
}
