//go:build darwin
// +build darwin

// Package coremidi implements a MIDI receiver on top of CoreMIDI
// (macOS). Packet payloads are fed byte-wise through the stream parser,
// so running status, SysEx and interleaved real-time bytes survive intact
// even when CoreMIDI fragments them across packets.
package coremidi

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/youpy/go-coremidi"

	"github.com/pcaldeira/midiwire/internal/parser"
	"github.com/pcaldeira/midiwire/internal/receiver"
	"github.com/pcaldeira/midiwire/sdk/contracts"
)

// Error definitions for CoreMIDI connection handling.
var (
	ErrNoMIDIDevices       = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice   = errors.New("invalid MIDI device")
	ErrMIDIConnectionError = errors.New("error connecting to MIDI device")
	ErrCreateInputPort     = errors.New("error creating input port")
)

// portConnection is the disconnectable handle CoreMIDI gives back.
type portConnection interface {
	Disconnect()
}

// Receiver manages a CoreMIDI source connection and the parsing of its
// byte stream.
type Receiver struct {
	logger contracts.Logger
	parser *parser.SerialParser
	filter *contracts.EventFilter

	eventChannel atomic.Value
	client       coremidi.Client
	inputPort    coremidi.InputPort
	portConn     portConnection

	mu        sync.Mutex
	capturing bool
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// New creates a CoreMIDI-backed receiver.
func New(clientName string, opts *contracts.ClientOptions) (*Receiver, error) {
	client, err := coremidi.NewClient(clientName)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("CoreMIDI client created",
		opts.Logger.Field().String("name", clientName))

	return &Receiver{
		logger: opts.Logger,
		parser: parser.NewSerial(opts.SysExBufferSize),
		filter: opts.EventFilter,
		client: client,
	}, nil
}

// ListDevices lists the available CoreMIDI sources.
func (r *Receiver) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		r.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		entity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         source.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice connects the receiver to the source at the given index,
// disconnecting any previous source first.
func (r *Receiver) SelectDevice(deviceID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		r.logger.Error(ErrInvalidMIDIDevice.Error())
		return ErrInvalidMIDIDevice
	}

	if r.portConn != nil {
		r.portConn.Disconnect()
		r.portConn = nil
	}

	source := sources[deviceID]
	r.logger.Info("MIDI device selected",
		r.logger.Field().Int("deviceID", deviceID),
		r.logger.Field().String("deviceName", source.Name()))

	r.inputPort, err = coremidi.NewInputPort(r.client, "midiwire input", r.handlePacket)
	if err != nil {
		r.logger.Error(ErrCreateInputPort.Error())
		return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}

	r.portConn, err = r.inputPort.Connect(source)
	if err != nil {
		r.logger.Error(ErrMIDIConnectionError.Error())
		return fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}

	r.logger.Info("MIDI device connected")
	return nil
}

// handlePacket feeds a CoreMIDI packet through the stream parser and
// delivers every message that completes. CoreMIDI packets carry raw MIDI
// bytes with no alignment guarantee, exactly what the byte parser
// expects.
func (r *Receiver) handlePacket(source coremidi.Source, packet coremidi.Packet) {
	r.wg.Add(1)
	defer r.wg.Done()

	ch, _ := r.eventChannel.Load().(chan contracts.Event)
	if ch == nil {
		return
	}

	for _, b := range packet.Data {
		kind := r.parser.Feed(b)
		if kind == contracts.NoMessage {
			continue
		}
		ev := receiver.EventFrom(kind, r.parser)
		if !receiver.Allowed(r.filter, ev) {
			continue
		}
		receiver.Deliver(r.logger, ch, ev)
	}
}

// StartCapture begins delivering parsed messages to eventChannel.
func (r *Receiver) StartCapture(eventChannel chan contracts.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if eventChannel == nil {
		r.logger.Error("StartCapture called with nil eventChannel")
		return
	}
	if r.capturing {
		r.logger.Warn("capture already started")
		return
	}

	r.logger.Info("starting MIDI event capture")
	r.eventChannel.Store(eventChannel)
	r.capturing = true
}

// Stop disconnects from the source and waits for in-flight packet
// handling to finish. Only the first call does work.
func (r *Receiver) Stop() error {
	r.stopOnce.Do(func() {
		r.logger.Info("stopping MIDI capture")
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.capturing {
			r.capturing = false
			if r.portConn != nil {
				r.portConn.Disconnect()
				r.portConn = nil
			}
			r.eventChannel.Store((chan contracts.Event)(nil))
			r.wg.Wait()
			r.logger.Info("MIDI capture stopped")
		}
	})
	return nil
}
