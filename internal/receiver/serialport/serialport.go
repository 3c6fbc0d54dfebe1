// Package serialport implements a MIDI receiver and sender on top of a
// serial port. It covers DIN MIDI at the standard 31250 baud as well as
// the Hairless MIDI-serial bridge at 115200 baud.
package serialport

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.bug.st/serial"

	"github.com/pcaldeira/midiwire/internal/encoder"
	"github.com/pcaldeira/midiwire/internal/parser"
	"github.com/pcaldeira/midiwire/internal/receiver"
	"github.com/pcaldeira/midiwire/sdk/contracts"
)

const (
	// MIDIBaud is the DIN MIDI line speed.
	MIDIBaud = 31250
	// HairlessBaud is the default speed of the Hairless MIDI-serial bridge.
	HairlessBaud = 115200
)

// Error definitions for serial port handling.
var (
	ErrNoSerialPorts  = errors.New("no serial ports found")
	ErrInvalidPort    = errors.New("invalid serial port")
	ErrPortNotOpen    = errors.New("no serial port open")
	ErrAlreadyCapture = errors.New("capture already started")
)

// Receiver pumps bytes from a serial port through the stream parser and
// delivers completed messages. It also implements contracts.Sender for
// the outgoing direction; sends are serialized with a mutex so a second
// goroutine may transmit while the pump reads.
type Receiver struct {
	logger contracts.Logger
	parser *parser.SerialParser
	filter *contracts.EventFilter
	baud   int

	eventChannel atomic.Value
	port         serial.Port
	sender       *encoder.SerialWriter

	mu        sync.Mutex
	sendMu    sync.Mutex
	capturing bool
	done      chan struct{}
	wg        sync.WaitGroup
}

// New returns a serial receiver configured from opts. The port is not
// opened until SelectDevice or OpenPort.
func New(opts *contracts.ClientOptions) (*Receiver, error) {
	baud := MIDIBaud
	if opts.Serial != nil && opts.Serial.Baud != 0 {
		baud = opts.Serial.Baud
	}
	r := &Receiver{
		logger: opts.Logger,
		parser: parser.NewSerial(opts.SysExBufferSize),
		filter: opts.EventFilter,
		baud:   baud,
	}
	if opts.Serial != nil && opts.Serial.Port != "" {
		if err := r.OpenPort(opts.Serial.Port); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewHairless returns a serial receiver preset for the Hairless bridge.
func NewHairless(opts *contracts.ClientOptions) (*Receiver, error) {
	if opts.Serial == nil {
		opts.Serial = &contracts.SerialConfig{}
	}
	if opts.Serial.Baud == 0 {
		opts.Serial.Baud = HairlessBaud
	}
	return New(opts)
}

// ListDevices lists the serial ports on the system.
func (r *Receiver) ListDevices() ([]contracts.DeviceInfo, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}
	if len(ports) == 0 {
		r.logger.Warn(ErrNoSerialPorts.Error())
		return nil, ErrNoSerialPorts
	}
	devices := make([]contracts.DeviceInfo, len(ports))
	for i, name := range ports {
		devices[i] = contracts.DeviceInfo{Name: name, EntityName: name}
	}
	return devices, nil
}

// SelectDevice opens the serial port at the given index in ListDevices.
func (r *Receiver) SelectDevice(deviceID int) error {
	ports, err := serial.GetPortsList()
	if err != nil {
		return fmt.Errorf("error listing serial ports: %w", err)
	}
	if deviceID < 0 || deviceID >= len(ports) {
		r.logger.Error(ErrInvalidPort.Error())
		return ErrInvalidPort
	}
	return r.OpenPort(ports[deviceID])
}

// OpenPort opens the named serial port at the configured baud rate,
// closing any previously opened port first.
func (r *Receiver) OpenPort(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.port != nil {
		if err := r.port.Close(); err != nil {
			return fmt.Errorf("failed to close previous port: %w", err)
		}
		r.port = nil
	}

	port, err := serial.Open(name, &serial.Mode{BaudRate: r.baud})
	if err != nil {
		r.logger.Error("failed to open serial port",
			r.logger.Field().String("port", name),
			r.logger.Field().Error("error", err))
		return fmt.Errorf("%w: %s: %v", ErrInvalidPort, name, err)
	}
	r.port = port
	r.sender = encoder.NewSerialWriter(port)
	r.logger.Info("serial port opened",
		r.logger.Field().String("port", name),
		r.logger.Field().Int("baud", r.baud))
	return nil
}

// StartCapture begins pumping the port. Completed messages are delivered
// on eventChannel; the pump never blocks on a full channel.
func (r *Receiver) StartCapture(eventChannel chan contracts.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if eventChannel == nil {
		r.logger.Error("StartCapture called with nil eventChannel")
		return
	}
	if r.port == nil {
		r.logger.Error("cannot start capture: no serial port open")
		return
	}
	if r.capturing {
		r.logger.Warn(ErrAlreadyCapture.Error())
		return
	}

	r.eventChannel.Store(eventChannel)
	r.capturing = true
	r.done = make(chan struct{})
	r.wg.Add(1)
	go r.pump(r.done)
	r.logger.Info("serial MIDI capture started")
}

func (r *Receiver) pump(done chan struct{}) {
	defer r.wg.Done()

	buf := make([]byte, 64)
	for {
		select {
		case <-done:
			return
		default:
		}

		n, err := r.port.Read(buf)
		if err != nil {
			select {
			case <-done:
				// Expected: Stop closed the port under the pump.
			default:
				r.logger.Error("serial read failed",
					r.logger.Field().Error("error", err))
			}
			return
		}

		ch, _ := r.eventChannel.Load().(chan contracts.Event)
		if ch == nil {
			continue
		}
		for _, b := range buf[:n] {
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
}

// Stop halts the pump and closes the port.
func (r *Receiver) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.capturing && r.port == nil {
		r.logger.Warn("no serial port is open")
		return nil
	}

	if r.capturing {
		close(r.done)
		r.capturing = false
	}
	if r.port != nil {
		if err := r.port.Close(); err != nil {
			return fmt.Errorf("failed to close serial port: %w", err)
		}
		r.port = nil
	}
	r.wg.Wait()
	r.eventChannel.Store((chan contracts.Event)(nil))
	r.logger.Info("serial MIDI capture stopped")
	return nil
}

// SendChannelMessage serializes a channel message onto the port.
func (r *Receiver) SendChannelMessage(msg contracts.ChannelMessage) error {
	return r.send(func(s *encoder.SerialWriter) error { return s.SendChannelMessage(msg) })
}

// SendSysEx serializes a SysEx message onto the port.
func (r *Receiver) SendSysEx(msg contracts.SysExMessage) error {
	return r.send(func(s *encoder.SerialWriter) error { return s.SendSysEx(msg) })
}

// SendRealTime serializes a real-time byte onto the port.
func (r *Receiver) SendRealTime(msg contracts.RealTimeMessage) error {
	return r.send(func(s *encoder.SerialWriter) error { return s.SendRealTime(msg) })
}

func (r *Receiver) send(f func(*encoder.SerialWriter) error) error {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()
	if r.sender == nil {
		return ErrPortNotOpen
	}
	return f(r.sender)
}
