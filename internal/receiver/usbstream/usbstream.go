// Package usbstream implements a MIDI receiver on a stream of 4-byte
// USB-MIDI event packets, as produced by a class-compliant USB-MIDI
// endpoint or a USBMidiKliK-style bridge. The packet source is any
// io.Reader; the package does not own endpoint I/O.
package usbstream

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/pcaldeira/midiwire/internal/encoder"
	"github.com/pcaldeira/midiwire/internal/parser"
	"github.com/pcaldeira/midiwire/internal/receiver"
	"github.com/pcaldeira/midiwire/sdk/contracts"
)

// ErrNotSupported is returned by device enumeration: a packet stream is
// attached at construction, not selected at run time.
var ErrNotSupported = errors.New("device selection not supported on a packet stream")

// Receiver reads 4-byte USB-MIDI packets from a stream, runs them
// through the packet parser and delivers completed messages. When the
// source also implements io.Writer, the receiver doubles as a
// contracts.Sender emitting event packets.
type Receiver struct {
	logger contracts.Logger
	parser *parser.USBParser
	filter *contracts.EventFilter
	source io.Reader
	sender *encoder.USBWriter

	eventChannel atomic.Value

	mu        sync.Mutex
	sendMu    sync.Mutex
	capturing bool
	done      chan struct{}
	wg        sync.WaitGroup
}

// New returns a receiver reading packets from source.
func New(source io.Reader, opts *contracts.ClientOptions) *Receiver {
	r := &Receiver{
		logger: opts.Logger,
		parser: parser.NewUSB(opts.SysExBufferSize),
		filter: opts.EventFilter,
		source: source,
	}
	if w, ok := source.(io.Writer); ok {
		r.sender = encoder.NewUSBWriter(w)
	}
	return r
}

// ListDevices is not applicable to a packet stream.
func (r *Receiver) ListDevices() ([]contracts.DeviceInfo, error) {
	return nil, ErrNotSupported
}

// SelectDevice is not applicable to a packet stream.
func (r *Receiver) SelectDevice(deviceID int) error {
	return ErrNotSupported
}

// StartCapture begins pumping packets from the source.
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

	r.eventChannel.Store(eventChannel)
	r.capturing = true
	r.done = make(chan struct{})
	r.wg.Add(1)
	go r.pump(r.done)
	r.logger.Info("USB-MIDI packet capture started")
}

func (r *Receiver) pump(done chan struct{}) {
	defer r.wg.Done()

	var pkt [4]byte
	for {
		select {
		case <-done:
			return
		default:
		}

		if _, err := io.ReadFull(r.source, pkt[:]); err != nil {
			select {
			case <-done:
				// Expected: Stop closed the source under the pump.
			default:
				if !errors.Is(err, io.EOF) {
					r.logger.Error("packet read failed",
						r.logger.Field().Error("error", err))
				}
			}
			return
		}

		kind := r.parser.FeedPacket(pkt)
		if kind == contracts.NoMessage {
			continue
		}
		ch, _ := r.eventChannel.Load().(chan contracts.Event)
		if ch == nil {
			continue
		}
		ev := receiver.EventFrom(kind, r.parser)
		if !receiver.Allowed(r.filter, ev) {
			continue
		}
		receiver.Deliver(r.logger, ch, ev)
	}
}

// Stop halts the pump. The source is closed when it implements io.Closer.
func (r *Receiver) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.capturing {
		return nil
	}
	close(r.done)
	r.capturing = false
	if c, ok := r.source.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}
	r.wg.Wait()
	r.eventChannel.Store((chan contracts.Event)(nil))
	r.logger.Info("USB-MIDI packet capture stopped")
	return nil
}

// SendChannelMessage frames and writes one event packet.
func (r *Receiver) SendChannelMessage(msg contracts.ChannelMessage) error {
	return r.send(func(s *encoder.USBWriter) error { return s.SendChannelMessage(msg) })
}

// SendSysEx frames and writes the chunked packet sequence.
func (r *Receiver) SendSysEx(msg contracts.SysExMessage) error {
	return r.send(func(s *encoder.USBWriter) error { return s.SendSysEx(msg) })
}

// SendRealTime frames and writes one CIN 0xF packet.
func (r *Receiver) SendRealTime(msg contracts.RealTimeMessage) error {
	return r.send(func(s *encoder.USBWriter) error { return s.SendRealTime(msg) })
}

func (r *Receiver) send(f func(*encoder.USBWriter) error) error {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()
	if r.sender == nil {
		return ErrNotSupported
	}
	return f(r.sender)
}
