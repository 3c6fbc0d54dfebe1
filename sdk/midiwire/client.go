// Package midiwire is the public entry point of the library: factories
// for the stream parsers and for the transport receivers that feed them.
package midiwire

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/pcaldeira/midiwire/internal/parser"
	"github.com/pcaldeira/midiwire/internal/receiver/coremidi"
	"github.com/pcaldeira/midiwire/internal/receiver/serialport"
	"github.com/pcaldeira/midiwire/internal/receiver/usbstream"
	"github.com/pcaldeira/midiwire/internal/receiver/winmm"
	"github.com/pcaldeira/midiwire/sdk/contracts"
)

// ErrUnsupportedOS is returned when no native MIDI device receiver
// exists for the operating system.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// deviceInitializers maps OS names to native device receiver
// constructors.
var deviceInitializers = map[string]func(*contracts.ClientOptions) (contracts.Receiver, error){
	"darwin": func(opts *contracts.ClientOptions) (contracts.Receiver, error) {
		return coremidi.New("midiwire", opts)
	},
	"windows": func(opts *contracts.ClientOptions) (contracts.Receiver, error) {
		return winmm.New(opts)
	},
}

// NewByteParser returns a byte-oriented MIDI stream parser for
// Serial/UART transports.
func NewByteParser(opts ...contracts.Option) (contracts.ByteParser, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	return parser.NewSerial(options.SysExBufferSize), nil
}

// NewPacketParser returns a packet-oriented parser for USB-MIDI
// transports.
func NewPacketParser(opts ...contracts.Option) (contracts.PacketParser, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	return parser.NewUSB(options.SysExBufferSize), nil
}

// NewSerialReceiver returns a receiver reading DIN MIDI from a serial
// port. Configure the port with WithSerialConfig or select one through
// ListDevices/SelectDevice.
func NewSerialReceiver(opts ...contracts.Option) (*serialport.Receiver, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	return serialport.New(&options)
}

// NewHairlessReceiver returns a serial receiver preset for the Hairless
// MIDI-serial bridge (115200 baud).
func NewHairlessReceiver(opts ...contracts.Option) (*serialport.Receiver, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	return serialport.NewHairless(&options)
}

// NewUSBStreamReceiver returns a receiver decoding 4-byte USB-MIDI event
// packets from source.
func NewUSBStreamReceiver(source io.Reader, opts ...contracts.Option) (*usbstream.Receiver, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	return usbstream.New(source, &options), nil
}

// NewDeviceReceiver returns the native MIDI device receiver for the
// current operating system, or ErrUnsupportedOS when there is none.
func NewDeviceReceiver(opts ...contracts.Option) (contracts.Receiver, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	if initializer, exists := deviceInitializers[runtime.GOOS]; exists {
		return initializer(&options)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}
