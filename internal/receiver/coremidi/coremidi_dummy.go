//go:build !darwin
// +build !darwin

// Package coremidi implements a MIDI receiver on top of CoreMIDI
// (macOS). On other systems it degrades to a stub that reports the
// platform as unsupported.
package coremidi

import (
	"fmt"

	"github.com/pcaldeira/midiwire/sdk/contracts"
)

// Receiver is the non-darwin stub.
type Receiver struct {
	logger contracts.Logger
}

// New returns a stub receiver on non-macOS systems.
func New(clientName string, opts *contracts.ClientOptions) (*Receiver, error) {
	opts.Logger.Info("using stub CoreMIDI receiver on non-macOS system")
	return &Receiver{logger: opts.Logger}, nil
}

// ListDevices reports the platform as unsupported.
func (r *Receiver) ListDevices() ([]contracts.DeviceInfo, error) {
	r.logger.Warn("ListDevices called on stub CoreMIDI receiver")
	return nil, fmt.Errorf("CoreMIDI is not available on this platform")
}

// SelectDevice reports the platform as unsupported.
func (r *Receiver) SelectDevice(deviceID int) error {
	r.logger.Warn("SelectDevice called on stub CoreMIDI receiver")
	return fmt.Errorf("CoreMIDI is not available on this platform")
}

// StartCapture does nothing on the stub.
func (r *Receiver) StartCapture(eventChannel chan contracts.Event) {
	r.logger.Warn("StartCapture called on stub CoreMIDI receiver")
}

// Stop does nothing on the stub.
func (r *Receiver) Stop() error {
	r.logger.Warn("Stop called on stub CoreMIDI receiver")
	return nil
}
