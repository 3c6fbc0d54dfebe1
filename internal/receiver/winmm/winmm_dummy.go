//go:build !windows
// +build !windows

// Package winmm implements a MIDI receiver on top of the Windows
// multimedia API. On other systems it degrades to a stub that reports
// the platform as unsupported.
package winmm

import (
	"fmt"

	"github.com/pcaldeira/midiwire/sdk/contracts"
)

// Receiver is the non-windows stub.
type Receiver struct {
	logger contracts.Logger
}

// New returns a stub receiver on non-Windows systems.
func New(opts *contracts.ClientOptions) (*Receiver, error) {
	opts.Logger.Info("using stub winmm receiver on non-Windows system")
	return &Receiver{logger: opts.Logger}, nil
}

// ListDevices reports the platform as unsupported.
func (r *Receiver) ListDevices() ([]contracts.DeviceInfo, error) {
	r.logger.Warn("ListDevices called on stub winmm receiver")
	return nil, fmt.Errorf("winmm is not available on this platform")
}

// SelectDevice reports the platform as unsupported.
func (r *Receiver) SelectDevice(deviceID int) error {
	r.logger.Warn("SelectDevice called on stub winmm receiver")
	return fmt.Errorf("winmm is not available on this platform")
}

// StartCapture does nothing on the stub.
func (r *Receiver) StartCapture(eventChannel chan contracts.Event) {
	r.logger.Warn("StartCapture called on stub winmm receiver")
}

// Stop does nothing on the stub.
func (r *Receiver) Stop() error {
	r.logger.Warn("Stop called on stub winmm receiver")
	return nil
}
