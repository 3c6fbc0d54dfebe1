//go:build windows
// +build windows

// Package winmm implements a MIDI receiver on top of the Windows
// multimedia API (winmm.dll). Short messages delivered through MIM_DATA
// are fed through the stream parser before delivery.
package winmm

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/pcaldeira/midiwire/internal/parser"
	"github.com/pcaldeira/midiwire/internal/receiver"
	"github.com/pcaldeira/midiwire/sdk/contracts"
)

// HMIDIIN is a winmm MIDI input device handle.
type HMIDIIN windows.Handle

// Callback configuration flags.
const (
	callbackFunction = 0x00030000
	midiIOStatus     = 0x00000020
)

// winmm callback message codes.
const (
	mimOpen      = 0x3C1
	mimClose     = 0x3C2
	mimData      = 0x3C3
	mimLongData  = 0x3C4
	mimError     = 0x3C5
	mimLongError = 0x3C6
	mimMoreData  = 0x3CC
)

// midiInCaps mirrors the MIDIINCAPSW structure.
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

var (
	winmmDLL             = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmmDLL.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmmDLL.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmmDLL.NewProc("midiInOpen")
	procMidiInStart      = winmmDLL.NewProc("midiInStart")
	procMidiInStop       = winmmDLL.NewProc("midiInStop")
	procMidiInClose      = winmmDLL.NewProc("midiInClose")
)

// ErrNoMIDIDevices is returned when the system reports no MIDI inputs.
var ErrNoMIDIDevices = errors.New("no MIDI devices found")

// Receiver manages a winmm MIDI input device and the parsing of its
// short-message stream.
type Receiver struct {
	logger contracts.Logger
	parser *parser.SerialParser
	filter *contracts.EventFilter

	eventChannel atomic.Value
	handle       HMIDIIN
	portConn     bool
	callback     uintptr
	mu           sync.Mutex
}

// New creates a winmm-backed receiver.
func New(opts *contracts.ClientOptions) (*Receiver, error) {
	opts.Logger.Info("winmm MIDI receiver created")
	return &Receiver{
		logger: opts.Logger,
		parser: parser.NewSerial(opts.SysExBufferSize),
		filter: opts.EventFilter,
	}, nil
}

// ListDevices lists the winmm MIDI input devices.
func (r *Receiver) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		r.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			r.logger.Warn(fmt.Sprintf("failed to query MIDI device %d", i))
			continue
		}
		deviceName := windows.UTF16ToString(caps.szPname[:])
		devices[i] = contracts.DeviceInfo{
			Name:         deviceName,
			EntityName:   deviceName,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		}
	}
	return devices, nil
}

// SelectDevice opens the MIDI input device with the given ID.
func (r *Receiver) SelectDevice(deviceID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.portConn {
		if err := r.closeDevice(); err != nil {
			return fmt.Errorf("failed to close previous MIDI device: %w", err)
		}
	}

	r.callback = windows.NewCallback(midiInCallback)
	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&r.handle)),
		uintptr(deviceID),
		r.callback,
		uintptr(unsafe.Pointer(r)),
		uintptr(callbackFunction|midiIOStatus),
	)
	if r1 != 0 {
		r.logger.Error(fmt.Sprintf("failed to open MIDI device %d: %v", deviceID, err))
		return fmt.Errorf("failed to open MIDI device %d: %v", deviceID, err)
	}

	r.portConn = true
	r.logger.Info(fmt.Sprintf("MIDI device %d connected", deviceID))
	return nil
}

// StartCapture starts the winmm input stream.
func (r *Receiver) StartCapture(eventChannel chan contracts.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.portConn {
		r.logger.Error("cannot start capture: no MIDI device selected")
		return
	}
	if ch, _ := r.eventChannel.Load().(chan contracts.Event); ch != nil {
		r.logger.Warn("capture already started")
		return
	}
	r.eventChannel.Store(eventChannel)

	if r.handle == 0 {
		r.logger.Error("invalid MIDI device handle")
		return
	}
	r1, _, err := procMidiInStart.Call(uintptr(r.handle))
	if r1 != 0 {
		r.logger.Error(fmt.Sprintf("failed to start MIDI capture: %v", err))
		return
	}
	r.logger.Info("MIDI capture started")
}

// shortMessageLength returns how many bytes of a packed MIM_DATA word are
// meaningful for the given status byte. The unused trailing bytes of the
// word must not reach the parser or they would read as data bytes under
// running status.
func shortMessageLength(status byte) int {
	switch {
	case status >= 0xF8:
		return 1
	case status == 0xF6, status == 0xF4, status == 0xF5:
		return 1
	case status == 0xF2:
		return 3
	case status == 0xF1, status == 0xF3:
		return 2
	case status&0xF0 == 0xC0, status&0xF0 == 0xD0:
		return 2
	default:
		return 3
	}
}

// midiInCallback handles winmm callback messages. MIM_DATA packs a short
// message into dwParam1: status in the low byte, data bytes above it.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	r := (*Receiver)(unsafe.Pointer(dwInstance))

	switch wMsg {
	case mimOpen:
		r.logger.Info("MIDI device opened")
	case mimClose:
		r.logger.Info("MIDI device closed")
	case mimData:
		ch, _ := r.eventChannel.Load().(chan contracts.Event)
		if ch == nil {
			return 0
		}
		bytes := [3]byte{
			byte(dwParam1 & 0xFF),
			byte((dwParam1 >> 8) & 0xFF),
			byte((dwParam1 >> 16) & 0xFF),
		}
		n := shortMessageLength(bytes[0])
		for _, b := range bytes[:n] {
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
	case mimLongData:
		// SysEx via MIM_LONGDATA needs pre-registered buffers
		// (midiInPrepareHeader); not wired up in this driver.
		r.logger.Debug("MIM_LONGDATA received; SysEx buffers not registered")
	case mimError, mimLongError:
		r.logger.Error(fmt.Sprintf("MIDI error: msg=0x%X", wMsg))
	case mimMoreData:
		r.logger.Debug("MIM_MOREDATA received; ignored")
	default:
		r.logger.Warn(fmt.Sprintf("unknown MIDI message: 0x%X", wMsg))
	}
	return 0
}

// Stop halts capture and closes the device.
func (r *Receiver) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.portConn {
		r.logger.Warn("no MIDI device is connected")
		return nil
	}
	if err := r.closeDevice(); err != nil {
		return fmt.Errorf("failed to stop MIDI capture: %w", err)
	}
	r.logger.Info("MIDI capture stopped and device closed")
	return nil
}

func (r *Receiver) closeDevice() error {
	if r.handle == 0 {
		return fmt.Errorf("invalid MIDI device handle")
	}

	r1, _, err := procMidiInStop.Call(uintptr(r.handle))
	if r1 != 0 {
		r.logger.Error(fmt.Sprintf("failed to stop MIDI capture: %v", err))
		return err
	}
	r1, _, err = procMidiInClose.Call(uintptr(r.handle))
	if r1 != 0 {
		r.logger.Error(fmt.Sprintf("failed to close MIDI device: %v", err))
		return err
	}

	r.portConn = false
	r.handle = 0
	r.eventChannel.Store((chan contracts.Event)(nil))
	return nil
}
