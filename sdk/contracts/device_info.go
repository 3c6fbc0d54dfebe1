package contracts

// DeviceInfo describes a MIDI source a receiver can attach to: a serial
// port, a CoreMIDI source or a winmm input device.
type DeviceInfo struct {
	Name         string // Device or port name.
	Manufacturer string // Device manufacturer, when the backend reports one.
	EntityName   string // Name of the entity the device belongs to.
}
