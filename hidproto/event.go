// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hidproto

// EventKind tags which variant a DeviceEvent holds.
type EventKind int

const (
	// EventVolume reports the base station's current volume knob position.
	EventVolume EventKind = iota
	// EventBattery reports headset battery level and charging state.
	EventBattery
	// EventHeadsetConnection reports headset link-layer state changes.
	EventHeadsetConnection
)

const (
	inputReportID            = 7
	eventVolumeCmd           = 0x25
	eventHeadsetConnCmd      = 0xb5
	eventBatteryCmd          = 0xb7
	wirelessFlagValue   byte = 8
	bluetoothOnValue    byte = 1
	bluetoothPowerValue byte = 4
)

// DeviceEvent is a tagged union of the asynchronous events the base station
// reports on its info endpoint. Only the field(s) matching Kind are
// meaningful.
type DeviceEvent struct {
	Kind EventKind

	// Volume is set when Kind == EventVolume.
	Volume uint8

	// Headset and Charging are set when Kind == EventBattery.
	Headset  uint8
	Charging uint8

	// Wireless, Bluetooth and BluetoothOn are set when Kind ==
	// EventHeadsetConnection.
	Wireless    bool
	Bluetooth   bool
	BluetoothOn bool
}

// ParseEvent decodes a 64-byte input report into a DeviceEvent. It returns
// ok=false for any report that isn't a recognized input report (buf[0] !=
// 7) or whose second byte doesn't match a known event kind.
func ParseEvent(buf [ControlReportSize]byte) (DeviceEvent, bool) {
	if buf[0] != inputReportID {
		return DeviceEvent{}, false
	}
	switch buf[1] {
	case eventVolumeCmd:
		return DeviceEvent{Kind: EventVolume, Volume: MaxVolume - buf[2]}, true
	case eventHeadsetConnCmd:
		return DeviceEvent{
			Kind:        EventHeadsetConnection,
			Wireless:    buf[4] == wirelessFlagValue,
			Bluetooth:   buf[3] == bluetoothOnValue,
			BluetoothOn: buf[2] == bluetoothPowerValue,
		}, true
	case eventBatteryCmd:
		return DeviceEvent{Kind: EventBattery, Headset: buf[2], Charging: buf[3]}, true
	default:
		return DeviceEvent{}, false
	}
}

// EncodeInput is the inverse of ParseEvent. It exists for the codec's
// round-trip property tests and for feeding canned input reports through
// the fake transport in the device package's tests.
func EncodeInput(e DeviceEvent) [ControlReportSize]byte {
	var buf [ControlReportSize]byte
	buf[0] = inputReportID
	switch e.Kind {
	case EventVolume:
		buf[1] = eventVolumeCmd
		buf[2] = byte(MaxVolume - int(e.Volume))
	case EventHeadsetConnection:
		buf[1] = eventHeadsetConnCmd
		if e.BluetoothOn {
			buf[2] = bluetoothPowerValue
		}
		if e.Bluetooth {
			buf[3] = bluetoothOnValue
		}
		if e.Wireless {
			buf[4] = wirelessFlagValue
		}
	case EventBattery:
		buf[1] = eventBatteryCmd
		buf[2] = e.Headset
		buf[3] = e.Charging
	}
	return buf
}
