package protocol

import (
	"fmt"
	"strings"
)

// Characteristic is a GATT characteristic address. Values are canonical
// dashed 128-bit UUID strings; the core treats them as opaque identifiers.
type Characteristic string

// Normalized returns the lowercase, dash-free form used for lookups
// against BLE stacks that report compact UUIDs.
func (c Characteristic) Normalized() string {
	return strings.ReplaceAll(strings.ToLower(string(c)), "-", "")
}

const (
	standardUUIDFmt = "0000%04x-0000-1000-8000-00805f9b34fb"
	vendorUUIDFmt   = "d506%04x-a904-deb9-4748-2c7f4a124842"
)

func standardUUID(n uint16) Characteristic {
	return Characteristic(fmt.Sprintf(standardUUIDFmt, n))
}

func vendorUUID(n uint16) Characteristic {
	return Characteristic(fmt.Sprintf(vendorUUIDFmt, n))
}

// Characteristic addresses. Name and battery level are standard Bluetooth
// SIG characteristics; everything else is vendor-specific.
var (
	CharName         = standardUUID(0x2A00)
	CharBattery      = standardUUID(0x2A19)
	CharInfo         = vendorUUID(0x0101)
	CharFirmware     = vendorUUID(0x0201)
	CharCommand      = vendorUUID(0x0401)
	CharIMU          = vendorUUID(0x0402)
	CharMotion       = vendorUUID(0x0502)
	CharClassifier   = vendorUUID(0x0103)
	CharEMGProcessed = vendorUUID(0x0104)
	CharEMG0         = vendorUUID(0x0105)
	CharEMG1         = vendorUUID(0x0205)
	CharEMG2         = vendorUUID(0x0305)
	CharEMG3         = vendorUUID(0x0405)
)

// Service addresses, used by transports for discovery bookkeeping.
var (
	ServiceGenericAccess = standardUUID(0x1800)
	ServiceBattery       = standardUUID(0x180F)
	ServiceControl       = vendorUUID(0x0001)
	ServiceIMUData       = vendorUUID(0x0002)
	ServiceClassifier    = vendorUUID(0x0003)
	ServiceEMGData       = vendorUUID(0x0005)
)

// EMGChars lists the four raw EMG notification channels. The firmware
// round-robins frames across them to sustain the 200 Hz stream rate.
var EMGChars = []Characteristic{CharEMG0, CharEMG1, CharEMG2, CharEMG3}
