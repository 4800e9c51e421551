package goble

import (
	"testing"

	"github.com/cornelk/hashmap"
	"github.com/go-ble/ble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/myolink/pkg/protocol"
)

// fakeAdvertisement implements ble.Advertisement for scanner tests.
type fakeAdvertisement struct {
	addr     string
	name     string
	rssi     int
	services []ble.UUID
}

func (a *fakeAdvertisement) LocalName() string               { return a.name }
func (a *fakeAdvertisement) ManufacturerData() []byte        { return nil }
func (a *fakeAdvertisement) ServiceData() []ble.ServiceData  { return nil }
func (a *fakeAdvertisement) Services() []ble.UUID            { return a.services }
func (a *fakeAdvertisement) OverflowService() []ble.UUID     { return nil }
func (a *fakeAdvertisement) TxPowerLevel() int               { return 0 }
func (a *fakeAdvertisement) Connectable() bool               { return true }
func (a *fakeAdvertisement) SolicitedService() []ble.UUID    { return nil }
func (a *fakeAdvertisement) RSSI() int                       { return a.rssi }
func (a *fakeAdvertisement) Addr() ble.Addr                  { return ble.NewAddr(a.addr) }

func myoAdvertisement(addr, name string, rssi int) *fakeAdvertisement {
	return &fakeAdvertisement{
		addr:     addr,
		name:     name,
		rssi:     rssi,
		services: []ble.UUID{ble.MustParse(string(protocol.ServiceControl))},
	}
}

func TestScannerFiltersOnControlService(t *testing.T) {
	s, err := NewScanner(newTestLogger())
	require.NoError(t, err)

	myo := myoAdvertisement("aa:bb:cc:dd:ee:01", "Myo", -60)
	other := &fakeAdvertisement{addr: "aa:bb:cc:dd:ee:02", name: "Thermostat", rssi: -50}

	opts := DefaultScanOptions()
	assert.True(t, s.shouldIncludeDevice(myo, opts), "MUST include devices advertising the control service")
	assert.False(t, s.shouldIncludeDevice(other, opts), "MUST exclude devices without the control service")

	opts.IncludeAll = true
	assert.True(t, s.shouldIncludeDevice(other, opts), "IncludeAll MUST disable the filter")
}

func TestScannerTracksDiscoveriesAndUpdates(t *testing.T) {
	s, err := NewScanner(newTestLogger())
	require.NoError(t, err)
	s.devices = hashmap.New[string, DeviceInfo]()
	s.scanOptions = DefaultScanOptions()

	s.handleAdvertisement(myoAdvertisement("aa:bb:cc:dd:ee:01", "", -70))
	s.handleAdvertisement(myoAdvertisement("aa:bb:cc:dd:ee:01", "My Myo", -55))

	info, ok := s.devices.Get("aa:bb:cc:dd:ee:01")
	require.True(t, ok)
	assert.Equal(t, "My Myo", info.Name, "later advertisement MUST refresh the name")
	assert.Equal(t, -55, info.RSSI, "later advertisement MUST refresh the RSSI")

	first, ok := s.events.TryReceive()
	require.True(t, ok)
	assert.Equal(t, EventNew, first.Type)

	second, ok := s.events.TryReceive()
	require.True(t, ok)
	assert.Equal(t, EventUpdated, second.Type)
}

func TestScannerIgnoresFilteredAdvertisements(t *testing.T) {
	s, err := NewScanner(newTestLogger())
	require.NoError(t, err)
	s.devices = hashmap.New[string, DeviceInfo]()
	s.scanOptions = DefaultScanOptions()

	s.handleAdvertisement(&fakeAdvertisement{addr: "aa:bb:cc:dd:ee:02", name: "Thermostat", rssi: -50})

	assert.Equal(t, 0, s.devices.Len(), "non-Myo advertisers MUST NOT be recorded")
	_, ok := s.events.TryReceive()
	assert.False(t, ok, "no event MUST be emitted for filtered advertisers")
}
