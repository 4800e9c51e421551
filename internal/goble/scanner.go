package goble

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"

	"github.com/srg/myolink/pkg/event"
	"github.com/srg/myolink/pkg/protocol"
)

// DeviceInfo describes one armband seen during a scan.
type DeviceInfo struct {
	Address  string
	Name     string
	RSSI     int
	LastSeen time.Time
}

// DeviceEventType marks if the device was newly discovered or updated
type DeviceEventType int

const (
	EventNew DeviceEventType = iota
	EventUpdated
)

type DeviceEvent struct {
	Type       DeviceEventType
	DeviceInfo DeviceInfo
}

// ScanOptions configures scanning behavior
type ScanOptions struct {
	Duration time.Duration

	// AllowDuplicates requests repeated advertisements from the same
	// device, keeping RSSI and name fresh during the scan window.
	AllowDuplicates bool

	// IncludeAll disables the control-service filter and reports every
	// advertiser, not just Myo devices.
	IncludeAll bool
}

// DefaultScanOptions returns default scanning options
func DefaultScanOptions() *ScanOptions {
	return &ScanOptions{
		Duration:        10 * time.Second,
		AllowDuplicates: true,
	}
}

// Scanner discovers Myo armbands by their advertised control service.
type Scanner struct {
	devices *hashmap.Map[string, DeviceInfo]
	events  *event.RingChannel[DeviceEvent]
	logger  *logrus.Logger

	scanOptions *ScanOptions
	controlUUID ble.UUID
}

// NewScanner creates a new armband scanner
func NewScanner(logger *logrus.Logger) (*Scanner, error) {
	if logger == nil {
		logger = logrus.New()
	}

	controlUUID, err := ble.Parse(string(protocol.ServiceControl))
	if err != nil {
		return nil, fmt.Errorf("failed to parse control service UUID: %w", err)
	}

	return &Scanner{
		events:      event.NewRingChannel[DeviceEvent](100),
		logger:      logger,
		controlUUID: controlUUID,
	}, nil
}

// Scan performs BLE discovery with provided options. It blocks until the
// scan duration elapses or ctx is cancelled, then returns every device seen.
func (s *Scanner) Scan(ctx context.Context, opts *ScanOptions) (map[string]DeviceInfo, error) {
	s.devices = hashmap.New[string, DeviceInfo]()

	if opts == nil {
		opts = DefaultScanOptions()
	}

	s.logger.WithField("duration", opts.Duration).Info("Starting BLE scan...")

	dev, err := DeviceFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to create BLE device: %w", NormalizeError(err))
	}

	scanCtx := ctx
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		scanCtx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	s.scanOptions = opts
	defer func() {
		s.scanOptions = nil
	}()
	err = dev.Scan(scanCtx, opts.AllowDuplicates, s.handleAdvertisement)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("scan failed: %w", NormalizeError(err))
	}

	s.logger.WithField("device_count", s.devices.Len()).Info("BLE scan completed")

	devices := make(map[string]DeviceInfo, s.devices.Len())
	s.devices.Range(func(key string, value DeviceInfo) bool {
		devices[key] = value
		return true
	})

	return devices, nil
}

// handleAdvertisement updates existing or adds a new device
func (s *Scanner) handleAdvertisement(adv ble.Advertisement) {
	deviceID := adv.Addr().String()

	info, existing := s.devices.Get(deviceID)
	if !existing {
		if !s.shouldIncludeDevice(adv, s.scanOptions) {
			return
		}
		info = DeviceInfo{Address: deviceID}
	}

	if name := adv.LocalName(); name != "" {
		info.Name = name
	}
	info.RSSI = adv.RSSI()
	info.LastSeen = time.Now()
	s.devices.Set(deviceID, info)

	eventType := EventUpdated
	if !existing {
		s.logger.WithFields(logrus.Fields{
			"device":  info.Name,
			"address": info.Address,
			"rssi":    info.RSSI,
		}).Info("Discovered armband")
		eventType = EventNew
	}

	s.events.Send(DeviceEvent{Type: eventType, DeviceInfo: info})
}

// shouldIncludeDevice keeps only devices advertising the Myo control
// service, unless the filter is disabled.
func (s *Scanner) shouldIncludeDevice(adv ble.Advertisement, opts *ScanOptions) bool {
	if opts.IncludeAll {
		return true
	}
	for _, advUUID := range adv.Services() {
		if s.controlUUID.Equal(advUUID) {
			return true
		}
	}
	return false
}

// Events return a read-only channel of device events
func (s *Scanner) Events() <-chan DeviceEvent {
	return s.events.C()
}
