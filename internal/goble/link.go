// Package goble implements myo.Link over the go-ble/ble stack: dial by
// address, GATT profile discovery, characteristic reads/writes and
// notification subscriptions.
package goble

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"

	"github.com/srg/myolink/pkg/myo"
	"github.com/srg/myolink/pkg/protocol"
)

// ----------------------------
// Configuration Constants
// ----------------------------

const (
	// DefaultConnectTimeout bounds the dial when the caller's context
	// carries no deadline of its own.
	DefaultConnectTimeout = 30 * time.Second

	// DefaultReadTimeout bounds a characteristic read when the caller's
	// context carries no deadline. Prevents indefinite blocking if the
	// device becomes unresponsive mid-read.
	DefaultReadTimeout = 5 * time.Second
)

// ----------------------------
// Transport
// ----------------------------

// Transport is the production myo.Link: one BLE central connection to one
// armband. Construct with NewTransport, then hand to myo.NewSession.
type Transport struct {
	address string
	logger  *logrus.Logger

	connMutex   sync.RWMutex
	writeMutex  sync.Mutex
	client      ble.Client
	isConnected bool

	// chars maps normalized characteristic UUIDs to live GATT handles.
	// Populated during profile discovery, read concurrently afterwards.
	chars *hashmap.Map[string, *ble.Characteristic]

	ctx    context.Context
	cancel context.CancelCauseFunc
}

// NewTransport creates a disconnected transport for the device at address.
func NewTransport(address string, logger *logrus.Logger) *Transport {
	return &Transport{
		address: address,
		logger:  logger,
		chars:   hashmap.New[string, *ble.Characteristic](),
		ctx:     context.Background(),
	}
}

// Connect dials the device and discovers its GATT profile. After a
// successful return every protocol characteristic present on the device is
// addressable through Read, Write and Subscribe.
func (t *Transport) Connect(ctx context.Context) error {
	t.connMutex.Lock()
	defer t.connMutex.Unlock()

	if strings.TrimSpace(t.address) == "" {
		t.logger.Error("Connection attempt with empty address")
		return fmt.Errorf("device address is empty")
	}

	if t.isConnectedInternal() {
		t.logger.WithField("address", t.address).Warn("Connection attempt while already connected")
		return ErrAlreadyConnected
	}

	t.logger.WithField("address", t.address).Info("Connecting to Myo device...")

	// Create a BLE device using the factory (allows for mocking in tests)
	dev, err := DeviceFactory()
	if err != nil {
		t.logger.WithField("error", err).Error("Failed to create BLE device")
		return fmt.Errorf("failed to create BLE device: %w", NormalizeError(err))
	}
	ble.SetDefaultDevice(dev)

	connCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		connCtx, cancel = context.WithTimeout(ctx, DefaultConnectTimeout)
		defer cancel()
	}

	t.logger.WithField("address", t.address).Debug("Dialing BLE device...")
	client, err := ble.Dial(connCtx, ble.NewAddr(t.address))
	if err != nil {
		t.logger.WithFields(logrus.Fields{
			"address": t.address,
			"error":   err,
		}).Error("Failed to dial BLE device")
		return fmt.Errorf("failed to connect to device with address %q: %w", t.address, NormalizeError(err))
	}

	t.logger.WithField("address", t.address).Debug("Discovering services and characteristics...")
	profile, err := client.DiscoverProfile(true)
	if err != nil {
		t.logger.WithFields(logrus.Fields{
			"address": t.address,
			"error":   err,
		}).Error("Failed to discover profile")
		if cancelErr := client.CancelConnection(); cancelErr != nil {
			t.logger.WithField("cancel_error", cancelErr).Warn("Failed to cancel connection during profile discovery failure")
		}
		return fmt.Errorf("failed to discover profile: %w", NormalizeError(err))
	}

	total := 0
	for _, svc := range profile.Services {
		for _, char := range svc.Characteristics {
			t.chars.Set(protocol.Characteristic(char.UUID.String()).Normalized(), char)
			total++
		}
	}

	t.client = client
	t.isConnected = true

	// Derive the connection context from the caller's so cancellation
	// propagates, and cancel it with a cause when the peripheral drops.
	t.ctx, t.cancel = context.WithCancelCause(ctx)

	// Monitor the client's Disconnected() channel so an out-of-band drop
	// (armband powered down, out of range) flips the connection state.
	if monitored, ok := client.(interface{ Disconnected() <-chan struct{} }); ok {
		go t.monitorDisconnect(t.ctx, monitored.Disconnected())
	} else {
		t.logger.Debug("Client does not support Disconnected() channel")
	}

	t.logger.WithFields(logrus.Fields{
		"address":         t.address,
		"services":        len(profile.Services),
		"characteristics": total,
	}).Info("Myo device connected successfully")
	return nil
}

func (t *Transport) monitorDisconnect(ctx context.Context, disconnected <-chan struct{}) {
	select {
	case <-disconnected:
		if t.logger != nil {
			t.logger.Warn("Peripheral reported disconnection, cancelling connection context")
		}
		t.connMutex.Lock()
		t.isConnected = false
		cancel := t.cancel
		t.cancel = nil
		t.connMutex.Unlock()
		if cancel != nil {
			cancel(myo.ErrNotConnected)
		}
	case <-ctx.Done():
	}
}

// Disconnect tears the connection down. Safe to call repeatedly.
func (t *Transport) Disconnect() error {
	t.connMutex.Lock()
	if t.client == nil || !t.isConnected {
		t.connMutex.Unlock()
		if t.logger != nil {
			t.logger.Debug("Disconnect called but already disconnected")
		}
		return nil
	}

	client := t.client
	cancel := t.cancel
	t.client = nil
	t.cancel = nil
	t.isConnected = false
	t.connMutex.Unlock()

	if cancel != nil {
		cancel(nil)
	}

	var disconnectErr error
	if client != nil {
		disconnectErr = NormalizeError(client.CancelConnection())
	}

	if t.logger != nil {
		if disconnectErr != nil {
			t.logger.WithField("error", disconnectErr).Warn("Myo device disconnected with errors")
		} else {
			t.logger.Info("Myo device disconnected successfully")
		}
	}

	return disconnectErr
}

func (t *Transport) isConnectedInternal() bool {
	return t.client != nil && t.isConnected
}

// IsConnected reports the current transport state.
func (t *Transport) IsConnected() bool {
	t.connMutex.RLock()
	defer t.connMutex.RUnlock()
	return t.isConnectedInternal()
}

// snapshot returns the live client and the GATT handle for char, or an
// error when disconnected or the characteristic was never discovered.
func (t *Transport) snapshot(char protocol.Characteristic) (ble.Client, *ble.Characteristic, error) {
	t.connMutex.RLock()
	defer t.connMutex.RUnlock()

	if !t.isConnectedInternal() {
		return nil, nil, myo.ErrNotConnected
	}
	handle, ok := t.chars.Get(char.Normalized())
	if !ok {
		return nil, nil, &NotFoundError{UUID: string(char)}
	}
	return t.client, handle, nil
}

// Read reads the current value of a characteristic. The read runs on its
// own goroutine so the caller's context deadline is honored even when the
// underlying stack blocks.
func (t *Transport) Read(ctx context.Context, char protocol.Characteristic) ([]byte, error) {
	client, handle, err := t.snapshot(char)
	if err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultReadTimeout)
		defer cancel()
	}

	type readResult struct {
		data []byte
		err  error
	}
	resultCh := make(chan readResult, 1)

	go func() {
		data, err := client.ReadCharacteristic(handle)
		resultCh <- readResult{data: data, err: err}
	}()

	select {
	case result := <-resultCh:
		if result.err != nil {
			return nil, fmt.Errorf("failed to read characteristic %s: %w", char, NormalizeError(result.err))
		}
		return result.data, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("read of characteristic %s: %w", char, ctx.Err())
	}
}

// Write writes data to a characteristic. Writes are serialized; the Myo
// rejects interleaved command frames.
func (t *Transport) Write(ctx context.Context, char protocol.Characteristic, data []byte, withResponse bool) error {
	client, handle, err := t.snapshot(char)
	if err != nil {
		return err
	}

	t.writeMutex.Lock()
	defer t.writeMutex.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- client.WriteCharacteristic(handle, data, !withResponse)
	}()

	select {
	case err := <-resultCh:
		if err != nil {
			return fmt.Errorf("failed to write characteristic %s: %w", char, NormalizeError(err))
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("write of characteristic %s: %w", char, ctx.Err())
	}
}

// Subscribe registers fn for notifications on a characteristic. fn runs on
// the stack's delivery goroutine; it must copy data it retains.
func (t *Transport) Subscribe(char protocol.Characteristic, fn myo.NotifyFunc) error {
	client, handle, err := t.snapshot(char)
	if err != nil {
		return err
	}

	// Indications carry the classifier stream; everything else notifies.
	indicate := handle.Property&ble.CharNotify == 0 && handle.Property&ble.CharIndicate != 0

	if err := NormalizeError(client.Subscribe(handle, indicate, func(data []byte) {
		fn(data)
	})); err != nil {
		t.logger.WithFields(logrus.Fields{
			"charUUID": string(char),
			"error":    err,
		}).Error("Failed to subscribe to characteristic notifications")
		return fmt.Errorf("subscribe to characteristic %s: %w", char, err)
	}

	t.logger.WithField("charUUID", string(char)).Debug("Subscribed to characteristic notifications")
	return nil
}

// Unsubscribe stops notifications for a characteristic. Both notify and
// indicate registrations are attempted; failure of one is tolerated.
func (t *Transport) Unsubscribe(char protocol.Characteristic) error {
	client, handle, err := t.snapshot(char)
	if err != nil {
		return err
	}

	err1 := NormalizeError(client.Unsubscribe(handle, false)) // notify
	err2 := NormalizeError(client.Unsubscribe(handle, true))  // indicate

	if err1 != nil && err2 != nil {
		t.logger.WithFields(logrus.Fields{
			"charUUID":    string(char),
			"notifyErr":   err1,
			"indicateErr": err2,
		}).Error("Failed to unsubscribe from characteristic notifications")
		return fmt.Errorf("unsubscribe from characteristic %s: notify=%v, indicate=%v", char, err1, err2)
	}

	t.logger.WithField("charUUID", string(char)).Debug("Unsubscribed from characteristic notifications")
	return nil
}
