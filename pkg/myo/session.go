package myo

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/srg/myolink/pkg/event"
	"github.com/srg/myolink/pkg/protocol"
)

// Options configures a Session.
type Options struct {
	// Logger receives structured session logs. Nil disables logging.
	Logger *logrus.Logger

	// FaultHandler receives panics recovered from event listeners. When
	// nil, faults are reported through Logger (if any).
	FaultHandler event.FaultHandler
}

// Session is one logical connection to a Myo armband. It owns the cached
// mode state and the event bus, and routes every inbound notification to
// registered listeners. Construct one per device connection with
// NewSession; a Session holds no process-wide state.
//
// Command and read methods may block in the Link call; decoding and
// dispatch are synchronous and non-blocking. Mode-changing operations are
// serialized internally so concurrent partial updates cannot clobber each
// other's merged fields.
type Session struct {
	link   Link
	bus    *event.Bus
	router *router
	logger *logrus.Logger

	modeMu sync.Mutex
	modes  modeState

	cacheMu  sync.Mutex
	info     *protocol.FirmwareInfo
	firmware *protocol.FirmwareVersion

	batteryMu      sync.Mutex
	batteryWatched bool
}

// NewSession creates a session over link. opts may be nil.
func NewSession(link Link, opts *Options) *Session {
	if opts == nil {
		opts = &Options{}
	}
	onFault := opts.FaultHandler
	if onFault == nil {
		onFault = event.LogFaults(opts.Logger)
	}

	bus := event.NewBus(onFault)
	return &Session{
		link:   link,
		bus:    bus,
		router: newRouter(bus, opts.Logger),
		logger: opts.Logger,
	}
}

// Events exposes the typed listener registries. Tokens returned by
// Register are valid for the session lifetime.
func (s *Session) Events() *event.Bus {
	return s.bus
}

// ----------------------------
// Connection lifecycle
// ----------------------------

// Connect establishes the link and every notification subscription the
// session depends on. If any subscription fails, the link is torn down
// again and the error returned; no partially subscribed session is ever
// exposed.
func (s *Session) Connect(ctx context.Context) error {
	if err := s.link.Connect(ctx); err != nil {
		return fmt.Errorf("link connect: %w", err)
	}

	for _, rt := range s.router.subscriptions() {
		if err := s.link.Subscribe(rt.char, rt.handler); err != nil {
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{
					"characteristic": rt.char,
					"error":          err,
				}).Error("Subscription failed, unwinding connection")
			}
			if dErr := s.link.Disconnect(); dErr != nil && s.logger != nil {
				s.logger.WithField("error", dErr).Warn("Disconnect after failed subscription also failed")
			}
			return fmt.Errorf("subscribe %s: %w", rt.char, err)
		}
	}

	if s.logger != nil {
		s.logger.Info("Session connected, notification subscriptions established")
	}
	return nil
}

// Disconnect tears the session down. Event registrations survive a
// disconnect; reconnecting resubscribes the same routes.
func (s *Session) Disconnect() error {
	for _, rt := range s.router.subscriptions() {
		if err := s.link.Unsubscribe(rt.char); err != nil && s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"characteristic": rt.char,
				"error":          err,
			}).Debug("Unsubscribe during disconnect failed")
		}
	}
	s.batteryMu.Lock()
	s.batteryWatched = false
	s.batteryMu.Unlock()

	return s.link.Disconnect()
}

// IsConnected reports the link state.
func (s *Session) IsConnected() bool {
	return s.link.IsConnected()
}

// ----------------------------
// Identity and status reads
// ----------------------------

// Name reads the device name.
func (s *Session) Name(ctx context.Context) (string, error) {
	data, err := s.link.Read(ctx, protocol.CharName)
	if err != nil {
		return "", fmt.Errorf("read name: %w", err)
	}
	return string(data), nil
}

// Battery reads the current battery level in percent.
func (s *Session) Battery(ctx context.Context) (uint8, error) {
	data, err := s.link.Read(ctx, protocol.CharBattery)
	if err != nil {
		return 0, fmt.Errorf("read battery: %w", err)
	}
	return protocol.DecodeBattery(data)
}

// Info reads firmware capability information. The first successful read
// is cached for the session lifetime.
func (s *Session) Info(ctx context.Context) (protocol.FirmwareInfo, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.info != nil {
		return *s.info, nil
	}
	data, err := s.link.Read(ctx, protocol.CharInfo)
	if err != nil {
		return protocol.FirmwareInfo{}, fmt.Errorf("read info: %w", err)
	}
	info, err := protocol.DecodeFirmwareInfo(data)
	if err != nil {
		return protocol.FirmwareInfo{}, err
	}
	s.info = &info
	return info, nil
}

// FirmwareVersion reads the firmware version. The first successful read
// is cached for the session lifetime.
func (s *Session) FirmwareVersion(ctx context.Context) (protocol.FirmwareVersion, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.firmware != nil {
		return *s.firmware, nil
	}
	data, err := s.link.Read(ctx, protocol.CharFirmware)
	if err != nil {
		return protocol.FirmwareVersion{}, fmt.Errorf("read firmware version: %w", err)
	}
	version, err := protocol.DecodeFirmwareVersion(data)
	if err != nil {
		return protocol.FirmwareVersion{}, err
	}
	s.firmware = &version
	return version, nil
}

// WatchBattery subscribes to battery level notifications, delivered to
// the Battery event category. Reconnecting requires watching again.
func (s *Session) WatchBattery() error {
	s.batteryMu.Lock()
	defer s.batteryMu.Unlock()

	if s.batteryWatched {
		return nil
	}
	if err := s.link.Subscribe(protocol.CharBattery, s.router.onBattery); err != nil {
		return fmt.Errorf("subscribe battery: %w", err)
	}
	s.batteryWatched = true
	return nil
}

// ----------------------------
// Mode state
// ----------------------------

// EMGMode returns the cached EMG mode.
func (s *Session) EMGMode() protocol.EmgMode {
	s.modeMu.Lock()
	defer s.modeMu.Unlock()
	return s.modes.emg
}

// IMUMode returns the cached IMU mode.
func (s *Session) IMUMode() protocol.ImuMode {
	s.modeMu.Lock()
	defer s.modeMu.Unlock()
	return s.modes.imu
}

// ClassifierMode returns the cached classifier mode.
func (s *Session) ClassifierMode() protocol.ClassifierMode {
	s.modeMu.Lock()
	defer s.modeMu.Unlock()
	return s.modes.classifier
}

// SleepMode returns the cached sleep mode.
func (s *Session) SleepMode() protocol.SleepMode {
	s.modeMu.Lock()
	defer s.modeMu.Unlock()
	return s.modes.sleep
}

// SetMode applies a partial mode change. Omitted modes keep their current
// cached value; the merged triple is sent as a single command because the
// firmware requires all three together. The cache is updated only after
// the device acknowledges the write.
//
// If the write is cancelled mid-flight the returned error wraps
// ErrModeUncertain: the device's actual state is unknown until the next
// SetMode, and the cache is left untouched rather than silently assumed.
func (s *Session) SetMode(ctx context.Context, opts ...ModeOption) error {
	var change modeChange
	for _, opt := range opts {
		opt(&change)
	}

	s.modeMu.Lock()
	defer s.modeMu.Unlock()

	cmd := s.modes.merged(change)
	frame, err := protocol.Encode(cmd)
	if err != nil {
		return err
	}
	if err := s.link.Write(ctx, protocol.CharCommand, frame, true); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: set mode cancelled mid-flight: %v", ErrModeUncertain, err)
		}
		return fmt.Errorf("write set mode: %w", err)
	}
	s.modes.commit(cmd)

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"emg":        cmd.EMG,
			"imu":        cmd.IMU,
			"classifier": cmd.Classifier,
		}).Debug("Mode combination acknowledged by device")
	}
	return nil
}

// SetSleepMode sets the device sleep mode. A request for the mode already
// cached is elided without touching the device; the device state cannot
// have drifted because sleep mode is only ever set through this session.
func (s *Session) SetSleepMode(ctx context.Context, mode protocol.SleepMode) error {
	s.modeMu.Lock()
	defer s.modeMu.Unlock()

	if mode == s.modes.sleep {
		return nil
	}
	frame, err := protocol.Encode(protocol.SetSleepMode{Mode: mode})
	if err != nil {
		return err
	}
	if err := s.link.Write(ctx, protocol.CharCommand, frame, true); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: set sleep mode cancelled mid-flight: %v", ErrModeUncertain, err)
		}
		return fmt.Errorf("write set sleep mode: %w", err)
	}
	s.modes.sleep = mode
	return nil
}

// ----------------------------
// Commands
// ----------------------------

// Vibrate triggers one of the fixed vibration patterns.
func (s *Session) Vibrate(ctx context.Context, t protocol.VibrationType) error {
	return s.send(ctx, protocol.Vibrate{Type: t})
}

// Vibrate2 plays a custom vibration pattern of up to six steps. More than
// six steps is rejected before any write happens.
func (s *Session) Vibrate2(ctx context.Context, steps ...protocol.VibrationStep) error {
	return s.send(ctx, protocol.Vibrate2{Steps: steps})
}

// DeepSleep puts the device into its USB-wakeable deep sleep. See
// protocol.DeepSleep for the warning; the session does not second-guess
// the caller.
func (s *Session) DeepSleep(ctx context.Context) error {
	return s.send(ctx, protocol.DeepSleep{})
}

// SetLEDColors sets the logo and status bar LED colors.
func (s *Session) SetLEDColors(ctx context.Context, logo, status protocol.RGB) error {
	return s.send(ctx, protocol.SetLEDColors{Logo: logo, Status: status})
}

// Unlock unlocks the device, or forces a re-lock with UnlockLock.
func (s *Session) Unlock(ctx context.Context, t protocol.UnlockType) error {
	return s.send(ctx, protocol.Unlock{Type: t})
}

// UserAction notifies the wearer that an action was recognized.
func (s *Session) UserAction(ctx context.Context, t protocol.UserActionType) error {
	return s.send(ctx, protocol.UserAction{Type: t})
}

func (s *Session) send(ctx context.Context, cmd protocol.Command) error {
	frame, err := protocol.Encode(cmd)
	if err != nil {
		return err
	}
	if err := s.link.Write(ctx, protocol.CharCommand, frame, true); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}
