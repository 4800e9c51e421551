package myo

import "github.com/srg/myolink/pkg/protocol"

// modeState caches the last mode combination successfully acknowledged by
// the device. Owned by the Session; all access is serialized by the
// session's mode mutex.
type modeState struct {
	emg        protocol.EmgMode
	imu        protocol.ImuMode
	classifier protocol.ClassifierMode
	sleep      protocol.SleepMode
}

// merged builds the full SetMode frame for a partial request. The firmware
// requires all three modes in a single command, so omitted fields carry
// the current cached value.
func (s *modeState) merged(change modeChange) protocol.SetMode {
	cmd := protocol.SetMode{EMG: s.emg, IMU: s.imu, Classifier: s.classifier}
	if change.emg != nil {
		cmd.EMG = *change.emg
	}
	if change.imu != nil {
		cmd.IMU = *change.imu
	}
	if change.classifier != nil {
		cmd.Classifier = *change.classifier
	}
	return cmd
}

// commit records a mode triple the device has acknowledged.
func (s *modeState) commit(cmd protocol.SetMode) {
	s.emg = cmd.EMG
	s.imu = cmd.IMU
	s.classifier = cmd.Classifier
}

type modeChange struct {
	emg        *protocol.EmgMode
	imu        *protocol.ImuMode
	classifier *protocol.ClassifierMode
}

// ModeOption selects one field of a partial mode-change request.
type ModeOption func(*modeChange)

// WithEMGMode requests a new EMG mode, keeping the other modes unchanged.
func WithEMGMode(m protocol.EmgMode) ModeOption {
	return func(c *modeChange) { c.emg = &m }
}

// WithIMUMode requests a new IMU mode, keeping the other modes unchanged.
func WithIMUMode(m protocol.ImuMode) ModeOption {
	return func(c *modeChange) { c.imu = &m }
}

// WithClassifierMode requests a new classifier mode, keeping the other
// modes unchanged.
func WithClassifierMode(m protocol.ClassifierMode) ModeOption {
	return func(c *modeChange) { c.classifier = &m }
}
