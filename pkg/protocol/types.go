// Package protocol implements the Myo armband wire protocol: command frame
// encoding, notification frame decoding, and the enumerations and
// characteristic identifiers shared by both.
//
// The package is pure: no I/O, no transport assumptions. Callers feed it
// bytes from whatever link they use and get typed values back.
package protocol

import "fmt"

// ----------------------------
// Modes
// ----------------------------

// EmgMode controls EMG data streaming.
type EmgMode uint8

const (
	// EmgModeNone disables EMG data.
	EmgModeNone EmgMode = 0x00
	// EmgModeProcessed sends 50 Hz rectified and smoothed activation values.
	// Undocumented in the official firmware notes.
	EmgModeProcessed EmgMode = 0x01
	// EmgModeFiltered sends filtered EMG data.
	EmgModeFiltered EmgMode = 0x02
	// EmgModeRaw sends raw unfiltered EMG data.
	EmgModeRaw EmgMode = 0x03
)

func (m EmgMode) valid() bool { return m <= EmgModeRaw }

// ImuMode controls IMU data and motion event streaming.
type ImuMode uint8

const (
	ImuModeNone   ImuMode = 0x00 // no IMU data or events
	ImuModeData   ImuMode = 0x01 // orientation, accelerometer, gyroscope streams
	ImuModeEvents ImuMode = 0x02 // motion events only (e.g. taps)
	ImuModeAll    ImuMode = 0x03 // data streams and motion events
	ImuModeRaw    ImuMode = 0x04 // raw IMU data streams
)

func (m ImuMode) valid() bool { return m <= ImuModeRaw }

// ClassifierMode enables or disables the onboard pose classifier.
type ClassifierMode uint8

const (
	// ClassifierDisabled disables and resets the internal classifier state.
	ClassifierDisabled ClassifierMode = 0x00
	// ClassifierEnabled sends classifier events (poses and arm events).
	ClassifierEnabled ClassifierMode = 0x01
)

func (m ClassifierMode) valid() bool { return m <= ClassifierEnabled }

// SleepMode controls when the device goes to sleep.
type SleepMode uint8

const (
	SleepModeNormal     SleepMode = 0x00 // sleep after a period of inactivity
	SleepModeNeverSleep SleepMode = 0x01
)

func (m SleepMode) valid() bool { return m <= SleepModeNeverSleep }

// ----------------------------
// Command parameters
// ----------------------------

// VibrationType selects one of the fixed-length vibration patterns.
type VibrationType uint8

const (
	VibrationNone   VibrationType = 0x00
	VibrationShort  VibrationType = 0x01
	VibrationMedium VibrationType = 0x02
	VibrationLong   VibrationType = 0x03
)

func (v VibrationType) valid() bool { return v <= VibrationLong }

// UnlockType selects how the device unlocks (or re-locks).
type UnlockType uint8

const (
	UnlockLock  UnlockType = 0x00 // re-lock immediately
	UnlockTimed UnlockType = 0x01 // unlock now, re-lock after a fixed timeout
	UnlockHold  UnlockType = 0x02 // unlock until an explicit lock command
)

func (u UnlockType) valid() bool { return u <= UnlockHold }

// UserActionType identifies the user action being confirmed.
type UserActionType uint8

// UserActionSingle is a single discrete action, such as pausing a video.
// It is the only action type the firmware defines.
const UserActionSingle UserActionType = 0x00

func (u UserActionType) valid() bool { return u == UserActionSingle }

// ----------------------------
// Classifier values
// ----------------------------

// Pose is a hand pose recognized by the onboard classifier.
type Pose uint16

const (
	PoseRest          Pose = 0x0000
	PoseFist          Pose = 0x0001
	PoseWaveIn        Pose = 0x0002
	PoseWaveOut       Pose = 0x0003
	PoseFingersSpread Pose = 0x0004
	PoseDoubleTap     Pose = 0x0005
	PoseUnknown       Pose = 0xFFFF
)

func (p Pose) String() string {
	switch p {
	case PoseRest:
		return "rest"
	case PoseFist:
		return "fist"
	case PoseWaveIn:
		return "wave_in"
	case PoseWaveOut:
		return "wave_out"
	case PoseFingersSpread:
		return "fingers_spread"
	case PoseDoubleTap:
		return "double_tap"
	case PoseUnknown:
		return "unknown"
	}
	return fmt.Sprintf("pose(0x%04x)", uint16(p))
}

// Arm identifies which arm the device is worn on.
type Arm uint8

const (
	ArmRight   Arm = 0x01
	ArmLeft    Arm = 0x02
	ArmUnknown Arm = 0xFF
)

func (a Arm) String() string {
	switch a {
	case ArmRight:
		return "right"
	case ArmLeft:
		return "left"
	}
	return "unknown"
}

// XDirection is the direction of the device's +x axis relative to the
// wearer's arm.
type XDirection uint8

const (
	XDirectionWrist   XDirection = 0x01
	XDirectionElbow   XDirection = 0x02
	XDirectionUnknown XDirection = 0xFF
)

func (x XDirection) String() string {
	switch x {
	case XDirectionWrist:
		return "toward_wrist"
	case XDirectionElbow:
		return "toward_elbow"
	}
	return "unknown"
}

// SyncResult is the outcome of a failed sync gesture attempt.
type SyncResult uint8

const (
	// SyncResultNone means the sync notification did not carry a failure.
	SyncResultNone SyncResult = 0x00
	// SyncFailedTooHard means the sync gesture was performed too hard.
	SyncFailedTooHard SyncResult = 0x01
)

// ClassifierModelType distinguishes built-in from user-trained classifiers.
type ClassifierModelType uint8

const (
	ClassifierModelBuiltin ClassifierModelType = 0x00
	ClassifierModelCustom  ClassifierModelType = 0x01
)

// MotionEventType tags motion notification frames. TAP is the only event
// the firmware defines.
type MotionEventType uint8

const MotionEventTap MotionEventType = 0x00

// ClassifierEventType tags classifier notification frames.
type ClassifierEventType uint8

const (
	ClassifierEventArmSynced   ClassifierEventType = 0x01
	ClassifierEventArmUnsynced ClassifierEventType = 0x02
	ClassifierEventPose        ClassifierEventType = 0x03
	ClassifierEventUnlocked    ClassifierEventType = 0x04
	ClassifierEventLocked      ClassifierEventType = 0x05
	ClassifierEventSyncFailed  ClassifierEventType = 0x06
)

// ----------------------------
// Device identity
// ----------------------------

// SKU identifies the device variant. Old firmwares report SKUUnknown.
type SKU uint8

const (
	SKUUnknown SKU = 0x00
	SKUBlack   SKU = 0x01
	SKUWhite   SKU = 0x02
)

// HardwareRev identifies the hardware revision.
type HardwareRev uint16

const (
	HardwareRevUnknown HardwareRev = 0x0000
	HardwareRevC       HardwareRev = 0x0001 // Myo Alpha
	HardwareRevD       HardwareRev = 0x0002
)

// FirmwareInfo describes firmware capabilities and classifier state.
// Read once per session from the info characteristic.
type FirmwareInfo struct {
	SerialNumber          [6]byte
	UnlockPose            Pose
	ActiveClassifierType  ClassifierModelType
	ActiveClassifierIndex uint8
	HasCustomClassifier   bool
	StreamIndicating      bool // device streams via BLE indicates for reliable capture
	SKU                   SKU
}

// FirmwareVersion is the firmware version quadruple. Minor is incremented
// for changes in the BLE interface, Patch for firmware-only changes.
type FirmwareVersion struct {
	Major       uint16
	Minor       uint16
	Patch       uint16
	HardwareRev HardwareRev
}

func (v FirmwareVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ----------------------------
// Decoded notification payloads
// ----------------------------

// EMGSample holds one 8-channel EMG reading, one signed value per sensor pod.
type EMGSample [8]int8

// EMGProcessedSample holds one 8-channel rectified/smoothed EMG reading.
type EMGProcessedSample [8]uint16

// IMUData is one inertial measurement frame, scaled to natural units.
type IMUData struct {
	Orientation   [4]float64 // unit quaternion (w, x, y, z)
	Accelerometer [3]float64 // g
	Gyroscope     [3]float64 // deg/s
}

// Tap is a motion event raised when the wearer taps the device.
type Tap struct {
	Direction uint8
	Count     uint8
}

// ClassifierEvent is implemented by the decoded classifier notification
// variants: SyncEvent, PoseEvent and LockEvent.
type ClassifierEvent interface {
	classifierEvent()
}

// SyncEvent reports a change in arm sync state.
type SyncEvent struct {
	Arm        Arm
	XDirection XDirection
	Result     SyncResult // SyncResultNone unless the sync gesture failed
}

// PoseEvent reports a recognized pose.
type PoseEvent struct {
	Pose Pose
}

// LockEvent reports a lock state change.
type LockEvent struct {
	Locked bool
}

func (SyncEvent) classifierEvent() {}
func (PoseEvent) classifierEvent() {}
func (LockEvent) classifierEvent() {}
