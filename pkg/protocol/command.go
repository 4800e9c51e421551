package protocol

import "encoding/binary"

// Command opcodes as defined by the firmware.
const (
	opcodeSetMode      = 0x01
	opcodeVibrate      = 0x03
	opcodeDeepSleep    = 0x04
	opcodeSetLEDColors = 0x06
	opcodeVibrate2     = 0x07
	opcodeSetSleepMode = 0x09
	opcodeUnlock       = 0x0A
	opcodeUserAction   = 0x0B
)

// Vibrate2Steps is the fixed number of steps in a Vibrate2 frame.
// Shorter sequences are zero-filled; longer ones are rejected.
const Vibrate2Steps = 6

// Command is one outbound command frame. Implementations are immutable
// value types; Encode produces the wire bytes on demand.
type Command interface {
	// Validate checks all parameters against their legal value sets.
	// It returns an InvalidArgumentError before any bytes are produced.
	Validate() error

	opcode() byte
	payload() []byte
}

// payloadSizer is implemented by commands whose declared payload size on
// the wire differs from the number of payload bytes actually emitted.
type payloadSizer interface {
	payloadSize() byte
}

// Encode produces the exact wire frame for cmd: [opcode][payload-len][payload].
func Encode(cmd Command) ([]byte, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	payload := cmd.payload()
	size := byte(len(payload))
	if s, ok := cmd.(payloadSizer); ok {
		size = s.payloadSize()
	}
	frame := make([]byte, 0, 2+len(payload))
	frame = append(frame, cmd.opcode(), size)
	return append(frame, payload...), nil
}

// ----------------------------
// SetMode
// ----------------------------

// SetMode configures EMG, IMU and classifier modes. The firmware requires
// all three in a single frame; partial updates are merged by the session
// before this command is built.
type SetMode struct {
	EMG        EmgMode
	IMU        ImuMode
	Classifier ClassifierMode
}

func (c SetMode) Validate() error {
	if !c.EMG.valid() {
		return &InvalidArgumentError{Param: "emg_mode", Value: int(c.EMG), Limit: "0..3"}
	}
	if !c.IMU.valid() {
		return &InvalidArgumentError{Param: "imu_mode", Value: int(c.IMU), Limit: "0..4"}
	}
	if !c.Classifier.valid() {
		return &InvalidArgumentError{Param: "classifier_mode", Value: int(c.Classifier), Limit: "0..1"}
	}
	return nil
}

func (c SetMode) opcode() byte { return opcodeSetMode }

func (c SetMode) payload() []byte {
	return []byte{byte(c.EMG), byte(c.IMU), byte(c.Classifier)}
}

// ----------------------------
// Vibrate
// ----------------------------

// Vibrate triggers one of the fixed vibration patterns.
type Vibrate struct {
	Type VibrationType
}

func (c Vibrate) Validate() error {
	if !c.Type.valid() {
		return &InvalidArgumentError{Param: "vibration_type", Value: int(c.Type), Limit: "0..3"}
	}
	return nil
}

func (c Vibrate) opcode() byte    { return opcodeVibrate }
func (c Vibrate) payload() []byte { return []byte{byte(c.Type)} }

// ----------------------------
// DeepSleep
// ----------------------------

// DeepSleep puts the device into deep sleep with everything basically off.
// It can stay in that state for months; the only way to wake it back up is
// plugging it in via USB. Don't send this command lightly.
type DeepSleep struct{}

func (DeepSleep) Validate() error { return nil }
func (DeepSleep) opcode() byte    { return opcodeDeepSleep }
func (DeepSleep) payload() []byte { return nil }

// ----------------------------
// SetLEDColors
// ----------------------------

// RGB is a red/green/blue triple.
type RGB [3]uint8

// SetLEDColors sets the logo and status bar LED colors.
// Undocumented in the official API.
type SetLEDColors struct {
	Logo   RGB
	Status RGB
}

func (SetLEDColors) Validate() error { return nil }
func (c SetLEDColors) opcode() byte  { return opcodeSetLEDColors }

func (c SetLEDColors) payload() []byte {
	return []byte{c.Logo[0], c.Logo[1], c.Logo[2], c.Status[0], c.Status[1], c.Status[2]}
}

// ----------------------------
// Vibrate2
// ----------------------------

// VibrationStep is one step of an extended vibration pattern.
type VibrationStep struct {
	Duration uint16 // milliseconds
	Strength uint8  // 0 motor off, 255 full speed
}

// Vibrate2 plays a custom vibration pattern of up to Vibrate2Steps steps.
// Missing trailing steps are encoded as zero.
type Vibrate2 struct {
	Steps []VibrationStep
}

func (c Vibrate2) Validate() error {
	if len(c.Steps) > Vibrate2Steps {
		return &InvalidArgumentError{
			Param: "steps",
			Value: len(c.Steps),
			Limit: "at most 6 vibration steps",
		}
	}
	return nil
}

func (c Vibrate2) opcode() byte { return opcodeVibrate2 }

// The firmware declares the Vibrate2 payload as 20 bytes even though only
// 18 step bytes follow the header.
func (Vibrate2) payloadSize() byte { return 20 }

func (c Vibrate2) payload() []byte {
	payload := make([]byte, Vibrate2Steps*3)
	for i, step := range c.Steps {
		binary.LittleEndian.PutUint16(payload[i*3:], step.Duration)
		payload[i*3+2] = step.Strength
	}
	return payload
}

// ----------------------------
// SetSleepMode
// ----------------------------

// SetSleepMode configures when the device may go to sleep.
type SetSleepMode struct {
	Mode SleepMode
}

func (c SetSleepMode) Validate() error {
	if !c.Mode.valid() {
		return &InvalidArgumentError{Param: "sleep_mode", Value: int(c.Mode), Limit: "0..1"}
	}
	return nil
}

func (c SetSleepMode) opcode() byte    { return opcodeSetSleepMode }
func (c SetSleepMode) payload() []byte { return []byte{byte(c.Mode)} }

// ----------------------------
// Unlock
// ----------------------------

// Unlock unlocks the device. With UnlockLock it forces a re-lock instead.
type Unlock struct {
	Type UnlockType
}

func (c Unlock) Validate() error {
	if !c.Type.valid() {
		return &InvalidArgumentError{Param: "unlock_type", Value: int(c.Type), Limit: "0..2"}
	}
	return nil
}

func (c Unlock) opcode() byte    { return opcodeUnlock }
func (c Unlock) payload() []byte { return []byte{byte(c.Type)} }

// ----------------------------
// UserAction
// ----------------------------

// UserAction notifies the wearer that an action was recognized or confirmed.
// The zero value is the single defined action type.
type UserAction struct {
	Type UserActionType
}

func (c UserAction) Validate() error {
	if !c.Type.valid() {
		return &InvalidArgumentError{Param: "action_type", Value: int(c.Type), Limit: "only SINGLE (0)"}
	}
	return nil
}

func (c UserAction) opcode() byte    { return opcodeUserAction }
func (c UserAction) payload() []byte { return []byte{byte(c.Type)} }
