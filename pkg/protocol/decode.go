package protocol

import "encoding/binary"

// Notification frame sizes.
const (
	emgFrameLen          = 16
	emgProcessedFrameLen = 17 // 8 values plus one padding byte
	imuFrameLen          = 20
	motionFrameLen       = 3
	classifierFrameLen   = 3 // event type plus 2 payload bytes, rest is padding
	infoFrameLen         = 20
	firmwareFrameLen     = 8
)

// IMU scaling divisors, per the firmware notes: orientation components are
// fixed-point with 16384 = 1.0, accelerometer with 2048 = 1 g, gyroscope
// with 16 = 1 deg/s.
const (
	orientationScale   = 16384.0
	accelerometerScale = 2048.0
	gyroscopeScale     = 16.0
)

// DecodeEMG decodes a raw EMG notification: 16 signed bytes holding two
// consecutive 8-channel samples. The device streams two samples per
// notification at twice the nominal rate.
func DecodeEMG(data []byte) ([2]EMGSample, error) {
	var out [2]EMGSample
	if len(data) != emgFrameLen {
		return out, badLength("emg", len(data), emgFrameLen)
	}
	for i := 0; i < 8; i++ {
		out[0][i] = int8(data[i])
		out[1][i] = int8(data[8+i])
	}
	return out, nil
}

// DecodeEMGProcessed decodes a processed EMG notification: 8 unsigned
// 16-bit values followed by one padding byte.
func DecodeEMGProcessed(data []byte) (EMGProcessedSample, error) {
	var out EMGProcessedSample
	if len(data) != emgProcessedFrameLen {
		return out, badLength("emg_processed", len(data), emgProcessedFrameLen)
	}
	for i := 0; i < 8; i++ {
		out[i] = binary.LittleEndian.Uint16(data[i*2:])
	}
	return out, nil
}

// DecodeIMU decodes an IMU notification: 10 signed 16-bit values
// (4 orientation, 3 accelerometer, 3 gyroscope), scaled to floats.
func DecodeIMU(data []byte) (IMUData, error) {
	var out IMUData
	if len(data) != imuFrameLen {
		return out, badLength("imu", len(data), imuFrameLen)
	}
	raw := make([]int16, 10)
	for i := range raw {
		raw[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	for i := 0; i < 4; i++ {
		out.Orientation[i] = float64(raw[i]) / orientationScale
	}
	for i := 0; i < 3; i++ {
		out.Accelerometer[i] = float64(raw[4+i]) / accelerometerScale
		out.Gyroscope[i] = float64(raw[7+i]) / gyroscopeScale
	}
	return out, nil
}

// DecodeMotion decodes a motion event notification. TAP is the only motion
// event the firmware defines; anything else is a protocol violation.
func DecodeMotion(data []byte) (Tap, error) {
	if len(data) != motionFrameLen {
		return Tap{}, badLength("motion", len(data), motionFrameLen)
	}
	if MotionEventType(data[0]) != MotionEventTap {
		return Tap{}, violationf("motion", "unknown event type 0x%02x", data[0])
	}
	return Tap{Direction: data[1], Count: data[2]}, nil
}

// DecodeClassifier decodes a classifier event notification into one of
// SyncEvent, PoseEvent or LockEvent. Bytes past the 2-byte payload are
// padding and ignored. An unknown event type byte is a protocol violation:
// it must never occur for a conforming firmware.
func DecodeClassifier(data []byte) (ClassifierEvent, error) {
	if len(data) < classifierFrameLen {
		return nil, badLength("classifier", len(data), classifierFrameLen)
	}
	payload := data[1:3]
	switch ClassifierEventType(data[0]) {
	case ClassifierEventArmSynced:
		return SyncEvent{Arm: Arm(payload[0]), XDirection: XDirection(payload[1])}, nil
	case ClassifierEventArmUnsynced:
		return SyncEvent{Arm: ArmUnknown, XDirection: XDirectionUnknown}, nil
	case ClassifierEventPose:
		return PoseEvent{Pose: Pose(binary.LittleEndian.Uint16(payload))}, nil
	case ClassifierEventUnlocked:
		return LockEvent{Locked: false}, nil
	case ClassifierEventLocked:
		return LockEvent{Locked: true}, nil
	case ClassifierEventSyncFailed:
		return SyncEvent{
			Arm:        ArmUnknown,
			XDirection: XDirectionUnknown,
			Result:     SyncFailedTooHard,
		}, nil
	}
	return nil, violationf("classifier", "unknown event type 0x%02x", data[0])
}

// DecodeBattery decodes a battery level notification or read: a single
// byte holding the charge percentage, passed through unscaled.
func DecodeBattery(data []byte) (uint8, error) {
	if len(data) != 1 {
		return 0, badLength("battery", len(data), 1)
	}
	return data[0], nil
}

// DecodeFirmwareInfo decodes the info characteristic value. The trailing
// 7 bytes are reserved and ignored.
func DecodeFirmwareInfo(data []byte) (FirmwareInfo, error) {
	var out FirmwareInfo
	if len(data) < infoFrameLen {
		return out, badLength("info", len(data), infoFrameLen)
	}
	copy(out.SerialNumber[:], data[:6])
	out.UnlockPose = Pose(binary.LittleEndian.Uint16(data[6:]))
	out.ActiveClassifierType = ClassifierModelType(data[8])
	out.ActiveClassifierIndex = data[9]
	out.HasCustomClassifier = data[10] != 0
	out.StreamIndicating = data[11] != 0
	out.SKU = SKU(data[12])
	return out, nil
}

// DecodeFirmwareVersion decodes the firmware version characteristic value:
// four unsigned 16-bit fields (major, minor, patch, hardware revision).
func DecodeFirmwareVersion(data []byte) (FirmwareVersion, error) {
	var out FirmwareVersion
	if len(data) != firmwareFrameLen {
		return out, badLength("firmware_version", len(data), firmwareFrameLen)
	}
	out.Major = binary.LittleEndian.Uint16(data[0:])
	out.Minor = binary.LittleEndian.Uint16(data[2:])
	out.Patch = binary.LittleEndian.Uint16(data[4:])
	out.HardwareRev = HardwareRev(binary.LittleEndian.Uint16(data[6:]))
	return out, nil
}
