package protocol

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEMGSplitsTwoSamples(t *testing.T) {
	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(int8(i - 8)) // -8..7
	}

	samples, err := DecodeEMG(data)
	require.NoError(t, err)

	assert.Equal(t, EMGSample{-8, -7, -6, -5, -4, -3, -2, -1}, samples[0])
	assert.Equal(t, EMGSample{0, 1, 2, 3, 4, 5, 6, 7}, samples[1])
}

func TestDecodeEMGRejectsShortFrame(t *testing.T) {
	_, err := DecodeEMG(make([]byte, 15))
	assert.True(t, IsProtocolViolation(err))
}

func TestDecodeEMGProcessed(t *testing.T) {
	data := make([]byte, 17)
	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(1000+i))
	}
	data[16] = 0xFF // padding byte, ignored

	sample, err := DecodeEMGProcessed(data)
	require.NoError(t, err)
	assert.Equal(t, EMGProcessedSample{1000, 1001, 1002, 1003, 1004, 1005, 1006, 1007}, sample)
}

func TestDecodeIMUScaling(t *testing.T) {
	raw := []int16{16384, 0, 0, 0, 2048, 0, 0, 16, 0, 0}
	data := make([]byte, 20)
	for i, v := range raw {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(v))
	}

	imu, err := DecodeIMU(data)
	require.NoError(t, err)

	assert.Equal(t, [4]float64{1.0, 0, 0, 0}, imu.Orientation)
	assert.Equal(t, [3]float64{1.0, 0, 0}, imu.Accelerometer)
	assert.Equal(t, [3]float64{1.0, 0, 0}, imu.Gyroscope)
}

func TestDecodeIMUNegativeComponents(t *testing.T) {
	raw := []int16{-16384, 8192, 0, 0, -2048, 1024, 0, -32, 8, 0}
	data := make([]byte, 20)
	for i, v := range raw {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(v))
	}

	imu, err := DecodeIMU(data)
	require.NoError(t, err)

	assert.Equal(t, [4]float64{-1.0, 0.5, 0, 0}, imu.Orientation)
	assert.Equal(t, [3]float64{-1.0, 0.5, 0}, imu.Accelerometer)
	assert.Equal(t, [3]float64{-2.0, 0.5, 0}, imu.Gyroscope)
}

func TestDecodeMotionTap(t *testing.T) {
	tap, err := DecodeMotion([]byte{0x00, 0x02, 0x03})
	require.NoError(t, err)
	assert.Equal(t, Tap{Direction: 2, Count: 3}, tap)
}

func TestDecodeMotionUnknownEventType(t *testing.T) {
	_, err := DecodeMotion([]byte{0x01, 0x00, 0x00})
	assert.True(t, IsProtocolViolation(err))
}

func TestDecodeClassifier(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected ClassifierEvent
	}{
		{
			name:     "arm synced",
			data:     []byte{0x01, 0x01, 0x02},
			expected: SyncEvent{Arm: ArmRight, XDirection: XDirectionElbow},
		},
		{
			name:     "arm unsynced",
			data:     []byte{0x02, 0x00, 0x00},
			expected: SyncEvent{Arm: ArmUnknown, XDirection: XDirectionUnknown},
		},
		{
			name:     "pose fist",
			data:     []byte{0x03, 0x01, 0x00},
			expected: PoseEvent{Pose: PoseFist},
		},
		{
			name:     "pose is little-endian 16-bit",
			data:     []byte{0x03, 0xFF, 0xFF},
			expected: PoseEvent{Pose: PoseUnknown},
		},
		{
			name:     "unlocked",
			data:     []byte{0x04, 0x00, 0x00},
			expected: LockEvent{Locked: false},
		},
		{
			name:     "locked",
			data:     []byte{0x05, 0x00, 0x00},
			expected: LockEvent{Locked: true},
		},
		{
			name:     "sync failed",
			data:     []byte{0x06, 0x00, 0x00},
			expected: SyncEvent{Arm: ArmUnknown, XDirection: XDirectionUnknown, Result: SyncFailedTooHard},
		},
		{
			name:     "padding bytes ignored",
			data:     []byte{0x05, 0x00, 0x00, 0xAA, 0xBB},
			expected: LockEvent{Locked: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := DecodeClassifier(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, event)
		})
	}
}

func TestDecodeClassifierUnknownEventType(t *testing.T) {
	event, err := DecodeClassifier([]byte{0x09, 0x00, 0x00})
	assert.Nil(t, event, "no event may be produced for an unknown type byte")
	require.True(t, IsProtocolViolation(err))
	assert.Contains(t, err.Error(), "0x09")
}

func TestDecodeBattery(t *testing.T) {
	level, err := DecodeBattery([]byte{87})
	require.NoError(t, err)
	assert.Equal(t, uint8(87), level)

	_, err = DecodeBattery(nil)
	assert.True(t, IsProtocolViolation(err))
}

func TestDecodeFirmwareInfo(t *testing.T) {
	data := []byte{
		0xC0, 0xFF, 0xEE, 0x01, 0x02, 0x03, // serial number
		0x05, 0x00, // unlock pose: double tap
		0x01,                                     // custom classifier active
		0x02,                                     // classifier index
		0x01,                                     // has custom classifier
		0x00,                                     // not stream indicating
		0x01,                                     // black SKU
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // reserved
	}

	info, err := DecodeFirmwareInfo(data)
	require.NoError(t, err)

	assert.Equal(t, [6]byte{0xC0, 0xFF, 0xEE, 0x01, 0x02, 0x03}, info.SerialNumber)
	assert.Equal(t, PoseDoubleTap, info.UnlockPose)
	assert.Equal(t, ClassifierModelCustom, info.ActiveClassifierType)
	assert.Equal(t, uint8(2), info.ActiveClassifierIndex)
	assert.True(t, info.HasCustomClassifier)
	assert.False(t, info.StreamIndicating)
	assert.Equal(t, SKUBlack, info.SKU)
}

func TestDecodeFirmwareInfoRejectsTruncatedFrame(t *testing.T) {
	// 13 bytes carry every field, but the layout is 20 bytes with a
	// 7-byte reserved tail; anything shorter is malformed.
	_, err := DecodeFirmwareInfo(make([]byte, infoFrameLen-7))
	assert.True(t, IsProtocolViolation(err))
	assert.Contains(t, err.Error(), "20")
}

func TestDecodeFirmwareVersion(t *testing.T) {
	data := []byte{0x01, 0x00, 0x05, 0x00, 0xC2, 0x07, 0x02, 0x00}

	version, err := DecodeFirmwareVersion(data)
	require.NoError(t, err)

	assert.Equal(t, uint16(1), version.Major)
	assert.Equal(t, uint16(5), version.Minor)
	assert.Equal(t, uint16(1986), version.Patch)
	assert.Equal(t, HardwareRevD, version.HardwareRev)
	assert.Equal(t, "1.5.1986", version.String())
}

func TestCharacteristicNormalized(t *testing.T) {
	assert.Equal(t, "d5060401a904deb947482c7f4a124842", CharCommand.Normalized())
	assert.Equal(t, "00002a0000001000800000805f9b34fb", CharName.Normalized())
}
