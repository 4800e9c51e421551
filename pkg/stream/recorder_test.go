package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/myolink/pkg/protocol"
)

func sampleFrame(seed int8) [2]protocol.EMGSample {
	var samples [2]protocol.EMGSample
	for i := 0; i < 8; i++ {
		samples[0][i] = seed
		samples[1][i] = -seed
	}
	return samples
}

func TestRecorderValidation(t *testing.T) {
	_, err := NewRecorder(0, 0)
	assert.Error(t, err, "zero frame capacity is rejected")

	_, err = NewRecorder(MaxFrameCapacity+1, 0)
	assert.Error(t, err)
}

func TestRecorderDrainPreservesOrder(t *testing.T) {
	r, err := NewRecorder(64, 0)
	require.NoError(t, err)

	listener := r.Listener()
	for i := int8(1); i <= 5; i++ {
		listener(sampleFrame(i))
	}

	frames := r.Drain()
	require.Len(t, frames, 5)
	for i, frame := range frames {
		assert.Equal(t, sampleFrame(int8(i+1)), frame.Samples, "frames drain oldest first")
	}
	assert.Empty(t, r.Drain(), "drain consumes the buffer")
	assert.Equal(t, int64(5), r.Metrics().Recorded)
}

func TestRecorderOverwritesOldestWhenFull(t *testing.T) {
	r, err := NewRecorder(8, 0)
	require.NoError(t, err)

	listener := r.Listener()
	for i := 1; i <= 100; i++ {
		listener(sampleFrame(int8(i)))
	}

	frames := r.Drain()
	require.NotEmpty(t, frames)
	assert.Less(t, len(frames), 100, "older frames are discarded, not accumulated")
	assert.Equal(t, sampleFrame(100), frames[len(frames)-1].Samples,
		"the newest frame always survives")
	assert.Greater(t, r.Metrics().Overwritten, int64(0))
}

func TestRecorderRawWindowKeepsNewestBytes(t *testing.T) {
	r, err := NewRecorder(8, 32)
	require.NoError(t, err)

	listener := r.Listener()
	for i := int8(1); i <= 4; i++ {
		listener(sampleFrame(i)) // 16 wire bytes per frame
	}

	window := r.RawWindow()
	require.Len(t, window, 32, "window holds exactly the configured byte count")

	// The surviving bytes are frames 3 and 4 in wire order.
	for i := 0; i < 8; i++ {
		assert.Equal(t, byte(3), window[i])
		assert.Equal(t, byte(0xFD), window[8+i]) // -3 as a wire byte
		assert.Equal(t, byte(4), window[16+i])
		assert.Equal(t, byte(0xFC), window[24+i]) // -4 as a wire byte
	}
	assert.Equal(t, int64(32), r.Metrics().RawDropped)
	assert.Nil(t, r.RawWindow(), "the window drains on read")
}

func TestRecorderRawCaptureDisabled(t *testing.T) {
	r, err := NewRecorder(8, 0)
	require.NoError(t, err)

	r.Listener()(sampleFrame(1))

	assert.Nil(t, r.RawWindow())
	assert.Len(t, r.Drain(), 1, "frame recording still works without a raw window")
}
