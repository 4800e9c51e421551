// Package stream provides capture helpers for the high-rate EMG stream:
// a bounded frame recorder with overwrite-oldest semantics and a sliding
// raw-byte window for pre-trigger dumps (e.g. "save the last two seconds
// when a pose fires").
package stream

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hedzr/go-ringbuf/v2/mpmc"
	"github.com/smallnest/ringbuffer"

	"github.com/srg/myolink/pkg/protocol"
)

// MaxFrameCapacity guards against accidental misconfiguration.
const MaxFrameCapacity uint32 = 1 << 20

// Frame is one recorded EMG notification: two consecutive 8-channel
// samples plus the arrival timestamp.
type Frame struct {
	TsUs    int64
	Samples [2]protocol.EMGSample
}

// Metrics is a snapshot of recorder counters.
type Metrics struct {
	Recorded    int64 // frames accepted
	Overwritten int64 // frames lost to ring overflow
	RawDropped  int64 // raw bytes evicted from the sliding window
}

// Recorder keeps the most recent EMG activity in two forms: a lock-free
// ring of decoded frames for analysis, and a sliding byte window holding
// the same samples in wire order for raw dumps. Both overwrite oldest
// data when full, so a recorder can be left attached indefinitely.
//
// The listener is safe to register directly on the EMG event category;
// it never blocks.
type Recorder struct {
	frames mpmc.RichOverlappedRingBuffer[Frame]

	rawMu sync.Mutex
	raw   *ringbuffer.RingBuffer

	recorded    atomic.Int64
	overwritten atomic.Int64
	rawDropped  atomic.Int64
}

// NewRecorder creates a recorder holding up to frameCapacity decoded
// frames and rawWindow bytes of pre-trigger stream data. rawWindow of 0
// disables raw capture.
func NewRecorder(frameCapacity uint32, rawWindow int) (*Recorder, error) {
	if frameCapacity == 0 {
		return nil, fmt.Errorf("frame capacity must be > 0")
	}
	if frameCapacity > MaxFrameCapacity {
		return nil, fmt.Errorf("frame capacity %d exceeds maximum %d", frameCapacity, MaxFrameCapacity)
	}

	r := &Recorder{
		frames: mpmc.NewOverlappedRingBuffer[Frame](frameCapacity),
	}
	if rawWindow > 0 {
		r.raw = ringbuffer.New(rawWindow)
	}
	return r, nil
}

// Listener returns the function to register on the EMG event category.
func (r *Recorder) Listener() func([2]protocol.EMGSample) {
	return func(samples [2]protocol.EMGSample) {
		frame := Frame{TsUs: time.Now().UnixMicro(), Samples: samples}
		if overwrites, err := r.frames.EnqueueM(frame); err == nil {
			r.recorded.Add(1)
			r.overwritten.Add(int64(overwrites))
		}
		r.appendRaw(samples)
	}
}

// appendRaw writes the samples into the sliding byte window in wire
// order, evicting the oldest bytes when the window is full.
func (r *Recorder) appendRaw(samples [2]protocol.EMGSample) {
	if r.raw == nil {
		return
	}
	var wire [16]byte
	for i := 0; i < 8; i++ {
		wire[i] = byte(samples[0][i])
		wire[8+i] = byte(samples[1][i])
	}

	r.rawMu.Lock()
	defer r.rawMu.Unlock()

	if free := r.raw.Free(); free < len(wire) {
		var evict [16]byte
		n, _ := r.raw.Read(evict[:len(wire)-free])
		r.rawDropped.Add(int64(n))
	}
	r.raw.Write(wire[:]) //nolint:errcheck // space was just made
}

// Drain removes and returns all recorded frames, oldest first.
func (r *Recorder) Drain() []Frame {
	var out []Frame
	for !r.frames.IsEmpty() {
		frame, err := r.frames.Dequeue()
		if err != nil {
			break
		}
		out = append(out, frame)
	}
	return out
}

// RawWindow removes and returns the buffered raw bytes, oldest first.
// Returns nil when raw capture is disabled or empty.
func (r *Recorder) RawWindow() []byte {
	if r.raw == nil {
		return nil
	}
	r.rawMu.Lock()
	defer r.rawMu.Unlock()

	n := r.raw.Length()
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	read, _ := r.raw.Read(out)
	return out[:read]
}

// Metrics returns a snapshot of the recorder counters.
func (r *Recorder) Metrics() Metrics {
	return Metrics{
		Recorded:    r.recorded.Load(),
		Overwritten: r.overwritten.Load(),
		RawDropped:  r.rawDropped.Load(),
	}
}
