package myo_test

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/srg/myolink/pkg/myo"
	"github.com/srg/myolink/pkg/protocol"
)

type RoutingTestSuite struct {
	suite.Suite
	link    *fakeLink
	session *myo.Session
}

func (suite *RoutingTestSuite) SetupTest() {
	suite.link = newFakeLink()
	suite.session = myo.NewSession(suite.link, nil)
	suite.Require().NoError(suite.session.Connect(context.Background()))
}

func TestRoutingTestSuite(t *testing.T) {
	suite.Run(t, new(RoutingTestSuite))
}

func (suite *RoutingTestSuite) TestEMGNotificationSplitsSamplePair() {
	var got [][2]protocol.EMGSample
	suite.session.Events().EMG.Register(func(samples [2]protocol.EMGSample) {
		got = append(got, samples)
	})

	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(int8(i))
	}
	// Each raw EMG channel routes to the same category.
	for _, char := range protocol.EMGChars {
		suite.Require().True(suite.link.notify(char, data))
	}

	suite.Require().Len(got, 4)
	suite.Assert().Equal(protocol.EMGSample{0, 1, 2, 3, 4, 5, 6, 7}, got[0][0])
	suite.Assert().Equal(protocol.EMGSample{8, 9, 10, 11, 12, 13, 14, 15}, got[0][1])
}

func (suite *RoutingTestSuite) TestIMUNotificationScaled() {
	var got protocol.IMUData
	suite.session.Events().IMU.Register(func(d protocol.IMUData) { got = d })

	raw := []int16{16384, 0, 0, 0, 2048, 0, 0, 16, 0, 0}
	data := make([]byte, 20)
	for i, v := range raw {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(v))
	}
	suite.Require().True(suite.link.notify(protocol.CharIMU, data))

	suite.Assert().Equal([4]float64{1, 0, 0, 0}, got.Orientation)
	suite.Assert().Equal([3]float64{1, 0, 0}, got.Accelerometer)
	suite.Assert().Equal([3]float64{1, 0, 0}, got.Gyroscope)
}

func (suite *RoutingTestSuite) TestClassifierNotificationsFanOutByVariant() {
	var poses []protocol.Pose
	var syncs []protocol.SyncEvent
	var locks []bool
	suite.session.Events().Pose.Register(func(p protocol.Pose) { poses = append(poses, p) })
	suite.session.Events().Sync.Register(func(s protocol.SyncEvent) { syncs = append(syncs, s) })
	suite.session.Events().Lock.Register(func(l bool) { locks = append(locks, l) })

	suite.link.notify(protocol.CharClassifier, []byte{0x03, 0x01, 0x00}) // pose: fist
	suite.link.notify(protocol.CharClassifier, []byte{0x06, 0x00, 0x00}) // sync failed
	suite.link.notify(protocol.CharClassifier, []byte{0x05, 0x00, 0x00}) // locked

	suite.Assert().Equal([]protocol.Pose{protocol.PoseFist}, poses)
	suite.Assert().Equal([]protocol.SyncEvent{{
		Arm:        protocol.ArmUnknown,
		XDirection: protocol.XDirectionUnknown,
		Result:     protocol.SyncFailedTooHard,
	}}, syncs)
	suite.Assert().Equal([]bool{true}, locks)
}

func (suite *RoutingTestSuite) TestMalformedFrameDispatchesNothing() {
	dispatched := 0
	suite.session.Events().Pose.Register(func(protocol.Pose) { dispatched++ })
	suite.session.Events().Sync.Register(func(protocol.SyncEvent) { dispatched++ })
	suite.session.Events().Lock.Register(func(bool) { dispatched++ })
	suite.session.Events().Tap.Register(func(protocol.Tap) { dispatched++ })

	suite.link.notify(protocol.CharClassifier, []byte{0x09, 0x00, 0x00}) // unknown event type
	suite.link.notify(protocol.CharClassifier, []byte{0x03})             // truncated
	suite.link.notify(protocol.CharMotion, []byte{0x01, 0x00, 0x00})    // unknown motion event

	suite.Assert().Zero(dispatched,
		"a protocol violation MUST NOT dispatch any event for that frame")

	// The session is unaffected: subsequent valid frames still dispatch.
	suite.link.notify(protocol.CharMotion, []byte{0x00, 0x01, 0x02})
	suite.Assert().Equal(1, dispatched)
}

func (suite *RoutingTestSuite) TestTapNotification() {
	var taps []protocol.Tap
	suite.session.Events().Tap.Register(func(t protocol.Tap) { taps = append(taps, t) })

	suite.link.notify(protocol.CharMotion, []byte{0x00, 0x02, 0x01})

	suite.Assert().Equal([]protocol.Tap{{Direction: 2, Count: 1}}, taps)
}

func (suite *RoutingTestSuite) TestWatchBatteryRoutesNotifications() {
	var levels []uint8
	suite.session.Events().Battery.Register(func(l uint8) { levels = append(levels, l) })

	suite.Assert().False(suite.link.notify(protocol.CharBattery, []byte{50}),
		"battery is not subscribed by default")

	suite.Require().NoError(suite.session.WatchBattery())
	suite.Require().NoError(suite.session.WatchBattery(), "watching twice is a no-op")
	suite.Require().True(suite.link.notify(protocol.CharBattery, []byte{42}))

	suite.Assert().Equal([]uint8{42}, levels)
}

func (suite *RoutingTestSuite) TestNotificationOrderPreservedPerCharacteristic() {
	var poses []protocol.Pose
	suite.session.Events().Pose.Register(func(p protocol.Pose) { poses = append(poses, p) })

	sequence := []protocol.Pose{
		protocol.PoseRest, protocol.PoseFist, protocol.PoseWaveIn,
		protocol.PoseWaveOut, protocol.PoseFingersSpread, protocol.PoseDoubleTap,
	}
	for _, p := range sequence {
		suite.link.notify(protocol.CharClassifier, []byte{0x03, byte(p), 0x00})
	}

	suite.Assert().Equal(sequence, poses,
		"frames MUST be dispatched in delivery order with no coalescing")
}
