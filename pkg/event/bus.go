package event

import "github.com/srg/myolink/pkg/protocol"

// Category names used in fault reports.
const (
	CategoryEMG          = "emg"
	CategoryEMGProcessed = "emg_processed"
	CategoryIMU          = "imu"
	CategoryTap          = "tap"
	CategorySync         = "sync"
	CategoryPose         = "pose"
	CategoryLock         = "lock"
	CategoryBattery      = "battery"
)

// Bus holds one typed registry per notification category. The set of
// categories is fixed at construction; payload types mirror the decoded
// notification layouts.
type Bus struct {
	EMG          *Event[[2]protocol.EMGSample]
	EMGProcessed *Event[protocol.EMGProcessedSample]
	IMU          *Event[protocol.IMUData]
	Tap          *Event[protocol.Tap]
	Sync         *Event[protocol.SyncEvent]
	Pose         *Event[protocol.Pose]
	Lock         *Event[bool]
	Battery      *Event[uint8]
}

// NewBus creates a bus with all categories sharing one fault handler.
// onFault may be nil.
func NewBus(onFault FaultHandler) *Bus {
	return &Bus{
		EMG:          NewEvent[[2]protocol.EMGSample](CategoryEMG, onFault),
		EMGProcessed: NewEvent[protocol.EMGProcessedSample](CategoryEMGProcessed, onFault),
		IMU:          NewEvent[protocol.IMUData](CategoryIMU, onFault),
		Tap:          NewEvent[protocol.Tap](CategoryTap, onFault),
		Sync:         NewEvent[protocol.SyncEvent](CategorySync, onFault),
		Pose:         NewEvent[protocol.Pose](CategoryPose, onFault),
		Lock:         NewEvent[bool](CategoryLock, onFault),
		Battery:      NewEvent[uint8](CategoryBattery, onFault),
	}
}
