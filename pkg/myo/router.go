package myo

import (
	"github.com/sirupsen/logrus"

	"github.com/srg/myolink/pkg/event"
	"github.com/srg/myolink/pkg/protocol"
)

// router holds the fixed mapping from characteristic to decoder and event
// category. Decoding happens synchronously on the link's delivery
// goroutine; a malformed frame is reported and dropped without reaching
// any listener or affecting the session.
type router struct {
	bus    *event.Bus
	logger *logrus.Logger
}

func newRouter(bus *event.Bus, logger *logrus.Logger) *router {
	return &router{bus: bus, logger: logger}
}

// route is one (characteristic, handler) pair. Connect subscribes the
// handlers in slice order so failures are deterministic to diagnose.
type route struct {
	char    protocol.Characteristic
	handler NotifyFunc
}

// subscriptions lists every characteristic a session listens on. All of
// them are established before Connect returns. The four raw EMG channels
// share one handler; the firmware spreads the stream across them.
func (r *router) subscriptions() []route {
	routes := []route{
		{protocol.CharIMU, r.onIMU},
		{protocol.CharMotion, r.onMotion},
		{protocol.CharClassifier, r.onClassifier},
		{protocol.CharEMGProcessed, r.onEMGProcessed},
	}
	for _, char := range protocol.EMGChars {
		routes = append(routes, route{char, r.onEMG})
	}
	return routes
}

func (r *router) onEMG(data []byte) {
	samples, err := protocol.DecodeEMG(data)
	if err != nil {
		r.drop(event.CategoryEMG, data, err)
		return
	}
	r.bus.EMG.Notify(samples)
}

func (r *router) onEMGProcessed(data []byte) {
	sample, err := protocol.DecodeEMGProcessed(data)
	if err != nil {
		r.drop(event.CategoryEMGProcessed, data, err)
		return
	}
	r.bus.EMGProcessed.Notify(sample)
}

func (r *router) onIMU(data []byte) {
	imu, err := protocol.DecodeIMU(data)
	if err != nil {
		r.drop(event.CategoryIMU, data, err)
		return
	}
	r.bus.IMU.Notify(imu)
}

func (r *router) onMotion(data []byte) {
	tap, err := protocol.DecodeMotion(data)
	if err != nil {
		r.drop(event.CategoryTap, data, err)
		return
	}
	r.bus.Tap.Notify(tap)
}

func (r *router) onClassifier(data []byte) {
	decoded, err := protocol.DecodeClassifier(data)
	if err != nil {
		r.drop(event.CategorySync, data, err)
		return
	}
	switch ev := decoded.(type) {
	case protocol.SyncEvent:
		r.bus.Sync.Notify(ev)
	case protocol.PoseEvent:
		r.bus.Pose.Notify(ev.Pose)
	case protocol.LockEvent:
		r.bus.Lock.Notify(ev.Locked)
	}
}

// onBattery handles battery level notifications for transports that
// deliver them; the battery characteristic supports notify on real
// hardware even though sessions do not subscribe to it by default.
func (r *router) onBattery(data []byte) {
	level, err := protocol.DecodeBattery(data)
	if err != nil {
		r.drop(event.CategoryBattery, data, err)
		return
	}
	r.bus.Battery.Notify(level)
}

// drop reports a protocol violation. Fatal to this frame only.
func (r *router) drop(category string, data []byte, err error) {
	if r.logger == nil {
		return
	}
	r.logger.WithFields(logrus.Fields{
		"category": category,
		"length":   len(data),
		"error":    err,
	}).Warn("Dropping malformed notification frame")
}
