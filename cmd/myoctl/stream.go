package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srg/myolink/pkg/config"
	"github.com/srg/myolink/pkg/event"
	"github.com/srg/myolink/pkg/myo"
	"github.com/srg/myolink/pkg/protocol"
	"github.com/srg/myolink/pkg/stream"
)

// streamCmd represents the stream command
var streamCmd = &cobra.Command{
	Use:   "stream [device-address]",
	Short: "Stream EMG, IMU and gesture events to the terminal",
	Long: `Configures the armband's stream modes and prints incoming data until
interrupted or the --duration elapses.

Examples:
  # Filtered EMG stream (default)
  myoctl stream de:ad:be:ef:00:01

  # Raw EMG plus IMU data for 10 seconds
  myoctl stream de:ad:be:ef:00:01 --emg raw --imu data --duration 10s

  # Gesture events only
  myoctl stream de:ad:be:ef:00:01 --emg off --poses

  # Keep the last 1s of raw EMG bytes for post-mortem inspection
  myoctl stream de:ad:be:ef:00:01 --emg raw --raw-window 3200`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStream,
}

var (
	streamEMGMode   string
	streamIMUMode   string
	streamPoses     bool
	streamDuration  time.Duration
	streamHex       bool
	streamRecord    uint32
	streamRawWindow int
)

func init() {
	streamCmd.Flags().StringVar(&streamEMGMode, "emg", "filtered", "EMG mode: off, processed, filtered, or raw")
	streamCmd.Flags().StringVar(&streamIMUMode, "imu", "off", "IMU mode: off, data, events, all, or raw")
	streamCmd.Flags().BoolVar(&streamPoses, "poses", false, "Enable the classifier and print gesture events")
	streamCmd.Flags().DurationVar(&streamDuration, "duration", 0, "Stop after this long (0 = run until Ctrl+C)")
	streamCmd.Flags().BoolVar(&streamHex, "hex", false, "Print EMG samples as hex instead of decimal")
	streamCmd.Flags().Uint32Var(&streamRecord, "record", 4096, "EMG frames to retain for the end-of-run summary")
	streamCmd.Flags().IntVar(&streamRawWindow, "raw-window", 0, "Raw EMG byte window to retain (0 = disabled)")
}

// parseEMGMode converts the CLI mode string to a protocol EMG mode.
func parseEMGMode(mode string) (protocol.EmgMode, error) {
	switch strings.ToLower(mode) {
	case "off", "none":
		return protocol.EmgModeNone, nil
	case "processed":
		return protocol.EmgModeProcessed, nil
	case "filtered":
		return protocol.EmgModeFiltered, nil
	case "raw":
		return protocol.EmgModeRaw, nil
	default:
		return 0, fmt.Errorf("invalid EMG mode %q: use off, processed, filtered, or raw", mode)
	}
}

// parseIMUMode converts the CLI mode string to a protocol IMU mode.
func parseIMUMode(mode string) (protocol.ImuMode, error) {
	switch strings.ToLower(mode) {
	case "off", "none":
		return protocol.ImuModeNone, nil
	case "data":
		return protocol.ImuModeData, nil
	case "events":
		return protocol.ImuModeEvents, nil
	case "all":
		return protocol.ImuModeAll, nil
	case "raw":
		return protocol.ImuModeRaw, nil
	default:
		return 0, fmt.Errorf("invalid IMU mode %q: use off, data, events, all, or raw", mode)
	}
}

// streamPrinter serializes terminal output across the per-category drain
// goroutines.
type streamPrinter struct {
	mu    sync.Mutex
	pose  *color.Color
	state *color.Color
}

func newStreamPrinter() *streamPrinter {
	return &streamPrinter{
		pose:  color.New(color.FgGreen),
		state: color.New(color.FgYellow),
	}
}

func (p *streamPrinter) emg(frame [2]protocol.EMGSample) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, sample := range frame {
		if streamHex {
			raw := make([]byte, len(sample))
			for i, v := range sample {
				raw[i] = byte(v)
			}
			fmt.Printf("emg  %s\n", hex.EncodeToString(raw))
			continue
		}
		parts := make([]string, len(sample))
		for i, v := range sample {
			parts[i] = fmt.Sprintf("%4d", v)
		}
		fmt.Printf("emg  %s\n", strings.Join(parts, " "))
	}
}

func (p *streamPrinter) emgProcessed(sample protocol.EMGProcessedSample) {
	p.mu.Lock()
	defer p.mu.Unlock()
	parts := make([]string, len(sample))
	for i, v := range sample {
		parts[i] = fmt.Sprintf("%5d", v)
	}
	fmt.Printf("emg  %s\n", strings.Join(parts, " "))
}

func (p *streamPrinter) imu(data protocol.IMUData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Printf("imu  quat[%+.3f %+.3f %+.3f %+.3f] acc[%+.2f %+.2f %+.2f] gyro[%+7.1f %+7.1f %+7.1f]\n",
		data.Orientation[0], data.Orientation[1], data.Orientation[2], data.Orientation[3],
		data.Accelerometer[0], data.Accelerometer[1], data.Accelerometer[2],
		data.Gyroscope[0], data.Gyroscope[1], data.Gyroscope[2])
}

func (p *streamPrinter) tap(t protocol.Tap) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Printf("tap  direction=%d count=%d\n", t.Direction, t.Count)
}

func (p *streamPrinter) poseEvent(pose protocol.Pose) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pose.Printf("pose %s\n", pose)
}

func (p *streamPrinter) sync(e protocol.SyncEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e.Arm == protocol.ArmUnknown {
		if e.Result != protocol.SyncResultNone {
			p.state.Println("sync failed (gesture too hard)")
		} else {
			p.state.Println("arm  unsynced")
		}
		return
	}
	p.state.Printf("arm  %s, x toward %s\n", e.Arm, e.XDirection)
}

func (p *streamPrinter) lock(locked bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if locked {
		p.state.Println("lock locked")
	} else {
		p.state.Println("lock unlocked")
	}
}

func runStream(cmd *cobra.Command, args []string) error {
	emgMode, err := parseEMGMode(streamEMGMode)
	if err != nil {
		return err
	}
	imuMode, err := parseIMUMode(streamIMUMode)
	if err != nil {
		return err
	}
	classifierMode := protocol.ClassifierDisabled
	if streamPoses {
		classifierMode = protocol.ClassifierEnabled
	}
	if emgMode == protocol.EmgModeNone && imuMode == protocol.ImuModeNone && !streamPoses {
		return fmt.Errorf("nothing to stream: enable --emg, --imu, or --poses")
	}

	return withSession(cmd, args, func(ctx context.Context, sess *myo.Session, cfg *config.Config) error {
		if streamDuration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, streamDuration)
			defer cancel()
		}

		// Keep the device awake for the whole run, restore on exit.
		if err := sess.SetSleepMode(ctx, protocol.SleepModeNeverSleep); err != nil {
			return fmt.Errorf("failed to disable sleep: %w", err)
		}
		defer func() {
			restoreCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = sess.SetSleepMode(restoreCtx, protocol.SleepModeNormal)
		}()

		if err := sess.SetMode(ctx,
			myo.WithEMGMode(emgMode),
			myo.WithIMUMode(imuMode),
			myo.WithClassifierMode(classifierMode),
		); err != nil {
			return fmt.Errorf("failed to set stream modes: %w", err)
		}

		if streamPoses {
			if err := sess.Unlock(ctx, protocol.UnlockHold); err != nil {
				return fmt.Errorf("failed to unlock: %w", err)
			}
		}

		printer := newStreamPrinter()
		bus := sess.Events()

		// EMG arrives at 200 frames/s; buffer it so a stalled terminal
		// drops frames instead of stalling the delivery goroutine.
		var emgBuf *event.Buffered[[2]protocol.EMGSample]
		var emgBufToken event.Token
		var recorder *stream.Recorder
		if emgMode == protocol.EmgModeFiltered || emgMode == protocol.EmgModeRaw {
			recorder, err = stream.NewRecorder(streamRecord, streamRawWindow)
			if err != nil {
				return err
			}
			bus.EMG.Register(recorder.Listener())

			emgBuf = event.NewBuffered(cfg.EMGBuffer, printer.emg)
			emgBufToken = bus.EMG.Register(emgBuf.Listener())
		}
		if emgMode == protocol.EmgModeProcessed {
			bus.EMGProcessed.Register(printer.emgProcessed)
		}
		if imuMode == protocol.ImuModeData || imuMode == protocol.ImuModeAll || imuMode == protocol.ImuModeRaw {
			bus.IMU.Register(printer.imu)
		}
		if imuMode == protocol.ImuModeEvents || imuMode == protocol.ImuModeAll {
			bus.Tap.Register(printer.tap)
		}
		if streamPoses {
			bus.Pose.Register(printer.poseEvent)
			bus.Sync.Register(printer.sync)
			bus.Lock.Register(printer.lock)
		}

		fmt.Fprintln(os.Stderr, "Streaming. Press Ctrl+C to stop...")
		<-ctx.Done()
		if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if emgBuf != nil {
			// Notifications may still arrive until the session tears down;
			// stop feeding the buffer before closing its channel.
			bus.EMG.Unregister(emgBufToken)
			emgBuf.Close()
		}
		if recorder != nil {
			printStreamSummary(recorder, emgBuf)
		}
		return nil
	})
}

// printStreamSummary reports capture counters and the retained raw window.
func printStreamSummary(recorder *stream.Recorder, emgBuf *event.Buffered[[2]protocol.EMGSample]) {
	metrics := recorder.Metrics()
	fmt.Fprintf(os.Stderr, "Captured %d EMG frames (%d overwritten)", metrics.Recorded, metrics.Overwritten)
	if emgBuf != nil && emgBuf.Dropped() > 0 {
		fmt.Fprintf(os.Stderr, ", %d frames dropped on output", emgBuf.Dropped())
	}
	fmt.Fprintln(os.Stderr)

	if streamRawWindow > 0 {
		window := recorder.RawWindow()
		fmt.Fprintf(os.Stderr, "Raw EMG window (%d bytes):\n", len(window))
		fmt.Println(hex.EncodeToString(window))
	}
}
