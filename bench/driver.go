package bench

import (
	"github.com/sarchlab/pixelverify/axis"
	"github.com/sarchlab/pixelverify/frame"
)

type feedInTask struct {
	beats []axis.Bus
	sent  int
}

func (t *feedInTask) isFinished() bool {
	return t.sent >= len(t.beats)
}

// Driver presents frames on the input port of a pipeline. A beat stays on
// the bus, unchanged, until the pipeline accepts it. The driver never looks
// at the output port.
type Driver struct {
	feedInTasks []*feedInTask
	throttle    ReadyPattern

	presenting bool
	current    axis.Bus
	accepted   bool

	beats  int
	stalls int
}

// NewDriver creates a driver. A nil throttle presents a new beat as soon as
// the previous one is accepted.
func NewDriver(throttle ReadyPattern) *Driver {
	return &Driver{throttle: throttle}
}

// FeedIn queues a frame.
func (d *Driver) FeedIn(f frame.Frame) {
	d.feedInTasks = append(d.feedInTasks, &feedInTask{beats: axis.Encode(f)})
}

// Drive returns what the driver puts on the bus in this cycle. The throttle
// can only delay the next beat. It never withdraws a beat that is already
// presented.
func (d *Driver) Drive(cycle uint64) axis.Bus {
	if !d.presenting {
		if len(d.feedInTasks) == 0 {
			return axis.Idle
		}

		if d.throttle != nil && !d.throttle.Ready(cycle) {
			return axis.Idle
		}

		task := d.feedInTasks[0]
		d.current = task.beats[task.sent]
		d.presenting = true
	}

	return d.current
}

// Sample records the ready wire as seen before the clock edge.
func (d *Driver) Sample(ready axis.Logic) {
	d.accepted = d.presenting && ready.IsHigh()

	if d.presenting && !d.accepted {
		d.stalls++
	}
}

// Advance moves to the next beat if the current one was accepted at the
// edge that just happened.
func (d *Driver) Advance() {
	if !d.accepted {
		return
	}

	d.accepted = false
	d.presenting = false
	d.beats++
	d.feedInTasks[0].sent++
	d.removeFinishedFeedInTasks()
}

func (d *Driver) removeFinishedFeedInTasks() {
	for i := len(d.feedInTasks) - 1; i >= 0; i-- {
		if d.feedInTasks[i].isFinished() {
			d.feedInTasks = append(
				d.feedInTasks[:i], d.feedInTasks[i+1:]...)
		}
	}
}

// Done tells whether every queued beat has been accepted.
func (d *Driver) Done() bool {
	return len(d.feedInTasks) == 0 && !d.presenting
}

// Beats is the number of accepted beats.
func (d *Driver) Beats() int {
	return d.beats
}

// Stalls is the number of cycles a presented beat was not accepted.
func (d *Driver) Stalls() int {
	return d.stalls
}
