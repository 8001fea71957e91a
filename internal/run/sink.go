package run

import "runoj/internal/run/model"

// SnapshotSink receives every snapshot a run emits, in emission order.
// OnSnapshot is called synchronously from the run's own goroutine, so
// implementations must not block for long; anything slow should hand
// off internally.
type SnapshotSink interface {
	OnSnapshot(snap model.Snapshot)
}

// SinkFunc adapts a function to the SnapshotSink interface.
type SinkFunc func(snap model.Snapshot)

func (f SinkFunc) OnSnapshot(snap model.Snapshot) {
	f(snap)
}

// MultiSink fans every snapshot out to all child sinks in order.
func MultiSink(sinks ...SnapshotSink) SnapshotSink {
	return SinkFunc(func(snap model.Snapshot) {
		for _, s := range sinks {
			if s != nil {
				s.OnSnapshot(snap)
			}
		}
	})
}

// ChannelSink forwards snapshots into a channel and closes it after the
// terminal snapshot. The channel is buffered by the caller; if it is
// full the oldest pending snapshot is dropped so the producer never
// blocks and the consumer always observes the newest state.
type ChannelSink struct {
	ch chan model.Snapshot
}

// NewChannelSink creates a sink with the given buffer size (min 1).
func NewChannelSink(buffer int) *ChannelSink {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelSink{ch: make(chan model.Snapshot, buffer)}
}

// Snapshots returns the receive side of the sink.
func (s *ChannelSink) Snapshots() <-chan model.Snapshot {
	return s.ch
}

func (s *ChannelSink) OnSnapshot(snap model.Snapshot) {
	for {
		select {
		case s.ch <- snap:
			if snap.Terminal() {
				close(s.ch)
			}
			return
		default:
			// Drop the oldest pending snapshot to make room.
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
