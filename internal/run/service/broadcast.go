package service

import (
	"sync"

	"runoj/internal/run/model"
)

// broadcaster fans one run's snapshots out to any number of
// subscribers. Sends never block the poll loop: a slow subscriber has
// its stale pending snapshot replaced by the newest one.
type broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan model.Snapshot
	nextID int
	closed bool
	last   model.Snapshot
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan model.Snapshot)}
}

// OnSnapshot implements run.SnapshotSink.
func (b *broadcaster) OnSnapshot(snap model.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.last = snap
	for _, ch := range b.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	if snap.Terminal() {
		for _, ch := range b.subs {
			close(ch)
		}
		b.subs = make(map[int]chan model.Snapshot)
		b.closed = true
	}
}

// subscribe returns a snapshot channel and an unsubscribe func. If the
// run already finished, the channel is primed with the terminal
// snapshot and closed.
func (b *broadcaster) subscribe() (<-chan model.Snapshot, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan model.Snapshot, 1)
		ch <- b.last
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	ch := make(chan model.Snapshot, 1)
	if b.last.RunID != "" {
		ch <- b.last
	}
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}
