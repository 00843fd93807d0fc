// Package connectivity provides connectivity status observation and the
// status-change notifier.
package connectivity

import "sync"

// Status is a snapshot of the device's radio states.
type Status struct {
	WifiEnabled      bool `json:"isWifiEnabled"`
	BluetoothEnabled bool `json:"isBluetoothEnabled"`
}

// NetworkSubscription is a handle on the network-availability stream. The
// stream never terminates on its own; callers must Close it.
type NetworkSubscription struct {
	C <-chan bool

	close func()
	once  sync.Once
}

// Close releases the subscription. Safe to call more than once.
func (s *NetworkSubscription) Close() {
	s.once.Do(s.close)
}

// StatusSubscription is a handle on the connectivity snapshot stream.
type StatusSubscription struct {
	C <-chan Status

	close func()
	once  sync.Once
}

// Close releases the subscription. Safe to call more than once.
func (s *StatusSubscription) Close() {
	s.once.Do(s.close)
}

// Observer exposes two independent push-based streams: network-availability
// booleans and connectivity snapshots.
type Observer interface {
	ObserveNetwork() *NetworkSubscription
	ObserveStatus() *StatusSubscription
}

// Broadcaster is a push-based Observer. Platform integrations publish
// readings into it; each subscriber receives every published value in
// publish order.
type Broadcaster struct {
	mu          sync.Mutex
	networkSubs map[int]chan bool
	statusSubs  map[int]chan Status
	nextID      int
}

// NewBroadcaster creates a new Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		networkSubs: make(map[int]chan bool),
		statusSubs:  make(map[int]chan Status),
	}
}

// ObserveNetwork subscribes to network-availability readings.
func (b *Broadcaster) ObserveNetwork() *NetworkSubscription {
	ch := make(chan bool, 16)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.networkSubs[id] = ch
	b.mu.Unlock()

	return &NetworkSubscription{
		C: ch,
		close: func() {
			b.mu.Lock()
			delete(b.networkSubs, id)
			b.mu.Unlock()
		},
	}
}

// ObserveStatus subscribes to connectivity snapshots.
func (b *Broadcaster) ObserveStatus() *StatusSubscription {
	ch := make(chan Status, 16)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.statusSubs[id] = ch
	b.mu.Unlock()

	return &StatusSubscription{
		C: ch,
		close: func() {
			b.mu.Lock()
			delete(b.statusSubs, id)
			b.mu.Unlock()
		},
	}
}

// PublishNetwork delivers a network-availability reading to all subscribers.
// A subscriber that has fallen 16 readings behind misses the oldest ones.
func (b *Broadcaster) PublishNetwork(available bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.networkSubs {
		select {
		case ch <- available:
		default:
		}
	}
}

// PublishStatus delivers a connectivity snapshot to all subscribers.
func (b *Broadcaster) PublishStatus(status Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.statusSubs {
		select {
		case ch <- status:
		default:
		}
	}
}
