// Package navguard tracks whether the user is leaving the editor so that
// in-flight saves can discard their results.
package navguard

import (
	"sync"
	"sync/atomic"
)

// Event announces that navigation from one location to another is starting.
type Event struct {
	From string
	To   string
}

// Bus fans navigation events out to subscribers.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish delivers ev to every subscriber synchronously.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Guard is scoped to one editor mount.
type Guard struct {
	departing   atomic.Bool
	done        chan struct{}
	once        sync.Once
	unsubscribe func()
}

// Mount subscribes a new Guard to bus. A nil bus yields a guard that only
// departs on Unmount.
func Mount(bus *Bus) *Guard {
	g := &Guard{done: make(chan struct{})}
	if bus != nil {
		g.unsubscribe = bus.Subscribe(func(Event) { g.depart() })
	}
	return g
}

// Departing is the synchronous check every save must make before write-back.
func (g *Guard) Departing() bool {
	return g.departing.Load()
}

// Done is closed once departure has been observed.
func (g *Guard) Done() <-chan struct{} {
	return g.done
}

// Unmount counts as departure and detaches from the bus.
func (g *Guard) Unmount() {
	g.depart()
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
}

// The flag is set before the channel closes so readers of Done always see it.
func (g *Guard) depart() {
	g.departing.Store(true)
	g.once.Do(func() { close(g.done) })
}
