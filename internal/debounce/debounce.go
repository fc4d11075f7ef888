// Package debounce collapses bursts of calls per key into one delayed call.
package debounce

import (
	"sync"
	"time"
)

type pending struct {
	timer *time.Timer
	fn    func()
}

// Keyed keeps one cancelable timer per key. Scheduling a key again within the
// delay drops the earlier function; it never runs.
type Keyed[K comparable] struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[K]*pending
	running sync.WaitGroup
}

func NewKeyed[K comparable](delay time.Duration) *Keyed[K] {
	return &Keyed[K]{
		delay:   delay,
		pending: make(map[K]*pending),
	}
}

func (d *Keyed[K]) Delay() time.Duration {
	return d.delay
}

// Schedule runs fn after the delay unless key is scheduled, cancelled or
// flushed again before then.
func (d *Keyed[K]) Schedule(key K, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}
	p := &pending{fn: fn}
	p.timer = time.AfterFunc(d.delay, func() {
		if !d.take(key, p) {
			return
		}
		defer d.running.Done()
		fn()
	})
	d.pending[key] = p
}

// take removes p if it is still the pending entry for key.
func (d *Keyed[K]) take(key K, p *pending) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending[key] != p {
		return false
	}
	delete(d.pending, key)
	d.running.Add(1)
	return true
}

func (d *Keyed[K]) Cancel(key K) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
		delete(d.pending, key)
	}
}

func (d *Keyed[K]) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, key)
	}
}

// Flush runs every pending function now, on the caller's goroutine.
func (d *Keyed[K]) Flush() {
	d.mu.Lock()
	fns := make([]func(), 0, len(d.pending))
	for key, p := range d.pending {
		p.timer.Stop()
		fns = append(fns, p.fn)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (d *Keyed[K]) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Keyed[K]) IsPending(key K) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Wait blocks until functions already fired by their timers have returned.
func (d *Keyed[K]) Wait() {
	d.running.Wait()
}
