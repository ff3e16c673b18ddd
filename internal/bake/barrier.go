package bake

import "sync"

// Barrier blocks its n participants until all of them have called Wait. It
// is reusable: each release starts a new generation.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	n          int
	waiting    int
	generation uint64
}

// NewBarrier returns a barrier for n participants.
func NewBarrier(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until every participant of the current generation arrives.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	gen := b.generation
	b.waiting++
	if b.waiting == b.n {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		return
	}
	for gen == b.generation {
		b.cond.Wait()
	}
}

// RunWorkgroup runs fn on size concurrent lanes sharing one barrier, like a
// compute workgroup, and returns when every lane has returned. Every lane
// must call barrier.Wait the same number of times.
func RunWorkgroup(size int, fn func(lane int, barrier *Barrier)) {
	barrier := NewBarrier(size)
	var wg sync.WaitGroup
	wg.Add(size)
	for lane := 0; lane < size; lane++ {
		go func(lane int) {
			defer wg.Done()
			fn(lane, barrier)
		}(lane)
	}
	wg.Wait()
}
