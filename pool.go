package contentbody

import (
	"runtime"
	"sync"

	"go.uber.org/multierr"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one measurer is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// measurerCloser is a Measurer holding resources.
type measurerCloser interface {
	Measurer
	Close() error
}

// MeasurerPool lends measurers to concurrent builds, one build per measurer
// at a time. Measurers are created lazily on first acquire, so a pool whose
// builds never need layout never starts a browser.
type MeasurerPool struct {
	size      int
	newFn     func() (measurerCloser, error)
	measurers []measurerCloser
	sem       chan measurerCloser
	mu        sync.Mutex
	created   int
	closed    bool
}

// NewMeasurerPool creates a pool of up to n RodMeasurers laying content out
// at width CSS pixels.
func NewMeasurerPool(n, width int) *MeasurerPool {
	return newMeasurerPool(n, func() (measurerCloser, error) {
		return NewRodMeasurer(width)
	})
}

func newMeasurerPool(n int, newFn func() (measurerCloser, error)) *MeasurerPool {
	if n < 1 {
		n = 1
	}
	return &MeasurerPool{
		size:      n,
		newFn:     newFn,
		measurers: make([]measurerCloser, 0, n),
		sem:       make(chan measurerCloser, n),
	}
}

// Acquire gets a measurer from the pool, creating one if capacity remains.
// Blocks while all measurers are in use.
func (p *MeasurerPool) Acquire() (Measurer, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}

	select {
	case m, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return m, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create outside the lock
		m, err := p.newFn()
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		p.measurers = append(p.measurers, m)
		p.mu.Unlock()
		return m, nil
	}
	p.mu.Unlock()

	m, ok := <-p.sem
	if !ok {
		return nil, ErrPoolClosed
	}
	return m, nil
}

// Release returns a measurer to the pool. Measurers released after Close
// are dropped.
// The lock is held across the send so Close cannot close the channel under
// it. The channel holds every measurer the pool can create, so the send only
// falls through on a double release.
func (p *MeasurerPool) Release(m Measurer) {
	mc, ok := m.(measurerCloser)
	if !ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.sem <- mc:
	default:
	}
}

// Close releases every browser the pool started, aggregating failures.
func (p *MeasurerPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	measurers := p.measurers
	p.mu.Unlock()

	var err error
	for _, m := range measurers {
		err = multierr.Append(err, m.Close())
	}
	return err
}

// Size returns the pool capacity.
func (p *MeasurerPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size: an explicit worker count wins,
// otherwise half of GOMAXPROCS (as adjusted by automaxprocs) within
// [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
