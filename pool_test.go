package contentbody

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire() (Measurer, error)
	Release(Measurer)
	Size() int
	Close() error
} = (*MeasurerPool)(nil)

type stubMeasurer struct {
	closed   atomic.Bool
	closeErr error
}

func (s *stubMeasurer) Measure(context.Context, string) (Layout, error) {
	return Layout{}, nil
}

func (s *stubMeasurer) Close() error {
	s.closed.Store(true)
	return s.closeErr
}

func stubPool(n int, created *atomic.Int32) *MeasurerPool {
	return newMeasurerPool(n, func() (measurerCloser, error) {
		created.Add(1)
		return &stubMeasurer{}, nil
	})
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit takes priority", 4, 4},
		{"explicit=1 for sequential", 1, 1},
		{"zero uses auto calculation", 0, min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize)},
		{"negative uses auto calculation", -3, min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ResolvePoolSize(tt.workers); got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestMeasurerPool_LazyCreation(t *testing.T) {
	t.Parallel()

	var created atomic.Int32
	pool := stubPool(2, &created)
	defer pool.Close()

	if created.Load() != 0 {
		t.Fatalf("created = %d before first Acquire, want 0", created.Load())
	}

	m, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	pool.Release(m)

	// Reuses the released measurer instead of creating a second one
	m2, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if m2 != m {
		t.Error("Acquire() did not reuse the released measurer")
	}
	if created.Load() != 1 {
		t.Errorf("created = %d, want 1", created.Load())
	}
	pool.Release(m2)
}

func TestMeasurerPool_BlocksAtCapacity(t *testing.T) {
	t.Parallel()

	var created atomic.Int32
	pool := stubPool(1, &created)
	defer pool.Close()

	first, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	got := make(chan Measurer, 1)
	go func() {
		m, _ := pool.Acquire()
		got <- m
	}()

	select {
	case <-got:
		t.Fatal("Acquire() returned while the only measurer was in use")
	case <-time.After(50 * time.Millisecond):
	}

	pool.Release(first)
	select {
	case m := <-got:
		if m != first {
			t.Error("blocked Acquire() did not receive the released measurer")
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire() still blocked after Release")
	}
}

func TestMeasurerPool_CreateError(t *testing.T) {
	t.Parallel()

	boom := errors.New("no chrome")
	calls := 0
	pool := newMeasurerPool(1, func() (measurerCloser, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return &stubMeasurer{}, nil
	})
	defer pool.Close()

	if _, err := pool.Acquire(); !errors.Is(err, boom) {
		t.Fatalf("Acquire() error = %v, want %v", err, boom)
	}
	// The failed slot is given back
	if _, err := pool.Acquire(); err != nil {
		t.Fatalf("Acquire() after failure error = %v", err)
	}
}

func TestMeasurerPool_Close(t *testing.T) {
	t.Parallel()

	closeErr := errors.New("close failed")
	var stubs []*stubMeasurer
	var mu sync.Mutex
	pool := newMeasurerPool(2, func() (measurerCloser, error) {
		mu.Lock()
		defer mu.Unlock()
		s := &stubMeasurer{closeErr: closeErr}
		stubs = append(stubs, s)
		return s, nil
	})

	a, _ := pool.Acquire()
	b, _ := pool.Acquire()
	pool.Release(a)

	err := pool.Close()
	if !errors.Is(err, closeErr) {
		t.Errorf("Close() error = %v, want %v", err, closeErr)
	}
	for i, s := range stubs {
		if !s.closed.Load() {
			t.Errorf("measurer %d not closed", i)
		}
	}

	// Release after Close is dropped, Acquire fails
	pool.Release(b)
	if _, err := pool.Acquire(); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrPoolClosed", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}

func TestMeasurerPool_Size(t *testing.T) {
	t.Parallel()

	if got := NewMeasurerPool(0, DefaultWidth).Size(); got != 1 {
		t.Errorf("Size() = %d, want 1", got)
	}
	if got := NewMeasurerPool(3, DefaultWidth).Size(); got != 3 {
		t.Errorf("Size() = %d, want 3", got)
	}
}

// ---------------------------------------------------------------------------
// TestMeasurerPool_ReleaseDuringClose - Release racing Close never panics
// ---------------------------------------------------------------------------

func TestMeasurerPool_ReleaseDuringClose(t *testing.T) {
	t.Parallel()

	for range 200 {
		var created atomic.Int32
		pool := stubPool(4, &created)

		held := make([]Measurer, 0, 4)
		for range 4 {
			m, err := pool.Acquire()
			if err != nil {
				t.Fatalf("Acquire() error = %v", err)
			}
			held = append(held, m)
		}

		var wg sync.WaitGroup
		start := make(chan struct{})
		for _, m := range held {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				pool.Release(m)
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_ = pool.Close()
		}()
		close(start)
		wg.Wait()

		if _, err := pool.Acquire(); !errors.Is(err, ErrPoolClosed) {
			t.Fatalf("Acquire() after Close error = %v, want ErrPoolClosed", err)
		}
	}
}

func TestMeasurerPool_DoubleReleaseDoesNotBlock(t *testing.T) {
	t.Parallel()

	var created atomic.Int32
	pool := stubPool(1, &created)
	defer func() { _ = pool.Close() }()

	m, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		pool.Release(m)
		pool.Release(m)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second Release blocked")
	}
}
