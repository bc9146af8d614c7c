package throttle

import (
	"sync"
	"testing"
	"time"
)

func TestAdmitWithinCapacity(t *testing.T) {
	l := NewFixedWindow(3, 100*time.Millisecond)

	begin := time.Now()
	for i := 0; i < 3; i++ {
		l.Admit()
	}
	if elapsed := time.Since(begin); elapsed > 50*time.Millisecond {
		t.Fatalf("3 admits within capacity took %v, expected immediate", elapsed)
	}
}

func TestAdmitSpacing(t *testing.T) {
	window := 40 * time.Millisecond
	l := NewFixedWindow(1, window)

	var starts []time.Time
	for i := 0; i < 3; i++ {
		l.Admit()
		starts = append(starts, time.Now())
	}

	for i := 1; i < len(starts); i++ {
		if gap := starts[i].Sub(starts[i-1]); gap < window {
			t.Errorf("start %d only %v after start %d, want >= %v", i, gap, i-1, window)
		}
	}
}

func TestWindowRolloverDrainsUpToCapacity(t *testing.T) {
	window := 60 * time.Millisecond
	l := NewFixedWindow(2, window)

	begin := time.Now()
	var mu sync.Mutex
	var starts []time.Duration

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Admit()
			mu.Lock()
			starts = append(starts, time.Since(begin))
			mu.Unlock()
		}()
		// Stagger arrivals so queue order is deterministic.
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	var first, second, third int
	for _, d := range starts {
		switch {
		case d < window:
			first++
		case d < 2*window:
			second++
		default:
			third++
		}
	}
	if first != 2 || second != 2 || third != 1 {
		t.Fatalf("starts per window = %d/%d/%d, want 2/2/1 (starts: %v)", first, second, third, starts)
	}
}

func TestQueueIsFIFO(t *testing.T) {
	window := 50 * time.Millisecond
	l := NewFixedWindow(1, window)
	l.Admit() // exhaust the first window

	var mu sync.Mutex
	var order []int

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Admit()
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
		}(i)
		// Stagger so arrival order is fixed.
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	for i, n := range order {
		if n != i {
			t.Fatalf("admission order = %v, want FIFO", order)
		}
	}
}

func TestNoCallDropped(t *testing.T) {
	l := NewFixedWindow(1, 10*time.Millisecond)

	const calls = 20
	done := make(chan struct{}, calls)
	for i := 0; i < calls; i++ {
		go func() {
			l.Admit()
			done <- struct{}{}
		}()
	}

	deadline := time.After(2 * time.Second)
	for i := 0; i < calls; i++ {
		select {
		case <-done:
		case <-deadline:
			t.Fatalf("only %d of %d calls admitted before deadline", i, calls)
		}
	}
}

func TestSpacingHeldAcrossIdleGap(t *testing.T) {
	window := 100 * time.Millisecond
	l := NewFixedWindow(1, window)
	l.Admit()

	// Land mid-way through a later window, then admit twice: the pair
	// must still be a full window apart.
	time.Sleep(window + window/2)

	l.Admit()
	first := time.Now()
	l.Admit()
	second := time.Now()

	if gap := second.Sub(first); gap < window {
		t.Fatalf("consecutive starts only %v apart after idle gap, want >= %v", gap, window)
	}
}

func TestIdleWindowsSkipped(t *testing.T) {
	window := 20 * time.Millisecond
	l := NewFixedWindow(1, window)
	l.Admit()

	// Let several windows pass with nothing queued, then admit again.
	time.Sleep(3 * window)
	begin := time.Now()
	l.Admit()
	if elapsed := time.Since(begin); elapsed > window/2 {
		t.Fatalf("admit after idle windows took %v, expected immediate", elapsed)
	}
}
