package throttle

import (
	"math/rand"
	"sync"
	"testing"
	"time"
)

func TestForCreatesOncePerRecipient(t *testing.T) {
	r := NewRegistry()

	a := r.For("wxid_alice")
	for i := 0; i < 5; i++ {
		if got := r.For("wxid_alice"); got != a {
			t.Fatal("repeat For returned a different throttle")
		}
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}

	b := r.For("wxid_bob")
	if b == a {
		t.Fatal("distinct recipients share a throttle")
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
}

func TestWindowFixedForLifetime(t *testing.T) {
	r := NewRegistry()
	w := r.For("wxid_alice").Window()
	for i := 0; i < 10; i++ {
		if got := r.For("wxid_alice").Window(); got != w {
			t.Fatalf("window changed from %v to %v", w, got)
		}
	}
}

func TestWindowDrawnFromRange(t *testing.T) {
	r := NewRegistry(WithRand(rand.New(rand.NewSource(1))))

	recipients := []string{"wxid_a", "wxid_b", "wxid_c", "wxid_d", "wxid_e"}
	for _, id := range recipients {
		w := r.For(id).Window()
		if w < DefaultMinInterval || w >= DefaultMaxInterval {
			t.Errorf("window for %s = %v, want in [%v, %v)", id, w, DefaultMinInterval, DefaultMaxInterval)
		}
	}
}

func TestDeterministicWithSeededRand(t *testing.T) {
	r1 := NewRegistry(WithRand(rand.New(rand.NewSource(42))))
	r2 := NewRegistry(WithRand(rand.New(rand.NewSource(42))))

	for _, id := range []string{"wxid_a", "wxid_b", "wxid_c"} {
		if w1, w2 := r1.For(id).Window(), r2.For(id).Window(); w1 != w2 {
			t.Fatalf("same seed drew %v and %v for %s", w1, w2, id)
		}
	}
}

func TestConcurrentFirstObservation(t *testing.T) {
	r := NewRegistry(WithIntervalRange(time.Millisecond, 3*time.Millisecond))

	var wg sync.WaitGroup
	throttles := make([]*FixedWindow, 32)
	for i := range throttles {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			throttles[n] = r.For("wxid_same")
		}(i)
	}
	wg.Wait()

	if r.Len() != 1 {
		t.Fatalf("Len() = %d after concurrent first use, want 1", r.Len())
	}
	for i, th := range throttles {
		if th != throttles[0] {
			t.Fatalf("goroutine %d got a distinct throttle", i)
		}
	}
}
