package progress

import (
	"math"
	"sync"
	"testing"
)

func TestAggregatorMean(t *testing.T) {
	var mu sync.Mutex
	var last float64
	a := NewAggregator(4, func(f float64) {
		mu.Lock()
		last = f
		mu.Unlock()
	})

	a.Update(0, 1.0)
	a.Update(1, 0.5)

	mu.Lock()
	got := last
	mu.Unlock()

	want := (1.0 + 0.5) / 4.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("aggregate = %v, want %v", got, want)
	}
	if math.Abs(a.Mean()-want) > 1e-9 {
		t.Errorf("Mean() = %v, want %v", a.Mean(), want)
	}
}

func TestAggregatorEmptyBatchIsComplete(t *testing.T) {
	a := NewAggregator(0, nil)
	if a.Mean() != 1 {
		t.Errorf("empty batch Mean() = %v, want 1", a.Mean())
	}
}

func TestAggregatorFinishOnce(t *testing.T) {
	var mu sync.Mutex
	var terminals int
	a := NewAggregator(3, func(f float64) {
		if f == 1 {
			mu.Lock()
			terminals++
			mu.Unlock()
		}
	})

	a.Update(0, 0.5)
	a.Finish()
	a.Finish()
	a.Update(1, 0.9) // ignored after finish

	mu.Lock()
	defer mu.Unlock()
	if terminals != 1 {
		t.Errorf("terminal aggregates = %d, want 1", terminals)
	}
	if a.Mean() != 1 {
		t.Errorf("Mean() after Finish = %v, want 1", a.Mean())
	}
}

func TestAggregatorIgnoresRegression(t *testing.T) {
	a := NewAggregator(1, nil)
	a.Update(0, 0.8)
	a.Update(0, 0.3)
	if a.Mean() != 0.8 {
		t.Errorf("Mean() = %v, want 0.8", a.Mean())
	}
}

func TestAggregatorOutOfRangeIndex(t *testing.T) {
	a := NewAggregator(2, nil)
	a.Update(-1, 0.5)
	a.Update(2, 0.5)
	if a.Mean() != 0 {
		t.Errorf("Mean() = %v, want 0", a.Mean())
	}
}

func TestAggregatorConcurrentUpdates(t *testing.T) {
	const n = 8
	a := NewAggregator(n, nil)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for f := 0.0; f <= 1.0; f += 0.1 {
				a.Update(i, f)
			}
		}(i)
	}
	wg.Wait()

	if math.Abs(a.Mean()-1.0) > 1e-9 {
		t.Errorf("Mean() after all members hit 1.0 = %v, want 1", a.Mean())
	}
}
