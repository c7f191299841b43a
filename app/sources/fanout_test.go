package sources

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestCollect(t *testing.T) {
	inputs := []int{1, 2, 3, 4, 5, 6}

	tests := []struct {
		name  string
		limit int
	}{
		{"unbounded", 0},
		{"limit one", 1},
		{"limit two", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inFlight, peak atomic.Int32

			results := collect(context.Background(), tt.limit, inputs, func(_ context.Context, n int) (int, error) {
				current := inFlight.Add(1)
				defer inFlight.Add(-1)
				for {
					seen := peak.Load()
					if current <= seen || peak.CompareAndSwap(seen, current) {
						break
					}
				}

				// Later inputs finish first.
				time.Sleep(time.Duration(len(inputs)-n) * 2 * time.Millisecond)

				switch n {
				case 3:
					return 0, errors.New("unavailable")
				case 5:
					panic("broken markup")
				}
				return n * 10, nil
			})

			if !reflect.DeepEqual(results, []int{10, 20, 40, 60}) {
				t.Errorf("Expected successes in input order, got %v", results)
			}
			if tt.limit > 0 && int(peak.Load()) > tt.limit {
				t.Errorf("Expected at most %d tasks in flight, got %d", tt.limit, peak.Load())
			}
		})
	}
}

func TestCollect_Empty(t *testing.T) {
	results := collect(context.Background(), 0, []string(nil), func(context.Context, string) (string, error) {
		t.Error("Expected task not to run")
		return "", nil
	})

	if len(results) != 0 {
		t.Errorf("Expected no results, got %v", results)
	}
}
