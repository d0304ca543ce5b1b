package command

import (
	"testing"
	"time"
)

func TestIntervalSteps(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		up   time.Duration
		down time.Duration
	}{
		{"minimum", 100 * time.Millisecond, 200 * time.Millisecond, 100 * time.Millisecond},
		{"sub-second", 500 * time.Millisecond, 600 * time.Millisecond, 400 * time.Millisecond},
		{"just below a second", 900 * time.Millisecond, time.Second, 800 * time.Millisecond},
		{"one second", time.Second, 2 * time.Second, 900 * time.Millisecond},
		{"whole seconds", 5 * time.Second, 6 * time.Second, 4 * time.Second},
		{"fractional above a second", 1500 * time.Millisecond, 2500 * time.Millisecond, 500 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IncreaseInterval(tt.in); got != tt.up {
				t.Errorf("IncreaseInterval(%v) = %v, want %v", tt.in, got, tt.up)
			}
			if got := DecreaseInterval(tt.in); got != tt.down {
				t.Errorf("DecreaseInterval(%v) = %v, want %v", tt.in, got, tt.down)
			}
		})
	}
}

func TestClampInterval(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second, time.Millisecond} {
		if got := ClampInterval(d); got != MinInterval {
			t.Errorf("ClampInterval(%v) = %v, want %v", d, got, MinInterval)
		}
	}
	if got := ClampInterval(3 * time.Second); got != 3*time.Second {
		t.Errorf("ClampInterval(3s) = %v", got)
	}
}
