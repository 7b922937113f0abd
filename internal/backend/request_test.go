package backend

import (
	"errors"
	"testing"

	"github.com/dgnsrekt/tickmix/internal/fade"
)

func TestRequestBuilderLeavesOriginalUntouched(t *testing.T) {
	base := NewRequest().WithLoopCount(2)
	withPan := base.WithPan(-0.5)

	if _, ok := base.Pan(); ok {
		t.Error("base request should not carry pan")
	}
	if p, ok := withPan.Pan(); !ok || p != -0.5 {
		t.Errorf("pan: got %v, %v; want -0.5, true", p, ok)
	}
	if n, ok := withPan.LoopCount(); !ok || n != 2 {
		t.Errorf("loop count: got %v, %v; want 2, true", n, ok)
	}
	if !NewRequest().Empty() {
		t.Error("new request should be empty")
	}
}

func TestRequestWithFadeCarriesStop(t *testing.T) {
	plan := fade.Schedule(100, 1000, 1.0, 1, 0).WithStop()
	req := NewRequest().WithFade(plan)

	pts := req.FadePoints()
	if len(pts) != 2 {
		t.Fatalf("fade points: got %d, want 2", len(pts))
	}
	if at, ok := req.StopAt(); !ok || at != 1100 {
		t.Errorf("stop: got %d, %v; want 1100, true", at, ok)
	}

	noStop := NewRequest().WithFade(fade.Schedule(100, 1000, 1.0, 0, 1))
	if _, ok := noStop.StopAt(); ok {
		t.Error("fade without stop should not set StopAt")
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		ok   bool
	}{
		{"empty", NewRequest(), true},
		{"loop forever", NewRequest().WithLoopCount(LoopForever), true},
		{"bad loop", NewRequest().WithLoopCount(-2), false},
		{"pan range", NewRequest().WithPan(1.5), false},
		{"negative volume", NewRequest().WithVolume(-1), false},
		{"fade backwards", NewRequest().WithFade(fade.Plan{Points: [2]fade.Point{{Clock: 10}, {Clock: 5}}}), false},
	}

	for _, tt := range tests {
		err := tt.req.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("%s: got %v, want ErrInvalidRequest", tt.name, err)
		}
	}
}
