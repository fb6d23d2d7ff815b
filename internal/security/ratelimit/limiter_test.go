package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinWindow(t *testing.T) {
	l := NewLimiter(2, time.Minute)
	defer l.Stop()
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	if !l.Allow("10.0.0.1") || !l.Allow("10.0.0.1") {
		t.Fatalf("first two requests should pass")
	}
	if l.Allow("10.0.0.1") {
		t.Fatalf("third request should be limited")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatalf("keys are limited independently")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("10.0.0.1") {
		t.Fatalf("window should slide")
	}
}

func TestDisabledLimiter(t *testing.T) {
	l := NewLimiter(0, time.Minute)
	defer l.Stop()
	for i := 0; i < 100; i++ {
		if !l.Allow("k") {
			t.Fatalf("limit 0 disables limiting")
		}
	}
}
