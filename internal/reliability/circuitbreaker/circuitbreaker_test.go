package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestBreaker(c *clock) *CircuitBreaker {
	cb := NewCircuitBreaker(2, 1, 10*time.Second)
	cb.now = c.now
	return cb
}

var errDown = errors.New("connection refused")

func TestBreakerTripsAfterThreshold(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	cb := newTestBreaker(c)

	for i := 0; i < 2; i++ {
		if err := cb.Execute(func() error { return errDown }, nil); err != errDown {
			t.Fatalf("expected dependency error, got %v", err)
		}
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open, got %s", cb.GetState())
	}
	called := false
	if err := cb.Execute(func() error { called = true; return nil }, nil); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
	if called {
		t.Fatalf("open breaker must not call through")
	}
}

func TestBreakerHalfOpenRecovers(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	cb := newTestBreaker(c)
	var transitions []string
	cb.SetStateChangeCallback(func(from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	cb.RecordFailure()
	cb.RecordFailure()
	c.t = c.t.Add(11 * time.Second)

	if err := cb.Execute(func() error { return nil }, nil); err != nil {
		t.Fatalf("expected probe to pass, got %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed, got %s", cb.GetState())
	}
	want := []string{"closed->open", "open->half_open", "half_open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("unexpected transitions %v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("unexpected transitions %v", transitions)
		}
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	cb := newTestBreaker(c)
	cb.RecordFailure()
	cb.RecordFailure()
	c.t = c.t.Add(11 * time.Second)

	_ = cb.Execute(func() error { return errDown }, nil)
	if cb.GetState() != StateOpen {
		t.Fatalf("expected reopened breaker, got %s", cb.GetState())
	}
	if cb.AllowRequest() {
		t.Fatalf("fresh open period must reject")
	}
}

func TestBreakerIgnoresUncountableErrors(t *testing.T) {
	cb := newTestBreaker(&clock{t: time.Unix(0, 0)})
	notFound := errors.New("not found")
	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return notFound }, func(err error) bool { return err != notFound })
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("business errors must not trip the breaker")
	}
}
