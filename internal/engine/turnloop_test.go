package engine

import (
	"testing"
	"time"
)

func TestLoopStopsFromAnotherGoroutine(t *testing.T) {
	s := testSim()
	l := NewLoop(s)
	l.Interval = time.Millisecond

	advanced := make(chan int, 1)
	l.OnTurn = func(turn int) {
		select {
		case advanced <- turn:
		default:
		}
	}

	done := make(chan struct{})
	go func() {
		l.Run()
		close(done)
	}()

	select {
	case <-advanced:
	case <-time.After(2 * time.Second):
		t.Fatal("loop never resolved a turn")
	}
	if !l.Running() {
		t.Fatal("loop not reporting running while active")
	}

	l.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	if l.Running() {
		t.Fatal("loop still reporting running after stop")
	}
}

func TestLoopSpeedZeroPauses(t *testing.T) {
	s := testSim()
	l := NewLoop(s)
	l.Interval = time.Millisecond
	l.SetSpeed(0)

	done := make(chan struct{})
	go func() {
		l.Run()
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if s.Turn != 0 {
		t.Fatalf("paused loop advanced to turn %d", s.Turn)
	}
	if got := l.Speed(); got != 0 {
		t.Fatalf("expected speed 0, got %v", got)
	}

	l.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("paused loop did not stop")
	}
}
