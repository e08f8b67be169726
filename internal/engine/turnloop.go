package engine

import (
	"log/slog"
	"sync"
	"time"
)

// Loop drives the simulation forward in real time. Blocks in Run until
// Stop is called; speed 0 pauses without exiting. Speed and the running
// flag are written from other goroutines (signal handler, control plane),
// so both live behind a mutex.
type Loop struct {
	Interval time.Duration // Base turn interval

	// OnTurn runs once per resolved turn, after AdvanceTurn.
	OnTurn func(turn int)

	mu      sync.Mutex
	speed   float64
	running bool

	sim *Simulation
}

// NewLoop creates a turn loop over a simulation with default pacing.
func NewLoop(sim *Simulation) *Loop {
	return &Loop{
		Interval: 5 * time.Second,
		speed:    1.0,
		sim:      sim,
	}
}

// Speed returns the current pacing multiplier.
func (l *Loop) Speed() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.speed
}

// SetSpeed changes the pacing multiplier: 1.0 is real time, 0 pauses.
func (l *Loop) SetSpeed(v float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.speed = v
}

// Running reports whether the loop is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Run starts the loop. Blocks until Stop() is called.
func (l *Loop) Run() {
	l.mu.Lock()
	l.running = true
	l.mu.Unlock()
	slog.Info("turn loop started", "turn", l.sim.Turn, "speed", l.Speed())

	for l.Running() {
		speed := l.Speed()
		if speed <= 0 {
			// Paused. Sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		l.sim.AdvanceTurn()
		if l.OnTurn != nil {
			l.OnTurn(l.sim.Turn)
		}

		// Sleep for the remainder of the interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(l.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("turn loop stopped", "turn", l.sim.Turn)
}

// Stop halts the loop after the current turn.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.running = false
}
