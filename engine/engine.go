// ════════════════════════════════════════════════════════════════════════════════════════════════
// Timer Driver Engine
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: HFX Timer Core
// Component: Wheel-Owning Event Loop
//
// Description:
//   Single-threaded driver that owns a TimeWheel: it drains the SPSC command
//   ring, advances the wheel against the calibrated clock, and executes due
//   callbacks inline. Producers on other threads talk to the wheel only
//   through value-typed commands, preserving the wheel's single-writer
//   discipline without per-bucket locks.
//
// Threading model:
//   - Exactly one producer thread may call ScheduleOnce/ScheduleRecurring/
//     Cancel (SPSC ring). Shard engines per producer if more are needed.
//   - The driver goroutine locks its OS thread and pins to a core; it spins
//     hot while traffic is recent and relaxes when the control flags cool.
//   - Statistics reads are lock-free from any thread.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package engine

import (
	"runtime"
	"sync/atomic"
	"time"

	"hfxcore/clock"
	"hfxcore/cmdring"
	"hfxcore/constants"
	"hfxcore/control"
	"hfxcore/debug"
	"hfxcore/timewheel"
)

// Engine couples a timing wheel with its command ring and clock source.
type Engine struct {
	wheel *timewheel.TimeWheel
	queue *cmdring.Ring
	clk   *clock.Clock
}

// New builds an engine around a freshly anchored wheel. ringSize must be a
// power of two (it sizes the SPSC command ring).
func New(clk *clock.Clock, baseTick time.Duration, ringSize int) *Engine {
	return &Engine{
		wheel: timewheel.New(baseTick, clk.TimestampNS),
		queue: cmdring.New(ringSize),
		clk:   clk,
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PRODUCER API (single producer thread)
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// ScheduleOnce enqueues a one-shot timer and returns its pre-reserved id.
// The timer arms when the driver drains the command, typically within one
// poll iteration.
func (e *Engine) ScheduleOnce(delay time.Duration, cb timewheel.Callback) timewheel.TimerID {
	id := e.wheel.ReserveID()
	e.push(&cmdring.Command{Op: cmdring.OpScheduleOnce, ID: id, Duration: delay, Callback: cb})
	return id
}

// ScheduleRecurring enqueues a recurring timer firing every interval.
func (e *Engine) ScheduleRecurring(interval time.Duration, cb timewheel.Callback) timewheel.TimerID {
	id := e.wheel.ReserveID()
	e.push(&cmdring.Command{Op: cmdring.OpScheduleRecurring, ID: id, Duration: interval, Callback: cb})
	return id
}

// Cancel requests best-effort cancellation. The request is applied when the
// driver drains it; a timer already fired by then stays fired.
func (e *Engine) Cancel(id timewheel.TimerID) {
	e.push(&cmdring.Command{Op: cmdring.OpCancel, ID: id})
}

func (e *Engine) push(cmd *cmdring.Command) {
	for !e.queue.Push(cmd) {
		cpuRelax() // ring full: the driver is draining, back off politely
	}
	control.SignalActivity()
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// OBSERVABILITY (any thread)
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Statistics snapshots the wheel's atomic counters.
func (e *Engine) Statistics() timewheel.Statistics { return e.wheel.GetStatistics() }

// ActiveTimerCount returns the number of pending timers.
func (e *Engine) ActiveTimerCount() int { return e.wheel.ActiveTimerCount() }

// Now reads the engine's clock in monotonic nanoseconds.
func (e *Engine) Now() uint64 { return e.clk.TimestampNS() }

// Wheel exposes the underlying wheel for driver-thread use (callbacks may
// schedule directly on it; they already run on the wheel thread).
func (e *Engine) Wheel() *timewheel.TimeWheel { return e.wheel }

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// DRIVER LOOP
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Run starts the driver on a dedicated OS thread pinned to core and closes
// done when the loop exits. The loop leaves only when control.Shutdown has
// been signalled and the current iteration found no work.
func (e *Engine) Run(core int, done chan<- struct{}) {
	control.ShutdownWG.Add(1)
	go func() {
		runtime.LockOSThread()
		setAffinity(core) // stub on non-Linux
		defer func() {
			runtime.UnlockOSThread()
			control.ShutdownWG.Done()
			close(done)
		}()

		debug.DropMessage("DRIVER", "loop started")
		stopF, hotF := control.Flags()

		var cmd cmdring.Command
		lastWork := time.Now()
		miss := 0

		for {
			progress := false

			// Drain cross-thread commands before advancing time so a
			// schedule and the tick that should fire it land in order.
			for e.queue.Pop(&cmd) {
				e.apply(&cmd)
				progress = true
			}

			if e.wheel.Tick(e.clk.TimestampNS()) > 0 {
				progress = true
			}

			if progress {
				lastWork, miss = time.Now(), 0
				continue
			}

			if atomic.LoadUint32(stopF) != 0 {
				debug.DropMessage("DRIVER", "loop stopped")
				return
			}

			// ---------- choose spin mode ------------------
			control.PollCooldown()
			hotSpin := atomic.LoadUint32(hotF) != 0 ||
				time.Since(lastWork) <= constants.HotTimeout
			if hotSpin {
				continue // tight loop: nanosecond wakeup for the next tick
			}

			// cold-spin path: power-friendlier
			if miss++; miss >= constants.SpinBudget {
				miss = 0
				time.Sleep(constants.TickPollInterval)
				continue
			}
			cpuRelax()
		}
	}()
}

// apply executes one drained command on the wheel thread.
func (e *Engine) apply(cmd *cmdring.Command) {
	switch cmd.Op {
	case cmdring.OpScheduleOnce:
		e.wheel.ScheduleOnceID(cmd.ID, cmd.Duration, cmd.Callback)
	case cmdring.OpScheduleRecurring:
		e.wheel.ScheduleRecurringID(cmd.ID, cmd.Duration, cmd.Callback)
	case cmdring.OpCancel:
		e.wheel.CancelTimer(cmd.ID)
	}
}
