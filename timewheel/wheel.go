// ════════════════════════════════════════════════════════════════════════════════════════════════
// Hierarchical Timing Wheel
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: HFX Timer Core
// Component: Multi-Level Timer Scheduler
//
// Description:
//   Four-level timing wheel with 256 slots per level and O(1) amortized
//   insertion, cancellation, and minimum-due extraction. Drives periodic
//   market/gas refresh, cache expiry, order timeouts, and monitoring
//   heartbeats for the surrounding trading subsystems.
//
// Architecture:
//   - Absolute tick indexing: slot of level L for base tick T is (T>>8L)&255,
//     so advancement is pure mask arithmetic and level L steps one slot only
//     once every 256^L base ticks (canonical hierarchical cascade).
//   - Visited coarse buckets execute due timers inline and cascade the rest
//     toward finer levels as their expiry approaches.
//   - Bucket scans run over a detached slice, so callbacks may re-enter the
//     wheel (schedule or cancel) without corrupting the iteration.
//
// Threading model:
//   - Single writer: Schedule*/CancelTimer/Tick must be serialized on one
//     driver thread (or fed through the cmdring SPSC queue).
//   - Statistics counters are atomics and safe to read from any thread.
//   - Callbacks run synchronously and inline on the ticking thread: a slow
//     callback stalls further advancement for that Tick call. This is the
//     intended low-overhead trade-off; do not add dispatch here.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package timewheel

import (
	"sync/atomic"
	"time"

	"hfxcore/debug"
	"hfxcore/utils"
)

// TimeWheel orchestrates NumLevels wheel levels over a shared base tick.
type TimeWheel struct {
	baseTickNs uint64
	startNs    uint64 // monotonic origin; tick indices count from here
	lastTickNs uint64
	tickCount  uint64 // base ticks consumed so far
	levels     [NumLevels]*wheelLevel
	now        NowFunc

	// index maps live timer ids to their events for O(1) cancellation.
	// Guarded by the single-writer discipline, same as the buckets.
	index map[TimerID]*TimerEvent

	// Atomic counters — the only fields other threads may touch.
	nextTimerID    uint64
	activeTimers   int64
	totalScheduled uint64
	totalExecuted  uint64
	totalCancelled uint64
	totalFailed    uint64
	totalExecNs    uint64
	maxExecNs      uint64
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONSTRUCTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// New builds a wheel with tick sizes baseTick × 256^level and anchors the
// tick origin at now(). Construction allocates every bucket up front; there
// is no separate initialize step that can fail.
func New(baseTick time.Duration, now NowFunc) *TimeWheel {
	if baseTick <= 0 {
		panic("timewheel: base tick must be positive")
	}
	if now == nil {
		panic("timewheel: now source is required")
	}

	tw := &TimeWheel{
		baseTickNs: uint64(baseTick.Nanoseconds()),
		now:        now,
		index:      make(map[TimerID]*TimerEvent, 1024),
	}
	start := now()
	tw.startNs = start
	tw.lastTickNs = start

	tick := tw.baseTickNs
	for l := 0; l < NumLevels; l++ {
		tw.levels[l] = newWheelLevel(tick)
		tick *= WheelSize
	}
	return tw
}

// BaseTickNs exposes the wheel's granularity to the driver loop.
func (tw *TimeWheel) BaseTickNs() uint64 { return tw.baseTickNs }

// Now reads the injected clock source.
func (tw *TimeWheel) Now() uint64 { return tw.now() }

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SCHEDULING
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// ReserveID allocates the next timer id without scheduling anything. The
// counter is atomic so SPSC producers can pre-assign ids before handing a
// schedule command to the wheel thread.
func (tw *TimeWheel) ReserveID() TimerID {
	return TimerID(atomic.AddUint64(&tw.nextTimerID, 1))
}

// ScheduleOnce arms a one-shot timer firing once delay has elapsed.
// O(1) amortized; never blocks.
func (tw *TimeWheel) ScheduleOnce(delay time.Duration, cb Callback) TimerID {
	id := tw.ReserveID()
	tw.ScheduleOnceID(id, delay, cb)
	return id
}

// ScheduleRecurring arms a timer firing every interval until cancelled.
func (tw *TimeWheel) ScheduleRecurring(interval time.Duration, cb Callback) TimerID {
	id := tw.ReserveID()
	tw.ScheduleRecurringID(id, interval, cb)
	return id
}

// ScheduleOnceID schedules under a previously reserved id. Wheel-thread only.
func (tw *TimeWheel) ScheduleOnceID(id TimerID, delay time.Duration, cb Callback) {
	tw.schedule(id, delay, 0, cb)
}

// ScheduleRecurringID schedules a recurring timer under a reserved id.
func (tw *TimeWheel) ScheduleRecurringID(id TimerID, interval time.Duration, cb Callback) {
	iv := interval.Nanoseconds()
	if iv <= 0 {
		iv = int64(tw.baseTickNs) // degenerate interval clamps to one tick
	}
	tw.schedule(id, interval, uint64(iv), cb)
}

func (tw *TimeWheel) schedule(id TimerID, delay time.Duration, intervalNs uint64, cb Callback) {
	if cb == nil {
		panic("timewheel: nil callback")
	}
	d := delay.Nanoseconds()
	if d < 0 {
		d = 0
	}
	ev := &TimerEvent{
		id:         id,
		expiryNs:   tw.now() + uint64(d),
		intervalNs: intervalNs,
		callback:   cb,
		recurring:  intervalNs != 0,
		slot:       detachedSlot,
	}
	tw.insert(ev)
	tw.index[id] = ev
	atomic.AddInt64(&tw.activeTimers, 1)
	atomic.AddUint64(&tw.totalScheduled, 1)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CANCELLATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// CancelTimer removes a pending timer. Returns false for ids that are
// unknown, already fired, or already cancelled. O(1) average through the
// id→event index; safe to call from inside a timer callback.
func (tw *TimeWheel) CancelTimer(id TimerID) bool {
	ev, ok := tw.index[id]
	if !ok {
		return false
	}
	delete(tw.index, id)
	ev.cancelled = true
	if ev.slot != detachedSlot {
		tw.removeFromBucket(ev)
	}
	// Detached events are mid-scan in executeBucket; the cancelled flag
	// makes the scan drop them instead of firing or re-arming.
	atomic.AddInt64(&tw.activeTimers, -1)
	atomic.AddUint64(&tw.totalCancelled, 1)
	return true
}

// removeFromBucket swap-deletes ev from its owning bucket, patching the
// moved event's position so the location index stays exact.
func (tw *TimeWheel) removeFromBucket(ev *TimerEvent) {
	b := &tw.levels[ev.level].buckets[ev.slot]
	last := len(b.timers) - 1
	moved := b.timers[last]
	b.timers[ev.pos] = moved
	moved.pos = ev.pos
	b.timers[last] = nil
	b.timers = b.timers[:last]
	ev.slot = detachedSlot
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PLACEMENT
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// expiryTick converts an absolute expiry to its base-tick index.
func (tw *TimeWheel) expiryTick(expiryNs uint64) uint64 {
	if expiryNs <= tw.startNs {
		return 0
	}
	return (expiryNs - tw.startNs) / tw.baseTickNs
}

// calculatePosition maps an expiry to (level, slot): the delay in base ticks
// is divided by WheelSize until it fits one level's span, so short delays
// land in fine low levels and long delays in coarse high ones; the top level
// absorbs everything beyond its horizon. Slots are absolute tick indices
// masked to the ring, and due-or-overdue expiries clamp to the next tick so
// they fire on the following advance rather than after a full revolution.
func (tw *TimeWheel) calculatePosition(expiryNs uint64) (int, int) {
	target := tw.expiryTick(expiryNs)
	if target <= tw.tickCount {
		target = tw.tickCount + 1
	}
	delta := target - tw.tickCount

	level := 0
	for level < NumLevels-1 && delta >= WheelSize {
		delta >>= levelShift
		level++
	}
	slot := int((target >> uint(levelShift*level)) & wheelMask)
	return level, slot
}

// insert places ev into its home bucket and records the location.
func (tw *TimeWheel) insert(ev *TimerEvent) {
	level, slot := tw.calculatePosition(ev.expiryNs)
	b := &tw.levels[level].buckets[slot]
	ev.level = int8(level)
	ev.slot = int16(slot)
	ev.pos = int32(len(b.timers))
	b.timers = append(b.timers, ev)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ADVANCEMENT
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Tick advances the wheel to nowNs and executes every due timer inline.
// Returns the number of callbacks invoked. A nowNs at or before the last
// tick is a no-op. Panicking callbacks are contained at the callback
// boundary and counted as failed executions; they never unwind through Tick.
func (tw *TimeWheel) Tick(nowNs uint64) int {
	if nowNs <= tw.lastTickNs {
		return 0
	}
	target := (nowNs - tw.startNs) / tw.baseTickNs
	prev := tw.tickCount
	tw.lastTickNs = nowNs
	if target <= prev {
		return 0 // sub-tick advance
	}
	tw.tickCount = target

	executed := 0
	for level := 0; level < NumLevels; level++ {
		shift := uint(levelShift * level)
		prevTicks := prev >> shift
		currTicks := target >> shift
		if currTicks == prevTicks {
			break // this level did not step, so no coarser level did either
		}

		// One full revolution visits every bucket; farther jumps revisit.
		steps := currTicks - prevTicks
		if steps > WheelSize {
			steps = WheelSize
		}

		lv := tw.levels[level]
		for t := currTicks - steps + 1; t <= currTicks; t++ {
			slot := int(t & wheelMask)
			lv.currentSlot = slot
			executed += tw.executeBucket(level, slot, nowNs)
		}
	}
	return executed
}

// executeBucket scans one bucket: due events fire inline, not-yet-due events
// cascade toward their correct (finer) position, cancelled events drop.
//
// The scan detaches the bucket's slice and flips in the spare, so re-entrant
// Schedule* calls from callbacks append to fresh storage and never perturb
// the iteration. Events are marked detached up front so a re-entrant
// CancelTimer on a sibling resolves against the flag, not a stale location.
func (tw *TimeWheel) executeBucket(level, slot int, nowNs uint64) int {
	b := &tw.levels[level].buckets[slot]
	if len(b.timers) == 0 {
		return 0
	}

	scan := b.timers
	b.timers, b.spare = b.spare[:0], scan
	for _, ev := range scan {
		ev.slot = detachedSlot
	}

	executed := 0
	for i, ev := range scan {
		scan[i] = nil // release the reference; spare keeps only capacity
		if ev.cancelled {
			continue
		}
		if ev.expiryNs > nowNs {
			tw.insert(ev) // cascade: rehash toward the level it is due in
			continue
		}

		start := tw.now()
		if runCallback(ev.id, ev.callback) {
			atomic.AddUint64(&tw.totalExecuted, 1)
		} else {
			atomic.AddUint64(&tw.totalFailed, 1)
		}
		tw.updateStatistics(tw.now() - start)
		executed++

		if ev.recurring && !ev.cancelled {
			// Re-arm from fire time; recurring timers are never dropped
			// unless explicitly cancelled.
			ev.expiryNs = nowNs + ev.intervalNs
			tw.insert(ev)
			continue
		}
		if !ev.cancelled {
			delete(tw.index, ev.id)
			atomic.AddInt64(&tw.activeTimers, -1)
		}
	}
	return executed
}

// runCallback invokes cb with a recover barrier so a panicking registrant
// cannot take down the driver thread. Failures are logged cold-path only.
func runCallback(id TimerID, cb Callback) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			debug.DropMessage("TIMER_PANIC", "timer "+utils.Utoa(uint64(id))+" callback panicked")
		}
	}()
	cb()
	return true
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// STATISTICS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// ActiveTimerCount returns the number of timers currently owned by any
// bucket. Lock-free; safe from monitoring threads.
func (tw *TimeWheel) ActiveTimerCount() int {
	return int(atomic.LoadInt64(&tw.activeTimers))
}

// GetStatistics snapshots the wheel's counters. Lock-free; the fields are
// individually consistent, not a cross-field atomic snapshot.
func (tw *TimeWheel) GetStatistics() Statistics {
	executed := atomic.LoadUint64(&tw.totalExecuted)
	failed := atomic.LoadUint64(&tw.totalFailed)
	s := Statistics{
		TotalScheduled: atomic.LoadUint64(&tw.totalScheduled),
		TotalExecuted:  executed,
		TotalCancelled: atomic.LoadUint64(&tw.totalCancelled),
		TotalFailed:    failed,
		MaxExecutionNs: atomic.LoadUint64(&tw.maxExecNs),
	}
	if invoked := executed + failed; invoked > 0 {
		s.AvgExecutionNs = float64(atomic.LoadUint64(&tw.totalExecNs)) / float64(invoked)
	}
	return s
}

// updateStatistics accumulates execution time and maintains the running
// maximum with a CAS retry loop. The loop is required for correctness once
// updates originate from more than the single driver thread.
func (tw *TimeWheel) updateStatistics(execNs uint64) {
	atomic.AddUint64(&tw.totalExecNs, execNs)
	for {
		cur := atomic.LoadUint64(&tw.maxExecNs)
		if execNs <= cur || atomic.CompareAndSwapUint64(&tw.maxExecNs, cur, execNs) {
			return
		}
	}
}
