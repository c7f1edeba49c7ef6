// ════════════════════════════════════════════════════════════════════════════════════════════════
// Heartbeat Monitor
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: HFX Timer Core
// Component: Periodic Health Reporter
//
// Description:
//   Registers a recurring timer on the engine itself and, on each fire,
//   snapshots wheel statistics, emits them as a single JSON line on stderr,
//   and journals them to the statistics store. The heartbeat runs on the
//   driver thread like any other timer, so its own execution latency is
//   captured by the statistics it reports.
//
// Notes:
//   - The stderr emit path allocates only for the JSON encoding; the write
//     itself is a raw fd-2 syscall.
//   - Journal failures are reported and dropped — monitoring must never
//     stall the driver.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package monitor

import (
	"runtime"
	rtdebug "runtime/debug"
	"time"

	"github.com/sugawarayuuta/sonnet"

	"hfxcore/constants"
	"hfxcore/debug"
	"hfxcore/engine"
	"hfxcore/statstore"
	"hfxcore/timewheel"
	"hfxcore/utils"
)

// Monitor owns one recurring heartbeat timer.
type Monitor struct {
	eng      *engine.Engine
	store    *statstore.Store
	id       timewheel.TimerID
	memstats runtime.MemStats
}

// Start registers the heartbeat timer at the given interval. The store may
// be nil, in which case snapshots are emitted but not journaled.
func Start(eng *engine.Engine, store *statstore.Store, interval time.Duration) *Monitor {
	m := &Monitor{eng: eng, store: store}
	m.id = eng.ScheduleRecurring(interval, m.beat)
	return m
}

// Stop cancels the heartbeat timer. The cancellation is applied by the
// driver thread; a beat already in flight may still complete.
func (m *Monitor) Stop() {
	m.eng.Cancel(m.id)
}

// beat runs on the driver thread.
func (m *Monitor) beat() {
	snap := statstore.Snapshot{
		CapturedNs:   m.eng.Now(),
		ActiveTimers: m.eng.ActiveTimerCount(),
		Statistics:   m.eng.Statistics(),
	}

	if b, err := sonnet.Marshal(&snap); err == nil {
		debug.DropMessage("HEARTBEAT", utils.B2s(b))
	} else {
		debug.DropError("heartbeat encode", err)
	}

	if m.store != nil {
		if err := m.store.Append(&snap); err != nil {
			debug.DropError("heartbeat journal", err)
		}
	}

	m.checkHeap()
}

// checkHeap keeps heap growth inside the configured guardrails while GC is
// disabled for the production loop. A soft breach trims once; a hard breach
// means a leak and aborts loudly rather than degrading tick latency.
func (m *Monitor) checkHeap() {
	runtime.ReadMemStats(&m.memstats)
	if m.memstats.HeapAlloc > constants.HeapSoftLimit {
		rtdebug.SetGCPercent(100)
		runtime.GC()
		rtdebug.SetGCPercent(-1)
		debug.DropMessage("GC", "heap trimmed")
	}
	if m.memstats.HeapAlloc > constants.HeapHardLimit {
		panic("heap usage exceeded hard cap — leak likely")
	}
}
