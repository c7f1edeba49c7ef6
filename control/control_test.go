// ════════════════════════════════════════════════════════════════════════════════════════════════
// 🧪 COMPREHENSIVE TEST SUITE: LOCK-FREE COORDINATION
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: HFX Timer Core
// Component: Control System Test Suite
//
// Description:
//   Validates the global hot/stop flags, activity-driven cooldown, and shutdown signaling used to
//   coordinate the wheel-owning driver thread with producers and process teardown.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package control

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const testOpsPerGoroutine = 1000

// ============================================================================
// UNIT TESTS - INITIALIZATION
// ============================================================================

func TestControl_InitialState(t *testing.T) {
	Reset()

	if atomic.LoadUint32(&hot) != 0 {
		t.Error("hot flag should initialize to 0")
	}
	if atomic.LoadUint32(&stop) != 0 {
		t.Error("stop flag should initialize to 0")
	}
	if Stopping() {
		t.Error("Stopping should be false initially")
	}

	stopPtr, hotPtr := Flags()
	if *stopPtr != 0 || *hotPtr != 0 {
		t.Error("Flag pointers should reference zero values")
	}
}

func TestControl_FlagPointers(t *testing.T) {
	Reset()

	stopPtr1, hotPtr1 := Flags()
	stopPtr2, hotPtr2 := Flags()

	if stopPtr1 != stopPtr2 || hotPtr1 != hotPtr2 {
		t.Error("Flag pointers should be stable across calls")
	}
	if stopPtr1 != &stop || hotPtr1 != &hot {
		t.Error("Flag pointers should reference the package globals")
	}

	atomic.StoreUint32(hotPtr1, 1)
	if atomic.LoadUint32(&hot) != 1 {
		t.Error("Setting via pointer should update the global flag")
	}
	Reset()
}

// ============================================================================
// UNIT TESTS - ACTIVITY SIGNALING
// ============================================================================

func TestControl_SignalActivity(t *testing.T) {
	Reset()

	before := time.Now().UnixNano()
	SignalActivity()

	if atomic.LoadUint32(&hot) != 1 {
		t.Error("SignalActivity should set the hot flag")
	}
	if atomic.LoadInt64(&lastHot) < before {
		t.Error("SignalActivity should stamp the activity instant")
	}
}

func TestControl_ForceHot(t *testing.T) {
	Reset()
	ForceHot()
	if atomic.LoadUint32(&hot) != 1 {
		t.Error("ForceHot should set the hot flag")
	}
}

// ============================================================================
// UNIT TESTS - COOLDOWN
// ============================================================================

func TestControl_PollCooldown(t *testing.T) {
	t.Run("ColdSystemStaysCold", func(t *testing.T) {
		Reset()
		PollCooldown()
		if atomic.LoadUint32(&hot) != 0 {
			t.Error("PollCooldown must not activate a cold system")
		}
	})

	t.Run("WithinWindowStaysHot", func(t *testing.T) {
		Reset()
		SignalActivity()
		PollCooldown()
		if atomic.LoadUint32(&hot) != 1 {
			t.Error("hot flag cleared inside the cooldown window")
		}
	})

	t.Run("ExpiredWindowClears", func(t *testing.T) {
		Reset()
		SignalActivity()
		// Backdate the last activity past the cooldown window.
		atomic.StoreInt64(&lastHot, time.Now().UnixNano()-cooldownNs-int64(time.Millisecond))
		PollCooldown()
		if atomic.LoadUint32(&hot) != 0 {
			t.Error("hot flag should clear once the cooldown window elapses")
		}
	})

	t.Run("ReactivationAfterCooldown", func(t *testing.T) {
		Reset()
		SignalActivity()
		atomic.StoreInt64(&lastHot, time.Now().UnixNano()-cooldownNs-int64(time.Millisecond))
		PollCooldown()
		SignalActivity()
		if atomic.LoadUint32(&hot) != 1 {
			t.Error("system should reactivate on a new signal")
		}
	})
}

// ============================================================================
// UNIT TESTS - SHUTDOWN
// ============================================================================

func TestControl_Shutdown(t *testing.T) {
	Reset()

	Shutdown()
	if !Stopping() {
		t.Error("Stopping should report true after Shutdown")
	}

	// Idempotence
	Shutdown()
	if !Stopping() {
		t.Error("Repeated Shutdown should keep the flag set")
	}

	Reset()
	if Stopping() {
		t.Error("Reset should rearm the stop flag")
	}
}

func TestControl_ShutdownWaitGroup(t *testing.T) {
	Reset()

	released := make(chan struct{})
	ShutdownWG.Add(1)
	go func() {
		ShutdownWG.Wait()
		close(released)
	}()

	select {
	case <-released:
		t.Fatal("Wait returned before subsystem released")
	case <-time.After(10 * time.Millisecond):
	}

	ShutdownWG.Done()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after subsystem release")
	}
}

// ============================================================================
// CONCURRENCY TESTS
// ============================================================================

func TestControl_ConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping concurrency test in short mode")
	}
	Reset()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			for j := 0; j < testOpsPerGoroutine; j++ {
				SignalActivity()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < testOpsPerGoroutine; j++ {
				PollCooldown()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < testOpsPerGoroutine; j++ {
				_ = Stopping()
			}
		}()
	}
	wg.Wait()

	if atomic.LoadUint32(&hot) != 1 {
		t.Error("hot flag should be set after a signaling burst")
	}
	Reset()
}

// ============================================================================
// MEMORY VALIDATION
// ============================================================================

func TestControl_ZeroAllocations(t *testing.T) {
	Reset()

	functions := []struct {
		name string
		fn   func()
	}{
		{"SignalActivity", SignalActivity},
		{"ForceHot", ForceHot},
		{"PollCooldown", PollCooldown},
		{"Shutdown", Shutdown},
		{"Stopping", func() { Stopping() }},
		{"Flags", func() { Flags() }},
	}
	for _, test := range functions {
		if allocs := testing.AllocsPerRun(100, test.fn); allocs > 0 {
			t.Errorf("%s allocated memory: %.2f allocs/op", test.name, allocs)
		}
	}
	Reset()
}

// ============================================================================
// BENCHMARKS
// ============================================================================

func BenchmarkControl_SignalActivity(b *testing.B) {
	Reset()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SignalActivity()
	}
}

func BenchmarkControl_PollCooldown(b *testing.B) {
	Reset()
	SignalActivity()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		PollCooldown()
	}
}

func BenchmarkControl_Stopping(b *testing.B) {
	Reset()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Stopping()
	}
}
