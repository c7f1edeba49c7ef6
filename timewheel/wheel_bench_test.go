// ════════════════════════════════════════════════════════════════════════════════════════════════
// 🧪 BENCHMARK SUITE: HIERARCHICAL TIMING WHEEL
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: HFX Timer Core
// Component: Timing Wheel Benchmarks
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package timewheel

import (
	"testing"
	"time"
)

func BenchmarkWheel_ScheduleOnce(b *testing.B) {
	tw, _ := newTestWheel()
	cb := func() {}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		tw.ScheduleOnce(time.Millisecond, cb)
	}
}

func BenchmarkWheel_ScheduleCancel(b *testing.B) {
	tw, _ := newTestWheel()
	cb := func() {}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		id := tw.ScheduleOnce(time.Millisecond, cb)
		tw.CancelTimer(id)
	}
}

func BenchmarkWheel_TickIdle(b *testing.B) {
	tw, clk := newTestWheel()
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		tw.Tick(clk.advance(time.Microsecond))
	}
}

func BenchmarkWheel_TickFiring(b *testing.B) {
	tw, clk := newTestWheel()
	cb := func() {}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		tw.ScheduleOnce(time.Microsecond, cb)
		tw.Tick(clk.advance(time.Microsecond))
	}
}

func BenchmarkWheel_RecurringSteadyState(b *testing.B) {
	tw, clk := newTestWheel()
	for i := 0; i < 1000; i++ {
		tw.ScheduleRecurring(time.Duration(100+i)*time.Microsecond, func() {})
	}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		tw.Tick(clk.advance(10 * time.Microsecond))
	}
}

func BenchmarkWheel_GetStatistics(b *testing.B) {
	tw, _ := newTestWheel()
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = tw.GetStatistics()
	}
}
