// precision.go
//
// Stack-scoped elapsed-time measurement against a calibrated Clock. Pure
// measurement, not a resource guard: there is nothing to release, and
// ElapsedNS can be read any number of times.

package clock

// PrecisionTimer captures a start timestamp at construction and reports
// elapsed nanoseconds on demand.
type PrecisionTimer struct {
	clk   *Clock
	start uint64
}

// NewPrecisionTimer starts a measurement against c.
func (c *Clock) NewPrecisionTimer() PrecisionTimer {
	return PrecisionTimer{clk: c, start: c.TimestampNS()}
}

// ElapsedNS returns nanoseconds since construction. Non-destructive:
// successive calls report monotonically non-decreasing values.
func (t PrecisionTimer) ElapsedNS() uint64 {
	return t.clk.TimestampNS() - t.start
}
