// event.go — timer event, bucket, and level data holders.
//
// Pure data: construction and layout only. All behavior lives in wheel.go.

package timewheel

const (
	// WheelSize is the slot count of every level — 8-bit addressing so the
	// slot of an absolute tick index is a mask, not a division.
	WheelSize = 256

	// NumLevels is the number of granularity tiers. With a 1µs base tick the
	// levels resolve ~µs / ~256µs / ~65ms / ~16.7s per slot.
	NumLevels = 4

	wheelMask  = WheelSize - 1
	levelShift = 8 // log2(WheelSize)

	// bucketReserve pre-sizes every bucket so steady-state scheduling does
	// not allocate on the hot path.
	bucketReserve = 16
)

// TimerID identifies a scheduled timer for the lifetime of the process.
// IDs are allocated from an atomic counter starting at 1 and never reused.
type TimerID uint64

// Callback is the type-erased zero-argument closure a timer fires. Any state
// the registrant needs must be captured at scheduling time.
type Callback func()

// NowFunc supplies monotonic nanoseconds. Injected at construction so tests
// and alternate clock sources can drive the wheel deterministically.
type NowFunc func() uint64

// TimerEvent is an owned, self-contained record of one scheduled callback.
// Exactly one bucket owns an event at any instant; ownership moves (never
// copies) on insertion, cascading, and re-arming.
type TimerEvent struct {
	id         TimerID
	expiryNs   uint64 // absolute monotonic expiry
	intervalNs uint64 // zero for one-shot timers
	callback   Callback
	recurring  bool
	cancelled  bool // set by CancelTimer while the event is detached mid-scan

	// Location within the wheel, maintained on every insert/cascade/removal
	// so cancellation is O(1). slot == detachedSlot marks an event that is
	// currently outside any bucket (being executed or cascaded).
	level int8
	slot  int16
	pos   int32
}

// detachedSlot marks an event not currently owned by any bucket.
const detachedSlot = -1

// ID returns the timer's identifier.
func (e *TimerEvent) ID() TimerID { return e.id }

// timerBucket owns the events assigned to one wheel slot. Two backing
// slices are flipped during execution so a bucket scan never iterates a
// slice that re-entrant callbacks are appending to, and steady-state
// execution stays allocation-free.
type timerBucket struct {
	timers []*TimerEvent
	spare  []*TimerEvent
}

// wheelLevel is a fixed ring of buckets at one granularity tier.
type wheelLevel struct {
	buckets     [WheelSize]timerBucket
	currentSlot int
	tickNs      uint64 // base × WheelSize^level
}

func newWheelLevel(tickNs uint64) *wheelLevel {
	lv := &wheelLevel{tickNs: tickNs}
	for s := range lv.buckets {
		lv.buckets[s].timers = make([]*TimerEvent, 0, bucketReserve)
		lv.buckets[s].spare = make([]*TimerEvent, 0, bucketReserve)
	}
	return lv
}

// Statistics is a point-in-time snapshot of the wheel's atomic counters.
// Field tags feed the monitoring heartbeat's JSON encoding.
type Statistics struct {
	TotalScheduled uint64  `json:"total_scheduled"`
	TotalExecuted  uint64  `json:"total_executed"`
	TotalCancelled uint64  `json:"total_cancelled"`
	TotalFailed    uint64  `json:"total_failed"`
	AvgExecutionNs float64 `json:"avg_execution_time_ns"`
	MaxExecutionNs uint64  `json:"max_execution_time_ns"`
}
