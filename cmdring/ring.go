// ring.go
//
// Lock-free single-producer/single-consumer command ring feeding the
// wheel-owning driver thread. Cross-thread scheduling and cancellation is
// expressed as value-typed commands handed through this ring instead of
// locks around the wheel's buckets: the wheel itself stays single-writer.
//
// The layout deliberately separates producer and consumer cursors with full
// cache-lines to eliminate false sharing, and each slot carries a sequence
// number so Push/Pop stay wait-free with one acquire/release pair apiece.

package cmdring

import (
	"sync/atomic"
	"time"

	"hfxcore/timewheel"
)

// Op selects the wheel operation a command carries.
type Op uint8

const (
	// OpScheduleOnce arms a one-shot timer under a pre-reserved id.
	OpScheduleOnce Op = iota + 1
	// OpScheduleRecurring arms a recurring timer under a pre-reserved id.
	OpScheduleRecurring
	// OpCancel requests best-effort cancellation of a pending timer.
	OpCancel
)

// Command is one schedule/cancel request. Copied by value through the ring;
// the callback pointer is the only shared state and it is immutable.
type Command struct {
	Op       Op
	ID       timewheel.TimerID
	Duration time.Duration // delay (once) or interval (recurring)
	Callback timewheel.Callback
}

// slot couples a command with its sequence stamp.
type slot struct {
	seq uint64
	cmd Command
}

// Ring is a fixed-capacity circular buffer dedicated to one producer and
// one consumer.
type Ring struct {
	_    [64]byte // consumer head isolated on its own cache-line
	head uint64
	_    [64]byte
	tail uint64
	_    [64]byte
	mask uint64
	buf  []slot
}

// New allocates a ring whose size must be a power of two; otherwise it
// panics so the bit-masking arithmetic stays valid.
func New(size int) *Ring {
	if size <= 0 || size&(size-1) != 0 {
		panic("cmdring: size must be >0 and a power of two")
	}
	r := &Ring{
		mask: uint64(size - 1),
		buf:  make([]slot, size),
	}
	for i := range r.buf {
		r.buf[i].seq = uint64(i)
	}
	return r
}

// Push enqueues *cmd, returning false if the buffer is full. Producer side
// only.
func (r *Ring) Push(cmd *Command) bool {
	t := r.tail
	s := &r.buf[t&r.mask]
	if atomic.LoadUint64(&s.seq) != t {
		return false // consumer has not yet reclaimed the slot
	}
	s.cmd = *cmd
	atomic.StoreUint64(&s.seq, t+1)
	r.tail = t + 1
	return true
}

// Pop dequeues one command into *out, returning false if the buffer is
// empty. Consumer side only.
func (r *Ring) Pop(out *Command) bool {
	h := r.head
	s := &r.buf[h&r.mask]
	if atomic.LoadUint64(&s.seq) != h+1 {
		return false // producer has not yet published to the slot
	}
	*out = s.cmd
	s.cmd = Command{} // drop the callback reference for the collector
	atomic.StoreUint64(&s.seq, h+uint64(len(r.buf)))
	r.head = h + 1
	return true
}
