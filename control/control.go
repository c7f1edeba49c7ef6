// control.go — Global control flags and activity management for the driver
// ============================================================================
// SYSTEM CONTROL ORCHESTRATION
// ============================================================================
//
// Control provides lightweight global signaling infrastructure coordinating
// the wheel-owning driver thread with producers and with process shutdown.
//
// Architecture overview:
//   • Global hot/stop flags for lock-free inter-thread communication
//   • Nanosecond-precision activity tracking with automatic cooldown
//   • Shutdown WaitGroup so main can wait for subsystem teardown
//
// Threading model:
//   • Producers signal activity via SignalActivity() when enqueuing commands
//   • The driver polls flags via Flags() inside its spin loop
//   • Automatic cooldown prevents unnecessary hot spinning on idle wheels
//   • Shutdown() broadcasts termination; ShutdownWG gates process exit

package control

import (
	"sync"
	"sync/atomic"
	"time"
)

// ============================================================================
// GLOBAL STATE MANAGEMENT
// ============================================================================

var (
	// Global coordination flags, polled by the driver thread.
	hot  uint32 // 1 = recent scheduling traffic, 0 = idle
	stop uint32 // 1 = initiate graceful shutdown, 0 = running

	// Activity timing for automatic cooldown management.
	lastHot    int64
	cooldownNs = int64(1 * time.Second)

	// ShutdownWG tracks subsystems that must finish before process exit.
	ShutdownWG sync.WaitGroup
)

// ============================================================================
// ACTIVITY SIGNALING
// ============================================================================

// SignalActivity marks the system hot and records the instant, keeping the
// driver in its tight spin path while commands keep arriving.
func SignalActivity() {
	atomic.StoreUint32(&hot, 1)
	atomic.StoreInt64(&lastHot, time.Now().UnixNano())
}

// ForceHot pins the hot flag without touching the activity clock. Used at
// startup so the driver enters production mode spinning.
func ForceHot() {
	atomic.StoreUint32(&hot, 1)
	atomic.StoreInt64(&lastHot, time.Now().UnixNano())
}

// ============================================================================
// COOLDOWN MANAGEMENT
// ============================================================================

// PollCooldown clears the hot flag once the cooldown window has elapsed
// since the last activity. Called inline from the driver's spin loop.
func PollCooldown() {
	if atomic.LoadUint32(&hot) == 1 &&
		time.Now().UnixNano()-atomic.LoadInt64(&lastHot) > cooldownNs {
		atomic.StoreUint32(&hot, 0)
	}
}

// ============================================================================
// SYSTEM SHUTDOWN
// ============================================================================

// Shutdown initiates graceful termination. The driver observes the flag and
// exits its loop; subsystems then release ShutdownWG.
func Shutdown() {
	atomic.StoreUint32(&stop, 1)
}

// Stopping reports whether shutdown has been requested.
func Stopping() bool {
	return atomic.LoadUint32(&stop) != 0
}

// Reset rearms the flags. Test support only.
func Reset() {
	atomic.StoreUint32(&stop, 0)
	atomic.StoreUint32(&hot, 0)
}

// ============================================================================
// FLAG ACCESS
// ============================================================================

// Flags returns direct pointers to the coordination flags so the driver can
// poll without function-call overhead. The pointers remain valid for the
// application lifetime; access them with sync/atomic.
func Flags() (stopFlag, hotFlag *uint32) {
	return &stop, &hot
}
