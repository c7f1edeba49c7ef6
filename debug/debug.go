// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — Cold-path diagnostic logging (zero-alloc)
//
// Purpose:
//   - Logs infrequent timer-core events without introducing heap pressure:
//     calibration fallbacks, journal failures, callback panics, shutdown.
//
// Notes:
//   - Avoids fmt.Sprintf to minimize footprint and latency.
//   - No interfaces, no reflection; plain string concatenation to fd 2.
//
// ⚠️ Never invoke from inside Tick's bucket scan — use only in failure
//    diagnostics and lifecycle transitions.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "hfxcore/utils"

// DropError logs an error with its prefix tag, or just the tag when err is
// nil. The concatenation is the only allocation; there is no formatting
// machinery behind it.
//
//go:nosplit
func DropError(prefix string, err error) {
	if err != nil {
		utils.PrintWarning(prefix + ": " + err.Error() + "\n")
	} else {
		utils.PrintWarning(prefix + "\n")
	}
}

// DropMessage logs a tagged diagnostic message. Used for lifecycle events:
// clock calibration results, driver start/stop, heartbeat snapshots.
//
//go:nosplit
func DropMessage(prefix, message string) {
	utils.PrintWarning(prefix + ": " + message + "\n")
}
