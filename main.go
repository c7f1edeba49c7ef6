// ════════════════════════════════════════════════════════════════════════════════════════════════
// HFX Timer Core - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: HFX Timer Core
// Component: Main Entry Point & System Orchestration
//
// Description:
//   System orchestration with phased initialization and clean separation of concerns.
//   Clock Calibration → Engine Bring-Up → Memory Optimization → Pinned Production Loop
//
// Architecture:
//   - Phase 0: Monotonic clock calibration and statistics journal bootstrap
//   - Phase 1: Timer engine construction and heartbeat registration
//   - Phase 2: Memory cleanup and GC tuning for production
//   - Phase 3: Pinned driver loop with graceful signal-driven shutdown
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"os"
	"os/signal"
	"runtime"
	rtdebug "runtime/debug"
	"syscall"

	"hfxcore/clock"
	"hfxcore/constants"
	"hfxcore/control"
	"hfxcore/debug"
	"hfxcore/engine"
	"hfxcore/monitor"
	"hfxcore/statstore"
	"hfxcore/utils"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MAIN ORCHESTRATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// main orchestrates the complete system lifecycle in distinct phases.
// Each phase has specific responsibilities and optimization characteristics.
func main() {
	// PHASE 0: Clock calibration and journal bootstrap
	debug.DropMessage("INIT", "Calibrating monotonic clock")
	clk := clock.New()

	store, err := statstore.Open(constants.StatsJournalPath)
	if err != nil {
		debug.DropError("JOURNAL", err)
		store = nil // Run without persistence rather than refuse to start
	} else if prev, err := store.Recent(constants.StatsRecentWindow); err == nil && len(prev) > 0 {
		last := prev[0]
		debug.DropMessage("JOURNAL", utils.Itoa(len(prev))+" prior snapshots, last run executed "+
			utils.Utoa(last.TotalExecuted)+" timers")
	}

	// PHASE 1: Engine construction and heartbeat registration
	eng := engine.New(clk, constants.BaseTick, constants.CommandRingSize)
	mon := monitor.Start(eng, store, constants.HeartbeatInterval)

	debug.DropMessage("READY", "Timer engine initialized")

	setupSignalHandling(mon, store)

	// PHASE 2: Memory optimization for deterministic runtime behavior
	// Performs garbage collection and memory consolidation before production mode
	runtime.GC()
	runtime.GC() // Double GC to ensure thorough cleanup
	rtdebug.FreeOSMemory()
	rtdebug.SetGCPercent(-1) // Disable GC; the heartbeat enforces heap guardrails

	// PHASE 3: Production mode with the driver pinned and spinning
	control.ForceHot()

	done := make(chan struct{})
	eng.Run(constants.DriverCore, done)
	<-done

	control.ShutdownWG.Wait()
	debug.DropMessage("EXIT", "Driver stopped")
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SYSTEM LIFECYCLE MANAGEMENT
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// setupSignalHandling configures graceful shutdown coordination.
// Uses control package's ShutdownWG for proper subsystem coordination.
func setupSignalHandling(mon *monitor.Monitor, store *statstore.Store) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Background signal handler for coordinated shutdown
	go func() {
		<-sigChan
		debug.DropMessage("SIGNAL", "Received interrupt, shutting down...")

		// Stop the heartbeat, then signal the driver to drain and exit
		mon.Stop()
		control.Shutdown()

		// Wait for the driver thread to complete graceful shutdown
		control.ShutdownWG.Wait()

		if store != nil {
			if err := store.Close(); err != nil {
				debug.DropError("JOURNAL_CLOSE", err)
			}
		}

		debug.DropMessage("SIGNAL", "All subsystems shutdown complete")
		os.Exit(0)
	}()
}
