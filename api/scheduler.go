/*
scheduler.go - Day-transition scheduler

PURPOSE:
  Periodically invokes the ledger's day transition so that unperformed
  prayers fold into the aggregate debt shortly after midnight, without any
  client having to be online at that moment.

DESIGN:
  - Background goroutine with a configurable check interval (default: one
    minute, per the single-writer model: the check is cheap and the
    persisted marker makes repeats free)
  - Idempotence lives in the ledger, not here: firing the check twice, or
    concurrently with an API call, accrues nothing twice
  - Transitions are logged; a failed check is logged and retried on the
    next tick

USAGE:
  scheduler := NewDayTransitionScheduler(ledger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - ledger/ledger.go: HandleDayTransition (the marker-guarded transition)
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/miqat/qada-engine/ledger"
)

// DayTransitionScheduler drives the ledger's midnight accrual on a timer.
type DayTransitionScheduler struct {
	Ledger        *ledger.DailyLedger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewDayTransitionScheduler creates a scheduler with the default interval.
func NewDayTransitionScheduler(led *ledger.DailyLedger) *DayTransitionScheduler {
	return &DayTransitionScheduler{
		Ledger:        led,
		CheckInterval: 1 * time.Minute,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ds *DayTransitionScheduler) Start() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !ds.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ds.ticker = time.NewTicker(ds.CheckInterval)
	ds.wg.Add(1)

	go ds.run()

	log.Printf("[Scheduler] Started with check interval: %v", ds.CheckInterval)
}

// Stop stops the scheduler.
func (ds *DayTransitionScheduler) Stop() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.ticker != nil {
		ds.ticker.Stop()
		close(ds.stop)
		ds.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ds *DayTransitionScheduler) run() {
	defer ds.wg.Done()

	// Run immediately on start
	ds.checkAndProcess()

	for {
		select {
		case <-ds.ticker.C:
			ds.checkAndProcess()
		case <-ds.stop:
			return
		}
	}
}

func (ds *DayTransitionScheduler) checkAndProcess() {
	ctx := context.Background()

	result, err := ds.Ledger.HandleDayTransition(ctx, time.Now())
	if err != nil {
		log.Printf("[Scheduler] Day transition check failed: %v", err)
		return
	}
	if result.NewDayStarted {
		log.Printf("[Scheduler] New day started: %d missed prayer(s) folded into debt", result.MissedPrayers.Total())
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (ds *DayTransitionScheduler) RunNow() {
	ds.checkAndProcess()
}
