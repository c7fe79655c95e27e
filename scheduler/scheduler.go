package scheduler

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/danuarts/takeout-app/models"
	"github.com/danuarts/takeout-app/services"
	"github.com/danuarts/takeout-app/utils"
)

// Scheduler runs the two recurring sweeps over stalled orders: unpaid
// orders are auto-cancelled after 15 minutes, orders stuck in delivery
// are auto-completed after 60 minutes. Both drive the lifecycle
// manager's batch transition, so every row is still protected by the
// conditional status filter against live user actions.
type Scheduler struct {
	svc *services.OrderService

	UnpaidInterval   time.Duration
	UnpaidTimeout    time.Duration
	DeliveryInterval time.Duration
	DeliveryTimeout  time.Duration

	unpaidRunning   atomic.Bool
	deliveryRunning atomic.Bool

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func New(svc *services.OrderService) *Scheduler {
	return &Scheduler{
		svc:              svc,
		UnpaidInterval:   time.Minute,
		UnpaidTimeout:    15 * time.Minute,
		DeliveryInterval: 24 * time.Hour,
		DeliveryTimeout:  60 * time.Minute,
		stop:             make(chan struct{}),
	}
}

// Start launches both sweep loops. Nobody waits on a tick: a failed
// tick is logged and retried on the next one.
func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.loop(s.UnpaidInterval, s.sweepUnpaidTick)
	go s.loop(s.DeliveryInterval, s.sweepDeliveryTick)
	utils.InfoLogger.Println("timeout scheduler started")
}

// Stop terminates the loops and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func (s *Scheduler) loop(interval time.Duration, tick func()) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			tick()
		case <-s.stop:
			return
		}
	}
}

// sweepUnpaidTick skips the tick entirely if the previous one is still
// running; two overlapping sweeps of the same job must never race.
func (s *Scheduler) sweepUnpaidTick() {
	if !s.unpaidRunning.CompareAndSwap(false, true) {
		utils.InfoLogger.Println("unpaid sweep still running, skipping tick")
		return
	}
	defer s.unpaidRunning.Store(false)

	if _, err := s.SweepUnpaid(time.Now()); err != nil {
		utils.ErrorLogger.Printf("unpaid sweep failed: %v", err)
	}
}

func (s *Scheduler) sweepDeliveryTick() {
	if !s.deliveryRunning.CompareAndSwap(false, true) {
		utils.InfoLogger.Println("delivery sweep still running, skipping tick")
		return
	}
	defer s.deliveryRunning.Store(false)

	if _, err := s.SweepDelivery(time.Now()); err != nil {
		utils.ErrorLogger.Printf("delivery sweep failed: %v", err)
	}
}

// SweepUnpaid cancels every order still unpaid since before
// now - UnpaidTimeout.
func (s *Scheduler) SweepUnpaid(now time.Time) (int64, error) {
	cutoff := now.Add(-s.UnpaidTimeout)
	return s.svc.BatchTimeoutTransition(
		models.StatusPendingPayment, cutoff,
		models.StatusCancelled, models.CancelReasonTimeout,
	)
}

// SweepDelivery completes every order stuck in delivery since before
// now - DeliveryTimeout.
func (s *Scheduler) SweepDelivery(now time.Time) (int64, error) {
	cutoff := now.Add(-s.DeliveryTimeout)
	return s.svc.BatchTimeoutTransition(
		models.StatusDeliveryInProgress, cutoff,
		models.StatusCompleted, "",
	)
}
