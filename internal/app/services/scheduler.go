package services

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/questforge/points-core/internal/infrastructures"
	"github.com/sirupsen/logrus"
)

// Scheduler runs the periodic maintenance jobs: closing quests past their
// deadline and expiring orders nobody claimed.
type Scheduler struct {
	questService *QuestService
	orderService *OrderService
}

func NewScheduler(questService *QuestService, orderService *OrderService) *Scheduler {
	return &Scheduler{
		questService: questService,
		orderService: orderService,
	}
}

func (s *Scheduler) Start() {
	sched, err := gocron.NewScheduler()
	if err != nil {
		logrus.Fatalf("failed to create scheduler: %v", err)
	}

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			closed, err := s.questService.DeactivateExpired(time.Now())
			if err != nil {
				logrus.Warnf("quest deadline sweep failed: %v", err)
				return
			}
			if closed > 0 {
				logrus.Infof("deactivated %d expired quests", closed)
			}
		}),
	)

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			ttl := time.Duration(infrastructures.Config.ORDER_CLAIM_TTL_HOURS) * time.Hour
			expired, err := s.orderService.ExpireStale(time.Now().Add(-ttl))
			if err != nil {
				logrus.Warnf("stale order sweep failed: %v", err)
				return
			}
			if expired > 0 {
				logrus.Infof("expired %d unclaimed orders", expired)
			}
		}),
	)

	sched.Start()
}
