package scheduler

import (
	"context"
	"github.com/roylee0704/gron"
	"srtrack/internal/providers"
	"srtrack/internal/scheduler/interfaces"
	"srtrack/internal/services"
	"srtrack/internal/structures"
	"sync"
	"time"
)

type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	service services.TrackingServiceInterface
	cron    *gron.Cron
	opsMu   sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := s.config.Tracking.Interval

	s.cron.AddFunc(gron.Every(interval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		if s.ctx.Err() != nil || s.service.SessionCount() == 0 {
			return
		}
		start := time.Now()
		s.service.TickAll(s.ctx)
		s.logger.Debugf(providers.TypeApp, "Ticked %d sessions in %s", s.service.SessionCount(), time.Since(start))
	})

	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Tracking every %s", interval)
}

// Stop halts the ticks, waits for a running one and stops every session.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.cancel()

	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	s.service.StopAll()
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.TrackingServiceInterface) interfaces.SchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		config:  config,
		logger:  logger,
		service: service,
		ctx:     ctx,
		cancel:  cancel,
	}
}
