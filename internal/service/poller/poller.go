package poller

import (
	"context"
	"fmt"
	"time"

	dsvc "IndexForge/internal/domain/service"
	applogger "IndexForge/pkg/logger"

	"github.com/robfig/cron/v3"
)

// warmTimeout bounds one warming pass per pipeline.
const warmTimeout = 2 * time.Minute

// Poller pre-computes pipeline results on a cron schedule so interactive
// requests mostly hit a fresh cache. Warming failures are logged and the
// schedule keeps running; bounded staleness is acceptable here.
type Poller struct {
	cron    *cron.Cron
	targets []dsvc.Warmable
	log     *applogger.Logger
}

// New creates a poller for the given cron schedule (standard five-field or
// @every syntax).
func New(schedule string, targets []dsvc.Warmable, log *applogger.Logger) (*Poller, error) {
	p := &Poller{
		cron:    cron.New(),
		targets: targets,
		log:     log,
	}
	if _, err := p.cron.AddFunc(schedule, p.warmAll); err != nil {
		return nil, fmt.Errorf("parse poller schedule %q: %w", schedule, err)
	}
	return p, nil
}

// Start runs one immediate warming pass and begins the schedule.
func (p *Poller) Start() {
	go p.warmAll()
	p.cron.Start()
}

// Stop halts the schedule and waits for a running pass, up to the context
// deadline.
func (p *Poller) Stop(ctx context.Context) {
	done := p.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (p *Poller) warmAll() {
	for _, target := range p.targets {
		ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
		start := time.Now()
		err := target.Warm(ctx)
		cancel()

		if err != nil {
			if p.log != nil {
				p.log.Warn("cache warm failed",
					applogger.String("pipeline", target.Name()),
					applogger.Error(err),
				)
			}
			continue
		}
		if p.log != nil {
			p.log.Debug("cache warmed",
				applogger.String("pipeline", target.Name()),
				applogger.Duration("took", time.Since(start)),
			)
		}
	}
}
