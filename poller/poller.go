// Package poller owns the polling cadence: it periodically refreshes the
// controller status over the serial link and appends each result to the
// CSV history log. The protocol core knows nothing about intervals; the
// poller is the single caller that serializes repeated status reads.
package poller

import (
	"context"
	"time"

	"github.com/arloliu/go-rkc/controller"
	"github.com/arloliu/go-rkc/logger"
)

// DefaultInterval is the default polling cadence.
const DefaultInterval = 10 * time.Second

// Poller drives fixed-interval status polls.
type Poller struct {
	ctrl     *controller.Controller
	history  *HistoryLog
	interval time.Duration
	logger   logger.Logger
}

// New creates a Poller. history may be nil to poll without recording.
func New(ctrl *controller.Controller, history *HistoryLog, interval time.Duration, l logger.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if l == nil {
		l = logger.GetLogger()
	}

	return &Poller{
		ctrl:     ctrl,
		history:  history,
		interval: interval,
		logger:   l,
	}
}

// Run polls until ctx is cancelled. The schedule is drift-free: each poll
// is due one interval after the previous due time, not after the previous
// completion, so slow transactions do not stretch the cadence.
//
// A failed poll is logged and leaves no history record; the loop keeps
// running so the link recovers without intervention once the controller
// responds again.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("poller: started", "interval", p.interval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	next := time.Now()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller: stopped")

			return
		case <-timer.C:
		}

		p.pollOnce()

		next = next.Add(p.interval)
		timer.Reset(time.Until(next))
	}
}

func (p *Poller) pollOnce() {
	status, err := p.ctrl.RefreshStatus()
	if err != nil {
		p.logger.Error("poller: status poll failed", "error", err)

		return
	}

	if p.history == nil {
		return
	}

	if err := p.history.Append(status); err != nil {
		p.logger.Error("poller: history append failed", "error", err)
	}
}
