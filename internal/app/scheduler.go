package app

import (
	"context"
	"fmt"
	"time"

	"github.com/klokku/calsync/pkg/reconciliation"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const scheduledRunTimeout = 10 * time.Minute

// NewScheduler runs a full reconciliation on every tick of spec, a standard
// five-field cron expression. Overlapping runs are skipped.
func NewScheduler(spec string, reconciler *reconciliation.Reconciler) (*cron.Cron, error) {
	scheduler := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	_, err := scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), scheduledRunTimeout)
		defer cancel()

		log.Info("Starting scheduled reconciliation")
		result, err := reconciler.ReconcileAll(ctx, false)
		if err != nil {
			log.Errorf("Scheduled reconciliation failed: %v", err)
		}
		log.Infof("Scheduled reconciliation done: planned=%d executed=%d failed=%d orphans=%d",
			result.Report.Planned, result.Report.Executed, result.Report.Failed, result.Report.Orphans)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reconciliation schedule %q: %w", spec, err)
	}
	return scheduler, nil
}
