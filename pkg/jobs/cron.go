package jobs

import (
	"github.com/robfig/cron/v3"

	"github.com/jordanlanch/outreach/pkg/leads"
	"github.com/jordanlanch/outreach/pkg/logger"
	"github.com/jordanlanch/outreach/pkg/platform"
)

// CronManager owns the scheduled maintenance jobs
type CronManager struct {
	cron     *cron.Cron
	platform *platform.Manager
	store    *leads.Store
	log      logger.Logger
}

// NewCronManager creates a cron manager bound to the platform manager
// and the lead store
func NewCronManager(pm *platform.Manager, store *leads.Store, log logger.Logger) *CronManager {
	if log == nil {
		log = logger.Default()
	}
	return &CronManager{
		cron:     cron.New(),
		platform: pm,
		store:    store,
		log:      log,
	}
}

// SetupJobs registers all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	// Monthly on the 1st at midnight: reset the subscription usage counter
	_, err := cm.cron.AddFunc("0 0 1 * *", func() {
		cm.log.Info("running monthly usage reset job")
		if err := cm.platform.ResetUsage(); err != nil {
			cm.log.Error("usage reset failed", "error", err)
			return
		}
		cm.log.Info("monthly usage reset completed")
	})
	if err != nil {
		return err
	}

	// Nightly at 3 AM: recompute lead scores from accumulated activity
	_, err = cm.cron.AddFunc("0 3 * * *", func() {
		cm.log.Info("running nightly lead rescore job")
		changed := cm.store.Rescore()
		cm.log.Info("nightly rescore completed", "changed", changed)
	})
	if err != nil {
		return err
	}

	return nil
}

// Start begins job execution in the background
func (cm *CronManager) Start() {
	cm.cron.Start()
	cm.log.Info("cron jobs started")
}

// Stop halts job scheduling; running jobs finish
func (cm *CronManager) Stop() {
	cm.cron.Stop()
	cm.log.Info("cron jobs stopped")
}
