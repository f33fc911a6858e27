// README: Background sweep deleting offers whose order has closed.
package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"mashwar/internal/modules/offer"
)

// OfferPurgeJob periodically removes offers left behind by orders that no
// longer accept bids (accepted, cancelled, delivered). The sweep keeps the
// offers store from growing without bound; a missed run only delays cleanup.
type OfferPurgeJob struct {
	offers *offer.Service
	spec   string
	cron   *cron.Cron
	logger *slog.Logger
}

// NewOfferPurgeJob creates the sweep with a standard cron spec: a 5-field
// expression or a descriptor like "@every 1m".
func NewOfferPurgeJob(offers *offer.Service, spec string, logger *slog.Logger) *OfferPurgeJob {
	return &OfferPurgeJob{
		offers: offers,
		spec:   spec,
		cron:   cron.New(),
		logger: logger.With("component", "offer_purge_job"),
	}
}

func (j *OfferPurgeJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		ctx := context.Background()
		removed, err := j.offers.PurgeClosed(ctx)
		if err != nil {
			j.logger.ErrorContext(ctx, "offer purge sweep hit errors", "removed", removed, "error", err)
			return
		}
		if removed > 0 {
			j.logger.InfoContext(ctx, "purged offers for closed orders", "removed", removed)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("offer purge job started", "spec", j.spec)
	return nil
}

func (j *OfferPurgeJob) Stop() {
	j.cron.Stop()
	j.logger.Info("offer purge job stopped")
}
