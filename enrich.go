package recoil

import (
	"context"

	"github.com/recoilapp/recoil/pkg/logging"
	"github.com/recoilapp/recoil/pkg/mutation"
	"github.com/recoilapp/recoil/pkg/records"
)

// Enrich implements Client. Data flows from the feed into the store:
// each store record is matched against the feed and any fields it lacks
// are filled from the matching row, geocoding addresses gained along the
// way. Fields the store already holds are never overwritten.
func (c *client) Enrich(ctx context.Context, opts ...SyncOption) (*Result, error) {
	so := c.newSyncOptions(opts...)
	release, err := c.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	res := newResult(ModeEnrich)
	res.DryRun = so.dryRun
	ctx, cancel := c.passContext(ctx, res)
	defer cancel()
	log := logging.Ctx(ctx)

	log.Info().Dur("window", so.window).Msg("Starting enrich pass")
	feedRows, storeRows, err := c.fetchSnapshots(ctx, so.window)
	if err != nil {
		return nil, err
	}
	res.FeedCount = len(feedRows)
	res.StoreCount = len(storeRows)

	var descriptors []mutation.Descriptor
	for i := range storeRows {
		row := matchFeedRow(c.options.matcher, &storeRows[i], feedRows)
		if row == nil {
			continue
		}
		fill := records.FillMissing(ctx, &storeRows[i], row, c.options.geocoder)
		if len(fill) == 0 {
			continue
		}
		d, err := mutation.NewUpdate(storeRows[i].ExternalID, mutation.Payload(fill))
		if err != nil {
			log.Warn().Err(err).Int("record", i).Msg("Skipping unaddressable store record")
			continue
		}
		descriptors = append(descriptors, d)
	}
	res.UpdatedCount = len(descriptors)
	res.Descriptors = descriptors
	log.Info().Int("enriched", len(descriptors)).Msg("Computed fill-missing updates")

	if err := c.emit(ctx, res, so, descriptors, nil); err != nil {
		return nil, err
	}

	res.finish()
	c.finishPass(ctx, res, so)
	return res, nil
}

// matchFeedRow finds the first feed row describing the same event as the
// store record, or nil when none does.
func matchFeedRow(m records.Matcher, target *records.CrimeRecord, feedRows []records.CrimeRecord) *records.CrimeRecord {
	for i := range feedRows {
		if m.SameEvent(target, &feedRows[i]) {
			return &feedRows[i]
		}
	}
	return nil
}
