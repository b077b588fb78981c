package recoil

import (
	"context"

	"github.com/recoilapp/recoil/pkg/logging"
	"github.com/recoilapp/recoil/pkg/mutation"
)

// Reload implements Client. Identity matching is bypassed entirely: every
// feed row becomes a create carrying its ordinal position in the feed,
// regardless of what the store already holds.
func (c *client) Reload(ctx context.Context, opts ...SyncOption) (*Result, error) {
	so := c.newSyncOptions(opts...)
	release, err := c.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	res := newResult(ModeReload)
	res.DryRun = so.dryRun
	ctx, cancel := c.passContext(ctx, res)
	defer cancel()
	log := logging.Ctx(ctx)

	log.Info().Msg("Starting full-feed reload")
	feedRows, err := c.options.feed.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	res.FeedCount = len(feedRows)

	descriptors := make([]mutation.Descriptor, 0, len(feedRows))
	for i := range feedRows {
		row := feedRows[i]
		row.SourceRowNumber = i + 1
		d, err := mutation.NewCreate(mutation.CreatePayload(&row))
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}
	res.NewCount = len(descriptors)
	res.Descriptors = descriptors

	if err := c.emit(ctx, res, so, descriptors, nil); err != nil {
		return nil, err
	}

	res.finish()
	c.finishPass(ctx, res, so)
	return res, nil
}
