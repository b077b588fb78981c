package recoil

import (
	"context"
	"sync"
	"time"

	"github.com/recoilapp/recoil/pkg/errors"
	"github.com/recoilapp/recoil/pkg/logging"
	"github.com/recoilapp/recoil/pkg/mutation"
	"github.com/recoilapp/recoil/pkg/records"
)

// Sync implements Client. The pass moves through fetch, partition, diff,
// and emit; any failure before emission aborts the pass whole.
func (c *client) Sync(ctx context.Context, opts ...SyncOption) (*Result, error) {
	so := c.newSyncOptions(opts...)
	release, err := c.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	res := newResult(ModeSync)
	res.DryRun = so.dryRun
	ctx, cancel := c.passContext(ctx, res)
	defer cancel()
	log := logging.Ctx(ctx)

	log.Info().Dur("window", so.window).Msg("Starting sync pass")
	feedRows, storeRows, err := c.fetchSnapshots(ctx, so.window)
	if err != nil {
		return nil, err
	}
	res.FeedCount = len(feedRows)
	res.StoreCount = len(storeRows)

	// Positional pairing is meaningless on out-of-order snapshots, so
	// the ordering invariant is checked before any diffing.
	if err := validateOrder(feedRows, "feed"); err != nil {
		return nil, err
	}
	if err := validateOrder(storeRows, "store"); err != nil {
		return nil, err
	}

	newCount := partition(c.options.matcher, feedRows, storeRows)
	res.NewCount = newCount
	log.Info().
		Int("new", newCount).
		Int("existing", len(feedRows)-newCount).
		Msg("Partitioned feed snapshot")

	descriptors, updated, err := c.diff(ctx, feedRows, storeRows, newCount)
	if err != nil {
		return nil, err
	}
	res.UpdatedCount = updated

	var notification *mutation.Descriptor
	if so.notify && newCount > 0 {
		d := mutation.NewNotification(mutation.AlertText(newCount))
		notification = &d
	}
	res.Descriptors = descriptors
	if notification != nil {
		res.Descriptors = append(res.Descriptors, *notification)
	}

	if err := c.emit(ctx, res, so, descriptors, notification); err != nil {
		return nil, err
	}

	res.finish()
	c.finishPass(ctx, res, so)
	return res, nil
}

// passContext derives the pass-scoped context: hard timeout plus a
// logger carrying the pass id.
func (c *client) passContext(ctx context.Context, res *Result) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, c.options.timeout)
	ctx = logging.WithPass(ctx, res.PassID)
	ctx = logging.WithField(ctx, "mode", string(res.Mode))
	return ctx, cancel
}

// fetchSnapshots retrieves the feed and store snapshots concurrently.
func (c *client) fetchSnapshots(ctx context.Context, window time.Duration) (feedRows, storeRows []records.CrimeRecord, err error) {
	var (
		wg       sync.WaitGroup
		feedErr  error
		storeErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		feedRows, feedErr = c.options.feed.Fetch(ctx)
	}()
	go func() {
		defer wg.Done()
		storeRows, storeErr = c.options.snapshots.Snapshot(ctx, window)
	}()
	wg.Wait()

	if feedErr != nil {
		return nil, nil, feedErr
	}
	if storeErr != nil {
		return nil, nil, storeErr
	}
	return feedRows, storeRows, nil
}

// validateOrder verifies a snapshot is most-recent-first. Timestamps use
// the canonical layout, so lexicographic comparison is chronological.
func validateOrder(rows []records.CrimeRecord, snapshot string) error {
	for i := 1; i < len(rows); i++ {
		if rows[i].OccurredAt > rows[i-1].OccurredAt {
			return &errors.SnapshotOrderError{Snapshot: snapshot, Index: i}
		}
	}
	return nil
}

// partition counts the leading feed rows not yet present in the store.
// Every row before the first match against the store's most recent
// record is new; everything at and after it is existing. An empty store
// snapshot makes the entire feed new.
func partition(m records.Matcher, feedRows, storeRows []records.CrimeRecord) int {
	if len(storeRows) == 0 {
		return len(feedRows)
	}
	mostRecent := &storeRows[0]
	count := 0
	for i := range feedRows {
		if m.SameEvent(&feedRows[i], mostRecent) {
			break
		}
		count++
	}
	return count
}

// diff turns the partitioned feed into mutation descriptors: a create per
// new row, then positional pairing of existing rows against the store
// snapshot. Pairing stops at the first misalignment rather than guessing;
// descriptors computed before the boundary are kept.
func (c *client) diff(ctx context.Context, feedRows, storeRows []records.CrimeRecord, newCount int) ([]mutation.Descriptor, int, error) {
	log := logging.Ctx(ctx)

	var out []mutation.Descriptor
	for i := 0; i < newCount; i++ {
		d, err := mutation.NewCreate(mutation.CreatePayload(&feedRows[i]))
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}

	updated := 0
	existing := feedRows[newCount:]
	for i := range existing {
		if i >= len(storeRows) {
			log.Warn().
				Int("pair", i).
				Msg("Store snapshot exhausted before feed, stopping positional pairing")
			break
		}
		changed, err := records.Authoritative(c.options.matcher, &existing[i], &storeRows[i])
		if err != nil {
			log.Warn().Err(err).
				Int("pair", i).
				Msg("Positional pairing misaligned, stopping")
			break
		}
		payload := mutation.UpdatePayload(&existing[i], changed)
		if len(payload) == 0 {
			continue
		}
		d, err := mutation.NewUpdate(existing[i].ExternalID, payload)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
		updated++
	}
	return out, updated, nil
}

// emit transmits the computed descriptors unless the pass is a dry run.
// The notification travels on its own transport after the batches land.
func (c *client) emit(ctx context.Context, res *Result, so *syncOptions, descriptors []mutation.Descriptor, notification *mutation.Descriptor) error {
	log := logging.Ctx(ctx)
	if so.dryRun {
		log.Info().Int("descriptors", len(res.Descriptors)).Msg("Dry run, skipping transmission")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(descriptors) > 0 {
		batches, err := c.options.transport.Transmit(ctx, descriptors)
		if err != nil {
			return err
		}
		res.Batches = batches
		log.Info().Int("batches", len(batches)).Msg("Transmitted mutation batches")
	}

	if notification != nil {
		if c.options.notifier == nil {
			log.Warn().Msg("Notification requested but no notifier configured, skipping")
			return nil
		}
		if err := c.options.notifier.Notify(ctx, *notification); err != nil {
			return err
		}
		res.NotificationSent = true
		log.Info().Str("alert", notification.Alert).Msg("Sent push notification")
	}
	return nil
}

// finishPass logs the summary, writes the report if requested, and runs
// registered hooks. Report failures are logged, not fatal; the mutations
// already landed.
func (c *client) finishPass(ctx context.Context, res *Result, so *syncOptions) {
	log := logging.Ctx(ctx)
	log.Info().
		Int("new", res.NewCount).
		Int("updated", res.UpdatedCount).
		Dur("duration", res.Duration).
		Msg("Pass complete")
	if so.reportPath != "" {
		if err := res.SaveReport(so.reportPath); err != nil {
			log.Error().Err(err).Str("path", so.reportPath).Msg("Failed to write pass report")
		}
	}
	c.firePassHooks(res)
}
