package recoil

import (
	"context"
	"time"

	"github.com/recoilapp/recoil/pkg/errors"
	"github.com/recoilapp/recoil/pkg/logging"
)

// AutoUpdatesOn implements Client. It starts a background goroutine that
// runs a sync pass on the configured interval until AutoUpdatesOff is
// called. Starting an already-running loop is an error.
func (c *client) AutoUpdatesOn() error {
	c.updatesMu.Lock()
	defer c.updatesMu.Unlock()

	if c.updatesCancel != nil {
		return &errors.ConfigError{Component: "autoupdate", Message: "automatic updates already running"}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.updatesCancel = cancel
	c.updatesDone = make(chan struct{})

	go c.updateLoop(ctx, c.updatesDone)
	logging.Info().Dur("interval", c.options.updateInterval).Msg("Automatic updates started")
	return nil
}

// AutoUpdatesOff implements Client. It stops the update loop and waits
// for an in-flight tick to finish. Stopping a stopped loop is a no-op.
func (c *client) AutoUpdatesOff() error {
	c.updatesMu.Lock()
	cancel, done := c.updatesCancel, c.updatesDone
	c.updatesCancel, c.updatesDone = nil, nil
	c.updatesMu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	logging.Info().Msg("Automatic updates stopped")
	return nil
}

// updateLoop runs sync passes on a fixed cadence. A pass that overlaps a
// still-running one fails fast on the run token; that is logged and the
// tick skipped rather than queued.
func (c *client) updateLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.options.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := c.Sync(ctx)
			switch {
			case errors.IsSyncInProgress(err):
				logging.Warn().Msg("Skipping scheduled sync, previous pass still running")
			case err != nil:
				logging.Error().Err(err).Msg("Scheduled sync failed")
			default:
				logging.Info().Str("result", res.String()).Msg("Scheduled sync complete")
			}
		}
	}
}
