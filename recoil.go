// Package recoil reconciles a free-text casualty feed against a remote
// record store and transmits the minimal set of mutations needed to bring
// the store up to date.
//
// A Client runs three kinds of passes. Sync partitions the feed snapshot
// into new and existing records, emits creates for the new ones and
// field-level updates for the existing ones, and optionally announces the
// new records with a push notification. Reload rebuilds the store from
// scratch by emitting a create for every feed row. Enrich flows the other
// way, filling gaps in store records from the feed and a geocoder without
// overwriting anything already present.
//
// Basic usage:
//
//	source := feed.NewSheetSource(feedURL)
//	st, err := store.New(store.Config{ApplicationID: appID, APIKey: key})
//	if err != nil {
//		return err
//	}
//	client, err := recoil.New(
//		recoil.WithFeed(source),
//		recoil.WithStore(st),
//		recoil.WithNotifications(true),
//	)
//	if err != nil {
//		return err
//	}
//	result, err := client.Sync(ctx)
package recoil

import (
	"context"
	"sync"
	"time"

	"github.com/recoilapp/recoil/pkg/errors"
	"github.com/recoilapp/recoil/pkg/mutation"
	"github.com/recoilapp/recoil/pkg/records"
)

// FeedSource produces the feed snapshot: parsed records ordered
// most-recent-first, exactly as the upstream spreadsheet presents them.
type FeedSource interface {
	Fetch(ctx context.Context) ([]records.CrimeRecord, error)
}

// SnapshotSource produces the store snapshot: records already persisted
// remotely, ordered most-recent-first, optionally bounded to a lookback
// window. A window of zero means unbounded.
type SnapshotSource interface {
	Snapshot(ctx context.Context, window time.Duration) ([]records.CrimeRecord, error)
}

// Transport carries create and update descriptors to the remote store.
type Transport interface {
	Transmit(ctx context.Context, descriptors []mutation.Descriptor) ([]mutation.BatchResult, error)
}

// Notifier delivers a notification descriptor to subscribed devices.
type Notifier interface {
	Notify(ctx context.Context, d mutation.Descriptor) error
}

// Store bundles the three store-facing roles. *store.Client satisfies it.
type Store interface {
	SnapshotSource
	Transport
	Notifier
}

// PassHook runs after a pass completes successfully. Hooks are invoked
// synchronously in registration order while the run token is still held.
type PassHook func(*Result)

// Client is the reconciliation engine.
type Client interface {
	// Sync runs a full reconciliation pass: fetch both snapshots,
	// partition, diff, and transmit the resulting mutations.
	Sync(ctx context.Context, opts ...SyncOption) (*Result, error)

	// Reload emits a create for every feed row, assigning synthetic
	// ordinal identities. It ignores the store snapshot entirely and is
	// meant for rebuilding an empty collection.
	Reload(ctx context.Context, opts ...SyncOption) (*Result, error)

	// Enrich fills missing fields on store records from matching feed
	// rows, geocoding newly filled addresses. Populated fields are never
	// overwritten.
	Enrich(ctx context.Context, opts ...SyncOption) (*Result, error)

	// AutoUpdatesOn starts a background loop that runs Sync on the
	// configured interval. AutoUpdatesOff stops it.
	AutoUpdatesOn() error
	AutoUpdatesOff() error

	// OnPassComplete registers a hook invoked after each successful pass.
	OnPassComplete(h PassHook)
}

// client is the concrete engine behind Client.
type client struct {
	options *options

	// runMu is the run token: at most one pass executes at a time.
	// TryLock failure maps to ErrSyncInProgress rather than queueing.
	runMu sync.Mutex

	hooksMu sync.Mutex
	hooks   []PassHook

	updatesMu     sync.Mutex
	updatesCancel context.CancelFunc
	updatesDone   chan struct{}
}

// New builds a Client from the supplied options. A feed source and a
// store (or its individual roles) are required; everything else has
// working defaults.
func New(opts ...Option) (Client, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &client{options: options}, nil
}

// OnPassComplete implements Client.
func (c *client) OnPassComplete(h PassHook) {
	if h == nil {
		return
	}
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.hooks = append(c.hooks, h)
}

// acquire takes the run token, failing fast when a pass is already
// executing. The returned release must be called exactly once.
func (c *client) acquire() (func(), error) {
	if !c.runMu.TryLock() {
		return nil, errors.ErrSyncInProgress
	}
	return c.runMu.Unlock, nil
}

// firePassHooks runs registered hooks with the finished result.
func (c *client) firePassHooks(res *Result) {
	c.hooksMu.Lock()
	hooks := make([]PassHook, len(c.hooks))
	copy(hooks, c.hooks)
	c.hooksMu.Unlock()
	for _, h := range hooks {
		h(res)
	}
}
