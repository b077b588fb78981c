package recoil

import (
	"time"

	"github.com/recoilapp/recoil/pkg/constants"
	"github.com/recoilapp/recoil/pkg/errors"
	"github.com/recoilapp/recoil/pkg/records"
)

// options holds the client configuration assembled by New. All state is
// explicit; nothing reads package-level globals.
type options struct {
	feed      FeedSource
	snapshots SnapshotSource
	transport Transport
	notifier  Notifier
	geocoder  records.Geocoder
	matcher   records.Matcher

	window         time.Duration
	timeout        time.Duration
	notify         bool
	updateInterval time.Duration
}

// Option configures a Client at construction time.
type Option func(*options) error

func newOptions(opts ...Option) (*options, error) {
	o := &options{
		matcher:        records.NewTieredMatcher(),
		window:         constants.DefaultWindow,
		timeout:        constants.DefaultPassTimeout,
		updateInterval: constants.DefaultUpdateInterval,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.feed == nil {
		return nil, &errors.ConfigError{Component: "client", Message: "feed source is required"}
	}
	if o.snapshots == nil {
		return nil, &errors.ConfigError{Component: "client", Message: "snapshot source is required"}
	}
	if o.transport == nil {
		return nil, &errors.ConfigError{Component: "client", Message: "mutation transport is required"}
	}
	if o.notify && o.notifier == nil {
		return nil, &errors.ConfigError{Component: "client", Message: "notifications enabled without a notifier"}
	}
	return o, nil
}

// WithFeed sets the feed source.
func WithFeed(f FeedSource) Option {
	return func(o *options) error {
		o.feed = f
		return nil
	}
}

// WithStore wires all three store roles from a single implementation.
func WithStore(s Store) Option {
	return func(o *options) error {
		o.snapshots = s
		o.transport = s
		o.notifier = s
		return nil
	}
}

// WithSnapshotSource overrides just the snapshot role.
func WithSnapshotSource(s SnapshotSource) Option {
	return func(o *options) error {
		o.snapshots = s
		return nil
	}
}

// WithTransport overrides just the mutation transport role.
func WithTransport(t Transport) Option {
	return func(o *options) error {
		o.transport = t
		return nil
	}
}

// WithNotifier overrides just the notification role.
func WithNotifier(n Notifier) Option {
	return func(o *options) error {
		o.notifier = n
		return nil
	}
}

// WithGeocoder sets the geocoder used by Enrich when an address is
// filled in. Without one, coordinates are simply left empty.
func WithGeocoder(g records.Geocoder) Option {
	return func(o *options) error {
		o.geocoder = g
		return nil
	}
}

// WithMatcher sets the identity strategy used for partitioning and
// merging. Defaults to the tiered matcher.
func WithMatcher(m records.Matcher) Option {
	return func(o *options) error {
		if m == nil {
			return &errors.ConfigError{Component: "client", Message: "matcher must not be nil"}
		}
		o.matcher = m
		return nil
	}
}

// WithWindow bounds the store snapshot lookback. Zero means unbounded.
func WithWindow(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return &errors.ConfigError{Component: "client", Message: "window must not be negative"}
		}
		o.window = d
		return nil
	}
}

// WithNotifications enables the new-record push notification on Sync.
func WithNotifications(enabled bool) Option {
	return func(o *options) error {
		o.notify = enabled
		return nil
	}
}

// WithTimeout caps a single pass. A pass that exceeds it is aborted
// whole; no partial transmissions are retried.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return &errors.ConfigError{Component: "client", Message: "timeout must be positive"}
		}
		o.timeout = d
		return nil
	}
}

// WithAutoUpdateInterval sets the cadence of the automatic update loop.
func WithAutoUpdateInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return &errors.ConfigError{Component: "client", Message: "update interval must be positive"}
		}
		o.updateInterval = d
		return nil
	}
}

// syncOptions is the per-pass configuration, seeded from the client
// options and adjusted by SyncOption values.
type syncOptions struct {
	window     time.Duration
	notify     bool
	dryRun     bool
	reportPath string
}

// SyncOption adjusts a single pass without touching client state.
type SyncOption func(*syncOptions)

func (c *client) newSyncOptions(opts ...SyncOption) *syncOptions {
	so := &syncOptions{
		window: c.options.window,
		notify: c.options.notify,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(so)
		}
	}
	return so
}

// WithDryRun computes and records descriptors without transmitting them.
func WithDryRun(enabled bool) SyncOption {
	return func(so *syncOptions) {
		so.dryRun = enabled
	}
}

// WithNotify overrides the client-level notification setting for one pass.
func WithNotify(enabled bool) SyncOption {
	return func(so *syncOptions) {
		so.notify = enabled
	}
}

// WithPassWindow overrides the snapshot window for one pass.
func WithPassWindow(d time.Duration) SyncOption {
	return func(so *syncOptions) {
		if d >= 0 {
			so.window = d
		}
	}
}

// WithReport writes a YAML pass report to the given path after the pass.
func WithReport(path string) SyncOption {
	return func(so *syncOptions) {
		so.reportPath = path
	}
}
