// Package constants provides shared default values used across the
// recoil packages and the command-line interface.
package constants

import "time"

// Sync pass defaults.
const (
	// DefaultWindow bounds how far back the store snapshot reaches
	// when no explicit window is configured.
	DefaultWindow = 30 * 24 * time.Hour

	// DefaultPassTimeout caps a single sync, reload, or enrich pass.
	DefaultPassTimeout = 5 * time.Minute

	// DefaultUpdateInterval is how often automatic updates run a
	// sync pass. The original deployment ran once a day.
	DefaultUpdateInterval = 24 * time.Hour
)

// Transport defaults.
const (
	// DefaultHTTPTimeout applies to outbound HTTP requests when the
	// caller does not supply its own client.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultBatchChunkSize is the maximum number of mutation
	// descriptors transmitted in a single batch request.
	DefaultBatchChunkSize = 50
)
