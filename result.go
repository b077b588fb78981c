package recoil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"

	"github.com/recoilapp/recoil/pkg/mutation"
)

// Mode identifies which kind of pass produced a Result.
type Mode string

const (
	ModeSync   Mode = "sync"
	ModeReload Mode = "reload"
	ModeEnrich Mode = "enrich"
)

// Result records everything a pass produced. Descriptors and Batches are
// kept for inspection by callers; the YAML report carries the summary.
type Result struct {
	PassID           string        `yaml:"pass_id" json:"pass_id"`
	Mode             Mode          `yaml:"mode" json:"mode"`
	StartedAt        time.Time     `yaml:"started_at" json:"started_at"`
	Duration         time.Duration `yaml:"duration" json:"duration"`
	FeedCount        int           `yaml:"feed_count" json:"feed_count"`
	StoreCount       int           `yaml:"store_count" json:"store_count"`
	NewCount         int           `yaml:"new_count" json:"new_count"`
	UpdatedCount     int           `yaml:"updated_count" json:"updated_count"`
	NotificationSent bool          `yaml:"notification_sent" json:"notification_sent"`
	DryRun           bool          `yaml:"dry_run" json:"dry_run"`

	Descriptors []mutation.Descriptor  `yaml:"-" json:"-"`
	Batches     []mutation.BatchResult `yaml:"-" json:"-"`
}

func newResult(mode Mode) *Result {
	return &Result{
		PassID:    uuid.NewString(),
		Mode:      mode,
		StartedAt: time.Now().UTC(),
	}
}

// finish stamps the duration. Called once per pass.
func (r *Result) finish() {
	r.Duration = time.Since(r.StartedAt)
}

// String summarizes the pass for log output.
func (r *Result) String() string {
	return fmt.Sprintf("%s pass %s: %d new, %d updated in %s",
		r.Mode, r.PassID, r.NewCount, r.UpdatedCount, r.Duration.Round(time.Millisecond))
}

// SaveReport writes the pass summary as YAML, creating parent
// directories as needed.
func (r *Result) SaveReport(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal pass report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write pass report: %w", err)
	}
	return nil
}
