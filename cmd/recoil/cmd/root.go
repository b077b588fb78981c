// Package cmd implements the recoil command tree.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/recoilapp/recoil"
	"github.com/recoilapp/recoil/internal/feed"
	"github.com/recoilapp/recoil/internal/geocode"
	"github.com/recoilapp/recoil/internal/store"
	"github.com/recoilapp/recoil/pkg/constants"
	"github.com/recoilapp/recoil/pkg/errors"
	"github.com/recoilapp/recoil/pkg/logging"
	"github.com/recoilapp/recoil/pkg/records"
)

var (
	cfgFile string

	versionString = "dev"
	commitString  = "unknown"
	dateString    = "unknown"
)

// SetVersionInfo receives build metadata from main.
func SetVersionInfo(version, commit, date string) {
	versionString, commitString, dateString = version, commit, date
}

var rootCmd = &cobra.Command{
	Use:   "recoil",
	Short: "Reconcile the Chicago casualty feed against the record store",
	Long: `Recoil ingests the free-text casualty spreadsheet feed, reconciles it
against the remote record store, and transmits the minimal set of batched
mutations needed to bring the store up to date.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		return initLogging(cmd)
	},
}

// Execute runs the command tree under the signal-aware context.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Command failed")
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.recoil.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "auto", "log format (auto|console|json)")
	rootCmd.PersistentFlags().String("log-file", "", "also write JSON logs to this rotating file")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
}

// initConfig loads .env, the YAML config file, and RECOIL_* environment
// variables, in increasing order of precedence below the flags.
func initConfig() error {
	// Best effort; a missing .env is the common case.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".recoil")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RECOIL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("feed.url", "")
	viper.SetDefault("store.base_url", store.DefaultBaseURL)
	viper.SetDefault("sync.days", 30)
	viper.SetDefault("sync.timeout", constants.DefaultPassTimeout)
	viper.SetDefault("update.interval", constants.DefaultUpdateInterval)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// initLogging wires the default logger from the log.* settings. The
// console writer is used on a terminal, JSON elsewhere, and an optional
// rotating file always receives JSON.
func initLogging(cmd *cobra.Command) error {
	level, err := zerolog.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	var primary io.Writer = cmd.ErrOrStderr()
	switch viper.GetString("log.format") {
	case "console":
		primary = zerolog.ConsoleWriter{Out: primary, TimeFormat: time.Kitchen}
	case "json":
		// raw writer already emits JSON
	case "auto", "":
		if isTerminal(primary) {
			primary = zerolog.ConsoleWriter{Out: primary, TimeFormat: time.Kitchen}
		}
	default:
		return fmt.Errorf("unknown log format %q", viper.GetString("log.format"))
	}

	writer := primary
	if path := viper.GetString("log.file"); path != "" {
		rotated := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		writer = zerolog.MultiLevelWriter(primary, rotated)
	}

	logging.SetDefault(logging.New(writer).Level(level))
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// buildClient assembles the engine from configuration. Credentials come
// from config or RECOIL_STORE_APP_ID / RECOIL_STORE_API_KEY.
func buildClient(opts ...recoil.Option) (recoil.Client, error) {
	feedURL := viper.GetString("feed.url")
	if feedURL == "" {
		return nil, &errors.ConfigError{Component: "cli", Message: "feed.url is required (set RECOIL_FEED_URL or feed.url in config)"}
	}

	st, err := store.New(store.Config{
		BaseURL:       viper.GetString("store.base_url"),
		ApplicationID: viper.GetString("store.app_id"),
		APIKey:        viper.GetString("store.api_key"),
	})
	if err != nil {
		return nil, err
	}

	geocoder := geocode.New()
	source := feed.NewSheetSource(feedURL, feed.WithGeocoder(geocoder))

	var matcher records.Matcher = records.NewTieredMatcher()
	if viper.GetBool("sync.strict_identity") {
		matcher = records.NewStrictMatcher()
	}

	base := []recoil.Option{
		recoil.WithFeed(source),
		recoil.WithStore(st),
		recoil.WithGeocoder(geocoder),
		recoil.WithMatcher(matcher),
		recoil.WithWindow(time.Duration(viper.GetInt("sync.days")) * 24 * time.Hour),
		recoil.WithTimeout(viper.GetDuration("sync.timeout")),
		recoil.WithNotifications(viper.GetBool("sync.notify")),
		recoil.WithAutoUpdateInterval(viper.GetDuration("update.interval")),
	}
	return recoil.New(append(base, opts...)...)
}

// printResult writes the human pass summary to stdout.
func printResult(w io.Writer, res *recoil.Result) {
	fmt.Fprintln(w, res.String())
}

// reportPath expands a report flag value, defaulting a bare directory to
// a file named after the pass mode.
func reportPath(path string, res *recoil.Result) string {
	if path == "" {
		return ""
	}
	if strings.HasSuffix(path, string(os.PathSeparator)) {
		return filepath.Join(path, string(res.Mode)+".yaml")
	}
	return path
}
