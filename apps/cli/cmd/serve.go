package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/fauxhttp/packages/core/config"
	"github.com/abdul-hamid-achik/fauxhttp/packages/fixtures"
	"github.com/abdul-hamid-achik/fauxhttp/packages/journal"
	"github.com/abdul-hamid-achik/fauxhttp/packages/mock"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	servePortFlag    int
	serveDelayFlag   string
	serveRateFlag    float64
	serveBaseURLFlag string
	serveJournalFlag string
	serveWatchFlag   bool
	serveVerboseFlag bool
)

var serveCmd = &cobra.Command{
	Use:   "serve [file|directory...]",
	Short: "Serve fixture responses on a local port",
	Long: `Start an HTTP server that answers requests from the routes in your
fixture files.

Incoming requests are matched by method, path and query. The base URL is
put in front of the request path first, so fixtures written against
https://api.example.com can be served locally. A fixture file's baseUrl
only applies to its registered routes, so serve such files with the same
--base-url (or "baseUrl" in the config); a mismatch is logged as a warning.
Requests that match no route get a 404 listing every registered URL.

Examples:
  fauxhttp serve fixtures/
  fauxhttp serve api.yaml --port 8080 --delay 100ms
  fauxhttp serve api.yaml --base-url https://api.example.com
  fauxhttp serve fixtures/ --watch --journal sqlite://calls.db`,
	RunE: serveCommand,
}

func init() {
	serveCmd.Flags().IntVarP(&servePortFlag, "port", "p", 3000, "Port to run the server on")
	serveCmd.Flags().StringVarP(&serveDelayFlag, "delay", "d", "0", "Delay to add to all responses (e.g., 100ms, 1s)")
	serveCmd.Flags().Float64VarP(&serveRateFlag, "rate", "r", 0, "Maximum requests per second (0 = unlimited)")
	serveCmd.Flags().StringVar(&serveBaseURLFlag, "base-url", "", "Prefix put in front of request paths before matching")
	serveCmd.Flags().StringVar(&serveJournalFlag, "journal", "", "Record requests in a SQLite journal (e.g., sqlite://calls.db)")
	serveCmd.Flags().BoolVarP(&serveWatchFlag, "watch", "w", false, "Reload routes when fixture files change")
	serveCmd.Flags().BoolVarP(&serveVerboseFlag, "verbose", "v", false, "Log every request")
}

func serveCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = cfg.Merge(serveFlagsConfig(cmd))

	delay, err := cfg.GetDelay()
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)

	files, err := fixtureArgs(args, cfg)
	if err != nil {
		return err
	}

	a, loaded, err := buildAdapter(files, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load fixtures: %w", err)
	}
	if a.Len() == 0 {
		return fmt.Errorf("no routes found in the provided files")
	}
	for _, f := range baseURLMismatches(loaded, cfg.BaseURL) {
		logger.WithFields(logrus.Fields{
			"file":       f.Path,
			"fixtureUrl": f.BaseURL,
			"serverUrl":  cfg.BaseURL,
		}).Warn("fixture baseUrl differs from --base-url, its routes will not match; pass --base-url " + f.BaseURL)
	}

	opts := []mock.Option{
		mock.WithPort(cfg.Port),
		mock.WithBaseURL(cfg.BaseURL),
		mock.WithDelay(delay),
		mock.WithRate(cfg.Rate),
		mock.WithVerbose(cfg.GetVerbose()),
		mock.WithLogger(logger),
	}

	if cfg.Journal != "" {
		j, err := journal.Open(cfg.Journal)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer j.Close()
		opts = append(opts, mock.WithJournal(j))
	}

	server := mock.NewServer(a, opts...)

	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d routes from %d files\n", a.Len(), len(files))

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.GetWatch() {
		watcher, err := watchFixtures(ctx, files, args, func() {
			next, _, err := buildAdapter(files, cfg, logger)
			if err != nil {
				logger.WithError(err).Error("reload failed, keeping previous routes")
				return
			}
			server.Reload(next)
		}, logger)
		if err != nil {
			return err
		}
		defer watcher.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "Watching fixture files for changes")
	}

	if err := server.StartWithContext(ctx); err != nil {
		return err
	}

	printStats(cmd, server.Stats())
	return nil
}

// serveFlagsConfig turns the flags the user actually set into a config
// layer, so unset flags keep config file values.
func serveFlagsConfig(cmd *cobra.Command) *config.Config {
	flags := cmd.Flags()
	out := &config.Config{}
	if flags.Changed("port") {
		out.Port = servePortFlag
	}
	if flags.Changed("delay") {
		out.Delay = serveDelayFlag
	}
	if flags.Changed("rate") {
		out.Rate = serveRateFlag
	}
	if flags.Changed("base-url") {
		out.BaseURL = serveBaseURLFlag
	}
	if flags.Changed("journal") {
		out.Journal = serveJournalFlag
	}
	if flags.Changed("watch") {
		out.Watch = config.BoolPtr(serveWatchFlag)
	}
	if flags.Changed("verbose") {
		out.Verbose = config.BoolPtr(serveVerboseFlag)
	}
	return out
}

// watchFixtures calls reload, debounced, whenever a fixture file under the
// watched paths is written or created.
func watchFixtures(ctx context.Context, files, args []string, reload func(), logger logrus.FieldLogger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	watched := make(map[string]bool)
	add := func(dir string) {
		if watched[dir] {
			return
		}
		if err := watcher.Add(dir); err != nil {
			logger.WithError(err).WithField("dir", dir).Warn("failed to watch")
		}
		watched[dir] = true
	}
	for _, file := range files {
		add(filepath.Dir(file))
	}
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err == nil && info.IsDir() {
					add(path)
				}
				return nil
			})
		}
	}

	go func() {
		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if !fixtures.IsFixtureFile(event.Name) {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				name := event.Name
				debounce = time.AfterFunc(WatchDebounceDelay, func() {
					logger.WithField("file", name).Info("fixture changed, reloading")
					reload()
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WithError(err).Warn("watcher error")
			}
		}
	}()

	return watcher, nil
}

func printStats(cmd *cobra.Command, stats mock.Stats) {
	if stats.Requests == 0 {
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", bold("Requests served"))
	fmt.Fprintf(out, "  total:     %d\n", stats.Requests)
	if stats.Unmatched > 0 {
		fmt.Fprintf(out, "  unmatched: %s\n", yellow(stats.Unmatched))
	} else {
		fmt.Fprintf(out, "  unmatched: 0\n")
	}
	fmt.Fprintf(out, "  p50: %v  p95: %v  p99: %v  max: %v\n", stats.P50, stats.P95, stats.P99, stats.Max)
}
