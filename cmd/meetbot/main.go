package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	meetinghttp "github.com/bft-labs/meetbot/internal/adapters/http"
	"github.com/bft-labs/meetbot/internal/app"
	"github.com/bft-labs/meetbot/internal/cliconfig"
	"github.com/bft-labs/meetbot/internal/domain"
	"github.com/bft-labs/meetbot/internal/metrics"
	"github.com/bft-labs/meetbot/pkg/log"
	"github.com/bft-labs/meetbot/plugins/configwatcher"
	"github.com/bft-labs/meetbot/plugins/metricsserver"
)

const longHelp = `Join a meeting as a headless participant and stay there until told to leave.

Startup runs configure, initialize and authorize in order; the first failing
step ends the process with that step's result code. Once joined, the bot idles
in its event loop. SIGINT or SIGTERM leaves the meeting, releases the client
and exits with the signal number.

Flags are read from the command line, MEETBOT_* environment variables and
$HOME/.meetbot/config.toml, in that order of precedence. Run with --help for
the flag list.`

var exampleUsage = strings.TrimSpace(`
  meetbot --join-url "https://example.zoom.us/j/1234567890?pwd=abc" --client-id <id> --client-secret <secret>
  meetbot --config $HOME/.meetbot/config.toml --metrics-addr :9090
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	logger := log.NewZerologAdapter(os.Stderr)
	if level, err := log.ParseLevel(os.Getenv(cliconfig.EnvPrefix + "LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewMetrics(registry)

	client := meetinghttp.NewClient(meetinghttp.ClientConfig{
		Logger:    logger,
		Output:    os.Stderr,
		UserAgent: "meetbot/" + getVersion(),
		OnConfigured: func(cfg cliconfig.Config) {
			if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
				log.SetLevel(level)
			}
			logger.Info("configuration", log.Any("config", cfg.Redacted()))
		},
	})

	ctrl := app.New(client,
		app.WithLogger(logger),
		app.WithRecorder(recorder),
		app.WithSettings(client.Config),
		configwatcher.WithDefaultConfigWatcher(),
		metricsserver.WithMetricsServer(metricsserver.Config{
			Gatherer: registry,
			Metrics:  recorder,
		}),
	)

	version := fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH)
	root := &cobra.Command{
		Use:     "meetbot",
		Short:   "Headless meeting participant with a clean shutdown path",
		Long:    longHelp,
		Example: exampleUsage,
		Version: version,

		// Arguments belong to the configure step, not to cobra.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,

		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && args[0] == "--version" {
				fmt.Fprintln(cmd.OutOrStdout(), "meetbot version", version)
				return nil
			}
			return ctrl.Run(cmd.Context(), args)
		},
	}

	err := root.ExecuteContext(context.Background())
	var stepErr *domain.StepError
	if err != nil && !errors.As(err, &stepErr) {
		logger.Error("meetbot", log.Err(err))
	}

	// Every path out of the process goes through the single teardown.
	ctrl.Exit(domain.ExitCode(err))
}
