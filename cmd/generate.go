package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dev-kir/web-stress/internal/config"
	"github.com/dev-kir/web-stress/internal/generator"
	"github.com/dev-kir/web-stress/internal/network"
	"github.com/dev-kir/web-stress/internal/observability"
	"github.com/dev-kir/web-stress/internal/profile"
	"github.com/dev-kir/web-stress/internal/report"
	"github.com/dev-kir/web-stress/internal/scenario"
	"github.com/dev-kir/web-stress/internal/session"
)

func newGenerateCmd() *cobra.Command {
	var (
		users        int
		duration     int
		scenarioName string
	)

	generateCmd := &cobra.Command{
		Use:   "generate <target-url>",
		Short: "Generate organic browsing traffic against a target",
		Long: `Simulates realistic multi-user browsing traffic against a target server or
load-balanced pool. Sessions follow probabilistic behavior profiles (casual
browsers, power users, shoppers, crawlers, mobile users) and the generator
holds a steady concurrency level until the duration elapses, then drains and
prints a summary of what every session saw.

Available scenarios: ` + strings.Join(scenario.Names(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg := config.Get()

			target := strings.TrimRight(args[0], "/")
			if err := config.ValidateTargetURL(target); err != nil {
				return err
			}

			genCfg := cfg.Generator
			genCfg.TargetURL = target
			if cmd.Flags().Changed("users") {
				genCfg.ConcurrentUsers = users
			}
			if cmd.Flags().Changed("duration") {
				genCfg.DurationSeconds = duration
			}

			runner := newSessionRunner(cfg, target, logger)
			profiles := profile.DefaultDistribution()

			var summary report.Summary
			if scenarioName != "" {
				preset, ok := scenario.Lookup(scenarioName)
				if !ok {
					return fmt.Errorf("unknown scenario %q (available: %s)", scenarioName, strings.Join(scenario.Names(), ", "))
				}
				logger.Info("Running scenario", zap.String("scenario", preset.Name), zap.String("description", preset.Description))

				var err error
				summary, err = runScenario(ctx, preset, genCfg, runner, profiles, logger)
				if err != nil {
					return err
				}
			} else {
				gen, err := generator.New(runner, profiles, genCfg, logger)
				if err != nil {
					return err
				}
				summary, err = gen.Run(ctx)
				if err != nil {
					return err
				}
			}

			summary.Render(os.Stdout)
			return nil
		},
	}

	generateCmd.Flags().IntVar(&users, "users", 50, "concurrent simulated users")
	generateCmd.Flags().IntVar(&duration, "duration", 300, "run duration in seconds")
	generateCmd.Flags().StringVar(&scenarioName, "scenario", "", "named scenario preset (overrides --users/--duration)")

	return generateCmd
}

// newSessionRunner wires the tuned HTTP client into a session runner.
func newSessionRunner(cfg *config.Config, target string, logger *zap.Logger) *session.Runner {
	clientCfg := network.NewDefaultClientConfig()
	if cfg.Network.Timeout > 0 {
		clientCfg.RequestTimeout = cfg.Network.Timeout
	}
	clientCfg.Logger = logger

	headers := cfg.Network.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	if _, ok := headers["User-Agent"]; !ok {
		headers["User-Agent"] = "web-stress-generator/" + Version
	}

	return session.NewRunner(network.NewClient(clientCfg), target, headers, logger)
}

// runScenario executes each stage of a preset back to back and merges the
// stage summaries into one combined report.
func runScenario(
	ctx context.Context,
	preset scenario.Scenario,
	base config.GeneratorConfig,
	runner generator.SessionRunner,
	profiles *profile.Distribution,
	logger *zap.Logger,
) (report.Summary, error) {
	combined := report.Summarize(nil)
	for i, stage := range preset.Stages {
		if ctx.Err() != nil {
			break
		}
		logger.Info("Starting scenario stage",
			zap.Int("stage", i+1),
			zap.Int("stages", len(preset.Stages)),
			zap.Int("users", stage.ConcurrentUsers),
			zap.Int("duration_seconds", stage.DurationSeconds),
		)

		stageCfg := base
		stageCfg.ConcurrentUsers = stage.ConcurrentUsers
		stageCfg.DurationSeconds = stage.DurationSeconds

		gen, err := generator.New(runner, profiles, stageCfg, logger)
		if err != nil {
			return report.Summary{}, err
		}
		stageSummary, err := gen.Run(ctx)
		if err != nil {
			return report.Summary{}, err
		}
		combined = report.Merge(combined, stageSummary)
	}
	return combined, nil
}
