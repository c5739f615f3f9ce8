// Package main scores a wallet transaction file end to end.
// Executes: load → normalize → aggregate → features → score → CSV + REPORT.md
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wallet-credit-score/internal/cli"
	"wallet-credit-score/internal/config"
	"wallet-credit-score/internal/ingestion"
	"wallet-credit-score/internal/ingestion/stub"
	"wallet-credit-score/internal/orchestrator"
	"wallet-credit-score/internal/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Score wallets from a transaction file",
		Long: `Reads the transaction JSON file (or built-in fixtures), scores every wallet
and writes wallet_features.csv, wallet_scores.csv and REPORT.md.

Scores are also written to every configured sink: Postgres score table,
ClickHouse feature table, Redis cache and AMQP exchange.`,
		Example: `  pipeline --input user-wallet-transactions.json --output-dir out
  pipeline --use-fixtures --output-dir docs`,
		SilenceUsage: true,
		RunE:         run,
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	env, err := cli.Setup(cmd, config.RequireInput)
	if err != nil {
		return err
	}
	ctx, cancel := cli.SignalContext(context.Background())
	defer cancel()

	var source ingestion.EventSource
	if env.Config.UseFixtures {
		source = stub.NewStubEventSource("fixtures", pipeline.FixtureEvents())
	} else {
		source = ingestion.NewJSONFileSource(env.Config.Input)
	}

	normalizer, err := env.Normalizer()
	if err != nil {
		return err
	}

	sinks, closeSinks, err := env.Sinks(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSinks()

	orch := orchestrator.New(orchestrator.Options{
		Source:     source,
		Normalizer: normalizer,
		Metrics:    env.Metrics,
		Logger:     env.Logger,
	})
	p := pipeline.New(orch, env.Config.OutputDir).
		WithSource(source.Name()).
		WithSinks(sinks...).
		WithMetrics(env.Metrics).
		WithLogger(env.Logger)

	out, err := p.Run(ctx)
	if err != nil {
		return err
	}
	printSummary(cmd, out)
	return nil
}

func printSummary(cmd *cobra.Command, out *pipeline.Output) {
	w := cmd.OutOrStdout()
	s := out.Report.ScoreSummary
	fmt.Fprintf(w, "Run %s completed:\n", out.RunID)
	fmt.Fprintf(w, "  Wallets: %d\n", out.Report.DataSummary.TotalWallets)
	fmt.Fprintf(w, "  Score min/mean/max: %d / %.2f / %d\n", s.Min, s.Mean, s.Max)
	for _, f := range out.Files {
		fmt.Fprintf(w, "  - %s\n", f)
	}
}
