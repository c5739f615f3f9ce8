// Package main checks that wallet scores are reproducible.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"wallet-credit-score/internal/cli"
	"wallet-credit-score/internal/config"
	"wallet-credit-score/internal/ingestion"
	"wallet-credit-score/internal/ingestion/stub"
	"wallet-credit-score/internal/pipeline"
	"wallet-credit-score/internal/storage/postgres"
	"wallet-credit-score/internal/verification"
)

// errDiverged is returned when a verification finds differences.
var errDiverged = errors.New("verification failed: populations diverge")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "verify",
		Short: "Check that wallet scores are reproducible",
		Long: `Verification commands for scoring reproducibility.

Available subcommands:
  determinism  Score the input in file order and after a seeded shuffle, compare
  replay       Rescore the Postgres raw events, compare with the stored scores`,
		SilenceUsage: true,
	}

	determinism := &cobra.Command{
		Use:   "determinism",
		Short: "Compare scores of the input and of a shuffled copy",
		Example: `  verify determinism --input user-wallet-transactions.json --seed 42
  verify determinism --use-fixtures`,
		RunE: runDeterminism,
	}
	config.RegisterFlags(determinism.Flags())

	replay := &cobra.Command{
		Use:   "replay",
		Short: "Compare stored scores with a fresh computation over stored raw events",
		RunE:  runReplay,
	}
	config.RegisterFlags(replay.Flags())

	root.AddCommand(determinism, replay)
	return root
}

func runDeterminism(cmd *cobra.Command, _ []string) error {
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

	v := verification.NewDeterminismVerifier(verification.DeterminismVerifierOptions{
		Source:     source,
		Normalizer: normalizer,
		Seed:       env.Config.Verify.Seed,
		Logger:     env.Logger,
	})
	return report(ctx, cmd.OutOrStdout(), v)
}

func runReplay(cmd *cobra.Command, _ []string) error {
	env, err := cli.Setup(cmd, config.RequirePostgres)
	if err != nil {
		return err
	}
	ctx, cancel := cli.SignalContext(context.Background())
	defer cancel()

	pool, err := env.OpenPostgres(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	normalizer, err := env.Normalizer()
	if err != nil {
		return err
	}

	v := verification.NewReplayVerifier(verification.ReplayVerifierOptions{
		Source:     ingestion.NewStoreSource(postgres.NewRawEventStore(pool), "raw_events"),
		Normalizer: normalizer,
		ScoreStore: postgres.NewWalletScoreStore(pool),
		Logger:     env.Logger,
	})
	return report(ctx, cmd.OutOrStdout(), v)
}

func report(ctx context.Context, w io.Writer, v verification.Verifier) error {
	rep, err := v.Verify(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Wallets: %d  matched: %d  divergent: %d  missing: %d  extra: %d\n",
		rep.TotalWallets, rep.MatchedWallets, rep.DivergentWallets,
		len(rep.MissingWallets), len(rep.ExtraWallets))
	for _, r := range rep.Results {
		fmt.Fprintf(w, "  %s (score %d vs %d)\n", r.WalletAddress, r.ExpectedScore, r.ActualScore)
		for _, d := range r.Divergences {
			fmt.Fprintf(w, "    %s: expected %v, got %v\n", d.Field, d.Expected, d.Actual)
		}
	}
	for _, wallet := range rep.MissingWallets {
		fmt.Fprintf(w, "  missing: %s\n", wallet)
	}
	for _, wallet := range rep.ExtraWallets {
		fmt.Fprintf(w, "  extra: %s\n", wallet)
	}

	if !rep.OK() {
		return errDiverged
	}
	fmt.Fprintln(w, "OK: populations are identical")
	return nil
}
