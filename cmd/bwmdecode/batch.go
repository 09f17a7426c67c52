// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/bwmdecode/batch"
	"github.com/katalvlaran/bwmdecode/config"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		sessionsPath string
		runID        string
		metricsAddr  string
		strict       bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Decode every session and pseudo session, storing each outcome",
		Long: `Expands every session of the input file into one task per pseudo id
(batch.pseudo_ids, -1 being the recorded session) and runs them on a bounded
worker pool. Pseudo sessions permute whole trials' targets with a seed derived
from batch.permutation_seed. Each outcome is written to the store under
<run>/<session>/<region>/<pseudo_id>; a failed task never stops the others.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sf, err := config.LoadSessions(sessionsPath)
			if err != nil {
				return err
			}
			tasks, err := sf.Tasks(a.file.Batch.PseudoIDs)
			if err != nil {
				return err
			}
			cfg, err := a.file.DecodingConfig()
			if err != nil {
				return err
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			reg := prometheus.NewRegistry()
			opts := []batch.Option{
				batch.WithConcurrency(a.file.Batch.Concurrency),
				batch.WithLogger(a.logger),
				batch.WithTargetSource(batch.Permutation{Seed: a.file.Batch.PermutationSeed}),
				batch.WithSink(st),
				batch.WithRegisterer(reg),
			}
			if runID != "" {
				opts = append(opts, batch.WithRunID(runID))
			}
			runner, err := batch.NewRunner(cfg, opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if metricsAddr != "" {
				shutdown := serveMetrics(metricsAddr, reg, a.logger)
				defer shutdown()
			}

			outcomes, runErr := runner.Run(ctx, tasks)
			failed := printOutcomes(cmd.OutOrStdout(), runner.RunID(), outcomes)
			if runErr != nil {
				return runErr
			}
			if strict && failed > 0 {
				return fmt.Errorf("%d of %d tasks failed", failed, len(outcomes))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&sessionsPath, "sessions", "s", "", "session input file (YAML or JSON)")
	cmd.Flags().StringVar(&runID, "run-id", "", "run id (default: a random UUID)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any task fails")
	_ = cmd.MarkFlagRequired("sessions")
	return cmd
}

// serveMetrics exposes reg on /metrics until the returned func is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.String("addr", addr), slog.String("error", err.Error()))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// printOutcomes writes a summary table and returns the number of failed
// tasks.
func printOutcomes(w io.Writer, runID string, outcomes []batch.Outcome) int {
	fmt.Fprintf(w, "run %s\n", runID)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tREGION\tPSEUDO\tSTATUS\tSCORE\tR2\tDETAIL")
	var failed int
	for _, o := range outcomes {
		if !o.OK() {
			failed++
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t-\t-\t%s\n", o.Session, o.Region, o.PseudoID, o.Status, o.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%.4f\t%.4f\tbest %v\n",
			o.Session, o.Region, o.PseudoID, o.Status,
			o.Result.ScoresTestFull, o.Result.RSquaredTestFull, o.Result.BestParams())
	}
	_ = tw.Flush()
	return failed
}
