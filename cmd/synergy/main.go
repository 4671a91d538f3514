package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/alexshd/synergy"
	"github.com/alexshd/synergy/internal/config"
	"github.com/alexshd/synergy/internal/dataset"
	"github.com/alexshd/synergy/internal/report"
	"github.com/alexshd/synergy/internal/server"
	"github.com/alexshd/synergy/internal/store"
)

func main() {
	var cfg config.Config

	rootCmd := &cobra.Command{
		Use:           "synergy",
		Short:         "Entropy and T-value analysis of variable co-occurrence counts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			slog.SetDefault(newLogger(cfg.Log.Level))
			return nil
		},
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(&cfg),
		newReferenceCmd(&cfg),
		newServeCmd(&cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	)
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	var input string
	var universe string
	var format string
	var verify bool

	cmd := &cobra.Command{
		Use:   "analyze [REGION=COUNT...]",
		Short: "Compute the region entropy and T-value tables",
		Long: `Compute the region entropy and T-value tables for a set of region counts.

Counts come either from a dataset file (--input, .json/.yaml/.yml) or from
REGION=COUNT arguments over the universe given by --universe (default:
SYNERGY_UNIVERSE, which defaults to A,I,S,G).

Example:
  synergy analyze --input counts.yaml --format json
  synergy analyze A=390952 I=99031 S=19977 G=5718 IA=25682 GA=119705 GIAS=97`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var d dataset.Dataset
			switch {
			case input != "" && len(args) > 0:
				return errors.New("give either --input or REGION=COUNT arguments, not both")
			case input != "":
				var err error
				if d, err = dataset.Load(input); err != nil {
					return err
				}
			case len(args) > 0:
				counts, err := parsePairs(args)
				if err != nil {
					return err
				}
				d = dataset.Dataset{Name: "args", Universe: cfg.Analysis.Universe, Counts: counts}
			default:
				return errors.New("no counts: use --input or REGION=COUNT arguments")
			}

			if cmd.Flags().Changed("universe") {
				d.Universe = config.SplitList(universe)
			}
			return runAnalyze(cmd, cfg, d, format, verify)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Dataset file (.json, .yaml or .yml)")
	cmd.Flags().StringVarP(&universe, "universe", "u", "", "Comma separated variable labels, in output order")
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatTable), "Output format: table|json")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check the result against the entropy and ordering laws")

	return cmd
}

func newReferenceCmd(cfg *config.Config) *cobra.Command {
	var format string
	var verify bool

	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Analyze the built-in four-variable reference dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, cfg, dataset.Reference(), format, verify)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatTable), "Output format: table|json")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check the result against the entropy and ordering laws")

	return cmd
}

func runAnalyze(cmd *cobra.Command, cfg *config.Config, d dataset.Dataset, format string, verify bool) error {
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}

	u, counts, err := d.Resolve()
	if err != nil {
		return err
	}

	res, err := synergy.NewAnalyzer(slog.Default()).Run(cmd.Context(), u, counts)
	if err != nil {
		return err
	}

	if verify {
		vcfg := synergy.DefaultVerifyConfig()
		vcfg.Tolerance = cfg.Analysis.VerifyTolerance
		if err := synergy.Verify(res, vcfg); err != nil {
			return err
		}
		slog.Info("result verified", "laws", len(vcfg.Laws), "tolerance", vcfg.Tolerance)
	}

	return report.Write(cmd.OutOrStdout(), res, f)
}

// parsePairs reads REGION=COUNT arguments.
func parsePairs(args []string) (map[string]float64, error) {
	counts := make(map[string]float64, len(args))
	for _, arg := range args {
		region, raw, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(region) == "" {
			return nil, fmt.Errorf("argument %q is not REGION=COUNT", arg)
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("argument %q: count is not a number", arg)
		}
		region = strings.TrimSpace(region)
		if _, dup := counts[region]; dup {
			return nil, fmt.Errorf("region %q given twice", region)
		}
		counts[region] = n
	}
	return counts, nil
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		Long: `Serve the analysis HTTP API on SYNERGY_ADDR.

Runs are stored in PostgreSQL when DATABASE_URL is set, in memory otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	gin.SetMode(cfg.Server.GinMode)

	var st store.Store = store.NewMemoryStore()
	if cfg.Database.URL != "" {
		pg, err := store.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := pg.InitSchema(ctx); err != nil {
			return err
		}
		st = pg
		slog.Info("using postgres store")
	} else {
		slog.Warn("DATABASE_URL not set, runs are kept in memory")
	}

	h := server.NewHandler(server.Options{
		Logger:          slog.Default(),
		Store:           st,
		VerifyTolerance: cfg.Analysis.VerifyTolerance,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
