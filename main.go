// gensmt generalizes single solutions of boolean/integer formulas into
// solution-space facts: fixed boolean polarities, pairwise implications, and
// per-variable satisfiable intervals.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wrldedit/gensmt/analysis"
	"github.com/wrldedit/gensmt/bf"
	"github.com/wrldedit/gensmt/interval"
	"github.com/wrldedit/gensmt/invariant"
	"github.com/wrldedit/gensmt/logger"
	"github.com/wrldedit/gensmt/relations"
	"github.com/wrldedit/gensmt/smt"
)

var (
	flagVerbose   bool
	flagDomainLo  int
	flagDomainHi  int
	flagBoolStrat string
	flagIntStrat  string
	flagCap       int
	flagHorizon   int
	flagStep      int
	flagGapProbe  int
	flagFixed     string
	flagAlways    string
	flagInterval  string
)

func main() {
	root := &cobra.Command{
		Use:   "gensmt",
		Short: "generalize formula solutions into solution-space facts",
		Long: `gensmt reads a formula and reports properties that hold across its whole
solution space rather than in a single model: boolean variables pinned to one
polarity, implications between boolean variables, and the range of values an
integer variable can take around a reference solution.

The formula syntax follows the usual precedence: = (equivalence) binds
loosest, then ->, |, &, and ^ (negation). Integer atoms compare a variable
with a constant or another variable: x == 3, x < y, n >= -2.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				logger.Set(logger.Logger().Level(zerolog.DebugLevel))
			}
		},
	}
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().IntVar(&flagDomainLo, "domain-lo", smt.DefaultDomainLo, "smallest representable integer value")
	root.PersistentFlags().IntVar(&flagDomainHi, "domain-hi", smt.DefaultDomainHi, "largest representable integer value")

	root.AddCommand(relationsCmd(), boundsCmd(), analyzeCmd(), verifyCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gensmt: %v\n", err)
		os.Exit(1)
	}
}

func loadFormula(path string) (bf.Formula, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening formula")
	}
	defer f.Close()
	formula, err := bf.Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return formula, nil
}

func newOracle() smt.Oracle {
	return smt.NewSolver(smt.WithDomain(flagDomainLo, flagDomainHi))
}

func boolStrategy() (relations.Strategy, error) {
	switch flagBoolStrat {
	case "direct":
		return relations.DirectQuery, nil
	case "sampling":
		return relations.ModelSampling, nil
	default:
		return 0, errors.Errorf("unknown strategy %q (want direct or sampling)", flagBoolStrat)
	}
}

func intStrategy() (interval.Strategy, error) {
	switch flagIntStrat {
	case "linear":
		return interval.LinearScan, nil
	case "bracket":
		return interval.Bracket, nil
	default:
		return 0, errors.Errorf("unknown strategy %q (want linear or bracket)", flagIntStrat)
	}
}

func relationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relations <file>",
		Short: "discover boolean relations holding in every solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFormula(args[0])
			if err != nil {
				return err
			}
			strat, err := boolStrategy()
			if err != nil {
				return err
			}
			report, err := relations.Discover(newOracle(), f, nil, strat,
				relations.WithSampleCap(flagCap))
			if err != nil {
				return err
			}
			fmt.Print(report)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagBoolStrat, "strategy", "direct", "direct or sampling")
	cmd.Flags().IntVar(&flagCap, "cap", relations.DefaultSampleCap, "model cap for the sampling strategy")
	return cmd
}

func boundsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bounds <file>",
		Short: "discover per-variable satisfiable intervals around one solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFormula(args[0])
			if err != nil {
				return err
			}
			strat, err := intStrategy()
			if err != nil {
				return err
			}
			report, err := interval.Discover(newOracle(), f, nil, strat,
				interval.WithHorizon(flagHorizon),
				interval.WithInitialStep(flagStep),
				interval.WithGapProbe(flagGapProbe))
			if err != nil {
				return err
			}
			fmt.Print(report)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagIntStrat, "strategy", "bracket", "linear or bracket")
	cmd.Flags().IntVar(&flagHorizon, "horizon", interval.DefaultHorizon, "linear-scan search horizon")
	cmd.Flags().IntVar(&flagStep, "step", interval.DefaultInitialStep, "bracket initial expansion step")
	cmd.Flags().IntVar(&flagGapProbe, "gap-probe", 0, "interior points to probe for gaps (0 disables)")
	return cmd
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "run both engines and merge their findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFormula(args[0])
			if err != nil {
				return err
			}
			boolStrat, err := boolStrategy()
			if err != nil {
				return err
			}
			intStrat, err := intStrategy()
			if err != nil {
				return err
			}
			report, err := analysis.Run(newOracle(), f, analysis.Config{
				BoolStrategy: boolStrat,
				IntStrategy:  intStrat,
				SampleCap:    flagCap,
				Horizon:      flagHorizon,
				GapProbe:     flagGapProbe,
			})
			if err != nil {
				return err
			}
			fmt.Print(report)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagBoolStrat, "bool-strategy", "direct", "direct or sampling")
	cmd.Flags().StringVar(&flagIntStrat, "int-strategy", "bracket", "linear or bracket")
	cmd.Flags().IntVar(&flagCap, "cap", relations.DefaultSampleCap, "model cap for the sampling strategy")
	cmd.Flags().IntVar(&flagHorizon, "horizon", interval.DefaultHorizon, "linear-scan search horizon")
	cmd.Flags().IntVar(&flagGapProbe, "gap-probe", 0, "interior points to probe for gaps (0 disables)")
	return cmd
}

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "prove or refute one candidate invariant by the negation test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFormula(args[0])
			if err != nil {
				return err
			}
			cand, err := parseCandidate()
			if err != nil {
				return err
			}
			res, err := invariant.Verify(newOracle(), f, cand)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", cand, res.Status)
			if res.Counterexample != nil {
				fmt.Printf("counterexample: %s\n", res.Counterexample)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagFixed, "fixed", "", "candidate \"v=k\": v always equals the integer k")
	cmd.Flags().StringVar(&flagAlways, "always", "", "candidate \"v=true|false\": v always has that polarity")
	cmd.Flags().StringVar(&flagInterval, "interval", "", "candidate \"v=lo:hi\": v always lies in [lo, hi]")
	return cmd
}

// parseCandidate builds the one candidate selected by the verify flags.
// Exactly one of --fixed, --always, --interval must be given.
func parseCandidate() (invariant.Candidate, error) {
	given := 0
	for _, s := range []string{flagFixed, flagAlways, flagInterval} {
		if s != "" {
			given++
		}
	}
	if given != 1 {
		return invariant.Candidate{}, errors.New("exactly one of --fixed, --always, --interval is required")
	}
	switch {
	case flagFixed != "":
		v, rest, err := splitCandidate(flagFixed)
		if err != nil {
			return invariant.Candidate{}, err
		}
		k, err := strconv.Atoi(rest)
		if err != nil {
			return invariant.Candidate{}, errors.Errorf("--fixed wants v=k with integer k, got %q", flagFixed)
		}
		return invariant.Fixed(v, k), nil
	case flagAlways != "":
		v, rest, err := splitCandidate(flagAlways)
		if err != nil {
			return invariant.Candidate{}, err
		}
		pol, err := strconv.ParseBool(rest)
		if err != nil {
			return invariant.Candidate{}, errors.Errorf("--always wants v=true or v=false, got %q", flagAlways)
		}
		return invariant.Always(v, pol), nil
	default:
		v, rest, err := splitCandidate(flagInterval)
		if err != nil {
			return invariant.Candidate{}, err
		}
		lohi := strings.SplitN(rest, ":", 2)
		if len(lohi) != 2 {
			return invariant.Candidate{}, errors.Errorf("--interval wants v=lo:hi, got %q", flagInterval)
		}
		lo, err := strconv.Atoi(lohi[0])
		if err != nil {
			return invariant.Candidate{}, errors.Errorf("invalid lower bound in %q", flagInterval)
		}
		hi, err := strconv.Atoi(lohi[1])
		if err != nil {
			return invariant.Candidate{}, errors.Errorf("invalid upper bound in %q", flagInterval)
		}
		return invariant.InRange(v, lo, hi)
	}
}

func splitCandidate(s string) (v, rest string, err error) {
	parts := strings.SplitN(s, "=", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", errors.Errorf("candidate %q is not of the form v=...", s)
	}
	return parts[0], parts[1], nil
}
