// Package analysis composes the boolean relation engine and the integer
// interval engine over one formula and merges their findings into a single
// structured report.
package analysis

import (
	"github.com/wrldedit/gensmt/bf"
	"github.com/wrldedit/gensmt/interval"
	"github.com/wrldedit/gensmt/relations"
	"github.com/wrldedit/gensmt/smt"
)

// Config selects the strategies and parameters for a combined run.
// The zero value runs the sound strategies with default parameters.
type Config struct {
	BoolStrategy relations.Strategy
	IntStrategy  interval.Strategy
	SampleCap    int
	Horizon      int
	GapProbe     int
}

func (c *Config) fillDefaults() {
	if c.BoolStrategy == 0 {
		c.BoolStrategy = relations.DirectQuery
	}
	if c.IntStrategy == 0 {
		c.IntStrategy = interval.Bracket
	}
}

// Report merges the findings of both engines for one formula.
type Report struct {
	Relations relations.Report
	Bounds    interval.Report
}

// Run analyzes every variable of the formula with both engines. The boolean
// engine sees the boolean variables, the interval engine the integer ones;
// either may come back with an empty report when its sort is absent.
func Run(o smt.Oracle, f bf.Formula, cfg Config) (Report, error) {
	cfg.fillDefaults()
	var report Report
	var err error
	report.Relations, err = relations.Discover(o, f, nil, cfg.BoolStrategy,
		relations.WithSampleCap(cfg.SampleCap))
	if err != nil {
		return Report{}, err
	}
	report.Bounds, err = interval.Discover(o, f, nil, cfg.IntStrategy,
		interval.WithHorizon(cfg.Horizon), interval.WithGapProbe(cfg.GapProbe))
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

// String renders both sections deterministically, one finding per line.
func (r Report) String() string {
	return r.Relations.String() + r.Bounds.String()
}
