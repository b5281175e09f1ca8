// Package pipeline provides the circuit analysis pipeline for kirchhoff.
//
// This package implements the complete parse → analyze → solve → render
// pipeline used by the CLI and the API server. By centralizing this logic,
// every entry point rounds, caches and reports results the same way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Parse: Read a netlist and build the circuit graph
//  2. Analyze: Spanning tree, co-tree and fundamental cycles
//  3. Solve: Assemble the KVL/KCL system and solve it, in full or reduced
//  4. Render: Draw the circuit or its currents with Graphviz
//
// Each stage can be run independently or as part of [Runner.Execute].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	g, err := runner.Parse(ctx, file, netlist.FormatLine)
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, g, pipeline.Options{Precision: pipeline.Places(2)})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Report.Classification)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kirchhoff/pkg/cache"
	"github.com/matzehuels/kirchhoff/pkg/circuit"
	"github.com/matzehuels/kirchhoff/pkg/circuit/topology"
	"github.com/matzehuels/kirchhoff/pkg/errors"
	"github.com/matzehuels/kirchhoff/pkg/kirchhoff"
)

// DefaultPrecision is the number of decimal places reported currents are
// rounded to.
const DefaultPrecision = 3

// NoRounding disables rounding when used as Options.Precision.
const NoRounding = -1

// Places returns a pointer to n for use as Options.Precision.
func Places(n int) *int { return &n }

// Options controls one analysis run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Reduced solves only the constant part of the circuit: cycles through
	// capacitive branches and the capacitive branch currents are dropped.
	Reduced bool `json:"reduced,omitempty"`

	// SkipSolve stops after classification and partitioning. The report then
	// carries no system and no currents.
	SkipSolve bool `json:"skip_solve,omitempty"`

	// Precision is the number of decimal places for reported currents.
	// Nil means DefaultPrecision; NoRounding keeps full precision.
	Precision *int `json:"precision,omitempty"`

	// Refresh bypasses the report cache for reads.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Precision == nil {
		o.Precision = Places(DefaultPrecision)
	}
	if *o.Precision < NoRounding {
		return errors.New(errors.ErrCodeInvalidInput, "precision %d is negative", *o.Precision)
	}
	if err := errors.ValidatePrecision(*o.Precision); err != nil {
		return err
	}
	if o.Reduced && o.SkipSolve {
		return errors.New(errors.ErrCodeInvalidInput, "reduced and skip_solve are mutually exclusive")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// places returns the effective rounding precision.
func (o *Options) places() int {
	if o.Precision == nil {
		return DefaultPrecision
	}
	return *o.Precision
}

// ReportKeyOpts returns cache key options for the analysis report.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	precision := o.places()
	if o.SkipSolve {
		precision = 0
	}
	return cache.ReportKeyOpts{
		Reduced:   o.Reduced,
		SkipSolve: o.SkipSolve,
		Precision: precision,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Report is the serializable analysis.
	Report *Report

	// NetlistHash is the content hash of the analyzed netlist.
	NetlistHash string

	// Stats contains timing information. Cached runs report zero durations
	// for the stages they skipped.
	Stats Stats

	// CacheInfo tracks whether the report came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	BranchCount int
	AnalyzeTime time.Duration
	SolveTime   time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	ReportHit bool
}

// Report is the outcome of analyzing one circuit. It is what the CLI prints
// in JSON mode, what the API returns and what the report cache stores.
type Report struct {
	Nodes          int                 `json:"nodes"`
	Classification string              `json:"classification"`
	Reduced        bool                `json:"reduced"`
	Precision      *int                `json:"precision,omitempty"`
	Branches       []BranchReport      `json:"branches"`
	Tree           []int               `json:"tree"`
	CoTree         []int               `json:"cotree"`
	Cycles         []topology.Cycle    `json:"cycles"`
	Partition      kirchhoff.Partition `json:"partition"`
	System         *kirchhoff.System   `json:"system,omitempty"`
	Solution       *kirchhoff.Solution `json:"solution,omitempty"`
}

// BranchReport describes one branch and, once solved, its current.
type BranchReport struct {
	Column    int               `json:"column"`
	Direction circuit.Direction `json:"direction"`
	Label     string            `json:"label"`
	Tree      bool              `json:"tree"`
	Variable  bool              `json:"variable"`
	Current   *float64          `json:"current,omitempty"`
}

// Directions returns the reference direction of every branch in column order.
func (r *Report) Directions() []circuit.Direction {
	out := make([]circuit.Direction, len(r.Branches))
	for i, b := range r.Branches {
		out[i] = b.Direction
	}
	return out
}

// newReport assembles a report from the stage outputs. sys and sol may be
// nil when solving was skipped.
func newReport(g *circuit.Graph, basis *topology.Basis, sys *kirchhoff.System, sol *kirchhoff.Solution, opts Options) *Report {
	rep := &Report{
		Nodes:          g.NodeCount(),
		Classification: circuit.Classify(g).String(),
		Reduced:        opts.Reduced,
		Tree:           basis.Tree.Columns,
		CoTree:         basis.CoTree,
		Cycles:         basis.Cycles,
		Partition:      kirchhoff.Split(g, basis),
		System:         sys,
	}
	if sol != nil {
		rep.Precision = Places(opts.places())
		sol = sol.Rounded(opts.places())
		rep.Solution = sol
	}

	for _, b := range g.Branches() {
		br := BranchReport{
			Column:    b.Column,
			Direction: b.Ref,
			Label:     b.Label,
			Tree:      basis.Tree.Contains(b.Column),
			Variable:  b.IsVariable(),
		}
		if sol != nil {
			if cur, ok := sol.Current(b.Column); ok {
				br.Current = &cur
			}
		}
		rep.Branches = append(rep.Branches, br)
	}
	return rep
}
