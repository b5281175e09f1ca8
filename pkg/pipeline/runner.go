package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kirchhoff/pkg/cache"
	"github.com/matzehuels/kirchhoff/pkg/circuit"
	"github.com/matzehuels/kirchhoff/pkg/circuit/topology"
	"github.com/matzehuels/kirchhoff/pkg/kirchhoff"
	"github.com/matzehuels/kirchhoff/pkg/netlist"
	"github.com/matzehuels/kirchhoff/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ReportTTL overrides cache.TTLReport when positive.
	ReportTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

func (r *Runner) reportTTL() time.Duration {
	if r.ReportTTL > 0 {
		return r.ReportTTL
	}
	return cache.TTLReport
}

// Parse reads a netlist in format f and builds its circuit graph.
func (r *Runner) Parse(ctx context.Context, rd io.Reader, f netlist.Format) (*circuit.Graph, error) {
	start := time.Now()
	g, err := parse(rd, f)
	nodes, branches := 0, 0
	if g != nil {
		nodes, branches = g.NodeCount(), g.EdgeCount()
	}
	observability.Pipeline().OnParse(ctx, string(f), nodes, branches, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func parse(rd io.Reader, f netlist.Format) (*circuit.Graph, error) {
	n, err := netlist.Read(rd, f)
	if err != nil {
		return nil, err
	}
	return n.Graph()
}

// Analyze computes the spanning tree, co-tree and fundamental cycles of g.
func (r *Runner) Analyze(ctx context.Context, g *circuit.Graph) (*topology.Basis, error) {
	start := time.Now()
	basis, err := topology.Analyze(g)
	cycles := 0
	if basis != nil {
		cycles = len(basis.Cycles)
	}
	observability.Pipeline().OnAnalyze(ctx, g.NodeCount(), g.EdgeCount(), cycles, time.Since(start), err)
	return basis, err
}

// Solve assembles the system of g and solves it. With reduced set, the
// variable-weight rows and columns are removed first. The returned system is
// the one that was solved.
func (r *Runner) Solve(ctx context.Context, g *circuit.Graph, basis *topology.Basis, reduced bool) (*kirchhoff.System, *kirchhoff.Solution, error) {
	start := time.Now()
	sys, sol, err := solve(g, basis, reduced)
	size := 0
	if sys != nil {
		size, _ = sys.Size()
	}
	observability.Pipeline().OnSolve(ctx, size, reduced, time.Since(start), err)
	return sys, sol, err
}

func solve(g *circuit.Graph, basis *topology.Basis, reduced bool) (*kirchhoff.System, *kirchhoff.Solution, error) {
	sys, err := kirchhoff.Assemble(g, basis)
	if err != nil {
		return nil, nil, err
	}
	if reduced {
		if sys, err = kirchhoff.Reduce(sys, kirchhoff.Split(g, basis)); err != nil {
			return nil, nil, err
		}
	}
	sol, err := kirchhoff.SolveSystem(sys)
	if err != nil {
		return sys, nil, err
	}
	return sys, sol, nil
}

// NetlistHash returns the content hash used for cache keys. It hashes the
// line encoding, so equal circuits hash equally whatever format they were
// read from.
func NetlistHash(g *circuit.Graph) string {
	var buf bytes.Buffer
	_ = netlist.WriteLine(&buf, netlist.FromGraph(g))
	return cache.Hash(buf.Bytes())
}

// Execute runs analyze → solve on g and builds its report.
func (r *Runner) Execute(ctx context.Context, g *circuit.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		NetlistHash: NetlistHash(g),
		Stats: Stats{
			NodeCount:   g.NodeCount(),
			BranchCount: g.EdgeCount(),
		},
	}
	key := r.Keyer.ReportKey(result.NetlistHash, opts.ReportKeyOpts())

	if !opts.Refresh {
		if rep, ok := r.cachedReport(ctx, key); ok {
			result.Report = rep
			result.CacheInfo.ReportHit = true
			r.Logger.Debug("report from cache", "hash", result.NetlistHash[:12])
			return result, nil
		}
	}

	analyzeStart := time.Now()
	basis, err := r.Analyze(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Stats.AnalyzeTime = time.Since(analyzeStart)

	r.Logger.Info("analyzed circuit",
		"nodes", g.NodeCount(),
		"branches", g.EdgeCount(),
		"cycles", len(basis.Cycles),
		"duration", result.Stats.AnalyzeTime)

	var (
		sys *kirchhoff.System
		sol *kirchhoff.Solution
	)
	if !opts.SkipSolve {
		solveStart := time.Now()
		sys, sol, err = r.Solve(ctx, g, basis, opts.Reduced)
		if err != nil {
			return nil, fmt.Errorf("solve: %w", err)
		}
		result.Stats.SolveTime = time.Since(solveStart)

		rows, cols := sys.Size()
		r.Logger.Info("solved system",
			"rows", rows,
			"cols", cols,
			"reduced", opts.Reduced,
			"duration", result.Stats.SolveTime)
	}

	result.Report = newReport(g, basis, sys, sol, opts)

	if data, err := json.Marshal(result.Report); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.reportTTL()); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "report", len(data))
		}
	}
	return result, nil
}

func (r *Runner) cachedReport(ctx context.Context, key string) (*Report, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "report")
		return nil, false
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		observability.Cache().OnCacheMiss(ctx, "report")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "report")
	return &rep, true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
