package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/kirchhoff/pkg/cache"
	"github.com/matzehuels/kirchhoff/pkg/circuit"
	"github.com/matzehuels/kirchhoff/pkg/errors"
	"github.com/matzehuels/kirchhoff/pkg/observability"
	"github.com/matzehuels/kirchhoff/pkg/render"
	"github.com/matzehuels/kirchhoff/pkg/render/nodelink"
)

// Drawing kinds.
const (
	KindGraph    = "graph"    // circuit topology with component labels
	KindCurrents = "currents" // solved currents as a directed graph
)

// DefaultScale is the PNG resolution multiplier.
const DefaultScale = 2.0

// RenderOptions controls one drawing.
type RenderOptions struct {
	Kind     string        `json:"kind,omitempty"`
	Format   render.Format `json:"format,omitempty"`
	Detailed bool          `json:"detailed,omitempty"`
	Tree     bool          `json:"tree,omitempty"` // dash co-tree branches (graph kind only)
	Scale    float64       `json:"scale,omitempty"`

	// Solve options for the currents kind.
	Solve Options `json:"solve,omitempty"`
}

// ValidateAndSetDefaults checks fields and applies defaults.
func (o *RenderOptions) ValidateAndSetDefaults() error {
	if o.Kind == "" {
		o.Kind = KindGraph
	}
	if o.Kind != KindGraph && o.Kind != KindCurrents {
		return errors.New(errors.ErrCodeInvalidInput, "invalid kind: %q (must be one of: graph, currents)", o.Kind)
	}
	f, err := render.ParseFormat(string(o.Format))
	if err != nil {
		return err
	}
	o.Format = f
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	if o.Kind == KindCurrents {
		o.Solve.SkipSolve = false
		return o.Solve.ValidateAndSetDefaults()
	}
	return nil
}

// ArtifactKeyOpts returns cache key options for the drawing.
func (o *RenderOptions) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	kind := o.Kind
	if o.Kind == KindCurrents {
		kind = fmt.Sprintf("%s/reduced=%t/p=%d", o.Kind, o.Solve.Reduced, o.Solve.places())
	}
	return cache.ArtifactKeyOpts{
		Kind:     kind,
		Format:   string(o.Format),
		Detailed: o.Detailed,
		Tree:     o.Tree,
		Scale:    o.Scale,
	}
}

// DOT builds the Graphviz source of the drawing without rendering it.
func (r *Runner) DOT(ctx context.Context, g *circuit.Graph, opts RenderOptions) (string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return "", err
	}
	return r.dot(ctx, g, opts)
}

func (r *Runner) dot(ctx context.Context, g *circuit.Graph, opts RenderOptions) (string, error) {
	basis, err := r.Analyze(ctx, g)
	if err != nil {
		return "", err
	}
	nopts := nodelink.Options{Detailed: opts.Detailed}
	if opts.Kind == KindGraph {
		if opts.Tree {
			nopts.Tree = basis.Tree
		}
		return nodelink.GraphDOT(g, nopts), nil
	}

	_, sol, err := r.Solve(ctx, g, basis, opts.Solve.Reduced)
	if err != nil {
		return "", err
	}
	nopts.Precision = opts.Solve.places()
	return nodelink.CurrentsDOT(g, sol, nopts), nil
}

// RenderWithCacheInfo draws g and returns whether the artifact came from the
// cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *circuit.Graph, opts RenderOptions) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	key := r.Keyer.ArtifactKey(NetlistHash(g), opts.ArtifactKeyOpts())
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	start := time.Now()
	data, err := r.render(ctx, g, opts)
	observability.Pipeline().OnRender(ctx, opts.Kind, string(opts.Format), len(data), time.Since(start), err)
	if err != nil {
		return nil, false, fmt.Errorf("render %s: %w", opts.Format, err)
	}

	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *circuit.Graph, opts RenderOptions) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return data, err
}

func (r *Runner) render(ctx context.Context, g *circuit.Graph, opts RenderOptions) ([]byte, error) {
	dot, err := r.dot(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	return nodelink.Render(ctx, dot, opts.Format, opts.Scale)
}
