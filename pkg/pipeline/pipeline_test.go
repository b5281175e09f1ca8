package pipeline

import (
	"context"
	"io"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kirchhoff/pkg/cache"
	"github.com/matzehuels/kirchhoff/pkg/circuit"
	"github.com/matzehuels/kirchhoff/pkg/errors"
	"github.com/matzehuels/kirchhoff/pkg/netlist"
	"github.com/matzehuels/kirchhoff/pkg/observability"
	"github.com/matzehuels/kirchhoff/pkg/render"
)

const triangleNet = `3 3
0 1 1 6 0 0
1 2 1 0 0 0
2 0 1 0 0 0
`

const rcLadderNet = `4 5
0 1 1 6 0 0
1 2 2 0 0 0
2 0 1 0 0 0
1 3 1 0 0 0
3 2 1 0 0.01 0
`

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func mustParse(t *testing.T, r *Runner, src string) *circuit.Graph {
	t.Helper()
	g, err := r.Parse(context.Background(), strings.NewReader(src), netlist.FormatLine)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return g
}

func currents(rep *Report) []float64 {
	out := make([]float64, 0, len(rep.Branches))
	for _, b := range rep.Branches {
		if b.Current != nil {
			out = append(out, *b.Current)
		}
	}
	return out
}

func sameFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Precision == nil || *opts.Precision != DefaultPrecision {
		t.Errorf("Precision = %v, want %d", opts.Precision, DefaultPrecision)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}
	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call: %v", err)
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"too precise", Options{Precision: Places(16)}},
		{"negative", Options{Precision: Places(-2)}},
		{"reduced without solve", Options{Reduced: true, SkipSolve: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestExecutePrecision(t *testing.T) {
	r := quietRunner(nil)
	g := mustParse(t, r, "3 3\n0 1 1 5 0 0\n1 2 1 0 0 0\n2 0 1 0 0 0\n")
	third := 5.0 / 3

	tests := []struct {
		name      string
		precision *int
		want      float64
	}{
		{"default", nil, 1.667},
		{"whole numbers", Places(0), 2},
		{"full precision", Places(NoRounding), third},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Execute(context.Background(), g, Options{Precision: tt.precision})
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			want := []float64{tt.want, tt.want, tt.want}
			if got := currents(res.Report); !sameFloats(got, want) {
				t.Errorf("currents = %v, want %v", got, want)
			}
			wantPlaces := DefaultPrecision
			if tt.precision != nil {
				wantPlaces = *tt.precision
			}
			if p := res.Report.Precision; p == nil || *p != wantPlaces {
				t.Errorf("Report.Precision = %v, want %d", p, wantPlaces)
			}
		})
	}

	skip, err := r.Execute(context.Background(), g, Options{SkipSolve: true})
	if err != nil {
		t.Fatal(err)
	}
	if skip.Report.Precision != nil {
		t.Errorf("unsolved report Precision = %d, want nil", *skip.Report.Precision)
	}
}

func TestExecuteTriangle(t *testing.T) {
	r := quietRunner(nil)
	g := mustParse(t, r, triangleNet)

	res, err := r.Execute(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	rep := res.Report
	if rep.Classification != "Ordinary" {
		t.Errorf("Classification = %q, want Ordinary", rep.Classification)
	}
	if got := currents(rep); !sameFloats(got, []float64{2, 2, 2}) {
		t.Errorf("currents = %v, want [2 2 2]", got)
	}
	if len(rep.Tree) != 2 || len(rep.CoTree) != 1 || len(rep.Cycles) != 1 {
		t.Errorf("tree=%v cotree=%v cycles=%d", rep.Tree, rep.CoTree, len(rep.Cycles))
	}
	if rep.System == nil || len(rep.System.A) != 3 {
		t.Errorf("System = %+v, want 3 rows", rep.System)
	}
	if got := rep.Directions()[0].String(); got != "[0]---->[1]" {
		t.Errorf("direction = %q", got)
	}
	if res.CacheInfo.ReportHit {
		t.Error("NullCache reported a hit")
	}
}

func TestExecuteReduced(t *testing.T) {
	r := quietRunner(nil)
	g := mustParse(t, r, rcLadderNet)

	full, err := r.Execute(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if full.Report.Classification != "RC" {
		t.Errorf("Classification = %q, want RC", full.Report.Classification)
	}
	if got := currents(full.Report); !sameFloats(got, []float64{2, 1, 2, 1, 1}) {
		t.Errorf("full currents = %v", got)
	}

	red, err := r.Execute(context.Background(), g, Options{Reduced: true})
	if err != nil {
		t.Fatalf("Execute reduced: %v", err)
	}
	if got := currents(red.Report); !sameFloats(got, []float64{1.5, 1.5, 1.5, 0}) {
		t.Errorf("reduced currents = %v", got)
	}
	if red.Report.Branches[4].Current != nil {
		t.Error("capacitive branch has a current in the reduced report")
	}
	if !red.Report.Branches[4].Variable {
		t.Error("branch 4 not marked variable")
	}
}

func TestExecuteSkipSolve(t *testing.T) {
	r := quietRunner(nil)
	g := mustParse(t, r, rcLadderNet)

	res, err := r.Execute(context.Background(), g, Options{SkipSolve: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Report.System != nil || res.Report.Solution != nil {
		t.Error("skip_solve report carries a solution")
	}
	if got := res.Report.Partition.VariableColumns; len(got) != 1 || got[0] != 4 {
		t.Errorf("VariableColumns = %v, want [4]", got)
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errors.Code
	}{
		{"disconnected", "4 2\n0 1 1 6 0 0\n2 3 1 0 0 0\n", errors.ErrCodeDisconnected},
		{"singular", "3 3\n0 1 0 0 0 0\n1 2 0 0 0 0\n2 0 0 0 0 0\n", errors.ErrCodeSingular},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := quietRunner(nil)
			g := mustParse(t, r, tt.src)
			_, err := r.Execute(context.Background(), g, Options{})
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestParseFormatError(t *testing.T) {
	r := quietRunner(nil)
	_, err := r.Parse(context.Background(), strings.NewReader("2 1\n0 5 1 0 0 0\n"), netlist.FormatLine)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestExecuteCached(t *testing.T) {
	fc, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(fc)
	g := mustParse(t, r, triangleNet)
	ctx := context.Background()

	first, err := r.Execute(ctx, g, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(ctx, g, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.ReportHit || !second.CacheInfo.ReportHit {
		t.Errorf("hits = %v, %v; want false, true", first.CacheInfo.ReportHit, second.CacheInfo.ReportHit)
	}
	if !sameFloats(currents(second.Report), currents(first.Report)) {
		t.Errorf("cached currents = %v, want %v", currents(second.Report), currents(first.Report))
	}
	if first.NetlistHash != second.NetlistHash {
		t.Error("hash changed between runs")
	}

	// Different options use a different key.
	other, err := r.Execute(ctx, g, Options{Precision: Places(5)})
	if err != nil {
		t.Fatal(err)
	}
	if other.CacheInfo.ReportHit {
		t.Error("precision 5 served from the precision 3 entry")
	}

	refreshed, err := r.Execute(ctx, g, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.ReportHit {
		t.Error("refresh served from cache")
	}
}

func TestNetlistHashFormatIndependent(t *testing.T) {
	r := quietRunner(nil)
	line := mustParse(t, r, triangleNet)

	js := `{"nodes": 3, "branches": [
		{"from": 0, "to": 1, "resistance": 1, "voltage": 6},
		{"from": 1, "to": 2, "resistance": 1},
		{"from": 2, "to": 0, "resistance": 1}]}`
	g, err := r.Parse(context.Background(), strings.NewReader(js), netlist.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if NetlistHash(line) != NetlistHash(g) {
		t.Error("equal circuits hash differently")
	}
}

func TestDOT(t *testing.T) {
	r := quietRunner(nil)
	g := mustParse(t, r, triangleNet)
	ctx := context.Background()

	dot, err := r.DOT(ctx, g, RenderOptions{Tree: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(dot, "graph G {") || !strings.Contains(dot, "style=dashed") {
		t.Errorf("graph DOT:\n%s", dot)
	}

	dot, err = r.DOT(ctx, g, RenderOptions{Kind: KindCurrents})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(dot, "digraph G {") || !strings.Contains(dot, `label="2A"`) {
		t.Errorf("currents DOT:\n%s", dot)
	}

	if _, err := r.DOT(ctx, g, RenderOptions{Kind: "tower"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown kind error = %v", err)
	}
}

func TestRenderDOTCached(t *testing.T) {
	fc, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(fc)
	g := mustParse(t, r, triangleNet)
	ctx := context.Background()
	opts := RenderOptions{Format: render.FormatDOT}

	first, hit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil || hit {
		t.Fatalf("first render: hit=%v err=%v", hit, err)
	}
	second, hit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil || !hit {
		t.Fatalf("second render: hit=%v err=%v", hit, err)
	}
	if string(first) != string(second) {
		t.Error("cached artifact differs")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	stages []string
}

func (h *recordingHooks) add(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stages = append(h.stages, s)
}

func (h *recordingHooks) OnParse(context.Context, string, int, int, time.Duration, error) {
	h.add("parse")
}

func (h *recordingHooks) OnAnalyze(context.Context, int, int, int, time.Duration, error) {
	h.add("analyze")
}

func (h *recordingHooks) OnSolve(context.Context, int, bool, time.Duration, error) {
	h.add("solve")
}

func TestHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	defer observability.Reset()

	r := quietRunner(nil)
	g := mustParse(t, r, triangleNet)
	if _, err := r.Execute(context.Background(), g, Options{}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(h.stages, ","); got != "parse,analyze,solve" {
		t.Errorf("stages = %s, want parse,analyze,solve", got)
	}
}
