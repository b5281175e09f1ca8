// Package observability provides hooks for metrics, tracing, and logging.
//
// Consumers register hooks at startup to receive events about pipeline
// stages, cache lookups and served HTTP requests. Libraries call the
// registered hooks; nothing is recorded unless a hook is installed.
//
// # Architecture
//
//   - Hook interfaces per event category
//   - No-op defaults
//   - A process-wide registry written once by main
//
// [LogHooks] is a ready-made implementation that reports every event to a
// charm logger at debug level.
//
// # Usage
//
//	func main() {
//	    observability.SetPipelineHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries emit events:
//
//	start := time.Now()
//	basis, err := topology.Analyze(g)
//	observability.Pipeline().OnAnalyze(ctx, g.NodeCount(), g.EdgeCount(), len(basis.Cycles), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the analysis pipeline.
type PipelineHooks interface {
	OnParse(ctx context.Context, format string, nodes, branches int, duration time.Duration, err error)
	OnAnalyze(ctx context.Context, nodes, branches, cycles int, duration time.Duration, err error)
	OnSolve(ctx context.Context, size int, reduced bool, duration time.Duration, err error)
	OnRender(ctx context.Context, kind, format string, bytes int, duration time.Duration, err error)
}

// CacheHooks receives events from cache lookups. keyType is "report" or
// "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// NoopPipelineHooks ignores all pipeline events.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnParse(context.Context, string, int, int, time.Duration, error)     {}
func (NoopPipelineHooks) OnAnalyze(context.Context, int, int, int, time.Duration, error)      {}
func (NoopPipelineHooks) OnSolve(context.Context, int, bool, time.Duration, error)            {}
func (NoopPipelineHooks) OnRender(context.Context, string, string, int, time.Duration, error) {}

// NoopCacheHooks ignores all cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores all HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

var (
	hooksMu       sync.RWMutex
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
)

// SetPipelineHooks registers pipeline hooks. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
